package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"ADBExplorer/internal/core"
	"ADBExplorer/internal/metrics"
)

// Server is the HTTP API server for ADBExplorer
type Server struct {
	port       int
	logger     zerolog.Logger
	jobManager *core.JobManager
	files      FileService
	devices    DeviceService
	session    *core.MemorySession
	metrics    *metrics.Metrics
	engine     *gin.Engine
	server     *http.Server

	// background transfers outlive the request that started them
	baseCtx   context.Context
	transfers sync.WaitGroup

	// SSE clients
	sseClients   map[chan core.JobUpdateEvent]struct{}
	sseClientsMu sync.Mutex
}

// ServerOption configures the Server
type ServerOption func(*Server)

// WithMetrics records request metrics and serves /metrics
func WithMetrics(m *metrics.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithBaseContext sets the parent context of background transfers
func WithBaseContext(ctx context.Context) ServerOption {
	return func(s *Server) {
		s.baseCtx = ctx
	}
}

// NewServer creates a new API server. The server registers itself as an
// emitter on jobManager.
func NewServer(port int, logger zerolog.Logger, jobManager *core.JobManager, files FileService, devices DeviceService, session *core.MemorySession, opts ...ServerOption) *Server {
	s := &Server{
		port:       port,
		logger:     logger.With().Str("component", "api").Logger(),
		jobManager: jobManager,
		files:      files,
		devices:    devices,
		session:    session,
		baseCtx:    context.Background(),
		sseClients: make(map[chan core.JobUpdateEvent]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	jobManager.AddEmitter(s)
	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.engine
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	gin.SetMode(gin.ReleaseMode)
	s.engine = gin.New()
	s.engine.Use(gin.Recovery(), s.corsMiddleware(), s.loggingMiddleware())
	if s.metrics != nil {
		s.engine.Use(s.metrics.Middleware())
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)

	// Devices and session
	api.GET("/devices", s.handleDevices)
	api.POST("/devices/connect", s.handleConnect)
	api.POST("/devices/disconnect", s.handleDisconnect)
	api.GET("/session", s.handleGetSession)
	api.PUT("/session", s.handlePutSession)

	// Files in the current directory
	api.GET("/files", s.handleList)
	api.GET("/files/stat", s.handleStat)
	api.GET("/files/content", s.handleContent)
	api.POST("/files/rename", s.handleRename)
	api.POST("/files/mkdir", s.handleMkdir)
	api.DELETE("/files", s.handleDelete)

	// Transfers run as jobs
	api.POST("/transfers/download", s.handleDownload)
	api.POST("/transfers/upload", s.handleUpload)

	// Jobs API
	api.GET("/jobs", s.handleJobs)
	api.GET("/jobs/active", s.handleActiveJob)
	api.GET("/jobs/:id", s.handleGetJob)
	api.DELETE("/jobs/:id", s.handleCancelJob)
	api.POST("/jobs/:id/cancel", s.handleCancelJob)

	// SSE events
	api.GET("/events", s.handleSSE)
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = s.newHTTPServer()
	s.logger.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Run serves until ctx is done, then shuts down gracefully. A running
// transfer is canceled and Run returns once its adb process has exited.
func (s *Server) Run(ctx context.Context) error {
	srv := s.newHTTPServer()
	s.server = srv

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.port).Msg("Starting HTTP server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if active := s.jobManager.GetActiveJob(); active != nil && active.State == core.JobRunning {
		s.logger.Info().Str("jobId", active.JobID).Msg("Canceling running transfer")
		_ = s.jobManager.CancelJob(active.JobID)
	}
	return s.Wait(shutdownCtx)
}

// Wait blocks until every background transfer has returned or ctx is done
func (s *Server) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.transfers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for transfers: %w", ctx.Err())
	}
}

// loggingMiddleware logs all requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	}
}

// corsMiddleware adds CORS headers for cross-origin requests
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// EmitJobUpdate implements core.JobEventEmitter to broadcast events to SSE clients
func (s *Server) EmitJobUpdate(event core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			s.logger.Warn().Str("jobId", event.JobID).Msg("SSE client slow, skipping event")
		}
	}
}

// addSSEClient registers a new SSE client
func (s *Server) addSSEClient(ch chan core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()
	s.sseClients[ch] = struct{}{}
	s.logger.Debug().Int("total", len(s.sseClients)).Msg("SSE client connected")
}

// removeSSEClient unregisters an SSE client
func (s *Server) removeSSEClient(ch chan core.JobUpdateEvent) {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()
	delete(s.sseClients, ch)
	close(ch)
	s.logger.Debug().Int("total", len(s.sseClients)).Msg("SSE client disconnected")
}

func (s *Server) sseClientCount() int {
	s.sseClientsMu.Lock()
	defer s.sseClientsMu.Unlock()
	return len(s.sseClients)
}

// Helper functions for responses

// writeJSON writes a successful response. An informational err becomes the notice.
func (s *Server) writeJSON(c *gin.Context, status int, data interface{}, err error) {
	resp := APIResponse{
		Success: true,
		Data:    data,
	}
	if err != nil {
		resp.Notice = err.Error()
	}
	c.JSON(status, resp)
}

func (s *Server) writeError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
	})
}

// writeFailure maps a repository error to a status code
func (s *Server) writeFailure(c *gin.Context, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	s.writeError(c, status, code, err.Error())
}

func classify(err error) (int, string) {
	var remote *core.RemoteError
	var parseErr *core.ParseError
	switch {
	case errors.Is(err, core.ErrNoDevice):
		return http.StatusBadRequest, "no_device"
	case errors.Is(err, core.ErrInvalidName):
		return http.StatusBadRequest, "invalid_name"
	case errors.Is(err, core.ErrNotOpenable):
		return http.StatusBadRequest, "not_openable"
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "parse_error"
	case errors.As(err, &remote):
		return http.StatusBadGateway, "remote_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
