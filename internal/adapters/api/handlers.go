package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/adb"
)

// handleHealth returns server health status
func (s *Server) handleHealth(c *gin.Context) {
	s.writeJSON(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "adbexplorer-api",
	}, nil)
}

// handleDevices returns the devices known to adb
func (s *Server) handleDevices(c *gin.Context) {
	devices, err := s.devices.Devices(c.Request.Context())
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, devices, err)
}

// handleConnect connects to a device over TCP/IP
func (s *Server) handleConnect(c *gin.Context) {
	var req ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	out, err := s.devices.Connect(c.Request.Context(), req.Address)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, gin.H{"message": out}, err)
}

// handleDisconnect disconnects every TCP/IP device and clears a stale selection
func (s *Server) handleDisconnect(c *gin.Context) {
	out, err := s.devices.Disconnect(c.Request.Context())
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	if d := s.session.Device(); d != nil && d.Network() {
		s.session.SetDevice(nil)
	}
	s.writeJSON(c, http.StatusOK, gin.H{"message": out}, err)
}

// handleGetSession returns the current selection
func (s *Server) handleGetSession(c *gin.Context) {
	s.writeJSON(c, http.StatusOK, SessionResponse{
		Device:    s.session.Device(),
		Directory: s.session.Directory(),
	}, nil)
}

// handlePutSession selects a device and/or changes directory.
// The directory is resolved against the current one.
func (s *Server) handlePutSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if req.DeviceID != "" {
		device, err := s.devices.Find(c.Request.Context(), req.DeviceID)
		if err != nil {
			s.writeError(c, http.StatusNotFound, "not_found", err.Error())
			return
		}
		if !device.Online() {
			s.writeError(c, http.StatusConflict, "device_unavailable", fmt.Sprintf("device %s is %s", device.ID, device.State))
			return
		}
		s.session.SetDevice(device)
	}

	if req.Directory != "" {
		dir := adb.ResolvePath(s.session.Directory(), req.Directory)
		file, err := s.files.Stat(c.Request.Context(), dir)
		if core.IsFatal(err) {
			s.writeFailure(c, err)
			return
		}
		if !file.IsDir() && file.LinkType != core.FileTypeDirectory {
			s.writeError(c, http.StatusBadRequest, "not_a_directory", file.String()+" is not a directory")
			return
		}
		s.session.SetDirectory(file.Path)
	}

	s.handleGetSession(c)
}

// handleList lists the current directory
func (s *Server) handleList(c *gin.Context) {
	files, err := s.files.List(c.Request.Context())
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, ListResponse{
		Directory: s.session.Directory(),
		Files:     files,
	}, err)
}

// stat resolves the ?path= query parameter, writing the failure if any
func (s *Server) stat(c *gin.Context) (*core.File, bool) {
	path := c.Query("path")
	if path == "" {
		s.writeError(c, http.StatusBadRequest, "invalid_request", "path is required")
		return nil, false
	}
	file, err := s.files.Stat(c.Request.Context(), path)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return nil, false
	}
	return file, true
}

// handleStat returns one entry
func (s *Server) handleStat(c *gin.Context) {
	if file, ok := s.stat(c); ok {
		s.writeJSON(c, http.StatusOK, file, nil)
	}
}

// handleContent returns the text content of a file
func (s *Server) handleContent(c *gin.Context) {
	file, ok := s.stat(c)
	if !ok {
		return
	}
	content, err := s.files.Open(c.Request.Context(), *file)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	if c.DefaultQuery("raw", "false") == "true" {
		c.String(http.StatusOK, content)
		return
	}
	s.writeJSON(c, http.StatusOK, gin.H{"path": file.Path, "content": content}, err)
}

// handleRename renames an entry within its directory
func (s *Server) handleRename(c *gin.Context) {
	var req RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.ContainsAny(req.Name, `/\`) {
		s.writeFailure(c, core.ErrInvalidName)
		return
	}
	file, err := s.files.Stat(c.Request.Context(), req.Path)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	newPath, err := s.files.Rename(c.Request.Context(), *file, req.Name)
	if err != nil {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, gin.H{"path": newPath}, nil)
}

// handleMkdir creates a directory in the current directory
func (s *Server) handleMkdir(c *gin.Context) {
	var req MkdirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.ContainsAny(req.Name, `/\`) {
		s.writeFailure(c, core.ErrInvalidName)
		return
	}
	_, err := s.files.MakeDirectory(c.Request.Context(), req.Name)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusCreated, gin.H{"path": adb.EnsureTrailingSlash(s.session.Directory()) + req.Name}, err)
}

// handleDelete removes a file or a directory tree
func (s *Server) handleDelete(c *gin.Context) {
	file, ok := s.stat(c)
	if !ok {
		return
	}
	msg, err := s.files.Delete(c.Request.Context(), *file)
	if core.IsFatal(err) {
		s.writeFailure(c, err)
		return
	}
	s.writeJSON(c, http.StatusOK, gin.H{"message": msg}, err)
}

// handleDownload starts a background pull
func (s *Server) handleDownload(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		s.writeError(c, http.StatusBadRequest, "invalid_request", "source must not be blank")
		return
	}
	source := adb.ResolvePath(s.session.Directory(), req.Source)
	params := map[string]string{"source": source}
	if req.Destination != "" {
		params["destination"] = req.Destination
	}

	s.startTransfer(c, core.JobDownload, "Pulling "+source, params, func(job *transferJob) (string, error) {
		if req.Destination == "" {
			return s.files.Download(job.ctx, job, source)
		}
		return s.files.DownloadTo(job.ctx, job, source, req.Destination)
	})
}

// handleUpload starts a background push into the current directory
func (s *Server) handleUpload(c *gin.Context) {
	var req UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Source) == "" {
		s.writeError(c, http.StatusBadRequest, "invalid_request", "source must not be blank")
		return
	}
	params := map[string]string{"source": req.Source, "destination": s.session.Directory()}

	s.startTransfer(c, core.JobUpload, "Pushing "+req.Source, params, func(job *transferJob) (string, error) {
		return s.files.Upload(job.ctx, job, req.Source)
	})
}

// handleJobs returns all jobs
func (s *Server) handleJobs(c *gin.Context) {
	jobs := s.jobManager.ListJobs()
	activeJob := s.jobManager.GetActiveJob()

	activeJobID := ""
	if activeJob != nil {
		activeJobID = activeJob.JobID
	}

	s.writeJSON(c, http.StatusOK, JobListResponse{
		Jobs:      jobs,
		ActiveJob: activeJobID,
	}, nil)
}

// handleActiveJob returns the currently active job
func (s *Server) handleActiveJob(c *gin.Context) {
	job := s.jobManager.GetActiveJob()
	if job == nil {
		s.writeJSON(c, http.StatusOK, nil, nil)
		return
	}
	s.writeJSON(c, http.StatusOK, job, nil)
}

// handleGetJob returns one job
func (s *Server) handleGetJob(c *gin.Context) {
	job, err := s.jobManager.GetJob(c.Param("id"))
	if err != nil {
		s.writeError(c, http.StatusNotFound, "not_found", err.Error())
		return
	}
	s.writeJSON(c, http.StatusOK, job, nil)
}

// handleCancelJob handles DELETE /api/jobs/{id} and POST /api/jobs/{id}/cancel
func (s *Server) handleCancelJob(c *gin.Context) {
	jobID := c.Param("id")
	if err := s.jobManager.CancelJob(jobID); err != nil {
		s.writeError(c, http.StatusBadRequest, "cancel_failed", err.Error())
		return
	}
	s.writeJSON(c, http.StatusOK, gin.H{
		"message": fmt.Sprintf("Job %s cancellation requested", jobID),
	}, nil)
}
