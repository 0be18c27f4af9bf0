package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"ADBExplorer/internal/adapters/api"
	"ADBExplorer/internal/core"
	"ADBExplorer/internal/logging"
	"ADBExplorer/internal/metrics"
	"ADBExplorer/internal/repository"
	"ADBExplorer/pkg/adb"
	"ADBExplorer/pkg/state"
)

// jobLogEmitter writes finished jobs to the server log
type jobLogEmitter struct {
	logger zerolog.Logger
}

func (e jobLogEmitter) EmitJobUpdate(event core.JobUpdateEvent) {
	switch event.State {
	case core.JobSucceeded:
		e.logger.Info().Str("jobId", event.JobID).Str("type", event.Type).Msg(event.Message)
	case core.JobFailed:
		ev := e.logger.Warn().Str("jobId", event.JobID).Str("type", event.Type)
		if event.Error != nil {
			ev = ev.Str("error", event.Error.Message)
		}
		ev.Msg("job failed")
	case core.JobCanceled:
		e.logger.Info().Str("jobId", event.JobID).Msg("job canceled")
	}
}

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve the HTTP API with server-sent events for transfer jobs.

The server starts from the device and directory selected on the command line
and keeps its own selection afterwards. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("port") {
				port = cfg.APIPort
			}

			session, err := initialSession()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			m := metrics.New(reg)

			runner := newRunner()
			runner.Observer = m
			client := adb.NewClient(runner)
			files := repository.NewFileRepository(client, session, cfg.DownloadsDir, logger, repository.WithTransferObserver(m))
			devices := repository.NewDeviceRepository(client, logger)

			jobs := core.NewJobManager(jobLogEmitter{logger: logging.Component(logger, "jobs")})
			server := api.NewServer(port, logger, jobs, files, devices, session,
				api.WithMetrics(m),
				api.WithBaseContext(cmd.Context()),
			)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default ADBX_API_PORT)")
	return cmd
}

// initialSession seeds the server's selection from the persisted CLI session
func initialSession() (*core.MemorySession, error) {
	sm, err := state.NewStateManager(cfg.StateFile(), core.DefaultDirectory)
	if err != nil {
		return nil, err
	}
	defer sm.Close()

	session := core.NewMemorySession(sm.Directory())
	session.SetDevice(sm.Device())
	return session, nil
}
