package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/transfer"
)

var _ transfer.ProgressSink = (*transferJob)(nil)

// transferJob forwards adb progress to the job manager
type transferJob struct {
	id  string
	ctx context.Context
	jm  *core.JobManager
}

func (j *transferJob) Progress(message string, percent int) {
	j.jm.UpdateProgress(j.id, message, percent)
}

// startTransfer registers a job and runs fn in the background.
// The device is checked here so a request without one fails synchronously.
func (s *Server) startTransfer(c *gin.Context, jobType, message string, params map[string]string, fn func(*transferJob) (string, error)) {
	device := s.session.Device()
	if device == nil {
		s.writeFailure(c, core.ErrNoDevice)
		return
	}

	jobID, jobCtx, err := s.jobManager.StartJob(s.baseCtx, jobType, device.ID, message, params)
	if err != nil {
		s.writeError(c, http.StatusConflict, "job_running", err.Error())
		return
	}

	job := &transferJob{id: jobID, ctx: jobCtx, jm: s.jobManager}
	s.transfers.Add(1)
	go func() {
		defer s.transfers.Done()
		s.runTransfer(job, fn)
	}()

	s.writeJSON(c, http.StatusAccepted, gin.H{
		"jobId":   jobID,
		"message": message,
	}, nil)
}

func (s *Server) runTransfer(job *transferJob, fn func(*transferJob) (string, error)) {
	out, err := fn(job)
	for _, line := range strings.Split(out, "\n") {
		if line != "" {
			s.jobManager.EmitLogLine(job.id, line)
		}
	}

	if err != nil {
		s.logger.Warn().Err(err).Str("jobId", job.id).Msg("transfer failed")
		s.jobManager.FailJob(job.id, err, out)
		return
	}
	s.jobManager.CompleteJob(job.id, lastLine(out))
}

// lastLine is adb's summary, e.g. "1 file pulled, 0 skipped."
func lastLine(out string) string {
	out = strings.TrimRight(out, "\n")
	if i := strings.LastIndex(out, "\n"); i >= 0 {
		return out[i+1:]
	}
	return out
}
