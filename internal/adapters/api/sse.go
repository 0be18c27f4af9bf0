package api

import (
	"github.com/gin-gonic/gin"

	"ADBExplorer/internal/core"
)

// handleSSE handles Server-Sent Events for real-time updates
// Clients connect to /api/events and receive job updates as they happen
func (s *Server) handleSSE(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	clientChan := make(chan core.JobUpdateEvent, 100)
	s.addSSEClient(clientChan)
	defer s.removeSSEClient(clientChan)
	if s.metrics != nil {
		defer s.metrics.SSEConnected()()
	}

	c.SSEvent("connected", gin.H{"message": "Connected to ADBExplorer event stream"})
	c.Writer.Flush()

	// Send current job state if there's an active job
	if activeJob := s.jobManager.GetActiveJob(); activeJob != nil {
		c.SSEvent("job:snapshot", activeJob)
		c.Writer.Flush()
	}

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case event, ok := <-clientChan:
			if !ok {
				return
			}

			eventType := "job:update"
			switch event.State {
			case core.JobSucceeded:
				eventType = "job:completed"
			case core.JobFailed:
				eventType = "job:failed"
			case core.JobCanceled:
				eventType = "job:canceled"
			}

			// log lines do not change the job state; they get their own event
			if event.LogLine != "" {
				c.SSEvent("job:log", gin.H{
					"jobId":   event.JobID,
					"logLine": event.LogLine,
					"seq":     event.Seq,
				})
				c.Writer.Flush()
				continue
			}

			c.SSEvent(eventType, event)
			c.Writer.Flush()
		}
	}
}
