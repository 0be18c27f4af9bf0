package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// JobState represents the lifecycle state of a transfer job
type JobState string

const (
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
	JobCanceled  JobState = "canceled"
)

// Job types
const (
	JobDownload = "transfer.download"
	JobUpload   = "transfer.upload"
)

// JobProgress is the last progress line reported by adb for the job
type JobProgress struct {
	Percent int    `json:"percent"`
	Current string `json:"current"` // file currently being transferred
}

// JobError contains error information when a job fails
type JobError struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// JobSnapshot is the authoritative state of a transfer job at a point in time
type JobSnapshot struct {
	JobID     string            `json:"jobId"`
	Seq       int64             `json:"seq"` // Monotonically increasing sequence number
	Type      string            `json:"type"`
	DeviceID  string            `json:"deviceId"`
	State     JobState          `json:"state"`
	Params    map[string]string `json:"params,omitempty"`
	Progress  JobProgress       `json:"progress"`
	Message   string            `json:"message"`
	Error     *JobError         `json:"error,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

// JobUpdateEvent is emitted when job state changes
type JobUpdateEvent struct {
	JobID    string      `json:"jobId"`
	Seq      int64       `json:"seq"`
	Type     string      `json:"type"`
	State    JobState    `json:"state"`
	Progress JobProgress `json:"progress"`
	Message  string      `json:"message"`
	LogLine  string      `json:"logLine,omitempty"`
	Error    *JobError   `json:"error,omitempty"`
}

// JobEventEmitter is the interface adapters implement to receive job events
type JobEventEmitter interface {
	EmitJobUpdate(event JobUpdateEvent)
}

// ThrottleConfig controls how often progress updates are emitted
type ThrottleConfig struct {
	MinInterval time.Duration
}

// DefaultThrottleConfig returns ~10 progress events per second
func DefaultThrottleConfig() ThrottleConfig {
	return ThrottleConfig{
		MinInterval: 100 * time.Millisecond,
	}
}

// JobManager tracks background transfer jobs.
// Only one transfer runs at a time: adb serialises transfers per device anyway
// and interleaved progress lines would be unreadable.
type JobManager struct {
	mu           sync.Mutex
	jobs         map[string]*JobSnapshot
	activeJob    string
	seqCounter   int64
	cancels      map[string]context.CancelFunc
	emitter      JobEventEmitter
	throttle     ThrottleConfig
	lastEmitTime map[string]time.Time
}

// NewJobManager creates a new JobManager with default throttling
func NewJobManager(emitter JobEventEmitter) *JobManager {
	return NewJobManagerWithThrottle(emitter, DefaultThrottleConfig())
}

// NewJobManagerWithThrottle creates a new JobManager with custom throttling
func NewJobManagerWithThrottle(emitter JobEventEmitter, throttle ThrottleConfig) *JobManager {
	return &JobManager{
		jobs:         make(map[string]*JobSnapshot),
		cancels:      make(map[string]context.CancelFunc),
		emitter:      emitter,
		throttle:     throttle,
		lastEmitTime: make(map[string]time.Time),
	}
}

// AddEmitter adds an additional emitter. Events are sent to all registered emitters.
func (jm *JobManager) AddEmitter(emitter JobEventEmitter) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.emitter == nil {
		jm.emitter = emitter
		return
	}

	if multi, ok := jm.emitter.(*MultiEmitter); ok {
		multi.Add(emitter)
	} else {
		jm.emitter = &MultiEmitter{emitters: []JobEventEmitter{jm.emitter, emitter}}
	}
}

// MultiEmitter broadcasts events to multiple emitters
type MultiEmitter struct {
	mu       sync.Mutex
	emitters []JobEventEmitter
}

// Add adds an emitter to the multi-emitter
func (m *MultiEmitter) Add(emitter JobEventEmitter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emitters = append(m.emitters, emitter)
}

// EmitJobUpdate broadcasts the event to all registered emitters
func (m *MultiEmitter) EmitJobUpdate(event JobUpdateEvent) {
	m.mu.Lock()
	emitters := make([]JobEventEmitter, len(m.emitters))
	copy(emitters, m.emitters)
	m.mu.Unlock()

	for _, e := range emitters {
		if e != nil {
			e.EmitJobUpdate(event)
		}
	}
}

// StartJob registers a new running job and returns its ID and a context
// that is cancelled by CancelJob.
func (jm *JobManager) StartJob(ctx context.Context, jobType, deviceID, message string, params map[string]string) (string, context.Context, error) {
	jm.mu.Lock()

	if jm.activeJob != "" {
		if active := jm.jobs[jm.activeJob]; active != nil {
			jm.mu.Unlock()
			if active.State == JobCanceled {
				return "", nil, fmt.Errorf("a canceled transfer is still stopping: %s (%s)", active.JobID, active.Type)
			}
			return "", nil, fmt.Errorf("a transfer is already running: %s (%s)", active.JobID, active.Type)
		}
	}

	jobID := uuid.NewString()
	jobCtx, cancel := context.WithCancel(ctx)

	now := time.Now()
	jm.jobs[jobID] = &JobSnapshot{
		JobID:     jobID,
		Type:      jobType,
		DeviceID:  deviceID,
		State:     JobRunning,
		Params:    params,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	}
	jm.cancels[jobID] = cancel
	jm.activeJob = jobID
	jm.mu.Unlock()

	jm.emitUpdate(jobID, "")

	return jobID, jobCtx, nil
}

// emitUpdate sends the current job state to the emitter
func (jm *JobManager) emitUpdate(jobID, logLine string) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if !exists {
		jm.mu.Unlock()
		return
	}

	jm.seqCounter++
	snapshot.Seq = jm.seqCounter

	event := JobUpdateEvent{
		JobID:    snapshot.JobID,
		Seq:      snapshot.Seq,
		Type:     snapshot.Type,
		State:    snapshot.State,
		Progress: snapshot.Progress,
		Message:  snapshot.Message,
		LogLine:  logLine,
		Error:    snapshot.Error,
	}

	emitter := jm.emitter
	jm.mu.Unlock()

	if emitter != nil {
		emitter.EmitJobUpdate(event)
	}
}

// UpdateProgress records a progress line. Events are throttled, state is not.
func (jm *JobManager) UpdateProgress(jobID, current string, percent int) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	if !exists || snapshot.State != JobRunning {
		jm.mu.Unlock()
		return
	}

	snapshot.Progress = JobProgress{Percent: percent, Current: current}
	snapshot.UpdatedAt = time.Now()

	now := time.Now()
	shouldEmit := now.Sub(jm.lastEmitTime[jobID]) >= jm.throttle.MinInterval
	if shouldEmit {
		jm.lastEmitTime[jobID] = now
	}
	jm.mu.Unlock()

	if shouldEmit {
		jm.emitUpdate(jobID, "")
	}
}

// EmitLogLine emits a diagnostic line for a job without changing its state
func (jm *JobManager) EmitLogLine(jobID, logLine string) {
	jm.emitUpdate(jobID, logLine)
}

// CompleteJob marks a job as succeeded
func (jm *JobManager) CompleteJob(jobID, message string) {
	jm.finish(jobID, func(s *JobSnapshot) {
		s.State = JobSucceeded
		s.Progress.Percent = 100
		if message != "" {
			s.Message = message
		}
	})
}

// FailJob marks a job as failed. details carries the adb diagnostics.
func (jm *JobManager) FailJob(jobID string, err error, details string) {
	jm.finish(jobID, func(s *JobSnapshot) {
		s.State = JobFailed
		s.Error = &JobError{
			Message: err.Error(),
			Details: details,
		}
	})
}

func (jm *JobManager) finish(jobID string, apply func(*JobSnapshot)) {
	jm.mu.Lock()
	snapshot, exists := jm.jobs[jobID]
	running := exists && snapshot.State == JobRunning
	if exists {
		// a canceled job keeps its state even if the adb process reports afterwards
		if running {
			apply(snapshot)
			snapshot.UpdatedAt = time.Now()
		}
		if jm.activeJob == jobID {
			jm.activeJob = ""
		}
		if cancel, ok := jm.cancels[jobID]; ok {
			cancel()
			delete(jm.cancels, jobID)
		}
		delete(jm.lastEmitTime, jobID)
	}
	jm.mu.Unlock()

	if running {
		jm.emitUpdate(jobID, "")
	}
}

// CancelJob cancels a running job. The adb process is killed through its context.
// The job keeps the transfer slot until its worker calls CompleteJob or FailJob,
// so no other transfer starts while the process is still exiting.
func (jm *JobManager) CancelJob(jobID string) error {
	jm.mu.Lock()
	cancel, cancelExists := jm.cancels[jobID]
	snapshot, snapshotExists := jm.jobs[jobID]
	if !cancelExists {
		jm.mu.Unlock()
		return fmt.Errorf("job not found or not cancellable: %s", jobID)
	}
	delete(jm.cancels, jobID)
	if snapshotExists {
		snapshot.State = JobCanceled
		snapshot.Message = "Transfer canceled by user"
		snapshot.UpdatedAt = time.Now()
	}
	jm.mu.Unlock()

	cancel()
	if snapshotExists {
		jm.emitUpdate(jobID, "")
	}
	return nil
}

// GetJob returns a copy of a specific job
func (jm *JobManager) GetJob(jobID string) (*JobSnapshot, error) {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	snapshot, exists := jm.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("job not found: %s", jobID)
	}

	copySnapshot := *snapshot
	return &copySnapshot, nil
}

// GetActiveJob returns the job holding the transfer slot, or nil if none.
// A canceled job holds it until its worker has returned.
func (jm *JobManager) GetActiveJob() *JobSnapshot {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	if jm.activeJob == "" {
		return nil
	}
	snapshot, exists := jm.jobs[jm.activeJob]
	if !exists {
		return nil
	}
	copySnapshot := *snapshot
	return &copySnapshot
}

// ListJobs returns all jobs, newest first
func (jm *JobManager) ListJobs() []*JobSnapshot {
	jm.mu.Lock()
	defer jm.mu.Unlock()

	list := make([]*JobSnapshot, 0, len(jm.jobs))
	for _, j := range jm.jobs {
		c := *j
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list
}
