// Package api provides an HTTP API adapter for ADBExplorer.
// This adapter exposes REST endpoints and SSE event streaming for remote control.
package api

import (
	"context"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/transfer"
)

// FileService is the file repository as seen by the HTTP layer
type FileService interface {
	Stat(ctx context.Context, path string) (*core.File, error)
	List(ctx context.Context) ([]core.File, error)
	Rename(ctx context.Context, file core.File, newName string) (string, error)
	Open(ctx context.Context, file core.File) (string, error)
	Delete(ctx context.Context, file core.File) (string, error)
	MakeDirectory(ctx context.Context, name string) (string, error)
	Download(ctx context.Context, sink transfer.ProgressSink, source string) (string, error)
	DownloadTo(ctx context.Context, sink transfer.ProgressSink, source, destination string) (string, error)
	Upload(ctx context.Context, sink transfer.ProgressSink, source string) (string, error)
}

// DeviceService is the device repository as seen by the HTTP layer
type DeviceService interface {
	Devices(ctx context.Context) ([]core.Device, error)
	Find(ctx context.Context, id string) (*core.Device, error)
	Connect(ctx context.Context, id string) (string, error)
	Disconnect(ctx context.Context) (string, error)
}

// APIResponse wraps all API responses with a consistent structure
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Notice  string      `json:"notice,omitempty"` // stderr of a command that otherwise succeeded
	Error   *APIError   `json:"error,omitempty"`
}

// APIError represents an API error
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JobListResponse contains a list of jobs
type JobListResponse struct {
	Jobs      []*core.JobSnapshot `json:"jobs"`
	ActiveJob string              `json:"activeJob,omitempty"`
}

// SessionResponse is the selected device and current directory
type SessionResponse struct {
	Device    *core.Device `json:"device"`
	Directory string       `json:"directory"`
}

// SessionRequest changes the selection; empty fields are left as they are
type SessionRequest struct {
	DeviceID  string `json:"deviceId"`
	Directory string `json:"directory"`
}

// ListResponse is the content of the current directory
type ListResponse struct {
	Directory string      `json:"directory"`
	Files     []core.File `json:"files"`
}

// ConnectRequest is the body of POST /api/devices/connect
type ConnectRequest struct {
	Address string `json:"address" binding:"required"`
}

// RenameRequest is the body of POST /api/files/rename
type RenameRequest struct {
	Path string `json:"path" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// MkdirRequest is the body of POST /api/files/mkdir
type MkdirRequest struct {
	Name string `json:"name" binding:"required"`
}

// DownloadRequest starts a background pull.
// Without a destination the file goes to the per-device downloads directory.
type DownloadRequest struct {
	Source      string `json:"source" binding:"required"`
	Destination string `json:"destination"`
}

// UploadRequest starts a background push into the current directory
type UploadRequest struct {
	Source string `json:"source" binding:"required"`
}
