package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/adb"
	"ADBExplorer/pkg/parser"
	"ADBExplorer/pkg/transfer"
)

// FileRepository implements file operations against the session's device and directory.
// Results follow io.Reader semantics: a value may come with a non-nil error when the
// command succeeded but wrote to stderr (see core.IsFatal).
type FileRepository struct {
	client       *adb.Client
	session      core.Session
	downloadsDir string
	observer     TransferObserver
	logger       zerolog.Logger
}

// NewFileRepository creates a FileRepository.
// downloadsDir is the root under which Download stores files, one folder per device.
func NewFileRepository(client *adb.Client, session core.Session, downloadsDir string, logger zerolog.Logger, opts ...Option) *FileRepository {
	r := &FileRepository{
		client:       client,
		session:      session,
		downloadsDir: downloadsDir,
		logger:       logger.With().Str("component", "repository").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stat returns a single entry. For symlinks the target type is probed with a
// second listing of "<path>/"; the filesystem may change between the two calls.
func (r *FileRepository) Stat(ctx context.Context, path string) (*core.File, error) {
	device := r.session.Device()
	if device == nil {
		return nil, core.ErrNoDevice
	}

	path = adb.ResolvePath(r.session.Directory(), path)
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	r.logger.Debug().Str("device", device.ID).Str("path", path).Msg("Stat")

	res, err := r.client.Shell(ctx, device.ID, shellArgs(adb.LsListDirs, adb.EscapePath(path))...)
	if err != nil {
		return nil, err
	}
	if !res.Successful() {
		return nil, remoteError("stat", res)
	}

	file, ok := parser.ParseEntry(strings.TrimSpace(res.Stdout))
	if !ok {
		return nil, &core.ParseError{Raw: res.Stdout}
	}

	if file.Type == core.FileTypeLink {
		probe, err := r.client.Shell(ctx, device.ID, shellArgs(adb.LsListDirs, adb.EscapePath(path)+"/")...)
		if err != nil {
			return nil, err
		}
		// "Not a directory" arrives on stderr with a non-zero exit; both are expected here
		file.LinkType = parser.ResolveLinkType(probe.Stdout + probe.Stderr)
	}

	file.Path = path
	return file, notice("stat", res)
}

// List returns the entries of the current directory in listing order.
// An empty directory is not an error.
func (r *FileRepository) List(ctx context.Context) ([]core.File, error) {
	device := r.session.Device()
	if device == nil {
		return nil, core.ErrNoDevice
	}

	dir := r.session.Directory()
	if dir == "" {
		dir = "/"
	}
	r.logger.Debug().Str("device", device.ID).Str("dir", dir).Msg("List")

	res, err := r.client.Shell(ctx, device.ID, shellArgs(adb.LsAllList, adb.EscapePath(dir))...)
	if err != nil {
		return nil, err
	}
	listErr := listingError("list", res)
	if core.IsFatal(listErr) {
		return []core.File{}, listErr
	}
	if res.Stdout == "" {
		return []core.File{}, listErr
	}

	dirs, err := r.client.Shell(ctx, device.ID, shellArgs(adb.LsAllDirs, adb.EscapePath(dir)+"*/")...)
	if err != nil {
		return nil, err
	}
	if dirsErr := listingError("list", dirs); core.IsFatal(dirsErr) {
		return []core.File{}, dirsErr
	}

	files := parser.ParseListing(res.Stdout, parser.ParseDirMarkers(dirs.Stdout), dir)
	r.logger.Debug().Str("dir", dir).Int("entries", len(files)).Msg("List: done")
	return files, listErr
}

// Rename renames file within its parent directory and returns the new path
func (r *FileRepository) Rename(ctx context.Context, file core.File, newName string) (string, error) {
	if strings.ContainsAny(newName, `/\`) || newName == "" {
		return "", core.ErrInvalidName
	}
	device := r.session.Device()
	if device == nil {
		return "", core.ErrNoDevice
	}

	target := file.Location() + newName
	r.logger.Info().Str("device", device.ID).Str("from", file.Path).Str("to", target).Msg("Rename")

	res, err := r.client.Shell(ctx, device.ID, adb.CommandMv, adb.EscapePath(file.Path), adb.EscapePath(target))
	if err != nil {
		return "", err
	}
	// mv is silent on success; any output describes a problem
	if !res.Successful() || strings.TrimSpace(res.Text()) != "" {
		return "", remoteError("rename", res)
	}
	return target, nil
}

// Open returns the contents of a file. Directories yield core.ErrNotOpenable.
func (r *FileRepository) Open(ctx context.Context, file core.File) (string, error) {
	if file.IsDir() {
		return "", fmt.Errorf("can't open %s: %w", file.Path, core.ErrNotOpenable)
	}
	device := r.session.Device()
	if device == nil {
		return "", core.ErrNoDevice
	}

	res, err := r.client.Shell(ctx, device.ID, adb.CommandCat, adb.EscapePath(file.Path))
	if err != nil {
		return "", err
	}
	if !res.Successful() {
		return "", remoteError("open", res)
	}
	return res.Stdout, notice("open", res)
}

// Delete removes a file, or a directory recursively.
// rm prints nothing on success, so any output means the entry is still there.
func (r *FileRepository) Delete(ctx context.Context, file core.File) (string, error) {
	device := r.session.Device()
	if device == nil {
		return "", core.ErrNoDevice
	}

	args := []string{adb.CommandRm, adb.EscapePath(file.Path)}
	kind := "File"
	if file.IsDir() {
		args = shellArgs(adb.RmDirForce, adb.EscapePath(file.Path))
		kind = "Folder"
	}
	r.logger.Info().Str("device", device.ID).Str("path", file.Path).Msg("Delete")

	res, err := r.client.Shell(ctx, device.ID, args...)
	if err != nil {
		return "", err
	}
	if !res.Successful() || res.Stdout != "" {
		return "", remoteError("delete", res)
	}
	return fmt.Sprintf("%s '%s' has been deleted", kind, file.Path), notice("delete", res)
}

// MakeDirectory creates name inside the current directory
func (r *FileRepository) MakeDirectory(ctx context.Context, name string) (string, error) {
	device := r.session.Device()
	if device == nil {
		return "", core.ErrNoDevice
	}

	target := adb.EnsureTrailingSlash(r.session.Directory()) + name
	r.logger.Info().Str("device", device.ID).Str("path", target).Msg("MakeDirectory")

	res, err := r.client.Shell(ctx, device.ID, adb.CommandMkdir, adb.EscapePath(target))
	if err != nil {
		return "", err
	}
	if !res.Successful() {
		return "", remoteError("mkdir", res)
	}
	return res.Stdout, notice("mkdir", res)
}

// DeviceDownloadsDir returns the default local destination for a device
func (r *FileRepository) DeviceDownloadsDir(device core.Device) string {
	return filepath.Join(r.downloadsDir, strings.ReplaceAll(device.ID, ":", "_"))
}

// Download pulls source into the device's default downloads directory
func (r *FileRepository) Download(ctx context.Context, sink transfer.ProgressSink, source string) (string, error) {
	device := r.session.Device()
	if device == nil || source == "" {
		return "", nil
	}

	destination := r.DeviceDownloadsDir(*device)
	if err := os.MkdirAll(destination, 0755); err != nil {
		return "", fmt.Errorf("failed to create downloads directory: %w", err)
	}
	return r.DownloadTo(ctx, sink, source, destination)
}

// DownloadTo pulls source into the local destination directory.
// A missing device, source or destination is a no-op.
func (r *FileRepository) DownloadTo(ctx context.Context, sink transfer.ProgressSink, source, destination string) (string, error) {
	device := r.session.Device()
	if device == nil || source == "" || destination == "" {
		return "", nil
	}

	r.logger.Info().Str("device", device.ID).Str("source", source).Str("destination", destination).Msg("DownloadTo")
	tracker := transfer.NewTracker(sink)
	res, err := r.client.Pull(ctx, device.ID, source, destination, tracker.Consume)
	return r.finishTransfer(DirectionDownload, tracker, res, err)
}

// Upload pushes the local source into the current directory.
// A missing device, directory or source is a no-op.
func (r *FileRepository) Upload(ctx context.Context, sink transfer.ProgressSink, source string) (string, error) {
	device := r.session.Device()
	dir := r.session.Directory()
	if device == nil || dir == "" || source == "" {
		return "", nil
	}

	r.logger.Info().Str("device", device.ID).Str("source", source).Str("destination", dir).Msg("Upload")
	tracker := transfer.NewTracker(sink)
	res, err := r.client.Push(ctx, device.ID, source, dir, tracker.Consume)
	return r.finishTransfer(DirectionUpload, tracker, res, err)
}

// finishTransfer keeps the diagnostics adb printed, whatever the outcome
func (r *FileRepository) finishTransfer(direction string, tracker *transfer.Tracker, res adb.Result, err error) (string, error) {
	ok := err == nil && res.Successful()
	if r.observer != nil {
		r.observer.ObserveTransfer(direction, ok)
	}

	if err != nil {
		r.logger.Error().Err(err).Str("direction", direction).Msg("transfer interrupted")
		return tracker.Text(), err
	}
	if !res.Successful() {
		text := tracker.Text()
		if text == "" {
			text = strings.TrimRight(res.Stderr, "\r\n")
		}
		r.logger.Warn().Str("direction", direction).Int("exitCode", res.ExitCode).Msg("transfer failed")
		return "", &core.RemoteError{Op: direction, ExitCode: res.ExitCode, Text: text}
	}
	return tracker.Text(), nil
}
