package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ADBExplorer/internal/core"
	"ADBExplorer/pkg/adb"
	"ADBExplorer/pkg/parser"
)

// DeviceRepository lists devices and manages TCP/IP connections.
// It does not own device selection.
type DeviceRepository struct {
	client *adb.Client
	logger zerolog.Logger
}

// NewDeviceRepository creates a DeviceRepository
func NewDeviceRepository(client *adb.Client, logger zerolog.Logger) *DeviceRepository {
	return &DeviceRepository{
		client: client,
		logger: logger.With().Str("component", "devices").Logger(),
	}
}

// Devices returns the devices known to the adb server
func (r *DeviceRepository) Devices(ctx context.Context) ([]core.Device, error) {
	res, err := r.client.Devices(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Successful() {
		return []core.Device{}, remoteError("devices", res)
	}

	devices := parser.ParseDevices(res.Stdout)
	r.logger.Debug().Int("count", len(devices)).Msg("Devices")
	return devices, notice("devices", res)
}

// Find returns the device with the given ID
func (r *DeviceRepository) Find(ctx context.Context, id string) (*core.Device, error) {
	devices, err := r.Devices(ctx)
	if core.IsFatal(err) {
		return nil, err
	}
	for _, d := range devices {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("device %q not found", id)
}

// Connect connects to a device over TCP/IP. An empty id is a no-op.
// adb reports connection failures in its output, which is returned verbatim.
func (r *DeviceRepository) Connect(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", nil
	}

	r.logger.Info().Str("address", id).Msg("Connect")
	res, err := r.client.Connect(ctx, id)
	if err != nil {
		return "", err
	}
	if !res.Successful() {
		return "", remoteError("connect", res)
	}
	return strings.TrimSpace(res.Stdout), notice("connect", res)
}

// Disconnect disconnects every TCP/IP device
func (r *DeviceRepository) Disconnect(ctx context.Context) (string, error) {
	r.logger.Info().Msg("Disconnect")
	res, err := r.client.Disconnect(ctx)
	if err != nil {
		return "", err
	}
	if !res.Successful() {
		return "", remoteError("disconnect", res)
	}
	return strings.TrimSpace(res.Stdout), notice("disconnect", res)
}
