package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ADBExplorer/internal/core"
)

func TestParseDevices(t *testing.T) {
	req := require.New(t)
	raw := "* daemon not running; starting now at tcp:5037\n" +
		"* daemon started successfully\n" +
		"List of devices attached\n" +
		"ABC123         device usb:1-1 product:redfin model:Pixel_5 device:redfin transport_id:1\n" +
		"10.0.0.7:5555  offline\n" +
		"emulator-5554  unauthorized transport_id:3\n" +
		"\n"

	devices := ParseDevices(raw)
	req.Len(devices, 3)

	req.Equal("ABC123", devices[0].ID)
	req.Equal(core.DeviceStateDevice, devices[0].State)
	req.Equal("Pixel 5", devices[0].Name)
	req.Equal("redfin", devices[0].Properties["product"])
	req.Equal("1", devices[0].Properties["transport_id"])
	req.True(devices[0].Online())

	req.Equal("10.0.0.7:5555", devices[1].ID)
	req.Equal(core.DeviceStateOffline, devices[1].State)
	req.Nil(devices[1].Properties)
	req.False(devices[1].Online())

	req.Equal(core.DeviceStateUnauthorized, devices[2].State)
}

func TestParseDevices_NoDevices(t *testing.T) {
	for _, raw := range []string{"", "List of devices attached\n", "List of devices attached\n\n"} {
		devices := ParseDevices(raw)
		require.NotNil(t, devices)
		require.Empty(t, devices)
	}
}
