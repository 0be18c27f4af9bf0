package core

import "strings"

// Device states as reported by `adb devices`
const (
	DeviceStateDevice       = "device"
	DeviceStateOffline      = "offline"
	DeviceStateUnauthorized = "unauthorized"
)

// Device is one reachable device from the adb device list
type Device struct {
	ID         string            `json:"id"`
	State      string            `json:"state"`
	Name       string            `json:"name"`
	Properties map[string]string `json:"properties,omitempty"` // product, model, transport_id, ...
}

// Online reports whether the device accepts shell commands
func (d Device) Online() bool {
	return d.State == DeviceStateDevice
}

// DisplayName returns the model name when known, otherwise the ID
func (d Device) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.ID
}

// Network reports whether the device is connected over TCP/IP (serial is host:port)
func (d Device) Network() bool {
	return strings.Contains(d.ID, ":")
}
