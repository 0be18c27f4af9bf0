package parser

import (
	"strings"

	"ADBExplorer/internal/core"
)

// ParseDevices parses the output of `adb devices [-l]`:
//
//	* daemon not running; starting now at tcp:5037
//	List of devices attached
//	ABC123         device usb:1-1 product:redfin model:Pixel_5 device:redfin transport_id:1
//	10.0.0.7:5555  offline
func ParseDevices(raw string) []core.Device {
	devices := make([]core.Device, 0)
	headerSeen := false

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "* ") {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}

		fields := strings.Fields(line)
		d := core.Device{ID: fields[0]}
		if len(fields) > 1 {
			d.State = fields[1]
		}
		for _, field := range fields[min(2, len(fields)):] {
			key, value, found := strings.Cut(field, ":")
			if !found {
				continue
			}
			if d.Properties == nil {
				d.Properties = make(map[string]string)
			}
			d.Properties[key] = value
		}
		if model := d.Properties["model"]; model != "" {
			d.Name = strings.ReplaceAll(model, "_", " ")
		}
		devices = append(devices, d)
	}
	return devices
}
