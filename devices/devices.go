// Package devices turns raw device enumerations from the DSP engine into
// categorized, ranked records and a usable default configuration.
//
// Everything here is a pure function over already-parsed values. A missing or
// unusable device is never an error; it is a nil/empty result the caller
// surfaces as a "no hardware found" state.
package devices

import (
	"encoding/json"
	"fmt"
)

// DeviceInfo is one entry of a backend's device enumeration: the
// backend-specific identifier plus an optional human-readable description.
type DeviceInfo struct {
	Device string  `json:"device"`
	Name   *string `json:"name"`
}

// NewDeviceInfo builds a DeviceInfo from an [id, description] pair. An empty
// description becomes a nil Name.
func NewDeviceInfo(device, name string) DeviceInfo {
	info := DeviceInfo{Device: device}
	if name != "" {
		info.Name = &name
	}
	return info
}

// DisplayName returns the description when present, falling back to the
// device identifier.
func (d DeviceInfo) DisplayName() string {
	if d.Name != nil && *d.Name != "" {
		return *d.Name
	}
	return d.Device
}

// DeviceInfos is a slice of DeviceInfo with filter helpers.
type DeviceInfos []DeviceInfo

// Hardware returns only devices classified as real hardware for the backend.
func (devices DeviceInfos) Hardware(backend string) DeviceInfos {
	var hw DeviceInfos
	for _, device := range devices {
		if Classify(device, backend).IsHardware {
			hw = append(hw, device)
		}
	}
	return hw
}

// Virtual returns only devices classified as virtual for the backend.
func (devices DeviceInfos) Virtual(backend string) DeviceInfos {
	return devices.ByCategory(backend, CategoryVirtual)
}

// ByCategory returns only devices of the given category for the backend.
func (devices DeviceInfos) ByCategory(backend string, category Category) DeviceInfos {
	var matched DeviceInfos
	for _, device := range devices {
		if Classify(device, backend).Category == category {
			matched = append(matched, device)
		}
	}
	return matched
}

// IDs returns the device identifiers in enumeration order.
func (devices DeviceInfos) IDs() []string {
	ids := make([]string, len(devices))
	for i, device := range devices {
		ids[i] = device.Device
	}
	return ids
}

// ParseEnumeration decodes the engine's enumeration reply, a JSON array of
// [deviceId, description] pairs where the description may be null.
func ParseEnumeration(data []byte) (DeviceInfos, error) {
	var pairs [][]*string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("devices: parsing enumeration: %w", err)
	}

	infos := make(DeviceInfos, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) == 0 || pair[0] == nil {
			return nil, fmt.Errorf("devices: enumeration entry %d has no device id", i)
		}
		info := DeviceInfo{Device: *pair[0]}
		if len(pair) > 1 && pair[1] != nil && *pair[1] != "" {
			name := *pair[1]
			info.Name = &name
		}
		infos = append(infos, info)
	}
	return infos, nil
}
