package devices

import "strings"

// Category is the coarse bucket a device lands in after classification.
type Category string

const (
	CategoryHardware Category = "hardware"
	CategoryLoopback Category = "loopback"
	CategoryNull     Category = "null"
	CategoryVirtual  Category = "virtual"
	CategoryUnknown  Category = "unknown"
)

// Classification is the result of classifying a single device.
type Classification struct {
	Category   Category `json:"category"`
	IsHardware bool     `json:"isHardware"`
}

// alsaVirtualIDs are ALSA PCM names that never address a hardware card
// directly.
var alsaVirtualIDs = map[string]bool{
	"pulse":      true,
	"pipewire":   true,
	"default":    true,
	"sysdefault": true,
}

// virtualSoftware are name/id substrings of virtual-audio-cable, aggregate
// and loopback software on the non-ALSA backends (CoreAudio, Wasapi, ...).
var virtualSoftware = []string{
	"blackhole",
	"soundflower",
	"vb-audio",
	"vb-cable",
	"cable",
	"voicemeeter",
	"aggregate",
	"virtual",
	"loopback",
}

// Classify buckets a device for the given backend. The rules run in priority
// order; the first match wins. Classify never fails: anything it cannot place
// ends up as CategoryUnknown.
func Classify(device DeviceInfo, backend string) Classification {
	id := strings.ToLower(device.Device)
	name := strings.ToLower(device.DisplayName())

	// Loopback devices exist on every backend (snd-aloop, BlackHole in
	// loopback mode, Wasapi loopback captures).
	if strings.Contains(id, "loopback") || strings.Contains(name, "loopback") {
		return Classification{Category: CategoryLoopback}
	}

	if id == "null" {
		return Classification{Category: CategoryNull}
	}

	if isAlsa(backend) {
		if strings.HasPrefix(id, "hw:") || strings.HasPrefix(id, "plughw:") {
			return Classification{Category: CategoryHardware, IsHardware: true}
		}
		if alsaVirtualIDs[id] || strings.Contains(id, "dsnoop") || strings.Contains(id, "dmix") {
			return Classification{Category: CategoryVirtual}
		}
		// Other ALSA PCM names (front:, iec958:, surround51:, ...) sit on
		// top of a card but cannot be ranked as hardware candidates.
		return Classification{Category: CategoryUnknown}
	}

	for _, marker := range virtualSoftware {
		if strings.Contains(id, marker) || strings.Contains(name, marker) {
			return Classification{Category: CategoryVirtual}
		}
	}
	return Classification{Category: CategoryHardware, IsHardware: true}
}

func isAlsa(backend string) bool {
	return strings.EqualFold(backend, "alsa")
}
