package devices

import (
	"strings"

	"github.com/shaban/dspgraph/config"
)

// FindBestHardware picks the most useful hardware device out of an
// enumeration, or nil when none exists. Callers must treat nil as "no device
// found", not as an error.
//
// Ranking, most significant first:
//   - ALSA syntax ids (hw:/plughw:): an id naming its card (CARD=) beats a
//     bare numeric card reference, then device 0 (DEV=0, or no DEV at all)
//     beats any other device index.
//   - On every backend, a device mentioning "usb" beats one that does not.
//   - Ties keep first-occurrence order.
func FindBestHardware(devices DeviceInfos, backend string) *DeviceInfo {
	hw := devices.Hardware(backend)
	if len(hw) == 0 {
		return nil
	}

	alsaRanking := isAlsa(backend)
	if !alsaRanking {
		for _, device := range hw {
			if hasAlsaSyntax(device.Device) {
				alsaRanking = true
				break
			}
		}
	}

	best := 0
	bestScore := rankHardware(hw[0], alsaRanking)
	for i := 1; i < len(hw); i++ {
		if score := rankHardware(hw[i], alsaRanking); score > bestScore {
			best, bestScore = i, score
		}
	}
	return &hw[best]
}

func hasAlsaSyntax(id string) bool {
	return strings.HasPrefix(id, "hw:") || strings.HasPrefix(id, "plughw:")
}

func rankHardware(device DeviceInfo, alsaRanking bool) int {
	id := strings.ToLower(device.Device)
	score := 0
	if alsaRanking {
		if strings.Contains(id, "card=") {
			score += 4
		}
		// A missing DEV index addresses device 0 implicitly.
		if !strings.Contains(id, "dev=") || strings.Contains(id, "dev=0") {
			score += 2
		}
	}
	if strings.Contains(id, "usb") || strings.Contains(strings.ToLower(device.DisplayName()), "usb") {
		score++
	}
	return score
}

// AutoConfig is a ready-to-apply default setup for one full-duplex device.
type AutoConfig struct {
	Backend    string              `json:"backend"`
	Capture    string              `json:"capture"`
	Playback   string              `json:"playback"`
	Channels   int                 `json:"channels"`
	SampleRate int                 `json:"samplerate"`
	ChunkSize  int                 `json:"chunksize"`
	Format     config.SampleFormat `json:"format"`
}

// AutoConfigure fills fixed defaults for a device. For ALSA the device id is
// rewritten from hw: to plughw: so one card can be opened for capture and
// playback at the same time; other backends pass the id through unchanged.
// AutoConfigure never fails.
func AutoConfigure(device DeviceInfo, backend string) AutoConfig {
	id := device.Device
	if isAlsa(backend) {
		id = FullDuplexID(id)
	}
	return AutoConfig{
		Backend:    backend,
		Capture:    id,
		Playback:   id,
		Channels:   config.DefaultChannels,
		SampleRate: config.DefaultSampleRate,
		ChunkSize:  config.DefaultChunkSize,
		Format:     config.DefaultFormat,
	}
}

// FullDuplexID rewrites an ALSA hw: id to its plughw: equivalent. Ids without
// the hw: prefix come back unchanged.
func FullDuplexID(id string) string {
	if strings.HasPrefix(id, "hw:") {
		return "plughw:" + strings.TrimPrefix(id, "hw:")
	}
	return id
}

// BuildConfig turns an AutoConfig into a minimal engine configuration.
func (a AutoConfig) BuildConfig() (*config.Config, error) {
	cfg, err := config.New(a.Backend, a.Capture, a.Backend, a.Playback)
	if err != nil {
		return nil, err
	}
	cfg.Devices.SampleRate = a.SampleRate
	cfg.Devices.ChunkSize = a.ChunkSize
	cfg.Devices.Capture.Channels = a.Channels
	cfg.Devices.Playback.Channels = a.Channels
	cfg.Devices.Capture.Format = a.Format
	cfg.Devices.Playback.Format = a.Format
	return cfg, nil
}
