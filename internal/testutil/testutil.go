// Package testutil provides canned config documents shared by tests.
package testutil

import (
	"encoding/json"

	"github.com/shaban/dspgraph/config"
)

// BasicConfig returns a minimal stereo ALSA config without mixer or filters.
func BasicConfig() *config.Config {
	return &config.Config{
		Devices: config.Devices{
			SampleRate: 48000,
			ChunkSize:  1024,
			Capture: config.Device{
				Type: "Alsa", Device: "plughw:CARD=E2x2,DEV=0",
				Channels: 2, Format: config.FormatFloat32LE,
			},
			Playback: config.Device{
				Type: "Alsa", Device: "plughw:CARD=E2x2,DEV=0",
				Channels: 2, Format: config.FormatS32LE,
			},
		},
	}
}

// RoutedConfig returns a config with the given channel counts and a routing
// mixer carrying an identity mapping (channel i -> channel i) up to the
// smaller count, plus the mixer stage in the pipeline.
func RoutedConfig(in, out int) *config.Config {
	cfg := BasicConfig()
	cfg.Devices.Capture.Channels = in
	cfg.Devices.Playback.Channels = out

	n := in
	if out < n {
		n = out
	}
	mixer := config.Mixer{Channels: config.MixerChannels{In: in, Out: out}}
	for ch := 0; ch < n; ch++ {
		mixer.Mapping = append(mixer.Mapping, config.MixerMapping{
			Dest:    ch,
			Sources: []config.MixerSource{{Channel: ch}},
		})
	}
	cfg.SetRoutingMixer(mixer)
	cfg.Pipeline = append(cfg.Pipeline, config.MixerStep(config.RoutingMixerName))
	return cfg
}

// Enumeration builds an engine-style enumeration reply from id/name pairs.
// Pass an empty name for a null description.
func Enumeration(pairs ...[2]string) []byte {
	arr := make([][]any, 0, len(pairs))
	for _, pair := range pairs {
		if pair[1] == "" {
			arr = append(arr, []any{pair[0], nil})
		} else {
			arr = append(arr, []any{pair[0], pair[1]})
		}
	}
	data, err := json.Marshal(arr)
	if err != nil {
		panic(err)
	}
	return data
}
