// Package config models the declarative pipeline description consumed by the
// DSP engine: capture/playback devices, a map of named filter definitions, an
// ordered processing pipeline, and a routing mixer.
//
// Everything in this package is a plain JSON-serializable value. Transforms in
// the rest of the module never mutate a shared document; they Clone first and
// return a fresh *Config, so the caller can always diff old against new.
package config

import (
	"encoding/json"
	"fmt"
)

// Defaults used when generating a minimal configuration.
const (
	DefaultSampleRate = 48000
	DefaultChunkSize  = 1024
	DefaultChannels   = 2
	DefaultFormat     = FormatFloat32LE
)

// RoutingMixerName is the well-known key of the routing mixer inside
// Config.Mixers. The graph layer only ever looks at this mixer.
const RoutingMixerName = "routing"

// SampleFormat identifies the sample encoding of a capture or playback device.
type SampleFormat string

const (
	FormatS16LE     SampleFormat = "S16LE"
	FormatS24LE     SampleFormat = "S24LE"
	FormatS24LE3    SampleFormat = "S24LE3"
	FormatS32LE     SampleFormat = "S32LE"
	FormatFloat32LE SampleFormat = "FLOAT32LE"
	FormatFloat64LE SampleFormat = "FLOAT64LE"
)

// SampleFormats lists every format the engine accepts, in display order.
func SampleFormats() []SampleFormat {
	return []SampleFormat{
		FormatS16LE, FormatS24LE, FormatS24LE3,
		FormatS32LE, FormatFloat32LE, FormatFloat64LE,
	}
}

// BitDepth returns the number of significant bits for a sample format.
// Used by the dither heuristics to pick a target depth.
func (f SampleFormat) BitDepth() int {
	switch f {
	case FormatS16LE:
		return 16
	case FormatS24LE, FormatS24LE3:
		return 24
	case FormatS32LE:
		return 32
	case FormatFloat32LE:
		return 32
	case FormatFloat64LE:
		return 64
	default:
		return 0
	}
}

// IsFloat reports whether the format carries floating point samples.
// Float targets never need dithering.
func (f SampleFormat) IsFloat() bool {
	return f == FormatFloat32LE || f == FormatFloat64LE
}

// Device describes one side (capture or playback) of the engine's audio I/O.
type Device struct {
	Type     string       `json:"type"`
	Device   string       `json:"device"`
	Channels int          `json:"channels"`
	Format   SampleFormat `json:"format"`
}

// Devices is the device section of a configuration.
type Devices struct {
	SampleRate int    `json:"samplerate"`
	ChunkSize  int    `json:"chunksize"`
	Capture    Device `json:"capture"`
	Playback   Device `json:"playback"`
}

// MixerChannels carries the input/output channel counts of a mixer.
type MixerChannels struct {
	In  int `json:"in"`
	Out int `json:"out"`
}

// MixerSource feeds one input channel into a destination with per-source
// gain, polarity and mute.
type MixerSource struct {
	Channel  int     `json:"channel"`
	Gain     float64 `json:"gain"`
	Inverted bool    `json:"inverted"`
	Mute     bool    `json:"mute"`
}

// MixerMapping routes one or more sources into a destination channel.
type MixerMapping struct {
	Dest    int           `json:"dest"`
	Sources []MixerSource `json:"sources"`
}

// Mixer is a routing matrix between capture and playback channels.
type Mixer struct {
	Channels MixerChannels  `json:"channels"`
	Mapping  []MixerMapping `json:"mapping"`
}

// Config is the complete declarative pipeline description.
type Config struct {
	Devices  Devices           `json:"devices"`
	Filters  map[string]Filter `json:"filters,omitempty"`
	Pipeline []PipelineStep    `json:"pipeline,omitempty"`
	Mixers   map[string]Mixer  `json:"mixers,omitempty"`
}

// New builds a minimal valid configuration for the given backends and device
// identifiers. Both backend types must be chosen up front; leaving one empty
// is a caller bug and is rejected explicitly.
func New(captureType, captureDevice, playbackType, playbackDevice string) (*Config, error) {
	if captureType == "" || playbackType == "" {
		return nil, fmt.Errorf("config: both capture and playback backend types must be set (capture=%q, playback=%q)",
			captureType, playbackType)
	}
	return &Config{
		Devices: Devices{
			SampleRate: DefaultSampleRate,
			ChunkSize:  DefaultChunkSize,
			Capture: Device{
				Type:     captureType,
				Device:   captureDevice,
				Channels: DefaultChannels,
				Format:   DefaultFormat,
			},
			Playback: Device{
				Type:     playbackType,
				Device:   playbackDevice,
				Channels: DefaultChannels,
				Format:   DefaultFormat,
			},
		},
	}, nil
}

// RoutingMixer returns the routing mixer, or nil when the configuration does
// not carry one. The returned pointer aliases the config; treat it as
// read-only and go through Clone for edits.
func (c *Config) RoutingMixer() *Mixer {
	if c == nil || c.Mixers == nil {
		return nil
	}
	m, ok := c.Mixers[RoutingMixerName]
	if !ok {
		return nil
	}
	return &m
}

// SetRoutingMixer replaces the routing mixer in place.
func (c *Config) SetRoutingMixer(m Mixer) {
	if c.Mixers == nil {
		c.Mixers = make(map[string]Mixer, 1)
	}
	c.Mixers[RoutingMixerName] = m
}

// Clone returns a deep copy of the configuration. The JSON round trip keeps
// the copy honest for every filter parameter type without per-type copy code.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		// All config values are plain JSON types; marshalling cannot fail
		// for a document this package produced.
		panic(fmt.Sprintf("config: clone marshal: %v", err))
	}
	var out Config
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("config: clone unmarshal: %v", err))
	}
	return &out
}

// Issue describes one structural problem found by Validate.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return i.Path + ": " + i.Message
}

// Validate reports structural issues without repairing anything: dangling
// filter names in pipeline steps, pipeline references to missing mixers, and
// routing endpoints outside the configured channel counts. The projection and
// reconciliation layers tolerate (and prune) these at runtime; Validate
// exists so a caller can tell the user what a hand-edited document got wrong.
func (c *Config) Validate() []Issue {
	var issues []Issue

	if c.Devices.Capture.Channels <= 0 {
		issues = append(issues, Issue{"devices.capture.channels", "must be positive"})
	}
	if c.Devices.Playback.Channels <= 0 {
		issues = append(issues, Issue{"devices.playback.channels", "must be positive"})
	}

	for i, step := range c.Pipeline {
		switch step.Type {
		case StepFilter:
			for _, name := range step.Names {
				if _, ok := c.Filters[name]; !ok {
					issues = append(issues, Issue{
						Path:    fmt.Sprintf("pipeline[%d]", i),
						Message: fmt.Sprintf("references undefined filter %q", name),
					})
				}
			}
		case StepMixer:
			if _, ok := c.Mixers[step.Name]; !ok {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("pipeline[%d]", i),
					Message: fmt.Sprintf("references undefined mixer %q", step.Name),
				})
			}
		}
	}

	if m := c.RoutingMixer(); m != nil {
		for i, mapping := range m.Mapping {
			if mapping.Dest < 0 || mapping.Dest >= m.Channels.Out {
				issues = append(issues, Issue{
					Path:    fmt.Sprintf("mixers.routing.mapping[%d]", i),
					Message: fmt.Sprintf("dest %d outside [0,%d)", mapping.Dest, m.Channels.Out),
				})
			}
			for j, src := range mapping.Sources {
				if src.Channel < 0 || src.Channel >= m.Channels.In {
					issues = append(issues, Issue{
						Path:    fmt.Sprintf("mixers.routing.mapping[%d].sources[%d]", i, j),
						Message: fmt.Sprintf("channel %d outside [0,%d)", src.Channel, m.Channels.In),
					})
				}
			}
		}
	}

	return issues
}
