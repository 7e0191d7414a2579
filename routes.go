package dspgraph

import "github.com/shaban/dspgraph/config"

// RoutePatch is a partial update for an existing route. Nil fields keep the
// current value.
type RoutePatch struct {
	Gain     *float64 `json:"gain,omitempty"`
	Inverted *bool    `json:"inverted,omitempty"`
	Mute     *bool    `json:"mute,omitempty"`
}

// AddRoute connects input channel from to output channel to with the given
// parameters, creating the routing mixer when the document has none yet.
//
// Structural no-ops return the input document unchanged (same pointer):
// a route that already exists, or endpoints outside the configured channel
// counts.
func AddRoute(cfg *config.Config, from, to int, gain float64, inverted, mute bool) *config.Config {
	if from < 0 || from >= cfg.Devices.Capture.Channels ||
		to < 0 || to >= cfg.Devices.Playback.Channels {
		return cfg
	}
	if _, ok := findRoute(cfg, from, to); ok {
		return cfg
	}

	next := cfg.Clone()
	mixer := next.RoutingMixer()
	if mixer == nil {
		mixer = &config.Mixer{
			Channels: config.MixerChannels{
				In:  next.Devices.Capture.Channels,
				Out: next.Devices.Playback.Channels,
			},
		}
	}

	source := config.MixerSource{Channel: from, Gain: gain, Inverted: inverted, Mute: mute}
	placed := false
	for i := range mixer.Mapping {
		if mixer.Mapping[i].Dest == to {
			mixer.Mapping[i].Sources = append(mixer.Mapping[i].Sources, source)
			placed = true
			break
		}
	}
	if !placed {
		mixer.Mapping = append(mixer.Mapping, config.MixerMapping{
			Dest:    to,
			Sources: []config.MixerSource{source},
		})
	}

	next.SetRoutingMixer(*mixer)
	ensureMixerStep(next)
	return next
}

// UpdateRoute applies a partial patch to the route (from, to). A missing
// route is a structural no-op: the input document comes back unchanged.
func UpdateRoute(cfg *config.Config, from, to int, patch RoutePatch) *config.Config {
	if _, ok := findRoute(cfg, from, to); !ok {
		return cfg
	}

	next := cfg.Clone()
	mixer := next.RoutingMixer()
	for i := range mixer.Mapping {
		if mixer.Mapping[i].Dest != to {
			continue
		}
		for j := range mixer.Mapping[i].Sources {
			src := &mixer.Mapping[i].Sources[j]
			if src.Channel != from {
				continue
			}
			if patch.Gain != nil {
				src.Gain = *patch.Gain
			}
			if patch.Inverted != nil {
				src.Inverted = *patch.Inverted
			}
			if patch.Mute != nil {
				src.Mute = *patch.Mute
			}
		}
	}
	next.SetRoutingMixer(*mixer)
	return next
}

// DeleteRoute removes the route (from, to), dropping the destination mapping
// when its last source goes. A missing route is a structural no-op.
func DeleteRoute(cfg *config.Config, from, to int) *config.Config {
	if _, ok := findRoute(cfg, from, to); !ok {
		return cfg
	}

	next := cfg.Clone()
	mixer := next.RoutingMixer()
	mapping := make([]config.MixerMapping, 0, len(mixer.Mapping))
	for _, dest := range mixer.Mapping {
		if dest.Dest != to {
			mapping = append(mapping, dest)
			continue
		}
		sources := make([]config.MixerSource, 0, len(dest.Sources))
		for _, src := range dest.Sources {
			if src.Channel != from {
				sources = append(sources, src)
			}
		}
		if len(sources) > 0 {
			dest.Sources = sources
			mapping = append(mapping, dest)
		}
	}
	mixer.Mapping = mapping
	next.SetRoutingMixer(*mixer)
	return next
}

// findRoute locates the mixer source for (from, to).
func findRoute(cfg *config.Config, from, to int) (config.MixerSource, bool) {
	mixer := cfg.RoutingMixer()
	if mixer == nil {
		return config.MixerSource{}, false
	}
	for _, dest := range mixer.Mapping {
		if dest.Dest != to {
			continue
		}
		for _, src := range dest.Sources {
			if src.Channel == from {
				return src, true
			}
		}
	}
	return config.MixerSource{}, false
}

// ensureMixerStep appends a routing mixer stage to the pipeline when none
// exists yet, so a freshly created mixer actually takes effect.
func ensureMixerStep(cfg *config.Config) {
	for _, step := range cfg.Pipeline {
		if step.Type == config.StepMixer && step.Name == config.RoutingMixerName {
			return
		}
	}
	cfg.Pipeline = append(cfg.Pipeline, config.MixerStep(config.RoutingMixerName))
}
