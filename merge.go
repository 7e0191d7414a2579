package dspgraph

import (
	"fmt"

	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/filterchain"
)

// ApplyChannelFilters merges an edited channel chain back into the config
// document and returns a fresh document; the input is never mutated.
//
// The channel's previous single-channel filter steps are replaced by one step
// carrying the chain's names, definitions are written (renamed on collision
// with a definition used elsewhere) and definitions orphaned by the edit are
// garbage collected. Capture-side steps keep their place before the mixer
// stage, playback-side steps after it.
//
// Errors indicate caller bugs, not data conditions: an output-only filter on
// an input chain, a duplicated singleton, or a playback-side edit on a
// pipeline that has no mixer stage to anchor it.
func ApplyChannelFilters(cfg *config.Config, side filterchain.Side, channel int, chain filterchain.Chain) (*config.Config, error) {
	if err := checkChain(side, chain); err != nil {
		return nil, err
	}

	next := cfg.Clone()
	if next.Filters == nil && len(chain) > 0 {
		next.Filters = make(map[string]config.Filter)
	}

	removedNames := removeChannelSteps(next, side, channel)

	// Write definitions. A name already bound to a different filter and
	// referenced outside this channel's steps must not be overwritten; the
	// incoming entry is renamed instead.
	names := make([]string, 0, len(chain))
	for _, entry := range chain {
		name := entry.Name
		if existing, ok := next.Filters[name]; ok && referencedInPipeline(next, name) && !sameFilter(existing, entry.Filter) {
			name = filterchain.EnsureUniqueName(name, definitionNames(next))
		}
		next.Filters[name] = entry.Filter
		names = append(names, name)
	}

	if len(names) > 0 {
		step := config.FilterStep(names, channel)
		at, err := insertIndex(next, side)
		if err != nil {
			return nil, err
		}
		next.Pipeline = append(next.Pipeline, config.PipelineStep{})
		copy(next.Pipeline[at+1:], next.Pipeline[at:])
		next.Pipeline[at] = step
	}

	collectOrphans(next, removedNames)
	return next, nil
}

func checkChain(side filterchain.Side, chain filterchain.Chain) error {
	seenType := make(map[config.FilterType]bool)
	seenName := make(map[string]bool)
	for _, entry := range chain {
		t := entry.Filter.Type
		if side == filterchain.SideInput && filterchain.OutputOnly(t) {
			return fmt.Errorf("dspgraph: filter type %s is only valid on output channels", t)
		}
		if filterchain.IsSingleton(t) && seenType[t] {
			return fmt.Errorf("dspgraph: more than one %s filter in chain", t)
		}
		seenType[t] = true
		if seenName[entry.Name] {
			return fmt.Errorf("dspgraph: duplicate filter name %q in chain", entry.Name)
		}
		seenName[entry.Name] = true
	}
	return nil
}

// removeChannelSteps drops the channel's existing single-channel filter steps
// on the given side and returns the filter names they referenced.
func removeChannelSteps(cfg *config.Config, side filterchain.Side, channel int) map[string]struct{} {
	removed := make(map[string]struct{})
	mixerSeen := false

	kept := cfg.Pipeline[:0]
	for _, step := range cfg.Pipeline {
		if step.Type == config.StepMixer {
			mixerSeen = true
			kept = append(kept, step)
			continue
		}
		stepSide := filterchain.SideInput
		if mixerSeen {
			stepSide = filterchain.SideOutput
		}
		if ch, single := step.SingleChannel(); single && ch == channel && stepSide == side {
			for _, name := range step.Names {
				removed[name] = struct{}{}
			}
			continue
		}
		kept = append(kept, step)
	}
	cfg.Pipeline = kept
	return removed
}

// insertIndex finds where a new single-channel step belongs: capture-side
// steps directly before the first mixer stage (or at the end when there is
// none), playback-side steps at the end, after the mixer stage.
func insertIndex(cfg *config.Config, side filterchain.Side) (int, error) {
	mixerAt := -1
	for i, step := range cfg.Pipeline {
		if step.Type == config.StepMixer {
			mixerAt = i
			break
		}
	}
	if side == filterchain.SideInput {
		if mixerAt < 0 {
			return len(cfg.Pipeline), nil
		}
		return mixerAt, nil
	}
	if mixerAt < 0 {
		return 0, fmt.Errorf("dspgraph: cannot place an output channel chain in a pipeline without a mixer stage")
	}
	return len(cfg.Pipeline), nil
}

func referencedInPipeline(cfg *config.Config, name string) bool {
	for _, step := range cfg.Pipeline {
		if step.Type != config.StepFilter {
			continue
		}
		for _, n := range step.Names {
			if n == name {
				return true
			}
		}
	}
	return false
}

func definitionNames(cfg *config.Config) map[string]struct{} {
	names := make(map[string]struct{}, len(cfg.Filters))
	for name := range cfg.Filters {
		names[name] = struct{}{}
	}
	return names
}

func sameFilter(a, b config.Filter) bool {
	if a.Type != b.Type {
		return false
	}
	return fmt.Sprintf("%#v", a.Parameters) == fmt.Sprintf("%#v", b.Parameters)
}

// collectOrphans deletes definitions that were referenced only by the removed
// steps. Definitions the edit never touched stay, even when unreferenced.
func collectOrphans(cfg *config.Config, candidates map[string]struct{}) {
	for name := range candidates {
		if !referencedInPipeline(cfg, name) {
			delete(cfg.Filters, name)
		}
	}
}

// FormState carries the device form of the configuration page.
type FormState struct {
	SampleRate int `json:"samplerate"`
	ChunkSize  int `json:"chunksize"`

	CaptureType     string              `json:"captureType"`
	CaptureDevice   string              `json:"captureDevice"`
	CaptureChannels int                 `json:"captureChannels"`
	CaptureFormat   config.SampleFormat `json:"captureFormat"`

	PlaybackType     string              `json:"playbackType"`
	PlaybackDevice   string              `json:"playbackDevice"`
	PlaybackChannels int                 `json:"playbackChannels"`
	PlaybackFormat   config.SampleFormat `json:"playbackFormat"`
}

// FormFromConfig seeds a form from the current document.
func FormFromConfig(cfg *config.Config) FormState {
	return FormState{
		SampleRate:       cfg.Devices.SampleRate,
		ChunkSize:        cfg.Devices.ChunkSize,
		CaptureType:      cfg.Devices.Capture.Type,
		CaptureDevice:    cfg.Devices.Capture.Device,
		CaptureChannels:  cfg.Devices.Capture.Channels,
		CaptureFormat:    cfg.Devices.Capture.Format,
		PlaybackType:     cfg.Devices.Playback.Type,
		PlaybackDevice:   cfg.Devices.Playback.Device,
		PlaybackChannels: cfg.Devices.Playback.Channels,
		PlaybackFormat:   cfg.Devices.Playback.Format,
	}
}

// ApplyFormState writes the device form into a fresh document. When channel
// counts change and a routing mixer exists, the mixer's channel counts follow
// and its mapping is pruned: destinations at or above the new output count
// are dropped, surviving destinations lose sources at or above the new input
// count, and a destination left without sources is dropped entirely.
//
// ApplyFormState is total: it never fails, and growing channel counts never
// removes anything.
func ApplyFormState(cfg *config.Config, form FormState) *config.Config {
	next := cfg.Clone()

	next.Devices.SampleRate = form.SampleRate
	next.Devices.ChunkSize = form.ChunkSize
	next.Devices.Capture = config.Device{
		Type:     form.CaptureType,
		Device:   form.CaptureDevice,
		Channels: form.CaptureChannels,
		Format:   form.CaptureFormat,
	}
	next.Devices.Playback = config.Device{
		Type:     form.PlaybackType,
		Device:   form.PlaybackDevice,
		Channels: form.PlaybackChannels,
		Format:   form.PlaybackFormat,
	}

	mixer := next.RoutingMixer()
	if mixer == nil {
		return next
	}

	next.SetRoutingMixer(pruneMixer(*mixer, form.CaptureChannels, form.PlaybackChannels))
	return next
}

// pruneMixer resizes a routing mixer to new channel counts and drops every
// mapping entry the new counts can no longer express.
func pruneMixer(mixer config.Mixer, in, out int) config.Mixer {
	mixer.Channels = config.MixerChannels{In: in, Out: out}

	mapping := make([]config.MixerMapping, 0, len(mixer.Mapping))
	for _, dest := range mixer.Mapping {
		if dest.Dest >= out {
			continue
		}
		sources := make([]config.MixerSource, 0, len(dest.Sources))
		for _, src := range dest.Sources {
			if src.Channel >= in {
				continue
			}
			sources = append(sources, src)
		}
		if len(sources) == 0 {
			continue
		}
		dest.Sources = sources
		mapping = append(mapping, dest)
	}
	mixer.Mapping = mapping
	return mixer
}
