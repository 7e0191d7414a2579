package config

import (
	"encoding/json"
	"fmt"
)

// StepType tags the two pipeline step variants.
type StepType string

const (
	StepFilter StepType = "Filter"
	StepMixer  StepType = "Mixer"
)

// PipelineStep is one stage of the ordered processing pipeline.
//
// A Filter step applies the named filter definitions, either to every channel
// (Channels == nil) or to the listed subset. A Mixer step applies the named
// mixer; steps before the first mixer stage run on capture channels, steps
// after it on playback channels.
type PipelineStep struct {
	Type     StepType
	Names    []string // Filter steps only
	Channels []int    // Filter steps only; nil means all channels
	Name     string   // Mixer steps only
}

// SingleChannel returns the channel a filter step is restricted to, and
// whether it targets exactly one channel. Only single-channel steps are
// editable through a channel node's local chain.
func (s PipelineStep) SingleChannel() (int, bool) {
	if s.Type != StepFilter || len(s.Channels) != 1 {
		return 0, false
	}
	return s.Channels[0], true
}

// AppliesTo reports whether a filter step touches the given channel index.
// Global steps (no channel restriction) apply to every channel.
func (s PipelineStep) AppliesTo(channel int) bool {
	if s.Type != StepFilter {
		return false
	}
	if s.Channels == nil {
		return true
	}
	for _, ch := range s.Channels {
		if ch == channel {
			return true
		}
	}
	return false
}

type filterStepJSON struct {
	Type     StepType `json:"type"`
	Names    []string `json:"names"`
	Channels []int    `json:"channels,omitempty"`
}

type mixerStepJSON struct {
	Type StepType `json:"type"`
	Name string   `json:"name"`
}

// MarshalJSON emits only the fields of the active variant.
func (s PipelineStep) MarshalJSON() ([]byte, error) {
	switch s.Type {
	case StepFilter:
		return json.Marshal(filterStepJSON{Type: s.Type, Names: s.Names, Channels: s.Channels})
	case StepMixer:
		return json.Marshal(mixerStepJSON{Type: s.Type, Name: s.Name})
	default:
		return nil, fmt.Errorf("config: unknown pipeline step type %q", s.Type)
	}
}

// UnmarshalJSON decodes either step variant.
func (s *PipelineStep) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type StepType `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case StepFilter:
		var fs filterStepJSON
		if err := json.Unmarshal(data, &fs); err != nil {
			return err
		}
		*s = PipelineStep{Type: StepFilter, Names: fs.Names, Channels: fs.Channels}
		return nil
	case StepMixer:
		var ms mixerStepJSON
		if err := json.Unmarshal(data, &ms); err != nil {
			return err
		}
		*s = PipelineStep{Type: StepMixer, Name: ms.Name}
		return nil
	default:
		return fmt.Errorf("config: unknown pipeline step type %q", probe.Type)
	}
}

// FilterStep builds a Filter pipeline step. Pass no channels for a global
// step, or the restricted channel subset.
func FilterStep(names []string, channels ...int) PipelineStep {
	step := PipelineStep{Type: StepFilter, Names: names}
	if len(channels) > 0 {
		step.Channels = append([]int(nil), channels...)
	}
	return step
}

// MixerStep builds a Mixer pipeline step.
func MixerStep(name string) PipelineStep {
	return PipelineStep{Type: StepMixer, Name: name}
}
