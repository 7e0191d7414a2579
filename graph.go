// Package dspgraph keeps a user-editable signal-flow graph consistent with
// the declarative pipeline description consumed by the DSP engine.
//
// The graph side of the model is a projection: one ChannelNode per capture
// and playback channel, plus one RouteEdge per routing mixer source entry.
// Projections are recomputed from the config document on every read; edits go
// the other way through pure merge functions that return a fresh document.
package dspgraph

import (
	"fmt"

	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/filterchain"
)

// RouteEndpoint addresses one channel of one device.
type RouteEndpoint struct {
	DeviceID string `json:"deviceId"`
	Channel  int    `json:"channel"`
}

// RouteEdge is a weighted, invertible, mutable connection from an input
// channel to an output channel, derived from one routing mixer source entry.
type RouteEdge struct {
	From     RouteEndpoint `json:"from"`
	To       RouteEndpoint `json:"to"`
	Gain     float64       `json:"gain"`
	Inverted bool          `json:"inverted"`
	Mute     bool          `json:"mute"`
}

// ProcessingSummary aggregates filter effects acting on a channel, including
// global and multi-channel pipeline steps that are not part of the node's
// locally editable chain. Read-only; recomputed by BuildGraph.
type ProcessingSummary struct {
	HasGain       bool `json:"hasGain"`
	HasDelay      bool `json:"hasDelay"`
	BiquadCount   int  `json:"biquadCount"`
	HasConv       bool `json:"hasConv"`
	HasCompressor bool `json:"hasCompressor"`
	HasNoiseGate  bool `json:"hasNoiseGate"`
	HasDither     bool `json:"hasDither"`
	HasLoudness   bool `json:"hasLoudness"`
}

func (s *ProcessingSummary) add(f config.Filter) {
	switch f.Type {
	case config.FilterGain:
		s.HasGain = true
	case config.FilterDelay:
		s.HasDelay = true
	case config.FilterBiquad:
		s.BiquadCount++
	case config.FilterConv:
		s.HasConv = true
	case config.FilterCompressor:
		s.HasCompressor = true
	case config.FilterNoiseGate:
		s.HasNoiseGate = true
	case config.FilterDither:
		s.HasDither = true
	case config.FilterLoudness:
		s.HasLoudness = true
	case config.FilterVolume, config.FilterDiffEq:
		// Not surfaced in the summary.
	}
}

// ChannelNode is one capture or playback channel with its locally editable
// filter chain. (DeviceID, Channel) identifies a node within a side; Label is
// cosmetic and carries no uniqueness constraint.
type ChannelNode struct {
	Side     filterchain.Side  `json:"side"`
	DeviceID string            `json:"deviceId"`
	Channel  int               `json:"channel"`
	Label    string            `json:"label"`
	Filters  filterchain.Chain `json:"filters"`
	Summary  ProcessingSummary `json:"summary"`
}

// Endpoint returns the node's route endpoint.
func (n ChannelNode) Endpoint() RouteEndpoint {
	return RouteEndpoint{DeviceID: n.DeviceID, Channel: n.Channel}
}

// Graph is the full projection of a config document.
type Graph struct {
	Inputs  []ChannelNode `json:"inputs"`
	Outputs []ChannelNode `json:"outputs"`
	Routes  []RouteEdge   `json:"routes"`
}

// Node returns the node for a side and channel index, or nil.
func (g *Graph) Node(side filterchain.Side, channel int) *ChannelNode {
	nodes := g.Inputs
	if side == filterchain.SideOutput {
		nodes = g.Outputs
	}
	for i := range nodes {
		if nodes[i].Channel == channel {
			return &nodes[i]
		}
	}
	return nil
}

// BuildGraph projects a config document into channel nodes and route edges.
//
// Filter steps restricted to exactly one channel, with every referenced name
// resolvable, become part of that node's local chain. Global or multi-channel
// steps only toggle the node's summary, so the caller can show "active but
// not locally editable" without claiming ownership. Steps referencing
// undefined filter names are skipped rather than failing: the document may be
// hand-edited or come from an older schema, and a renderable-but-incomplete
// graph beats a hard error.
func BuildGraph(cfg *config.Config) *Graph {
	graph := &Graph{}

	captureSteps, playbackSteps := splitPipeline(cfg.Pipeline)

	for ch := 0; ch < cfg.Devices.Capture.Channels; ch++ {
		graph.Inputs = append(graph.Inputs,
			buildNode(cfg, filterchain.SideInput, cfg.Devices.Capture.Device, ch, captureSteps))
	}
	for ch := 0; ch < cfg.Devices.Playback.Channels; ch++ {
		graph.Outputs = append(graph.Outputs,
			buildNode(cfg, filterchain.SideOutput, cfg.Devices.Playback.Device, ch, playbackSteps))
	}

	graph.Routes = projectRoutes(cfg)
	return graph
}

// splitPipeline attributes filter steps to the capture or playback side by
// their position relative to the first mixer stage. A pipeline without a
// mixer stage runs entirely on the capture side.
func splitPipeline(pipeline []config.PipelineStep) (capture, playback []config.PipelineStep) {
	mixerAt := -1
	for i, step := range pipeline {
		if step.Type == config.StepMixer {
			mixerAt = i
			break
		}
	}
	if mixerAt < 0 {
		return pipeline, nil
	}
	return pipeline[:mixerAt], pipeline[mixerAt+1:]
}

func buildNode(cfg *config.Config, side filterchain.Side, deviceID string, channel int, steps []config.PipelineStep) ChannelNode {
	node := ChannelNode{
		Side:     side,
		DeviceID: deviceID,
		Channel:  channel,
		Label:    fmt.Sprintf("ch %d", channel),
	}

	for _, step := range steps {
		if !step.AppliesTo(channel) {
			continue
		}
		_, local := step.SingleChannel()
		for _, name := range step.Names {
			filter, ok := cfg.Filters[name]
			if !ok {
				continue // dangling reference, projection skips it
			}
			node.Summary.add(filter)
			if local {
				node.Filters = append(node.Filters, filterchain.Entry{Name: name, Filter: filter})
			}
		}
	}
	return node
}

// projectRoutes derives route edges from the routing mixer, silently dropping
// entries whose endpoints fall outside the configured channel counts.
func projectRoutes(cfg *config.Config) []RouteEdge {
	mixer := cfg.RoutingMixer()
	if mixer == nil {
		return nil
	}

	var routes []RouteEdge
	for _, mapping := range mixer.Mapping {
		if mapping.Dest < 0 || mapping.Dest >= cfg.Devices.Playback.Channels {
			continue
		}
		for _, src := range mapping.Sources {
			if src.Channel < 0 || src.Channel >= cfg.Devices.Capture.Channels {
				continue
			}
			routes = append(routes, RouteEdge{
				From:     RouteEndpoint{DeviceID: cfg.Devices.Capture.Device, Channel: src.Channel},
				To:       RouteEndpoint{DeviceID: cfg.Devices.Playback.Device, Channel: mapping.Dest},
				Gain:     src.Gain,
				Inverted: src.Inverted,
				Mute:     src.Mute,
			})
		}
	}
	return routes
}
