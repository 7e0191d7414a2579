package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shaban/dspgraph"
	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/filterchain"
)

// ChannelSettings are the cosmetic, mirrorable per-channel fields.
type ChannelSettings struct {
	Label string `json:"label,omitempty"`
	Color string `json:"color,omitempty"`
}

// Session holds the current config document and everything the UI edits
// around it.
type Session struct {
	id uuid.UUID

	mu          sync.RWMutex
	cfg         *config.Config
	subscribers map[int]func(*config.Config)
	nextSub     int

	settings map[dspgraph.RouteEndpoint]ChannelSettings
	mirrors  []map[dspgraph.RouteEndpoint]struct{}

	// Last known dither settings per output channel; written only when a
	// dither toggle removes the filter, read only when it re-enables it.
	lastDither map[int]config.DitherParams

	clipboard *Payload
}

// New creates a session around an initial config document.
func New(cfg *config.Config) *Session {
	return &Session{
		id:          uuid.New(),
		cfg:         cfg,
		subscribers: make(map[int]func(*config.Config)),
		settings:    make(map[dspgraph.RouteEndpoint]ChannelSettings),
		lastDither:  make(map[int]config.DitherParams),
	}
}

// ID returns the session identity.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the current document. Treat it as immutable: transforms
// clone before editing and commit their result through Replace.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Replace installs a new document and notifies subscribers. Passing the
// pointer already installed is a no-op, so callers can feed transform results
// back unconditionally and rely on the structural no-op convention.
func (s *Session) Replace(cfg *config.Config) {
	s.mu.Lock()
	if cfg == s.cfg {
		s.mu.Unlock()
		return
	}
	s.cfg = cfg
	subs := make([]func(*config.Config), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(cfg)
	}
}

// Subscribe registers a callback invoked after every Replace. The returned
// function removes the subscription.
func (s *Session) Subscribe(fn func(*config.Config)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Graph projects the current document and overlays the session's channel
// labels.
func (s *Session) Graph() *dspgraph.Graph {
	s.mu.RLock()
	cfg := s.cfg
	s.mu.RUnlock()

	graph := dspgraph.BuildGraph(cfg)
	s.mu.RLock()
	defer s.mu.RUnlock()
	overlayLabels(graph.Inputs, s.settings)
	overlayLabels(graph.Outputs, s.settings)
	return graph
}

func overlayLabels(nodes []dspgraph.ChannelNode, settings map[dspgraph.RouteEndpoint]ChannelSettings) {
	for i := range nodes {
		if set, ok := settings[nodes[i].Endpoint()]; ok && set.Label != "" {
			nodes[i].Label = set.Label
		}
	}
}

// defaultDitherType is used when a channel gets dither for the first time.
const defaultDitherType = "Simple"

// ToggleDither flips the dither filter on an output channel. Disabling
// remembers the channel's parameters; re-enabling restores them, or derives
// defaults from the playback format. Returns whether dither is enabled after
// the call.
//
// Floating point playback formats need no dithering: toggling a channel on
// under a float format is a structural no-op reported as (false, nil).
func (s *Session) ToggleDither(channel int) (bool, error) {
	cfg := s.Config()
	graph := dspgraph.BuildGraph(cfg)
	node := graph.Node(filterchain.SideOutput, channel)
	if node == nil {
		return false, fmt.Errorf("session: no output channel %d", channel)
	}

	if i := node.Filters.FirstOfType(config.FilterDither); i >= 0 {
		params, ok := node.Filters[i].Filter.Parameters.(config.DitherParams)
		if ok {
			s.mu.Lock()
			s.lastDither[channel] = params
			s.mu.Unlock()
		}
		chain := filterchain.RemoveFirstOfType(node.Filters, config.FilterDither)
		next, err := dspgraph.ApplyChannelFilters(cfg, filterchain.SideOutput, channel, chain)
		if err != nil {
			return true, err
		}
		s.Replace(next)
		return false, nil
	}

	s.mu.RLock()
	params, remembered := s.lastDither[channel]
	s.mu.RUnlock()
	if !remembered {
		bits := filterchain.DitherBitsFor(cfg.Devices.Playback.Format)
		if bits == 0 {
			return false, nil
		}
		params = config.DitherParams{DitherType: defaultDitherType, Bits: bits}
	}

	chain := filterchain.UpsertSingleton(node.Filters, config.NewFilter(params),
		filterchain.ChannelFilterName(filterchain.SideOutput, channel, config.FilterDither))
	next, err := dspgraph.ApplyChannelFilters(cfg, filterchain.SideOutput, channel, chain)
	if err != nil {
		return false, err
	}
	s.Replace(next)
	return true, nil
}

// LastDither returns the remembered dither settings for an output channel.
func (s *Session) LastDither(channel int) (config.DitherParams, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	params, ok := s.lastDither[channel]
	return params, ok
}
