package session

import (
	"errors"

	"github.com/google/uuid"

	"github.com/shaban/dspgraph"
	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/filterchain"
)

// Clipboard errors. Both mean "paste changed nothing"; the distinction lets
// the caller phrase the feedback.
var (
	ErrNothingToPaste  = errors.New("session: clipboard holds nothing to paste here")
	ErrPayloadMismatch = errors.New("session: clipboard payload does not match the target")
)

// PayloadKind tags what the clipboard holds.
type PayloadKind string

const (
	PayloadFilter PayloadKind = "filter"
	PayloadChain  PayloadKind = "chain"
	PayloadRoute  PayloadKind = "route"
)

// Payload is one clipboard entry: a single filter, a full channel chain, or
// route parameters.
type Payload struct {
	ID   uuid.UUID   `json:"id"`
	Kind PayloadKind `json:"kind"`

	FilterType config.FilterType   `json:"filterType,omitempty"`
	Filter     *config.Filter      `json:"filter,omitempty"`
	Bands      []filterchain.Entry `json:"bands,omitempty"`

	Chain filterchain.Chain `json:"chain,omitempty"`

	Gain     float64 `json:"gain,omitempty"`
	Inverted bool    `json:"inverted,omitempty"`
	Mute     bool    `json:"mute,omitempty"`
}

// CopyFilter puts a single filter on the clipboard. Block types carry their
// bands instead; use CopyBands for those.
func (s *Session) CopyFilter(f config.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = &Payload{
		ID:         uuid.New(),
		Kind:       PayloadFilter,
		FilterType: f.Type,
		Filter:     &f,
	}
}

// CopyBands puts a multi-band block (Biquad or DiffEq bands) on the
// clipboard.
func (s *Session) CopyBands(t config.FilterType, bands []filterchain.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = &Payload{
		ID:         uuid.New(),
		Kind:       PayloadFilter,
		FilterType: t,
		Bands:      append([]filterchain.Entry(nil), bands...),
	}
}

// CopyChain puts a channel's full processing chain on the clipboard.
func (s *Session) CopyChain(chain filterchain.Chain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = &Payload{
		ID:    uuid.New(),
		Kind:  PayloadChain,
		Chain: append(filterchain.Chain(nil), chain...),
	}
}

// CopyRoute puts a route's parameters on the clipboard.
func (s *Session) CopyRoute(edge dspgraph.RouteEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = &Payload{
		ID:       uuid.New(),
		Kind:     PayloadRoute,
		Gain:     edge.Gain,
		Inverted: edge.Inverted,
		Mute:     edge.Mute,
	}
}

// Clipboard returns the current payload, or nil.
func (s *Session) Clipboard() *Payload {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clipboard
}

// PasteFilter validates the clipboard against a target editor slot and
// returns the filter to apply. The wrong payload kind reports
// ErrNothingToPaste; a filter payload of another type reports
// ErrPayloadMismatch. Nothing is ever coerced.
func (s *Session) PasteFilter(target config.FilterType) (config.Filter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.clipboard
	if p == nil || p.Kind != PayloadFilter || p.Filter == nil {
		return config.Filter{}, ErrNothingToPaste
	}
	if p.FilterType != target {
		return config.Filter{}, ErrPayloadMismatch
	}
	return *p.Filter, nil
}

// PasteBands validates the clipboard against a block editor and returns the
// bands to splice in.
func (s *Session) PasteBands(target config.FilterType) ([]filterchain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.clipboard
	if p == nil || p.Kind != PayloadFilter || p.Bands == nil {
		return nil, ErrNothingToPaste
	}
	if p.FilterType != target {
		return nil, ErrPayloadMismatch
	}
	return append([]filterchain.Entry(nil), p.Bands...), nil
}

// PasteChain validates the clipboard for pasting a full chain onto a channel
// of the given side. A chain carrying output-only filters cannot land on an
// input channel.
func (s *Session) PasteChain(side filterchain.Side) (filterchain.Chain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.clipboard
	if p == nil || p.Kind != PayloadChain {
		return nil, ErrNothingToPaste
	}
	if side == filterchain.SideInput {
		for _, entry := range p.Chain {
			if filterchain.OutputOnly(entry.Filter.Type) {
				return nil, ErrPayloadMismatch
			}
		}
	}
	return append(filterchain.Chain(nil), p.Chain...), nil
}

// PasteRoute validates the clipboard for pasting onto a route and returns
// the patch to apply.
func (s *Session) PasteRoute() (dspgraph.RoutePatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.clipboard
	if p == nil || p.Kind != PayloadRoute {
		return dspgraph.RoutePatch{}, ErrNothingToPaste
	}
	gain, inverted, mute := p.Gain, p.Inverted, p.Mute
	return dspgraph.RoutePatch{Gain: &gain, Inverted: &inverted, Mute: &mute}, nil
}
