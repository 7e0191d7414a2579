// Package filterchain manipulates the ordered filter chain of a single
// channel: unique naming, single-instance upsert/remove, and contiguous
// block replacement for multi-band filter types.
//
// All functions are pure. They either return a new slice or, for structural
// no-ops, the identical input slice so callers can skip redundant downstream
// updates with a reference comparison.
package filterchain

import (
	"fmt"
	"strings"

	"github.com/shaban/dspgraph/config"
)

// Side tells input (capture) chains apart from output (playback) chains.
type Side string

const (
	SideInput  Side = "input"
	SideOutput Side = "output"
)

// Entry is one named filter in a channel's chain. The name keys the filter
// definition in the config document; it is unique within the chain.
type Entry struct {
	Name   string        `json:"name"`
	Filter config.Filter `json:"filter"`
}

// Chain is the ordered filter list of one channel.
type Chain []Entry

// Names returns the set of names currently taken by the chain.
func (c Chain) Names() map[string]struct{} {
	taken := make(map[string]struct{}, len(c))
	for _, entry := range c {
		taken[entry.Name] = struct{}{}
	}
	return taken
}

// FirstOfType returns the index of the first entry with the given filter
// type, or -1.
func (c Chain) FirstOfType(t config.FilterType) int {
	for i, entry := range c {
		if entry.Filter.Type == t {
			return i
		}
	}
	return -1
}

// Has reports whether any entry has the given filter type.
func (c Chain) Has(t config.FilterType) bool {
	return c.FirstOfType(t) >= 0
}

// CountOfType returns how many entries have the given filter type.
func (c Chain) CountOfType(t config.FilterType) int {
	n := 0
	for _, entry := range c {
		if entry.Filter.Type == t {
			n++
		}
	}
	return n
}

// IsSingleton reports whether at most one instance of the filter type may
// exist per channel.
func IsSingleton(t config.FilterType) bool {
	switch t {
	case config.FilterDelay, config.FilterGain, config.FilterVolume,
		config.FilterConv, config.FilterCompressor, config.FilterNoiseGate,
		config.FilterLoudness, config.FilterDither:
		return true
	default:
		return false
	}
}

// IsBlock reports whether the filter type forms a contiguous multi-instance
// block (EQ bands, difference-equation bands).
func IsBlock(t config.FilterType) bool {
	return t == config.FilterBiquad || t == config.FilterDiffEq
}

// OutputOnly reports whether the filter type is only valid on playback
// channels.
func OutputOnly(t config.FilterType) bool {
	switch t {
	case config.FilterConv, config.FilterCompressor, config.FilterDither,
		config.FilterNoiseGate, config.FilterLoudness:
		return true
	default:
		return false
	}
}

// EnsureUniqueName returns base if it is free, otherwise base-1, base-2 and
// so on until a free name is found. Bounded by len(taken)+1 probes.
func EnsureUniqueName(base string, taken map[string]struct{}) string {
	if _, exists := taken[base]; !exists {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if _, exists := taken[candidate]; !exists {
			return candidate
		}
	}
}

// ChannelFilterName builds the canonical definition name for a per-channel
// filter: side, channel index and filter kind, e.g. "output-1-gain".
// Collisions get a numeric suffix through EnsureUniqueName at insert time.
func ChannelFilterName(side Side, channel int, t config.FilterType) string {
	return fmt.Sprintf("%s-%d-%s", side, channel, strings.ToLower(string(t)))
}

// UpsertSingleton replaces the config of the first entry matching f's type,
// preserving its name and position, or appends a new entry named from
// nameBase when no instance exists. Applying the same filter twice yields a
// structurally identical chain.
func UpsertSingleton(chain Chain, f config.Filter, nameBase string) Chain {
	if i := chain.FirstOfType(f.Type); i >= 0 {
		next := append(Chain(nil), chain...)
		next[i].Filter = f
		return next
	}
	name := EnsureUniqueName(nameBase, chain.Names())
	next := append(Chain(nil), chain...)
	return append(next, Entry{Name: name, Filter: f})
}

// RemoveFirstOfType removes the first entry with the given type. When no
// entry matches, the input chain comes back unchanged (same reference).
func RemoveFirstOfType(chain Chain, t config.FilterType) Chain {
	i := chain.FirstOfType(t)
	if i < 0 {
		return chain
	}
	next := make(Chain, 0, len(chain)-1)
	next = append(next, chain[:i]...)
	return append(next, chain[i+1:]...)
}

// ReplaceBlock splices next over the contiguous run of entries with the given
// block type. Without an existing run, next is appended at the end. Entries
// before and after the run keep their positions, so repeated partial edits
// can never scatter a multi-band block through the chain.
//
// Incoming entries keep their name when it is unused or already theirs;
// otherwise they get a fresh name derived from nameBase.
func ReplaceBlock(chain Chain, t config.FilterType, next []Entry, nameBase string) Chain {
	start, end := blockRange(chain, t)

	// Names of the entries that survive around the block.
	taken := make(map[string]struct{}, len(chain))
	for i, entry := range chain {
		if i < start || i >= end {
			taken[entry.Name] = struct{}{}
		}
	}

	named := make([]Entry, 0, len(next))
	for _, entry := range next {
		name := entry.Name
		if name == "" {
			name = nameBase
		}
		name = EnsureUniqueName(name, taken)
		taken[name] = struct{}{}
		named = append(named, Entry{Name: name, Filter: entry.Filter})
	}

	out := make(Chain, 0, len(chain)-(end-start)+len(named))
	out = append(out, chain[:start]...)
	out = append(out, named...)
	return append(out, chain[end:]...)
}

// blockRange returns the half-open index range of the contiguous run of the
// given type, or [len,len) when the chain has none. Stray entries of the same
// type after a gap are treated as part of the run boundary scan ending at the
// first non-matching entry past the run start.
func blockRange(chain Chain, t config.FilterType) (int, int) {
	start := chain.FirstOfType(t)
	if start < 0 {
		return len(chain), len(chain)
	}
	end := start
	for end < len(chain) && chain[end].Filter.Type == t {
		end++
	}
	return start, end
}

// UpsertGain applies the gain de-duplication policy: a near-zero,
// non-inverted, unmuted gain carries no information and removes the entry
// instead of storing it. An inverted near-zero gain is still a polarity flip
// and is kept.
func UpsertGain(chain Chain, p config.GainParams, nameBase string) Chain {
	if NearZeroGain(p) {
		return RemoveFirstOfType(chain, config.FilterGain)
	}
	return UpsertSingleton(chain, config.NewFilter(p), nameBase)
}

// NearZeroGain reports whether the gain settings are indistinguishable from
// a wire.
func NearZeroGain(p config.GainParams) bool {
	if p.Inverted || p.Mute {
		return false
	}
	gain := p.Gain
	if gain < 0 {
		gain = -gain
	}
	if p.Scale == config.GainLinear {
		diff := p.Gain - 1
		if diff < 0 {
			diff = -diff
		}
		return diff < gainEpsilonLinear
	}
	return gain < gainEpsilonDB
}
