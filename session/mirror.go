package session

import (
	"sort"

	"github.com/shaban/dspgraph"
)

// SetMirrorMembers declares a set of same-side channels whose settings are
// kept identical. Members leave any group they were in before; membership is
// symmetric and the call is idempotent and order-independent. A group of
// fewer than two endpoints dissolves instead of being stored.
func (s *Session) SetMirrorMembers(members []dspgraph.RouteEndpoint) {
	group := make(map[dspgraph.RouteEndpoint]struct{}, len(members))
	for _, member := range members {
		group[member] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, member := range members {
		s.leaveGroup(member)
	}
	if len(group) >= 2 {
		s.mirrors = append(s.mirrors, group)
	}
}

// leaveGroup removes an endpoint from its group, dropping groups that shrink
// below two members. Caller holds s.mu.
func (s *Session) leaveGroup(endpoint dspgraph.RouteEndpoint) {
	for i, group := range s.mirrors {
		if _, ok := group[endpoint]; !ok {
			continue
		}
		delete(group, endpoint)
		if len(group) < 2 {
			s.mirrors = append(s.mirrors[:i], s.mirrors[i+1:]...)
		}
		return
	}
}

// MirrorPeers returns the other members of the endpoint's mirror group, in
// deterministic order. An unmirrored endpoint has no peers.
func (s *Session) MirrorPeers(endpoint dspgraph.RouteEndpoint) []dspgraph.RouteEndpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.peersLocked(endpoint)
}

func (s *Session) peersLocked(endpoint dspgraph.RouteEndpoint) []dspgraph.RouteEndpoint {
	for _, group := range s.mirrors {
		if _, ok := group[endpoint]; !ok {
			continue
		}
		peers := make([]dspgraph.RouteEndpoint, 0, len(group)-1)
		for member := range group {
			if member != endpoint {
				peers = append(peers, member)
			}
		}
		sort.Slice(peers, func(i, j int) bool {
			if peers[i].DeviceID != peers[j].DeviceID {
				return peers[i].DeviceID < peers[j].DeviceID
			}
			return peers[i].Channel < peers[j].Channel
		})
		return peers
	}
	return nil
}

// Settings returns the stored settings for a channel.
func (s *Session) Settings(endpoint dspgraph.RouteEndpoint) ChannelSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings[endpoint]
}

// SetLabel stores a channel label and propagates it to every mirror peer.
func (s *Session) SetLabel(endpoint dspgraph.RouteEndpoint, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, target := range append(s.peersLocked(endpoint), endpoint) {
		set := s.settings[target]
		set.Label = label
		s.settings[target] = set
	}
}

// SetColor stores a channel color and propagates it to every mirror peer.
func (s *Session) SetColor(endpoint dspgraph.RouteEndpoint, color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, target := range append(s.peersLocked(endpoint), endpoint) {
		set := s.settings[target]
		set.Color = color
		s.settings[target] = set
	}
}
