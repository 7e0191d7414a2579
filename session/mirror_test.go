package session

import (
	"reflect"
	"testing"

	"github.com/shaban/dspgraph"
	"github.com/shaban/dspgraph/internal/testutil"
)

func outEndpoint(ch int) dspgraph.RouteEndpoint {
	return dspgraph.RouteEndpoint{DeviceID: "plughw:CARD=E2x2,DEV=0", Channel: ch}
}

func TestMirrorMembershipSymmetric(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	a, b := outEndpoint(0), outEndpoint(1)

	s.SetMirrorMembers([]dspgraph.RouteEndpoint{a, b})
	if got := s.MirrorPeers(a); !reflect.DeepEqual(got, []dspgraph.RouteEndpoint{b}) {
		t.Errorf("peers of a = %v", got)
	}
	if got := s.MirrorPeers(b); !reflect.DeepEqual(got, []dspgraph.RouteEndpoint{a}) {
		t.Errorf("peers of b = %v", got)
	}
}

func TestMirrorIdempotentAndOrderIndependent(t *testing.T) {
	s := New(testutil.RoutedConfig(4, 4))
	a, b, c := outEndpoint(0), outEndpoint(1), outEndpoint(2)

	s.SetMirrorMembers([]dspgraph.RouteEndpoint{a, b, c})
	s.SetMirrorMembers([]dspgraph.RouteEndpoint{c, a, b})
	s.SetMirrorMembers([]dspgraph.RouteEndpoint{b, c, a})

	want := []dspgraph.RouteEndpoint{b, c}
	if got := s.MirrorPeers(a); !reflect.DeepEqual(got, want) {
		t.Errorf("peers of a = %v, want %v", got, want)
	}
	if len(s.mirrors) != 1 {
		t.Errorf("groups = %d, want 1", len(s.mirrors))
	}
}

func TestMirrorReassignmentLeavesOldGroup(t *testing.T) {
	s := New(testutil.RoutedConfig(4, 4))
	a, b, c := outEndpoint(0), outEndpoint(1), outEndpoint(2)

	s.SetMirrorMembers([]dspgraph.RouteEndpoint{a, b})
	s.SetMirrorMembers([]dspgraph.RouteEndpoint{b, c})

	// b moved on; the old pair dissolves because a alone is not a group.
	if got := s.MirrorPeers(a); got != nil {
		t.Errorf("peers of a = %v, want none", got)
	}
	if got := s.MirrorPeers(b); !reflect.DeepEqual(got, []dspgraph.RouteEndpoint{c}) {
		t.Errorf("peers of b = %v", got)
	}
}

func TestMirrorGroupBelowTwoDissolves(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	a := outEndpoint(0)
	s.SetMirrorMembers([]dspgraph.RouteEndpoint{a})
	if len(s.mirrors) != 0 {
		t.Errorf("single-member group stored: %v", s.mirrors)
	}
	s.SetMirrorMembers(nil)
	if len(s.mirrors) != 0 {
		t.Errorf("empty group stored: %v", s.mirrors)
	}
}

func TestSettingsPropagateToPeers(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	a, b := outEndpoint(0), outEndpoint(1)
	s.SetMirrorMembers([]dspgraph.RouteEndpoint{a, b})

	s.SetLabel(a, "Left")
	s.SetColor(b, "#ff8800")

	for _, endpoint := range []dspgraph.RouteEndpoint{a, b} {
		set := s.Settings(endpoint)
		if set.Label != "Left" || set.Color != "#ff8800" {
			t.Errorf("settings[%v] = %+v", endpoint, set)
		}
	}
}

func TestSettingsWithoutMirrorStayLocal(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	a, b := outEndpoint(0), outEndpoint(1)

	s.SetLabel(a, "Sub")
	if set := s.Settings(b); set.Label != "" {
		t.Errorf("label leaked to unmirrored channel: %+v", set)
	}
}
