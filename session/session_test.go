package session

import (
	"testing"

	"github.com/shaban/dspgraph"
	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/filterchain"
	"github.com/shaban/dspgraph/internal/testutil"
)

func TestReplaceNotifiesSubscribers(t *testing.T) {
	s := New(testutil.BasicConfig())

	var seen []*config.Config
	unsub := s.Subscribe(func(cfg *config.Config) { seen = append(seen, cfg) })

	next := testutil.RoutedConfig(2, 2)
	s.Replace(next)
	if len(seen) != 1 || seen[0] != next {
		t.Fatalf("subscriber calls = %d", len(seen))
	}
	if s.Config() != next {
		t.Error("document not installed")
	}

	// Replacing with the installed pointer is a no-op.
	s.Replace(next)
	if len(seen) != 1 {
		t.Error("structural no-op reached subscribers")
	}

	unsub()
	s.Replace(testutil.BasicConfig())
	if len(seen) != 1 {
		t.Error("unsubscribed callback still invoked")
	}
}

func TestSessionIDsDiffer(t *testing.T) {
	a := New(testutil.BasicConfig())
	b := New(testutil.BasicConfig())
	if a.ID() == b.ID() {
		t.Error("two sessions share an identity")
	}
}

func TestGraphOverlaysLabels(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	graph := s.Graph()
	endpoint := graph.Inputs[0].Endpoint()

	s.SetLabel(endpoint, "Vocal Mic")
	graph = s.Graph()
	if graph.Inputs[0].Label != "Vocal Mic" {
		t.Errorf("label = %q", graph.Inputs[0].Label)
	}
	if graph.Inputs[1].Label == "Vocal Mic" {
		t.Error("label leaked to the sibling channel")
	}
}

func TestToggleDitherRemembersAndRestores(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))

	// First enable: no remembered settings, bits derived from the playback
	// format (S32LE in the fixture).
	on, err := s.ToggleDither(0)
	if err != nil || !on {
		t.Fatalf("first toggle = %t, %v", on, err)
	}
	node := s.Graph().Node(filterchain.SideOutput, 0)
	i := node.Filters.FirstOfType(config.FilterDither)
	if i < 0 {
		t.Fatal("dither filter not placed")
	}
	params := node.Filters[i].Filter.Parameters.(config.DitherParams)
	if params.Bits != 32 || params.DitherType != defaultDitherType {
		t.Errorf("derived params = %+v", params)
	}

	// Customize, then disable: the customized settings are remembered.
	custom := config.DitherParams{DitherType: "Shibata441", Bits: 16}
	chain := filterchain.UpsertSingleton(node.Filters, config.NewFilter(custom),
		filterchain.ChannelFilterName(filterchain.SideOutput, 0, config.FilterDither))
	next, err := dspgraph.ApplyChannelFilters(s.Config(), filterchain.SideOutput, 0, chain)
	if err != nil {
		t.Fatalf("ApplyChannelFilters: %v", err)
	}
	s.Replace(next)

	on, err = s.ToggleDither(0)
	if err != nil || on {
		t.Fatalf("disable toggle = %t, %v", on, err)
	}
	if remembered, ok := s.LastDither(0); !ok || remembered != custom {
		t.Errorf("remembered = %+v, %t", remembered, ok)
	}

	// Re-enable restores the remembered settings, not the defaults.
	on, err = s.ToggleDither(0)
	if err != nil || !on {
		t.Fatalf("re-enable toggle = %t, %v", on, err)
	}
	node = s.Graph().Node(filterchain.SideOutput, 0)
	i = node.Filters.FirstOfType(config.FilterDither)
	if got := node.Filters[i].Filter.Parameters.(config.DitherParams); got != custom {
		t.Errorf("restored params = %+v, want %+v", got, custom)
	}
}

func TestToggleDitherFloatPlaybackIsNoOp(t *testing.T) {
	cfg := testutil.RoutedConfig(2, 2)
	cfg.Devices.Playback.Format = config.FormatFloat32LE
	s := New(cfg)

	on, err := s.ToggleDither(0)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if on {
		t.Error("dither enabled under a float playback format")
	}
	if s.Config() != cfg {
		t.Error("no-op toggle replaced the document")
	}
}

func TestToggleDitherUnknownChannel(t *testing.T) {
	s := New(testutil.RoutedConfig(2, 2))
	if _, err := s.ToggleDither(9); err == nil {
		t.Error("expected error for a channel the device does not have")
	}
}
