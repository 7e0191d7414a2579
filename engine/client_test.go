package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shaban/dspgraph/internal/testutil"
)

// fakeEngine serves the engine's request/reply protocol over a test websocket.
// The handler receives the decoded command name and its optional argument and
// returns (result, value).
type fakeEngine struct {
	srv    *httptest.Server
	handle func(command string, arg json.RawMessage) (string, any)
}

func newFakeEngine(t *testing.T, handle func(string, json.RawMessage) (string, any)) *fakeEngine {
	t.Helper()
	f := &fakeEngine{handle: handle}
	upgrader := websocket.Upgrader{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			command, arg := decodeCommand(t, data)
			result, value := f.handle(command, arg)
			reply := map[string]map[string]any{
				command: {"result": result, "value": value},
			}
			if err := conn.WriteJSON(reply); err != nil {
				return
			}
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func decodeCommand(t *testing.T, data []byte) (string, json.RawMessage) {
	t.Helper()
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		return bare, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || len(obj) != 1 {
		t.Fatalf("unrecognized command frame: %s", data)
	}
	for command, arg := range obj {
		return command, arg
	}
	return "", nil
}

func (f *fakeEngine) url() string {
	return "ws" + strings.TrimPrefix(f.srv.URL, "http")
}

func dialFake(t *testing.T, f *fakeEngine) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := Dial(ctx, f.url())
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClientBareCommands(t *testing.T) {
	f := newFakeEngine(t, func(command string, arg json.RawMessage) (string, any) {
		if arg != nil {
			t.Errorf("%s sent an argument: %s", command, arg)
		}
		switch command {
		case "GetVersion":
			return "Ok", "2.0.3"
		case "GetState":
			return "Ok", "Running"
		case "GetVolume":
			return "Ok", -12.5
		case "GetMute":
			return "Ok", true
		default:
			t.Errorf("unexpected command %q", command)
			return "Error", "unexpected"
		}
	})
	client := dialFake(t, f)
	ctx := context.Background()

	if v, err := client.Version(ctx); err != nil || v != "2.0.3" {
		t.Errorf("Version = %q, %v", v, err)
	}
	if s, err := client.State(ctx); err != nil || s != "Running" {
		t.Errorf("State = %q, %v", s, err)
	}
	if db, err := client.Volume(ctx); err != nil || db != -12.5 {
		t.Errorf("Volume = %v, %v", db, err)
	}
	if mute, err := client.Mute(ctx); err != nil || !mute {
		t.Errorf("Mute = %t, %v", mute, err)
	}
}

func TestClientArgumentCommands(t *testing.T) {
	var gotVolume float64
	var gotMute bool
	f := newFakeEngine(t, func(command string, arg json.RawMessage) (string, any) {
		switch command {
		case "SetVolume":
			if err := json.Unmarshal(arg, &gotVolume); err != nil {
				t.Errorf("SetVolume arg: %v", err)
			}
		case "SetMute":
			if err := json.Unmarshal(arg, &gotMute); err != nil {
				t.Errorf("SetMute arg: %v", err)
			}
		default:
			t.Errorf("unexpected command %q", command)
		}
		return "Ok", nil
	})
	client := dialFake(t, f)
	ctx := context.Background()

	if err := client.SetVolume(ctx, -6); err != nil {
		t.Fatalf("SetVolume: %v", err)
	}
	if err := client.SetMute(ctx, true); err != nil {
		t.Fatalf("SetMute: %v", err)
	}
	if gotVolume != -6 || !gotMute {
		t.Errorf("engine saw volume=%v mute=%t", gotVolume, gotMute)
	}
}

func TestClientConfigRoundTrip(t *testing.T) {
	want := testutil.RoutedConfig(2, 2)
	var stored string
	f := newFakeEngine(t, func(command string, arg json.RawMessage) (string, any) {
		switch command {
		case "SetConfigJson":
			if err := json.Unmarshal(arg, &stored); err != nil {
				t.Errorf("SetConfigJson arg: %v", err)
			}
			return "Ok", nil
		case "GetConfigJson":
			return "Ok", stored
		default:
			t.Errorf("unexpected command %q", command)
			return "Error", nil
		}
	})
	client := dialFake(t, f)
	ctx := context.Background()

	if err := client.SetConfig(ctx, want); err != nil {
		t.Fatalf("SetConfig: %v", err)
	}
	// The document travels as a JSON string, not as a nested object.
	if !strings.HasPrefix(strings.TrimSpace(stored), "{") {
		t.Fatalf("stored document = %q", stored)
	}

	got, err := client.Config(ctx)
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if got.Devices.Capture.Channels != 2 || got.RoutingMixer() == nil {
		t.Errorf("round-tripped config = %+v", got)
	}
}

func TestClientDeviceEnumeration(t *testing.T) {
	f := newFakeEngine(t, func(command string, arg json.RawMessage) (string, any) {
		var backend string
		if err := json.Unmarshal(arg, &backend); err != nil || backend != "Alsa" {
			t.Errorf("backend arg = %s, %v", arg, err)
		}
		var value json.RawMessage = testutil.Enumeration(
			[2]string{"hw:CARD=E2x2,DEV=0", "E2x2, USB Audio"},
			[2]string{"pulse", ""},
		)
		return "Ok", value
	})
	client := dialFake(t, f)

	infos, err := client.CaptureDevices(context.Background(), "Alsa")
	if err != nil {
		t.Fatalf("CaptureDevices: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("infos = %#v", infos)
	}
	if infos[0].Device != "hw:CARD=E2x2,DEV=0" || infos[0].DisplayName() != "E2x2, USB Audio" {
		t.Errorf("infos[0] = %#v", infos[0])
	}
	if infos[1].Name != nil {
		t.Errorf("null name decoded as %v", *infos[1].Name)
	}
}

func TestClientReportsEngineErrors(t *testing.T) {
	f := newFakeEngine(t, func(command string, arg json.RawMessage) (string, any) {
		return "Error", "Invalid config"
	})
	client := dialFake(t, f)

	err := client.SetVolume(context.Background(), 0)
	if err == nil {
		t.Fatal("expected error for non-Ok result")
	}
	if !strings.Contains(err.Error(), "Invalid config") {
		t.Errorf("error lacks engine detail: %v", err)
	}
}
