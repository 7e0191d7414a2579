package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/devices"
)

// DefaultTimeout bounds a single command round trip when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 5 * time.Second

// Client implements Controller over the engine's websocket JSON protocol.
//
// The protocol is strictly request/reply: a command is either a bare string
// ("GetVersion") or a single-key object ({"SetVolume": -12.5}), and the reply
// wraps the result under the command name:
//
//	{"GetVersion": {"result": "Ok", "value": "2.0.3"}}
//
// One command is in flight at a time; Client serializes callers internally.
type Client struct {
	mu      sync.Mutex
	conn    *websocket.Conn
	timeout time.Duration
}

// Dial connects to an engine control endpoint, e.g. "ws://127.0.0.1:1234".
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("engine: connecting to %s: %w", url, err)
	}
	return &Client{conn: conn, timeout: DefaultTimeout}, nil
}

// Close shuts the control connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// SetTimeout overrides the per-command fallback timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.timeout = d
	}
}

type commandReply struct {
	Result string          `json:"result"`
	Value  json.RawMessage `json:"value"`
}

// call performs one command round trip. arg == nil sends the bare string
// form; out == nil discards the reply value.
func (c *Client) call(ctx context.Context, command string, arg, out any) error {
	var payload []byte
	var err error
	if arg == nil {
		payload, err = json.Marshal(command)
	} else {
		payload, err = json.Marshal(map[string]any{command: arg})
	}
	if err != nil {
		return fmt.Errorf("engine: encoding %s: %w", command, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("engine: sending %s: %w", command, err)
	}

	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return err
	}
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("engine: reading %s reply: %w", command, err)
	}

	var envelope map[string]commandReply
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("engine: decoding %s reply: %w", command, err)
	}
	reply, ok := envelope[command]
	if !ok {
		return fmt.Errorf("engine: reply carries no %s result", command)
	}
	if reply.Result != "Ok" {
		detail := ""
		if len(reply.Value) > 0 {
			var msg string
			if json.Unmarshal(reply.Value, &msg) == nil {
				detail = ": " + msg
			}
		}
		return fmt.Errorf("engine: %s failed with result %q%s", command, reply.Result, detail)
	}
	if out != nil && len(reply.Value) > 0 {
		if err := json.Unmarshal(reply.Value, out); err != nil {
			return fmt.Errorf("engine: decoding %s value: %w", command, err)
		}
	}
	return nil
}

// Version implements Controller.
func (c *Client) Version(ctx context.Context) (string, error) {
	var version string
	err := c.call(ctx, "GetVersion", nil, &version)
	return version, err
}

// State implements Controller.
func (c *Client) State(ctx context.Context) (string, error) {
	var state string
	err := c.call(ctx, "GetState", nil, &state)
	return state, err
}

// SupportedDeviceTypes implements Controller.
func (c *Client) SupportedDeviceTypes(ctx context.Context) ([]string, error) {
	var backends []string
	err := c.call(ctx, "GetSupportedDeviceTypes", nil, &backends)
	return backends, err
}

// CaptureDevices implements Controller.
func (c *Client) CaptureDevices(ctx context.Context, backend string) (devices.DeviceInfos, error) {
	return c.enumerate(ctx, "GetAvailableCaptureDevices", backend)
}

// PlaybackDevices implements Controller.
func (c *Client) PlaybackDevices(ctx context.Context, backend string) (devices.DeviceInfos, error) {
	return c.enumerate(ctx, "GetAvailablePlaybackDevices", backend)
}

func (c *Client) enumerate(ctx context.Context, command, backend string) (devices.DeviceInfos, error) {
	var raw json.RawMessage
	if err := c.call(ctx, command, backend, &raw); err != nil {
		return nil, err
	}
	return devices.ParseEnumeration(raw)
}

// Config implements Controller. The engine wraps the config document in a
// JSON string; the string is decoded into the typed model.
func (c *Client) Config(ctx context.Context) (*config.Config, error) {
	var doc string
	if err := c.call(ctx, "GetConfigJson", nil, &doc); err != nil {
		return nil, err
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(doc), &cfg); err != nil {
		return nil, fmt.Errorf("engine: decoding active config: %w", err)
	}
	return &cfg, nil
}

// SetConfig implements Controller.
func (c *Client) SetConfig(ctx context.Context, cfg *config.Config) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("engine: encoding config: %w", err)
	}
	return c.call(ctx, "SetConfigJson", string(doc), nil)
}

// Volume implements Controller.
func (c *Client) Volume(ctx context.Context) (float64, error) {
	var db float64
	err := c.call(ctx, "GetVolume", nil, &db)
	return db, err
}

// SetVolume implements Controller.
func (c *Client) SetVolume(ctx context.Context, db float64) error {
	return c.call(ctx, "SetVolume", db, nil)
}

// Mute implements Controller.
func (c *Client) Mute(ctx context.Context) (bool, error) {
	var mute bool
	err := c.call(ctx, "GetMute", nil, &mute)
	return mute, err
}

// SetMute implements Controller.
func (c *Client) SetMute(ctx context.Context, mute bool) error {
	return c.call(ctx, "SetMute", mute, nil)
}

var _ Controller = (*Client)(nil)
