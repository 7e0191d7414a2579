// Package engine talks to the running DSP engine over its websocket control
// protocol: reading and committing configurations, enumerating backends and
// devices, and adjusting volume and mute.
//
// The rest of the module never performs I/O; it consumes the already-parsed
// results of the Controller interface and hands back pure values to commit.
package engine

import (
	"context"

	"github.com/shaban/dspgraph/config"
	"github.com/shaban/dspgraph/devices"
)

// Controller is the module's view of a running DSP engine instance.
type Controller interface {
	// Version returns the engine's version string.
	Version(ctx context.Context) (string, error)

	// State returns the engine's processing state (e.g. "Running",
	// "Paused", "Inactive").
	State(ctx context.Context) (string, error)

	// SupportedDeviceTypes lists the backend types the engine was built
	// with, e.g. ["Alsa", "Pulse", "File"].
	SupportedDeviceTypes(ctx context.Context) ([]string, error)

	// CaptureDevices enumerates capture devices for a backend.
	CaptureDevices(ctx context.Context, backend string) (devices.DeviceInfos, error)

	// PlaybackDevices enumerates playback devices for a backend.
	PlaybackDevices(ctx context.Context, backend string) (devices.DeviceInfos, error)

	// Config fetches the engine's active configuration.
	Config(ctx context.Context) (*config.Config, error)

	// SetConfig commits a full configuration to the engine.
	SetConfig(ctx context.Context, cfg *config.Config) error

	// Volume and mute of the engine's main fader.
	Volume(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, db float64) error
	Mute(ctx context.Context) (bool, error)
	SetMute(ctx context.Context, mute bool) error
}
