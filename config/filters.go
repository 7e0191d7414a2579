package config

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownFilterType is returned when a document carries a filter type this
// package does not model. Decoding fails closed so a typo never round-trips
// into a config the engine would reject later.
var ErrUnknownFilterType = errors.New("config: unknown filter type")

// FilterType tags the parameter variant of a filter definition.
type FilterType string

const (
	FilterBiquad     FilterType = "Biquad"
	FilterDelay      FilterType = "Delay"
	FilterGain       FilterType = "Gain"
	FilterVolume     FilterType = "Volume"
	FilterDiffEq     FilterType = "DiffEq"
	FilterConv       FilterType = "Conv"
	FilterCompressor FilterType = "Compressor"
	FilterNoiseGate  FilterType = "NoiseGate"
	FilterLoudness   FilterType = "Loudness"
	FilterDither     FilterType = "Dither"
)

// FilterParams is the closed set of per-type parameter structs. Every variant
// lives in this file; dispatch sites switch on Filter.Type and the compiler
// plus the decode switch below keep the two in lock step.
type FilterParams interface {
	filterType() FilterType
}

// Filter is one named filter definition: a type tag plus the matching
// parameter struct.
type Filter struct {
	Type       FilterType
	Parameters FilterParams
}

// BiquadType selects the response shape of a biquad section.
type BiquadType string

const (
	BiquadLowpass    BiquadType = "Lowpass"
	BiquadHighpass   BiquadType = "Highpass"
	BiquadLowshelf   BiquadType = "Lowshelf"
	BiquadHighshelf  BiquadType = "Highshelf"
	BiquadPeaking    BiquadType = "Peaking"
	BiquadNotch      BiquadType = "Notch"
	BiquadBandpass   BiquadType = "Bandpass"
	BiquadAllpass    BiquadType = "Allpass"
	BiquadLowpassFO  BiquadType = "LowpassFO"
	BiquadHighpassFO BiquadType = "HighpassFO"
)

// BiquadParams describes a single parametric EQ band.
type BiquadParams struct {
	BiquadType BiquadType `json:"type"`
	Freq       float64    `json:"freq"`
	Gain       float64    `json:"gain,omitempty"`
	Q          float64    `json:"q,omitempty"`
}

func (BiquadParams) filterType() FilterType { return FilterBiquad }

// DelayUnit selects how a delay amount is expressed.
type DelayUnit string

const (
	DelayMilliseconds DelayUnit = "ms"
	DelayMillimetres  DelayUnit = "mm"
	DelaySamples      DelayUnit = "samples"
)

// DelayParams delays a channel by a fixed amount.
type DelayParams struct {
	Delay     float64   `json:"delay"`
	Unit      DelayUnit `json:"unit"`
	Subsample bool      `json:"subsample"`
}

func (DelayParams) filterType() FilterType { return FilterDelay }

// GainScale selects whether a gain value is decibels or a linear factor.
type GainScale string

const (
	GainDecibel GainScale = "dB"
	GainLinear  GainScale = "linear"
)

// GainParams applies a static gain, optional polarity inversion and mute.
type GainParams struct {
	Gain     float64   `json:"gain"`
	Scale    GainScale `json:"scale,omitempty"`
	Inverted bool      `json:"inverted"`
	Mute     bool      `json:"mute"`
}

func (GainParams) filterType() FilterType { return FilterGain }

// VolumeParams binds a channel to a ramped volume fader.
type VolumeParams struct {
	Fader    string  `json:"fader"`
	RampTime float64 `json:"ramp_time,omitempty"`
}

func (VolumeParams) filterType() FilterType { return FilterVolume }

// DiffEqParams is a direct-form difference equation with explicit
// denominator (a) and numerator (b) coefficients.
type DiffEqParams struct {
	A []float64 `json:"a"`
	B []float64 `json:"b"`
}

func (DiffEqParams) filterType() FilterType { return FilterDiffEq }

// ConvSubtype selects where a convolution impulse response comes from.
type ConvSubtype string

const (
	ConvValues ConvSubtype = "Values"
	ConvRaw    ConvSubtype = "Raw"
	ConvWav    ConvSubtype = "Wav"
)

// ConvParams configures an FIR convolution stage, either with inline taps or
// a coefficient file reference.
type ConvParams struct {
	ConvType       ConvSubtype  `json:"type"`
	Values         []float64    `json:"values,omitempty"`
	Filename       string       `json:"filename,omitempty"`
	Format         SampleFormat `json:"format,omitempty"`
	SkipBytesLines int          `json:"skip_bytes_lines,omitempty"`
	ReadBytesLines int          `json:"read_bytes_lines,omitempty"`
	Channel        int          `json:"channel,omitempty"`
}

func (ConvParams) filterType() FilterType { return FilterConv }

// CompressorParams configures a dynamic range compressor.
type CompressorParams struct {
	Attack     float64 `json:"attack"`
	Release    float64 `json:"release"`
	Threshold  float64 `json:"threshold"`
	Factor     float64 `json:"factor"`
	MakeupGain float64 `json:"makeup_gain,omitempty"`
	SoftClip   bool    `json:"soft_clip,omitempty"`
	ClipLimit  float64 `json:"clip_limit,omitempty"`
}

func (CompressorParams) filterType() FilterType { return FilterCompressor }

// NoiseGateParams attenuates a channel while it stays below a threshold.
type NoiseGateParams struct {
	Attack      float64 `json:"attack"`
	Release     float64 `json:"release"`
	Threshold   float64 `json:"threshold"`
	Attenuation float64 `json:"attenuation"`
}

func (NoiseGateParams) filterType() FilterType { return FilterNoiseGate }

// LoudnessParams configures equal-loudness compensation around a reference
// listening level.
type LoudnessParams struct {
	ReferenceLevel float64 `json:"reference_level"`
	HighBoost      float64 `json:"high_boost,omitempty"`
	LowBoost       float64 `json:"low_boost,omitempty"`
	AttenuateMid   bool    `json:"attenuate_mid,omitempty"`
}

func (LoudnessParams) filterType() FilterType { return FilterLoudness }

// DitherParams configures requantization noise shaping for a fixed-point
// playback format.
type DitherParams struct {
	DitherType string  `json:"type"`
	Bits       int     `json:"bits"`
	Amplitude  float64 `json:"amplitude,omitempty"`
}

func (DitherParams) filterType() FilterType { return FilterDither }

// filterEnvelope is the wire shape of a filter definition.
type filterEnvelope struct {
	Type       FilterType      `json:"type"`
	Parameters json.RawMessage `json:"parameters"`
}

// MarshalJSON emits the tagged {"type", "parameters"} wire shape.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Parameters == nil {
		return nil, fmt.Errorf("config: filter of type %q has nil parameters", f.Type)
	}
	if got := f.Parameters.filterType(); got != f.Type {
		return nil, fmt.Errorf("config: filter type %q does not match parameters for %q", f.Type, got)
	}
	params, err := json.Marshal(f.Parameters)
	if err != nil {
		return nil, err
	}
	return json.Marshal(filterEnvelope{Type: f.Type, Parameters: params})
}

// UnmarshalJSON decodes the tagged union, failing closed on unknown types.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var env filterEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	var params FilterParams
	switch env.Type {
	case FilterBiquad:
		params = &BiquadParams{}
	case FilterDelay:
		params = &DelayParams{}
	case FilterGain:
		params = &GainParams{}
	case FilterVolume:
		params = &VolumeParams{}
	case FilterDiffEq:
		params = &DiffEqParams{}
	case FilterConv:
		params = &ConvParams{}
	case FilterCompressor:
		params = &CompressorParams{}
	case FilterNoiseGate:
		params = &NoiseGateParams{}
	case FilterLoudness:
		params = &LoudnessParams{}
	case FilterDither:
		params = &DitherParams{}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFilterType, env.Type)
	}

	if len(env.Parameters) > 0 {
		if err := json.Unmarshal(env.Parameters, params); err != nil {
			return fmt.Errorf("config: decoding %s parameters: %w", env.Type, err)
		}
	}

	f.Type = env.Type
	f.Parameters = deref(params)
	return nil
}

// deref unwraps the pointer used for decoding so Filter values stay
// comparable with their hand-built counterparts.
func deref(p FilterParams) FilterParams {
	switch v := p.(type) {
	case *BiquadParams:
		return *v
	case *DelayParams:
		return *v
	case *GainParams:
		return *v
	case *VolumeParams:
		return *v
	case *DiffEqParams:
		return *v
	case *ConvParams:
		return *v
	case *CompressorParams:
		return *v
	case *NoiseGateParams:
		return *v
	case *LoudnessParams:
		return *v
	case *DitherParams:
		return *v
	default:
		return p
	}
}

// NewFilter wraps a parameter struct into a Filter with the matching tag.
func NewFilter(params FilterParams) Filter {
	return Filter{Type: params.filterType(), Parameters: params}
}
