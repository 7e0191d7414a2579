package filterchain

import (
	"math"

	"github.com/shaban/dspgraph/config"
)

// Gains below these thresholds count as "no gain" for the de-dup policy.
const (
	gainEpsilonDB     = 0.01
	gainEpsilonLinear = 0.001
)

// Speed of sound used for distance-based delay alignment, in mm per ms.
const soundSpeedMmPerMs = 343.0

// DBToLinear converts a decibel gain to a linear factor.
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDB converts a linear gain factor to decibels. Non-positive factors
// map to -inf.
func LinearToDB(linear float64) float64 {
	if linear <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(linear)
}

// ConvertDelay converts a delay amount between ms, mm and samples. The sample
// rate only matters when samples are involved.
func ConvertDelay(value float64, from, to config.DelayUnit, sampleRate int) float64 {
	if from == to {
		return value
	}

	// Normalize to milliseconds first.
	var ms float64
	switch from {
	case config.DelayMilliseconds:
		ms = value
	case config.DelayMillimetres:
		ms = value / soundSpeedMmPerMs
	case config.DelaySamples:
		ms = value / float64(sampleRate) * 1000
	default:
		return value
	}

	switch to {
	case config.DelayMilliseconds:
		return ms
	case config.DelayMillimetres:
		return ms * soundSpeedMmPerMs
	case config.DelaySamples:
		return ms * float64(sampleRate) / 1000
	default:
		return value
	}
}

// DelayInSamples returns the delay of a Delay filter in whole and fractional
// samples at the given rate.
func DelayInSamples(p config.DelayParams, sampleRate int) float64 {
	return ConvertDelay(p.Delay, p.Unit, config.DelaySamples, sampleRate)
}

// DitherBitsFor returns the dither target depth for a playback format, or 0
// when the format is floating point and needs no dithering.
func DitherBitsFor(format config.SampleFormat) int {
	if format.IsFloat() {
		return 0
	}
	return format.BitDepth()
}
