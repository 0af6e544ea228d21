// Package audiotest builds deterministic sample blocks for tests.
package audiotest

import (
	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// SineBlock returns n float32 samples of a unit-amplitude sine at freqHz.
func SineBlock(freqHz float64, sampleRate uint32, n int) []float32 {
	g := signal.NewGenerator(core.WithSampleRate(float64(sampleRate)))
	x, err := g.Sine(freqHz, 1, n)
	if err != nil {
		panic(err)
	}

	out := make([]float32, n)
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

// SilentBlock returns n zero samples.
func SilentBlock(n int) []float32 {
	return make([]float32, n)
}

// NoiseBlock returns n deterministic white-noise samples with the given
// amplitude.
func NoiseBlock(amplitude float64, n int) []float32 {
	g := signal.NewGenerator()
	x, err := g.WhiteNoise(amplitude, n)
	if err != nil {
		panic(err)
	}

	out := make([]float32, n)
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}
