// Package meter computes time-domain diagnostics for tapped sample blocks.
//
// It runs on the consumer side of the pipeline, where float64 conversion and
// allocation are acceptable; the real-time path never calls into it.
package meter

import (
	timestats "github.com/cwbudde/algo-dsp/stats/time"
)

// BlockStats holds per-block diagnostics derived from the raw samples.
type BlockStats struct {
	RMSdB         float64
	PeakdB        float64
	CrestFactordB float64
	ZeroCrossings int
}

// Meter converts blocks and computes stats with a reusable scratch buffer.
type Meter struct {
	scratch []float64
}

// New returns a Meter sized for blocks of blockSize samples.
func New(blockSize int) *Meter {
	if blockSize < 0 {
		blockSize = 0
	}
	return &Meter{scratch: make([]float64, blockSize)}
}

// Analyze computes diagnostics for one block.
func (m *Meter) Analyze(block []float32) BlockStats {
	if len(m.scratch) < len(block) {
		m.scratch = make([]float64, len(block))
	}
	x := m.scratch[:len(block)]
	for i, v := range block {
		x[i] = float64(v)
	}

	s := timestats.Calculate(x)
	return BlockStats{
		RMSdB:         s.RMS_dB,
		PeakdB:        s.Peak_dB,
		CrestFactordB: s.CrestFactor_dB,
		ZeroCrossings: s.ZeroCrossings,
	}
}
