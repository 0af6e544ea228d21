// Package loudness reduces a sample block to a single peak decibel reading.
//
// The estimator is a peak detector: it reports the loudest instantaneous
// sample of the block, not an RMS or average measure.
package loudness

import "math"

// Floor is the sentinel substituted for non-finite per-sample values.
// A zero sample yields log10(0) = -Inf and a negative sample yields NaN;
// both collapse to this floor so silence produces a defined reading.
const Floor float32 = -100.0

// Estimate returns the block's peak loudness in dB.
//
// Each sample maps to 20*log10(v) on the raw value, without taking the
// absolute value first; non-finite results are replaced by Floor before the
// maximum is taken. An empty block returns Floor.
func Estimate(block []float32) float32 {
	if len(block) == 0 {
		return Floor
	}

	peak := math.Inf(-1)
	for _, v := range block {
		db := 20 * math.Log10(float64(v))
		if math.IsNaN(db) || math.IsInf(db, 0) {
			db = float64(Floor)
		}
		// After substitution every value is finite, so the maximum over a
		// non-empty block is finite. A block of very small positive samples
		// may legitimately read below Floor.
		if db > peak {
			peak = db
		}
	}
	return float32(peak)
}
