// Package band defines the fixed set of perceptual frequency bands used by the
// analysis pipeline and the mapping from band edges to spectrum bin indices.
//
// The five bands are perceptual approximations, not a disjoint partition of the
// spectrum. Adjacent bands share a boundary frequency and each resolves that
// boundary to its own rounded bin index, so a bin may be counted by two bands.
package band

import (
	"fmt"
	"math"
)

// Count is the number of bands in the fixed table.
const Count = 5

// Band is a named frequency range in Hz.
type Band struct {
	Name   string
	LowHz  uint32
	HighHz uint32
}

// Energy is the linear mean magnitude of one band for a single block.
// No decibel conversion is applied.
type Energy struct {
	Band Band
	Mean float32
}

// The band table is created once and handed out by value; callers cannot
// mutate the canonical set.
var table = [Count]Band{
	{Name: "bass", LowHz: 20, HighHz: 140},
	{Name: "low-mid", LowHz: 140, HighHz: 400},
	{Name: "mid", LowHz: 400, HighHz: 2600},
	{Name: "high-mid", LowHz: 2600, HighHz: 5200},
	{Name: "treble", LowHz: 5200, HighHz: 14000},
}

// Default returns the five fixed bands in ascending frequency order.
func Default() [Count]Band {
	return table
}

// Validate reports whether the band's edges form a proper range.
func (b Band) Validate() error {
	if b.LowHz >= b.HighHz {
		return fmt.Errorf("band %q: low edge %d Hz must be below high edge %d Hz", b.Name, b.LowHz, b.HighHz)
	}
	return nil
}

// Range maps the band's Hz edges to inclusive indices into a one-sided
// magnitude spectrum of foldedLen bins.
//
// Each edge maps via round(freq / nyquist * foldedLen) with half values
// rounded away from zero, then clamps into [0, foldedLen-1]. The resulting
// range always has length >= 1: low <= high holds by construction because
// LowHz < HighHz and the mapping is monotonic.
func (b Band) Range(sampleRate uint32, foldedLen int) (low, high int) {
	nyquist := sampleRate / 2
	low = binIndex(b.LowHz, nyquist, foldedLen)
	high = binIndex(b.HighHz, nyquist, foldedLen)
	return low, high
}

func binIndex(freqHz, nyquist uint32, foldedLen int) int {
	if nyquist == 0 || foldedLen <= 0 {
		return 0
	}
	idx := int(math.Round(float64(freqHz) / float64(nyquist) * float64(foldedLen)))
	if idx < 0 {
		idx = 0
	}
	if idx > foldedLen-1 {
		idx = foldedLen - 1
	}
	return idx
}
