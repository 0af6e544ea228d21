package spectral

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-dsp/dsp/window"

	"github.com/cwbudde/algo-vu/band"
)

// DefaultBlockSize is the number of samples per analyzed block.
const DefaultBlockSize = 1024

// ErrBlockSize is returned when a block does not match the configured size.
var ErrBlockSize = fmt.Errorf("spectral: block length mismatch")

// Analyzer computes per-band mean magnitudes from sample blocks.
type Analyzer struct {
	sampleRate uint32
	blockSize  int
	foldedLen  int

	plan    *algofft.Plan[complex64]
	work    []complex64 // FFT input/output, transformed in place
	mag     []float32   // full magnitude spectrum, folded view taken per block
	coeffs  []float32   // window coefficients, nil for rectangular
	ranges  [band.Count]binRange
	out     [band.Count]band.Energy
	scratch [band.Count]band.Energy
}

type binRange struct {
	low, high int
}

type config struct {
	blockSize  int
	windowType window.Type
	windowed   bool
}

// Option adjusts Analyzer construction.
type Option func(*config)

// WithBlockSize overrides the block size. The size must be even.
func WithBlockSize(n int) Option {
	return func(cfg *config) {
		if n > 0 {
			cfg.blockSize = n
		}
	}
}

// WithWindow applies the given analysis window before the transform.
//
// The default is rectangular (no window), matching the pipeline's documented
// trade of spectral-leakage accuracy for simplicity. Opting into a window
// changes band readings and is meant for callers that want lower leakage.
func WithWindow(t window.Type) Option {
	return func(cfg *config) {
		cfg.windowType = t
		cfg.windowed = true
	}
}

// New returns an Analyzer for the given device sample rate.
func New(sampleRate uint32, opts ...Option) (*Analyzer, error) {
	if sampleRate == 0 {
		return nil, fmt.Errorf("spectral: sample rate must be > 0")
	}

	cfg := config{blockSize: DefaultBlockSize}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.blockSize%2 != 0 {
		return nil, fmt.Errorf("spectral: block size %d must be even", cfg.blockSize)
	}

	plan, err := algofft.NewPlanT[complex64](cfg.blockSize)
	if err != nil {
		return nil, fmt.Errorf("spectral: create FFT plan: %w", err)
	}

	a := &Analyzer{
		sampleRate: sampleRate,
		blockSize:  cfg.blockSize,
		foldedLen:  cfg.blockSize/2 + 1,
		plan:       plan,
		work:       make([]complex64, cfg.blockSize),
		mag:        make([]float32, cfg.blockSize),
	}

	if cfg.windowed {
		coeffs64 := window.Generate(cfg.windowType, cfg.blockSize, window.WithPeriodic())
		if len(coeffs64) != cfg.blockSize {
			return nil, fmt.Errorf("spectral: window generation failed for size %d", cfg.blockSize)
		}
		a.coeffs = make([]float32, cfg.blockSize)
		for i, w := range coeffs64 {
			a.coeffs[i] = float32(w)
		}
	}

	for i, b := range band.Default() {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("spectral: %w", err)
		}
		low, high := b.Range(sampleRate, a.foldedLen)
		a.ranges[i] = binRange{low: low, high: high}
		a.out[i].Band = b
		a.scratch[i].Band = b
	}

	return a, nil
}

// SampleRate returns the rate the band ranges were resolved against.
func (a *Analyzer) SampleRate() uint32 { return a.sampleRate }

// BlockSize returns the expected samples per block.
func (a *Analyzer) BlockSize() int { return a.blockSize }

// FoldedLen returns the one-sided spectrum length, blockSize/2 + 1.
func (a *Analyzer) FoldedLen() int { return a.foldedLen }

// Analyze transforms one block and returns the five band energies in band
// order. The returned array is a value; successive calls do not alias.
func (a *Analyzer) Analyze(block []float32) ([band.Count]band.Energy, error) {
	if len(block) != a.blockSize {
		return a.scratch, fmt.Errorf("%w: expected %d samples, got %d", ErrBlockSize, a.blockSize, len(block))
	}

	if a.coeffs == nil {
		for i, v := range block {
			a.work[i] = complex(v, 0)
		}
	} else {
		for i, v := range block {
			a.work[i] = complex(v*a.coeffs[i], 0)
		}
	}

	if err := a.plan.Forward(a.work, a.work); err != nil {
		return a.scratch, fmt.Errorf("spectral: forward FFT: %w", err)
	}

	magnitude(a.mag, a.work)
	folded := Fold(a.mag)

	out := a.out
	for i := range a.ranges {
		r := a.ranges[i]
		var sum float32
		for j := r.low; j <= r.high; j++ {
			sum += folded[j]
		}
		out[i].Mean = sum / float32(r.high-r.low+1)
	}

	return out, nil
}

// Fold discards the mirrored upper half of a full magnitude spectrum computed
// from real input, keeping bins [0, len/2] (DC through Nyquist). The result
// aliases the input; no copy is made.
func Fold(mag []float32) []float32 {
	if len(mag) == 0 {
		return mag
	}
	return mag[:len(mag)/2+1]
}
