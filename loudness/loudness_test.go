package loudness

import (
	"math"
	"testing"
)

const tolerance = 1e-5

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEstimateSilenceHitsFloor(t *testing.T) {
	block := make([]float32, 1024)

	got := Estimate(block)
	if got != Floor {
		t.Fatalf("expected floor %f for all-zero block, got %f", Floor, got)
	}
}

func TestEstimatePeakSemantics(t *testing.T) {
	// The reading is the loudest instantaneous value, not the mean.
	block := []float32{0.01, 0.5, 0.001}

	want := 20 * math.Log10(0.5)
	got := Estimate(block)
	if !almostEqual(float64(got), want, tolerance) {
		t.Fatalf("expected peak %f, got %f", want, got)
	}
}

func TestEstimateNegativeSamplesFloored(t *testing.T) {
	// Raw negative samples feed log10 directly and come out NaN; they are
	// floored rather than rectified, so a block of negatives reads Floor.
	block := []float32{-0.5, -0.9, -0.001}

	got := Estimate(block)
	if got != Floor {
		t.Fatalf("expected floor %f for all-negative block, got %f", Floor, got)
	}
}

func TestEstimateMixedSigns(t *testing.T) {
	// The negative peak is invisible to the estimator; only the positive
	// 0.25 contributes a finite value.
	block := []float32{-0.9, 0.25, 0}

	want := 20 * math.Log10(0.25)
	got := Estimate(block)
	if !almostEqual(float64(got), want, tolerance) {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestEstimateTinySamplesBelowFloor(t *testing.T) {
	// Finite values below the floor are kept; the floor only substitutes
	// for non-finite results.
	block := []float32{1e-7, 2e-7}

	got := Estimate(block)
	if got >= Floor {
		t.Fatalf("expected reading below floor, got %f", got)
	}
	want := 20 * math.Log10(2e-7)
	if !almostEqual(float64(got), want, 1e-3) {
		t.Fatalf("expected %f, got %f", want, got)
	}
}

func TestEstimateEmptyBlock(t *testing.T) {
	if got := Estimate(nil); got != Floor {
		t.Fatalf("expected floor for empty block, got %f", got)
	}
}

func TestEstimateFullScale(t *testing.T) {
	block := []float32{1.0}
	got := Estimate(block)
	if !almostEqual(float64(got), 0, tolerance) {
		t.Fatalf("expected 0 dBFS for full-scale sample, got %f", got)
	}
}

func BenchmarkEstimate(b *testing.B) {
	block := make([]float32, 1024)
	for i := range block {
		block[i] = float32(math.Sin(float64(i) * 0.1))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		Estimate(block)
	}
}
