// Package spectral turns fixed-size blocks of mono samples into per-band
// energy readings.
//
// An Analyzer owns an FFT plan and preallocated working buffers sized for one
// block, so Analyze performs no allocations in steady state and is safe to
// call from a real-time audio callback. All magnitude and mean arithmetic is
// 32-bit floating point.
package spectral
