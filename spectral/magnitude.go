package spectral

import "math"

// magnitude writes |X[k]| for each complex bin into dst. Both slices must
// have the same length. Products stay in float32; only the square root
// round-trips through float64 since the standard library has no 32-bit sqrt.
func magnitude(dst []float32, src []complex64) {
	for i, c := range src {
		re := real(c)
		im := imag(c)
		dst[i] = float32(math.Sqrt(float64(re*re + im*im)))
	}
}
