package frontend

import "math"

// fftPlan holds the precomputed bit-reversal permutation and twiddle factors
// for a radix-2 Cooley-Tukey FFT of size n. Precomputing the tables keeps
// the per-window transform free of allocation and trigonometry.
type fftPlan struct {
	n      int
	bitrev []int
	cos    []float64 // cos(-2πk/n) for k in [0, n/2)
	sin    []float64 // sin(-2πk/n) for k in [0, n/2)
}

// newFFTPlan builds a plan for the given power-of-2 size.
func newFFTPlan(n int) *fftPlan {
	p := &fftPlan{
		n:      n,
		bitrev: make([]int, n),
		cos:    make([]float64, n/2),
		sin:    make([]float64, n/2),
	}

	j := 0
	for i := 0; i < n-1; i++ {
		p.bitrev[i] = j
		k := n >> 1
		for k <= j {
			j -= k
			k >>= 1
		}
		j += k
	}
	p.bitrev[n-1] = n - 1

	for k := 0; k < n/2; k++ {
		angle := -2.0 * math.Pi * float64(k) / float64(n)
		p.cos[k] = math.Cos(angle)
		p.sin[k] = math.Sin(angle)
	}
	return p
}

// transform performs an in-place FFT over real and imag, which must both
// have length n.
func (p *fftPlan) transform(real, imag []float64) {
	n := p.n
	if n <= 1 {
		return
	}

	// Bit-reversal permutation
	for i := 0; i < n; i++ {
		if j := p.bitrev[i]; i < j {
			real[i], real[j] = real[j], real[i]
			imag[i], imag[j] = imag[j], imag[i]
		}
	}

	// Cooley-Tukey butterfly with table-driven twiddles
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		step := n / size

		for start := 0; start < n; start += size {
			for k := 0; k < half; k++ {
				u := start + k
				v := u + half
				tR := p.cos[k*step]
				tI := p.sin[k*step]

				tmpR := tR*real[v] - tI*imag[v]
				tmpI := tR*imag[v] + tI*real[v]

				real[v] = real[u] - tmpR
				imag[v] = imag[u] - tmpI
				real[u] += tmpR
				imag[u] += tmpI
			}
		}
	}
}
