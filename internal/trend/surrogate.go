package trend

import (
	"math"
	"math/cmplx"
	"math/rand"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SurrogateGenerator produces phase-randomized synthetic series that share
// the Fourier amplitude spectrum of a source residual. Each surrogate
// preserves the second-order (power-spectral) statistics of the residual
// while destroying phase-coupled structure, which makes it a
// null-hypothesis sample for trend-significance testing. See Cummins &
// Masson (2014).
//
// A generator is not safe for concurrent use; each goroutine should build
// its own from the same residual.
type SurrogateGenerator struct {
	n    int
	mag  []float64
	fft  *fourier.CmplxFFT
	spec []complex128
	seq  []complex128
}

// NewSurrogateGenerator computes the amplitude spectrum of residual once
// and prepares scratch space for repeated surrogate draws.
func NewSurrogateGenerator(residual []float64) *SurrogateGenerator {
	n := len(residual)
	fft := fourier.NewCmplxFFT(n)

	seq := make([]complex128, n)
	for i, v := range residual {
		seq[i] = complex(v, 0)
	}
	coeff := fft.Coefficients(nil, seq)
	mag := make([]float64, n)
	for i, c := range coeff {
		mag[i] = cmplx.Abs(c)
	}

	return &SurrogateGenerator{
		n:    n,
		mag:  mag,
		fft:  fft,
		spec: make([]complex128, n),
		seq:  seq,
	}
}

// Len returns the surrogate length.
func (g *SurrogateGenerator) Len() int { return g.n }

// AmplitudeSpectrum returns a copy of the residual's amplitude spectrum.
func (g *SurrogateGenerator) AmplitudeSpectrum() []float64 {
	return append([]float64(nil), g.mag...)
}

// Generate draws one surrogate: N phase angles uniform on [0,2pi) from rng,
// a synthetic spectrum amplitude*exp(i*phase), and sqrt(2) times the real
// part of its inverse transform. The sqrt(2) restores the variance lost by
// discarding the imaginary part.
func (g *SurrogateGenerator) Generate(rng *rand.Rand) []float64 {
	for i := 0; i < g.n; i++ {
		ph := 2 * math.Pi * rng.Float64()
		g.spec[i] = complex(g.mag[i]*math.Cos(ph), g.mag[i]*math.Sin(ph))
	}

	// Sequence computes the unnormalized inverse transform; divide by N to
	// match the forward/inverse convention of the amplitude spectrum.
	inv := g.fft.Sequence(g.seq, g.spec)
	scale := 1 / float64(g.n)
	out := make([]float64, g.n)
	for i, c := range inv {
		out[i] = math.Sqrt2 * real(c) * scale
	}
	return out
}

// AccumulatePower adds |FFT(series)|^2 / N into dst, the running sum used
// to form the diagnostic mean power spectrum across surrogate trials.
func (g *SurrogateGenerator) AccumulatePower(series, dst []float64) {
	for i, v := range series {
		g.seq[i] = complex(v, 0)
	}
	coeff := g.fft.Coefficients(g.spec, g.seq)
	scale := 1 / float64(g.n)
	for i, c := range coeff {
		re, im := real(c), imag(c)
		dst[i] += (re*re + im*im) * scale
	}
}
