package imageproc

import (
	"math"
	"math/cmplx"
)

// fftRadix2 computes an in-place iterative Cooley-Tukey FFT. len(x) must be
// a power of two. When invert is set, the unscaled inverse transform is
// computed (the caller divides by n).
func fftRadix2(x []complex128, invert bool) {
	n := len(x)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		angle := 2 * math.Pi / float64(length)
		if !invert {
			angle = -angle
		}
		wl := cmplx.Exp(complex(0, angle))
		for i := 0; i < n; i += length {
			w := complex(1, 0)
			for j := 0; j < length/2; j++ {
				u := x[i+j]
				v := x[i+j+length/2] * w
				x[i+j] = u + v
				x[i+j+length/2] = u - v
				w *= wl
			}
		}
	}
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// FFT computes the forward discrete Fourier transform of x for any length,
// using radix-2 for powers of two and Bluestein's chirp-z algorithm
// otherwise.
func FFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	copy(out, x)
	if n <= 1 {
		return out
	}
	if n&(n-1) == 0 {
		fftRadix2(out, false)
		return out
	}
	return bluestein(out)
}

// IFFT computes the inverse transform, scaled by 1/n.
func IFFT(x []complex128) []complex128 {
	n := len(x)
	if n == 0 {
		return nil
	}
	conj := make([]complex128, n)
	for i, v := range x {
		conj[i] = cmplx.Conj(v)
	}
	fwd := FFT(conj)
	out := make([]complex128, n)
	for i, v := range fwd {
		out[i] = cmplx.Conj(v) / complex(float64(n), 0)
	}
	return out
}

// bluestein computes an arbitrary-length DFT as a circular convolution of
// chirp-modulated sequences, carried out with power-of-two FFTs.
func bluestein(x []complex128) []complex128 {
	n := len(x)
	m := nextPow2(2*n - 1)

	chirp := make([]complex128, n)
	for k := 0; k < n; k++ {
		// k^2 mod 2n keeps the angle argument small for large k.
		phase := math.Pi * float64((k*k)%(2*n)) / float64(n)
		chirp[k] = cmplx.Exp(complex(0, -phase))
	}

	a := make([]complex128, m)
	for k := 0; k < n; k++ {
		a[k] = x[k] * chirp[k]
	}
	b := make([]complex128, m)
	b[0] = cmplx.Conj(chirp[0])
	for k := 1; k < n; k++ {
		c := cmplx.Conj(chirp[k])
		b[k] = c
		b[m-k] = c
	}

	fftRadix2(a, false)
	fftRadix2(b, false)
	for i := range a {
		a[i] *= b[i]
	}
	fftRadix2(a, true)
	scale := complex(1/float64(m), 0)

	out := make([]complex128, n)
	for k := 0; k < n; k++ {
		out[k] = a[k] * scale * chirp[k]
	}
	return out
}

// FFT2D computes the 2-D forward transform of a plane, rows first then
// columns, returning row-major complex coefficients.
func FFT2D(g *Gray) []complex128 {
	w, h := g.W, g.H
	data := make([]complex128, w*h)
	for i, v := range g.Pix {
		data[i] = complex(v, 0)
	}
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, data[y*w:(y+1)*w])
		copy(data[y*w:(y+1)*w], FFT(row))
	}
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		res := FFT(col)
		for y := 0; y < h; y++ {
			data[y*w+x] = res[y]
		}
	}
	return data
}

// ifft2D inverts a row-major 2-D spectrum in place semantics (returns a new
// slice).
func ifft2D(data []complex128, w, h int) []complex128 {
	out := make([]complex128, w*h)
	copy(out, data)
	row := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(row, out[y*w:(y+1)*w])
		copy(out[y*w:(y+1)*w], IFFT(row))
	}
	col := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out[y*w+x]
		}
		res := IFFT(col)
		for y := 0; y < h; y++ {
			out[y*w+x] = res[y]
		}
	}
	return out
}

// fftShift swaps plane quadrants so the zero-frequency bin lands at
// (h/2, w/2), matching the usual centered spectrum layout.
func fftShift(g *Gray) *Gray {
	out := NewGray(g.W, g.H)
	dx, dy := g.W/2, g.H/2
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			out.Pix[((y+dy)%g.H)*g.W+(x+dx)%g.W] = g.Pix[y*g.W+x]
		}
	}
	return out
}

// FFTMag returns the magnitude of the centered 2-D FFT of a plane.
func FFTMag(g *Gray) *Gray {
	spec := FFT2D(g)
	mag := NewGray(g.W, g.H)
	for i, v := range spec {
		mag.Pix[i] = cmplx.Abs(v)
	}
	return fftShift(mag)
}

// Autocorr2D computes the circular 2-D autocorrelation of a plane as the
// inverse FFT of its power spectrum, centered and normalized so the peak
// equals 1.
func Autocorr2D(g *Gray) *Gray {
	w, h := g.W, g.H
	spec := FFT2D(g)
	for i, v := range spec {
		re := real(v)
		im := imag(v)
		spec[i] = complex(re*re+im*im, 0)
	}
	ac := ifft2D(spec, w, h)
	out := NewGray(w, h)
	maxV := 0.0
	for i, v := range ac {
		out.Pix[i] = real(v)
		if out.Pix[i] > maxV {
			maxV = out.Pix[i]
		}
	}
	out = fftShift(out)
	if maxV != 0 {
		for i := range out.Pix {
			out.Pix[i] /= maxV
		}
	}
	return out
}
