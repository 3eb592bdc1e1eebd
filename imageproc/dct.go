package imageproc

import (
	"math"
	"math/cmplx"
)

// dct1d computes the orthonormal DCT-II of x through an FFT of the
// even/odd-reordered sequence.
func dct1d(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = x[0]
		return out
	}

	// v[j] = x[2j], v[n-1-j] = x[2j+1]
	v := make([]complex128, n)
	half := (n + 1) / 2
	for j := 0; j < half; j++ {
		v[j] = complex(x[2*j], 0)
	}
	for j := 0; j < n/2; j++ {
		v[n-1-j] = complex(x[2*j+1], 0)
	}
	spec := FFT(v)

	scale0 := math.Sqrt(1 / float64(n))
	scale := math.Sqrt(2 / float64(n))
	for k := 0; k < n; k++ {
		phase := -math.Pi * float64(k) / (2 * float64(n))
		c := spec[k] * cmplx.Exp(complex(0, phase))
		if k == 0 {
			out[k] = real(c) * scale0
		} else {
			out[k] = real(c) * scale
		}
	}
	return out
}

// DCT2D computes the separable orthonormal 2-D DCT-II of a plane whose
// values are expected to be normalized to [0, 1].
func DCT2D(g *Gray) *Gray {
	w, h := g.W, g.H
	out := NewGray(w, h)
	copy(out.Pix, g.Pix)

	row := make([]float64, w)
	for y := 0; y < h; y++ {
		copy(row, out.Pix[y*w:(y+1)*w])
		copy(out.Pix[y*w:(y+1)*w], dct1d(row))
	}
	col := make([]float64, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = out.Pix[y*w+x]
		}
		res := dct1d(col)
		for y := 0; y < h; y++ {
			out.Pix[y*w+x] = res[y]
		}
	}
	return out
}

// DCT converts the image to grayscale, normalizes to [0, 1] and returns its
// 2-D DCT-II.
func DCT(m *Image) *Gray {
	gray := ToGray(m)
	for i := range gray.Pix {
		gray.Pix[i] /= 255.0
	}
	return DCT2D(gray)
}
