package imageproc

import (
	"math"
)

// gaussianKernel returns a normalized 1-D Gaussian kernel of the given odd
// size. Sigma is derived from the size the same way OpenCV does when sigma
// is left at zero.
func gaussianKernel(size int) []float64 {
	if size < 1 {
		size = 1
	}
	if size%2 == 0 {
		size++
	}
	sigma := 0.3*(float64(size-1)*0.5-1) + 0.8
	kernel := make([]float64, size)
	half := size / 2
	sum := 0.0
	for i := range kernel {
		x := float64(i - half)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// GaussianBlur applies a separable Gaussian filter of the given kernel size
// to a plane, replicating edge pixels at the borders.
func GaussianBlur(g *Gray, size int) *Gray {
	kernel := gaussianKernel(size)
	half := len(kernel) / 2

	tmp := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		row := g.Pix[y*g.W : (y+1)*g.W]
		for x := 0; x < g.W; x++ {
			sum := 0.0
			for k, kv := range kernel {
				xx := clampInt(x+k-half, 0, g.W-1)
				sum += row[xx] * kv
			}
			tmp.Pix[y*g.W+x] = sum
		}
	}

	out := NewGray(g.W, g.H)
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			sum := 0.0
			for k, kv := range kernel {
				yy := clampInt(y+k-half, 0, g.H-1)
				sum += tmp.Pix[yy*g.W+x] * kv
			}
			out.Pix[y*g.W+x] = sum
		}
	}
	return out
}

// NoiseResidual returns image minus its Gaussian-smoothed version, per
// channel, as three float planes (R, G, B).
func NoiseResidual(m *Image) [3]*Gray {
	var out [3]*Gray
	for c := 0; c < 3; c++ {
		plane := Channel(m, c)
		blurred := GaussianBlur(plane, 5)
		res := NewGray(m.W, m.H)
		for i := range res.Pix {
			res.Pix[i] = plane.Pix[i] - blurred.Pix[i]
		}
		out[c] = res
	}
	return out
}

// ResidualValues flattens the three residual planes into one slice.
func ResidualValues(res [3]*Gray) []float64 {
	n := len(res[0].Pix)
	out := make([]float64, 0, n*3)
	for c := 0; c < 3; c++ {
		out = append(out, res[c].Pix...)
	}
	return out
}
