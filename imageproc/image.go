// Package imageproc implements the image primitives the analysis probes are
// built on: grayscale conversion, Gaussian blur, Sobel / Canny, DCT, FFT,
// 2-D autocorrelation, Hough transforms, dense optical flow and noise
// residual extraction. All functions are pure; none keep state between calls.
package imageproc

import (
	"image"
)

// Image is an 8-bit RGB pixel buffer, row major, no alpha.
type Image struct {
	W, H int
	Pix  []uint8 // len == W*H*3
}

// Gray is a single-channel float64 plane.
type Gray struct {
	W, H int
	Pix  []float64 // len == W*H
}

// NewImage allocates a zeroed W x H RGB image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]uint8, w*h*3)}
}

// NewGray allocates a zeroed W x H plane.
func NewGray(w, h int) *Gray {
	return &Gray{W: w, H: h, Pix: make([]float64, w*h)}
}

// At returns the RGB triple at (x, y).
func (m *Image) At(x, y int) (r, g, b uint8) {
	i := (y*m.W + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set stores the RGB triple at (x, y).
func (m *Image) Set(x, y int, r, g, b uint8) {
	i := (y*m.W + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// At returns the value at (x, y).
func (g *Gray) At(x, y int) float64 {
	return g.Pix[y*g.W+x]
}

// Set stores the value at (x, y).
func (g *Gray) Set(x, y int, v float64) {
	g.Pix[y*g.W+x] = v
}

// FromImage converts any decoded image.Image into an RGB buffer, dropping
// alpha.
func FromImage(src image.Image) *Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := NewImage(w, h)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := src.At(x, y).RGBA()
			out.Pix[i] = uint8(r >> 8)
			out.Pix[i+1] = uint8(g >> 8)
			out.Pix[i+2] = uint8(b >> 8)
			i += 3
		}
	}
	return out
}

// ToGray converts RGB to a luma plane (ITU-R BT.601 coefficients).
func ToGray(m *Image) *Gray {
	out := NewGray(m.W, m.H)
	for i := 0; i < len(out.Pix); i++ {
		r := float64(m.Pix[i*3])
		g := float64(m.Pix[i*3+1])
		b := float64(m.Pix[i*3+2])
		out.Pix[i] = 0.299*r + 0.587*g + 0.114*b
	}
	return out
}

// Channel extracts channel c (0=R, 1=G, 2=B) as a float plane.
func Channel(m *Image, c int) *Gray {
	out := NewGray(m.W, m.H)
	for i := 0; i < len(out.Pix); i++ {
		out.Pix[i] = float64(m.Pix[i*3+c])
	}
	return out
}

// Saturation returns the HSV saturation plane scaled to [0, 255].
func Saturation(m *Image) *Gray {
	out := NewGray(m.W, m.H)
	for i := 0; i < len(out.Pix); i++ {
		r := m.Pix[i*3]
		g := m.Pix[i*3+1]
		b := m.Pix[i*3+2]
		maxV := max(r, max(g, b))
		minV := min(r, min(g, b))
		if maxV == 0 {
			out.Pix[i] = 0
		} else {
			out.Pix[i] = float64(maxV-minV) / float64(maxV) * 255
		}
	}
	return out
}

// Crop returns a copy of the rectangle [x0, x1) x [y0, y1) of g. The bounds
// are clamped to the plane.
func (g *Gray) Crop(x0, y0, x1, y1 int) *Gray {
	x0 = clampInt(x0, 0, g.W)
	x1 = clampInt(x1, 0, g.W)
	y0 = clampInt(y0, 0, g.H)
	y1 = clampInt(y1, 0, g.H)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	out := NewGray(x1-x0, y1-y0)
	for y := y0; y < y1; y++ {
		copy(out.Pix[(y-y0)*out.W:(y-y0+1)*out.W], g.Pix[y*g.W+x0:y*g.W+x1])
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
