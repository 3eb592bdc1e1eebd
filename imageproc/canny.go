package imageproc

import (
	"math"
)

// Bitmask is a boolean H x W plane, true where a feature is present.
type Bitmask struct {
	W, H int
	Pix  []bool
}

// Count returns the number of set pixels.
func (b *Bitmask) Count() int {
	n := 0
	for _, v := range b.Pix {
		if v {
			n++
		}
	}
	return n
}

// Canny runs the classic Canny edge detector on a plane: Gaussian smoothing,
// Sobel gradients, non-maximum suppression, then double-threshold hysteresis
// with the given low and high thresholds.
func Canny(g *Gray, lo, hi float64) *Bitmask {
	w, h := g.W, g.H
	out := &Bitmask{W: w, H: h, Pix: make([]bool, w*h)}
	if w < 3 || h < 3 {
		return out
	}

	smoothed := GaussianBlur(g, 5)
	gx, gy := Sobel(smoothed)

	mag := make([]float64, w*h)
	for i := range mag {
		mag[i] = math.Hypot(gx.Pix[i], gy.Pix[i])
	}

	// Non-maximum suppression along the quantized gradient direction.
	nms := make([]float64, w*h)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			m := mag[i]
			if m == 0 {
				continue
			}
			angle := math.Atan2(gy.Pix[i], gx.Pix[i])
			if angle < 0 {
				angle += math.Pi
			}
			var a, b float64
			switch {
			case angle < math.Pi/8 || angle >= 7*math.Pi/8:
				a, b = mag[i-1], mag[i+1]
			case angle < 3*math.Pi/8:
				a, b = mag[i-w+1], mag[i+w-1]
			case angle < 5*math.Pi/8:
				a, b = mag[i-w], mag[i+w]
			default:
				a, b = mag[i-w-1], mag[i+w+1]
			}
			if m >= a && m >= b {
				nms[i] = m
			}
		}
	}

	// Hysteresis: strong pixels seed, weak pixels join if 8-connected to a
	// strong one.
	const (
		weak   = 1
		strong = 2
	)
	marks := make([]uint8, w*h)
	stack := make([]int, 0, w*h/8)
	for i, m := range nms {
		if m >= hi {
			marks[i] = strong
			stack = append(stack, i)
		} else if m >= lo {
			marks[i] = weak
		}
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out.Pix[i] = true
		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				xx, yy := x+dx, y+dy
				if xx < 0 || xx >= w || yy < 0 || yy >= h {
					continue
				}
				j := yy*w + xx
				if marks[j] == weak {
					marks[j] = strong
					stack = append(stack, j)
				}
			}
		}
	}
	return out
}
