package imageproc

import (
	"math"
	"sort"
)

// PolarLine is a line in Hough normal form.
type PolarLine struct {
	Rho   float64
	Theta float64
	Votes int
}

// Segment is a line segment in pixel coordinates.
type Segment struct {
	X1, Y1, X2, Y2 int
}

// Length returns the euclidean length of the segment.
func (s Segment) Length() float64 {
	return math.Hypot(float64(s.X2-s.X1), float64(s.Y2-s.Y1))
}

// houghAccumulate fills the (rho, theta) vote accumulator for the set pixels
// of edges, with rho resolution 1 px and theta resolution pi/180.
func houghAccumulate(edges *Bitmask) (acc []int, nRho, nTheta int, rhoOffset int) {
	nTheta = 180
	maxRho := int(math.Ceil(math.Hypot(float64(edges.W), float64(edges.H))))
	nRho = 2*maxRho + 1
	rhoOffset = maxRho
	acc = make([]int, nRho*nTheta)

	sinT := make([]float64, nTheta)
	cosT := make([]float64, nTheta)
	for t := 0; t < nTheta; t++ {
		theta := float64(t) * math.Pi / 180
		sinT[t] = math.Sin(theta)
		cosT[t] = math.Cos(theta)
	}
	for y := 0; y < edges.H; y++ {
		for x := 0; x < edges.W; x++ {
			if !edges.Pix[y*edges.W+x] {
				continue
			}
			for t := 0; t < nTheta; t++ {
				rho := int(math.Round(float64(x)*cosT[t] + float64(y)*sinT[t]))
				acc[(rho+rhoOffset)*nTheta+t]++
			}
		}
	}
	return acc, nRho, nTheta, rhoOffset
}

// HoughLines runs the standard Hough transform and returns lines whose
// accumulator cell reaches votes, strongest first, at most maxLines entries.
func HoughLines(edges *Bitmask, votes, maxLines int) []PolarLine {
	acc, nRho, nTheta, rhoOffset := houghAccumulate(edges)
	var lines []PolarLine
	for r := 0; r < nRho; r++ {
		for t := 0; t < nTheta; t++ {
			v := acc[r*nTheta+t]
			if v >= votes {
				lines = append(lines, PolarLine{
					Rho:   float64(r - rhoOffset),
					Theta: float64(t) * math.Pi / 180,
					Votes: v,
				})
			}
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Votes > lines[j].Votes })
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// HoughLinesP extracts line segments: peaks of the vote accumulator are
// traced across the edge mask, joining runs separated by at most maxGap
// pixels and keeping segments of at least minLineLength. Edge pixels are
// consumed as they are claimed by a segment, so the result is deterministic
// for a fixed input.
func HoughLinesP(edges *Bitmask, votes, minLineLength, maxGap int) []Segment {
	acc, nRho, nTheta, rhoOffset := houghAccumulate(edges)

	type peak struct {
		r, t, votes int
	}
	var peaks []peak
	for r := 0; r < nRho; r++ {
		for t := 0; t < nTheta; t++ {
			if v := acc[r*nTheta+t]; v >= votes {
				peaks = append(peaks, peak{r, t, v})
			}
		}
	}
	sort.SliceStable(peaks, func(i, j int) bool { return peaks[i].votes > peaks[j].votes })

	remaining := make([]bool, len(edges.Pix))
	copy(remaining, edges.Pix)

	var segments []Segment
	for _, p := range peaks {
		theta := float64(p.t) * math.Pi / 180
		rho := float64(p.r - rhoOffset)
		segments = append(segments, traceSegments(edges.W, edges.H, remaining, rho, theta, minLineLength, maxGap)...)
	}
	return segments
}

// traceSegments walks the full discrete line (rho, theta) across the image,
// splitting it at gaps and consuming the edge pixels it claims.
func traceSegments(w, h int, remaining []bool, rho, theta float64, minLen, maxGap int) []Segment {
	sinT, cosT := math.Sin(theta), math.Cos(theta)

	// Walk along the line direction (-sin, cos) from its closest point to
	// the origin, far enough in both directions to cross the whole image.
	x0 := rho * cosT
	y0 := rho * sinT
	span := int(math.Ceil(math.Hypot(float64(w), float64(h))))

	var segments []Segment
	startX, startY, endX, endY := -1, -1, -1, -1
	gap := 0

	flush := func() {
		if startX >= 0 {
			seg := Segment{X1: startX, Y1: startY, X2: endX, Y2: endY}
			if seg.Length() >= float64(minLen) {
				segments = append(segments, seg)
			}
		}
		startX, startY = -1, -1
		gap = 0
	}

	for step := -span; step <= span; step++ {
		x := int(math.Round(x0 - float64(step)*sinT))
		y := int(math.Round(y0 + float64(step)*cosT))
		on := x >= 0 && x < w && y >= 0 && y < h && remaining[y*w+x]
		if on {
			remaining[y*w+x] = false
			if startX < 0 {
				startX, startY = x, y
			}
			endX, endY = x, y
			gap = 0
		} else if startX >= 0 {
			gap++
			if gap > maxGap {
				flush()
			}
		}
	}
	flush()
	return segments
}
