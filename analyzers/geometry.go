package analyzers

import (
	"math"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// GeometryAnalyzer inspects edge continuity, symmetry and line-angle
// dispersion.
type GeometryAnalyzer struct {
	cfg *config.Config
}

// NewGeometryAnalyzer creates a geometry analyzer.
func NewGeometryAnalyzer(cfg *config.Config) *GeometryAnalyzer {
	return &GeometryAnalyzer{cfg: cfg}
}

// EdgeCoherenceResult is the Hough line-length continuity outcome.
type EdgeCoherenceResult struct {
	ContinuityScore float64 `json:"continuity_score"`
	NumLines        int     `json:"num_lines"`
	AvgLineLength   float64 `json:"avg_line_length"`
	IsFragmented    bool    `json:"is_fragmented"`
	Confidence      float64 `json:"confidence"`
}

// SymmetryResult is the mirrored-half correlation outcome.
type SymmetryResult struct {
	HorizontalSymmetry float64 `json:"horizontal_symmetry"`
	VerticalSymmetry   float64 `json:"vertical_symmetry"`
	IsUnnatural        bool    `json:"is_unnatural"`
	Confidence         float64 `json:"confidence"`
}

// PerspectiveResult is the line-angle dispersion outcome.
type PerspectiveResult struct {
	AngleStd       float64 `json:"angle_std"`
	IsInconsistent bool    `json:"is_inconsistent"`
	Confidence     float64 `json:"confidence"`
}

// GeometryResult is the combined geometry probe outcome. Only EdgeFragmented
// is decision-wired.
type GeometryResult struct {
	EdgeFragmented bool `json:"edge_fragmented"`

	EdgeCoherence EdgeCoherenceResult `json:"edge_coherence"`
	Symmetry      SymmetryResult      `json:"symmetry"`
	Perspective   PerspectiveResult   `json:"perspective"`
}

// Analyze runs all geometry sub-probes over one image.
func (a *GeometryAnalyzer) Analyze(img *imageproc.Image) GeometryResult {
	gray := imageproc.ToGray(img)
	edges := imageproc.Canny(gray, 50, 150)

	edge := a.analyzeEdgeCoherence(edges)
	sym := a.analyzeSymmetry(gray)
	persp := a.analyzePerspective(edges)

	return GeometryResult{
		EdgeFragmented: edge.IsFragmented,
		EdgeCoherence:  edge,
		Symmetry:       sym,
		Perspective:    persp,
	}
}

// analyzeEdgeCoherence scores edge continuity from the mean detected
// line-segment length: long uninterrupted lines mean coherent structure.
func (a *GeometryAnalyzer) analyzeEdgeCoherence(edges *imageproc.Bitmask) EdgeCoherenceResult {
	segments := imageproc.HoughLinesP(edges, 50, 30, 10)
	if len(segments) == 0 {
		return EdgeCoherenceResult{ContinuityScore: 0, IsFragmented: true, Confidence: 0.5}
	}

	lengths := make([]float64, len(segments))
	for i, s := range segments {
		lengths[i] = s.Length()
	}
	avgLength := statutil.Mean(lengths)
	continuity := math.Min(avgLength/100.0, 1.0)

	isFragmented := continuity < a.cfg.Thresholds.EdgeContinuityAIMax
	confidence := 0.0
	if isFragmented {
		confidence = 0.5
	}
	return EdgeCoherenceResult{
		ContinuityScore: continuity,
		NumLines:        len(segments),
		AvgLineLength:   avgLength,
		IsFragmented:    isFragmented,
		Confidence:      confidence,
	}
}

func (a *GeometryAnalyzer) analyzeSymmetry(gray *imageproc.Gray) SymmetryResult {
	w, h := gray.W, gray.H

	// Horizontal: left half against the mirrored right half.
	minW := min(w/2, w-w/2)
	left := make([]float64, 0, minW*h)
	right := make([]float64, 0, minW*h)
	for y := 0; y < h; y++ {
		for x := 0; x < minW; x++ {
			left = append(left, gray.At(x, y))
			right = append(right, gray.At(w-1-x, y))
		}
	}
	hSym := statutil.Pearson(left, right)

	// Vertical: top half against the mirrored bottom half.
	minH := min(h/2, h-h/2)
	top := make([]float64, 0, minH*w)
	bottom := make([]float64, 0, minH*w)
	for y := 0; y < minH; y++ {
		for x := 0; x < w; x++ {
			top = append(top, gray.At(x, y))
			bottom = append(bottom, gray.At(x, h-1-y))
		}
	}
	vSym := statutil.Pearson(top, bottom)

	maxSym := math.Max(hSym, vSym)
	isUnnatural := maxSym > a.cfg.Thresholds.SymmetryMax
	confidence := 0.0
	if isUnnatural {
		confidence = 0.4
	}
	return SymmetryResult{HorizontalSymmetry: hSym, VerticalSymmetry: vSym, IsUnnatural: isUnnatural, Confidence: confidence}
}

func (a *GeometryAnalyzer) analyzePerspective(edges *imageproc.Bitmask) PerspectiveResult {
	lines := imageproc.HoughLines(edges, 100, 20)
	if len(lines) < 4 {
		return PerspectiveResult{}
	}

	angles := make([]float64, len(lines))
	for i, l := range lines {
		angles[i] = l.Theta
	}
	angleStd := statutil.Std(angles)

	isInconsistent := angleStd > a.cfg.Thresholds.PerspectiveAngleStdMax
	confidence := 0.0
	if isInconsistent {
		confidence = 0.3
	}
	return PerspectiveResult{AngleStd: angleStd, IsInconsistent: isInconsistent, Confidence: confidence}
}
