package analyzers

import (
	"math"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// MotionAnalyzer inspects dense optical-flow statistics of a sampled video.
type MotionAnalyzer struct {
	cfg *config.Config
}

// NewMotionAnalyzer creates a motion analyzer.
func NewMotionAnalyzer(cfg *config.Config) *MotionAnalyzer {
	return &MotionAnalyzer{cfg: cfg}
}

// MotionVectorResult is the flow-magnitude variance outcome.
type MotionVectorResult struct {
	MotionVariance float64 `json:"motion_variance"`
	IsIrregular    bool    `json:"is_irregular"`
	Confidence     float64 `json:"confidence"`
}

// MotionSmoothnessResult is the consecutive-flow difference outcome.
type MotionSmoothnessResult struct {
	AvgMotionDiff float64 `json:"avg_motion_diff"`
	IsUnnatural   bool    `json:"is_unnatural"`
	Confidence    float64 `json:"confidence"`
}

// MotionResult is the combined motion probe outcome. Only
// MotionVectorIrregular is decision-wired.
type MotionResult struct {
	MotionVectorIrregular bool `json:"motion_vector_irregular"`

	MotionVectors    MotionVectorResult     `json:"motion_vectors"`
	MotionSmoothness MotionSmoothnessResult `json:"motion_smoothness"`
}

// Analyze runs both motion sub-probes over a sampled frame sequence. Fewer
// than two frames degrades to a benign zero result.
func (a *MotionAnalyzer) Analyze(frames []*imageproc.Image) MotionResult {
	grays := make([]*imageproc.Gray, len(frames))
	for i, f := range frames {
		grays[i] = imageproc.ToGray(f)
	}
	mags := make([]*imageproc.Gray, 0, len(grays))
	for i := 0; i+1 < len(grays); i++ {
		mag, _ := imageproc.OpticalFlow(grays[i], grays[i+1])
		mags = append(mags, mag)
	}

	vectors := a.analyzeMotionVectors(mags)
	smoothness := a.analyzeMotionSmoothness(mags)
	return MotionResult{
		MotionVectorIrregular: vectors.IsIrregular,
		MotionVectors:         vectors,
		MotionSmoothness:      smoothness,
	}
}

// analyzeMotionVectors checks the variance of mean flow magnitude across
// frame pairs: real camera work is neither frozen nor erratic.
func (a *MotionAnalyzer) analyzeMotionVectors(mags []*imageproc.Gray) MotionVectorResult {
	if len(mags) == 0 {
		return MotionVectorResult{}
	}
	means := make([]float64, len(mags))
	for i, m := range mags {
		means[i] = statutil.Mean(m.Pix)
	}
	variance := statutil.Variance(means)

	isIrregular := variance < a.cfg.Thresholds.MotionVarianceMin ||
		variance > a.cfg.Thresholds.MotionVarianceMax
	confidence := 0.0
	if isIrregular {
		confidence = 0.6
	}
	return MotionVectorResult{MotionVariance: variance, IsIrregular: isIrregular, Confidence: confidence}
}

// analyzeMotionSmoothness averages the pixelwise difference of consecutive
// flow-magnitude fields; values near zero are the over-interpolated look of
// generated motion.
func (a *MotionAnalyzer) analyzeMotionSmoothness(mags []*imageproc.Gray) MotionSmoothnessResult {
	if len(mags) < 2 {
		return MotionSmoothnessResult{}
	}
	diffs := make([]float64, 0, len(mags)-1)
	for i := 0; i+1 < len(mags); i++ {
		m1, m2 := mags[i], mags[i+1]
		if len(m1.Pix) != len(m2.Pix) {
			continue
		}
		sum := 0.0
		for j := range m1.Pix {
			sum += math.Abs(m1.Pix[j] - m2.Pix[j])
		}
		diffs = append(diffs, sum/float64(len(m1.Pix)))
	}
	if len(diffs) == 0 {
		return MotionSmoothnessResult{}
	}
	avgDiff := statutil.Mean(diffs)

	isUnnatural := avgDiff < a.cfg.Thresholds.MotionSmoothnessMin
	confidence := 0.0
	if isUnnatural {
		confidence = 0.5
	}
	return MotionSmoothnessResult{AvgMotionDiff: avgDiff, IsUnnatural: isUnnatural, Confidence: confidence}
}
