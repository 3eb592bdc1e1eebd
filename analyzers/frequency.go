package analyzers

import (
	"math"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// FrequencyAnalyzer measures DCT band energy and periodic spatial artifacts
// characteristic of generative upsampling.
type FrequencyAnalyzer struct {
	cfg *config.Config
}

// NewFrequencyAnalyzer creates a frequency analyzer.
func NewFrequencyAnalyzer(cfg *config.Config) *FrequencyAnalyzer {
	return &FrequencyAnalyzer{cfg: cfg}
}

// DCTRatioResult is the high/low band energy ratio outcome.
type DCTRatioResult struct {
	Ratio      float64 `json:"ratio"`
	IsAnomaly  bool    `json:"is_anomaly"`
	Confidence float64 `json:"confidence"`
}

// CheckerboardResult is the autocorrelation peak outcome.
type CheckerboardResult struct {
	Detected     bool    `json:"detected"`
	PeakStrength float64 `json:"peak_strength"`
	Confidence   float64 `json:"confidence"`
}

// GANGridResult is the grid-line gradient outcome.
type GANGridResult struct {
	Detected     bool    `json:"detected"`
	GridStrength float64 `json:"grid_strength"`
	Confidence   float64 `json:"confidence"`
}

// FrequencyResult is the combined frequency probe outcome.
type FrequencyResult struct {
	FreqRatioAnomaly    bool `json:"freq_ratio_anomaly"`
	CheckerboardPattern bool `json:"checkerboard_pattern"`
	GANGridArtifacts    bool `json:"gan_grid_artifacts"`

	DCTRatio     DCTRatioResult     `json:"dct_ratio"`
	Checkerboard CheckerboardResult `json:"checkerboard"`
	GANGrid      GANGridResult      `json:"gan_grid"`
}

// Analyze runs all frequency sub-probes over one image.
func (a *FrequencyAnalyzer) Analyze(img *imageproc.Image) FrequencyResult {
	dct := a.analyzeDCTRatio(img)
	checker := a.detectCheckerboard(img)
	grid := a.detectGANGrid(img)
	return FrequencyResult{
		FreqRatioAnomaly:    dct.IsAnomaly,
		CheckerboardPattern: checker.Detected,
		GANGridArtifacts:    grid.Detected,
		DCTRatio:            dct,
		Checkerboard:        checker,
		GANGrid:             grid,
	}
}

// analyzeDCTRatio compares the energy of the high-frequency half against the
// low-frequency quarter of the DCT spectrum. Generated images concentrate
// energy in the low band.
func (a *FrequencyAnalyzer) analyzeDCTRatio(img *imageproc.Image) DCTRatioResult {
	dct := imageproc.DCT(img)
	h, w := dct.H, dct.W

	highEnergy := 0.0
	for y := h / 2; y < h; y++ {
		for x := w / 2; x < w; x++ {
			highEnergy += math.Abs(dct.At(x, y))
		}
	}
	lowEnergy := 0.0
	for y := 0; y < h/4; y++ {
		for x := 0; x < w/4; x++ {
			lowEnergy += math.Abs(dct.At(x, y))
		}
	}

	ratio := highEnergy / (lowEnergy + 1e-10)
	isAnomaly := ratio < a.cfg.Thresholds.DCTFreqRatioAIMax
	confidence := 0.0
	if isAnomaly {
		confidence = 0.8
	}
	return DCTRatioResult{Ratio: ratio, IsAnomaly: isAnomaly, Confidence: confidence}
}

// detectCheckerboard probes the image autocorrelation at the four cardinal
// neighbors of the center at 8 and 16 px offsets, where diffusion upsampling
// leaves periodic peaks.
func (a *FrequencyAnalyzer) detectCheckerboard(img *imageproc.Image) CheckerboardResult {
	autocorr := imageproc.Autocorr2D(imageproc.ToGray(img))
	h, w := autocorr.H, autocorr.W
	cy, cx := h/2, w/2

	maxPeak := 0.0
	for _, offset := range []int{8, 16} {
		positions := [][2]int{
			{cy + offset, cx},
			{cy - offset, cx},
			{cy, cx + offset},
			{cy, cx - offset},
		}
		var values []float64
		for _, p := range positions {
			if p[0] >= 0 && p[0] < h && p[1] >= 0 && p[1] < w {
				values = append(values, autocorr.At(p[1], p[0]))
			}
		}
		if peak := statutil.Mean(values); peak > maxPeak {
			maxPeak = peak
		}
	}

	detected := maxPeak > a.cfg.Thresholds.CheckerboardThreshold
	confidence := 0.0
	if detected {
		confidence = math.Min(maxPeak*2, 1.0)
	}
	return CheckerboardResult{Detected: detected, PeakStrength: maxPeak, Confidence: confidence}
}

// detectGANGrid measures mean absolute gradient strength along every 8th and
// 16th row and column; transposed-convolution artifacts align with those
// grids.
func (a *FrequencyAnalyzer) detectGANGrid(img *imageproc.Image) GANGridResult {
	gray := imageproc.ToGray(img)
	gx, gy := imageproc.Sobel(gray)
	h, w := gray.H, gray.W

	maxGridScore := 0.0
	for _, gridSize := range []int{8, 16} {
		var lineScores []float64
		for y := gridSize; y < h; y += gridSize {
			sum := 0.0
			for x := 0; x < w; x++ {
				sum += math.Abs(gy.At(x, y))
			}
			lineScores = append(lineScores, sum/float64(w))
		}
		for x := gridSize; x < w; x += gridSize {
			sum := 0.0
			for y := 0; y < h; y++ {
				sum += math.Abs(gx.At(x, y))
			}
			lineScores = append(lineScores, sum/float64(h))
		}
		if score := statutil.Mean(lineScores); score > maxGridScore {
			maxGridScore = score
		}
	}

	detected := maxGridScore > a.cfg.Thresholds.GANGridThreshold
	confidence := 0.0
	if detected {
		confidence = math.Min(maxGridScore/30.0, 1.0)
	}
	return GANGridResult{Detected: detected, GridStrength: maxGridScore, Confidence: confidence}
}
