package analyzers

import (
	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// ColorAnalyzer inspects color-channel statistics.
type ColorAnalyzer struct {
	cfg *config.Config
}

// NewColorAnalyzer creates a color analyzer.
func NewColorAnalyzer(cfg *config.Config) *ColorAnalyzer {
	return &ColorAnalyzer{cfg: cfg}
}

// RGBCorrelationResult holds the pairwise channel correlations.
type RGBCorrelationResult struct {
	AvgCorrelation float64 `json:"avg_correlation"`
	RG             float64 `json:"r_g"`
	RB             float64 `json:"r_b"`
	GB             float64 `json:"g_b"`
	IsHigh         bool    `json:"is_high"`
	Confidence     float64 `json:"confidence"`
}

// ColorCastResult holds the per-channel histogram mode spread.
type ColorCastResult struct {
	ModeStd     float64 `json:"mode_std"`
	IsUnnatural bool    `json:"is_unnatural"`
	Confidence  float64 `json:"confidence"`
}

// SaturationResult holds the HSV saturation statistics.
type SaturationResult struct {
	MeanSaturation float64 `json:"mean_saturation"`
	StdSaturation  float64 `json:"std_saturation"`
	IsExtreme      bool    `json:"is_extreme"`
	Confidence     float64 `json:"confidence"`
}

// ColorResult is the combined color probe outcome. Only RGBCorrelationHigh
// is decision-wired.
type ColorResult struct {
	RGBCorrelationHigh bool `json:"rgb_correlation_high"`

	RGBCorrelation RGBCorrelationResult `json:"rgb_correlation"`
	ColorCast      ColorCastResult      `json:"color_cast"`
	Saturation     SaturationResult     `json:"saturation"`
}

// Analyze runs all color sub-probes over one image.
func (a *ColorAnalyzer) Analyze(img *imageproc.Image) ColorResult {
	rgb := a.analyzeRGBCorrelation(img)
	cast := a.analyzeColorCast(img)
	sat := a.analyzeSaturation(img)
	return ColorResult{
		RGBCorrelationHigh: rgb.IsHigh,
		RGBCorrelation:     rgb,
		ColorCast:          cast,
		Saturation:         sat,
	}
}

func (a *ColorAnalyzer) analyzeRGBCorrelation(img *imageproc.Image) RGBCorrelationResult {
	r := imageproc.Channel(img, 0).Pix
	g := imageproc.Channel(img, 1).Pix
	b := imageproc.Channel(img, 2).Pix

	rg := statutil.Pearson(r, g)
	rb := statutil.Pearson(r, b)
	gb := statutil.Pearson(g, b)
	avg := (rg + rb + gb) / 3

	isHigh := avg > a.cfg.Thresholds.RGBCorrelationAIMin
	confidence := 0.0
	if isHigh {
		confidence = 0.6
	}
	return RGBCorrelationResult{AvgCorrelation: avg, RG: rg, RB: rb, GB: gb, IsHigh: isHigh, Confidence: confidence}
}

// analyzeColorCast compares the per-channel histogram modes; channels of a
// natural photo peak at clearly different intensities.
func (a *ColorAnalyzer) analyzeColorCast(img *imageproc.Image) ColorCastResult {
	modes := make([]float64, 3)
	for c := 0; c < 3; c++ {
		hist := statutil.Histogram(imageproc.Channel(img, c).Pix, 256, 0, 256)
		modes[c] = float64(statutil.ArgMax(hist))
	}
	modeStd := statutil.Std(modes)

	isUnnatural := modeStd < a.cfg.Thresholds.ModeSpreadMin
	confidence := 0.0
	if isUnnatural {
		confidence = 0.4
	}
	return ColorCastResult{ModeStd: modeStd, IsUnnatural: isUnnatural, Confidence: confidence}
}

func (a *ColorAnalyzer) analyzeSaturation(img *imageproc.Image) SaturationResult {
	sat := imageproc.Saturation(img)
	mean := statutil.Mean(sat.Pix)
	std := statutil.Std(sat.Pix)

	isExtreme := mean > a.cfg.Thresholds.SaturationHigh || mean < a.cfg.Thresholds.SaturationLow
	confidence := 0.0
	if isExtreme {
		confidence = 0.3
	}
	return SaturationResult{MeanSaturation: mean, StdSaturation: std, IsExtreme: isExtreme, Confidence: confidence}
}
