package analyzers

import (
	"math"
	"math/cmplx"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// assumedFPS is the frame rate the flicker band is defined against. The
// container's real frame rate is not probed; the 2-5 Hz band shifts
// accordingly for material at other rates.
const assumedFPS = 30.0

// TemporalAnalyzer inspects frame-to-frame consistency of a sampled video.
type TemporalAnalyzer struct {
	cfg *config.Config
}

// NewTemporalAnalyzer creates a temporal analyzer.
func NewTemporalAnalyzer(cfg *config.Config) *TemporalAnalyzer {
	return &TemporalAnalyzer{cfg: cfg}
}

// TemporalNoiseResult is the inter-frame diff deviation outcome.
type TemporalNoiseResult struct {
	TemporalNoiseStd float64 `json:"temporal_noise_std"`
	IsAnomaly        bool    `json:"is_anomaly"`
	Confidence       float64 `json:"confidence"`
}

// FrameCorrelationResult is the adjacent-frame residual correlation outcome.
type FrameCorrelationResult struct {
	AvgCorrelation float64 `json:"avg_correlation"`
	IsAnomaly      bool    `json:"is_anomaly"`
	Confidence     float64 `json:"confidence"`
}

// FlickerResult is the luminance flicker-band outcome.
type FlickerResult struct {
	FlickerDetected bool    `json:"flicker_detected"`
	PeakFrequency   float64 `json:"peak_frequency"`
	PeakStrength    float64 `json:"peak_strength"`
	Confidence      float64 `json:"confidence"`
}

// TemporalResult is the combined temporal probe outcome.
type TemporalResult struct {
	TemporalFlicker      bool `json:"temporal_flicker"`
	TemporalNoiseAnomaly bool `json:"temporal_noise_anomaly"`

	TemporalNoise    TemporalNoiseResult    `json:"temporal_noise"`
	FrameCorrelation FrameCorrelationResult `json:"frame_correlation"`
	Flicker          FlickerResult          `json:"flicker"`
}

// Analyze runs all temporal sub-probes over a sampled frame sequence.
// Fewer than two frames degrades to a benign zero result.
func (a *TemporalAnalyzer) Analyze(frames []*imageproc.Image) TemporalResult {
	noise := a.analyzeTemporalNoise(frames)
	corr := a.analyzeFrameCorrelation(frames)
	flicker := a.detectFlicker(frames)
	return TemporalResult{
		TemporalFlicker:      flicker.FlickerDetected,
		TemporalNoiseAnomaly: noise.IsAnomaly,
		TemporalNoise:        noise,
		FrameCorrelation:     corr,
		Flicker:              flicker,
	}
}

// analyzeTemporalNoise measures how unevenly the inter-frame difference
// level itself moves; real footage keeps it within a narrow band.
func (a *TemporalAnalyzer) analyzeTemporalNoise(frames []*imageproc.Image) TemporalNoiseResult {
	if len(frames) < 2 {
		return TemporalNoiseResult{}
	}

	levels := make([]float64, 0, len(frames)-1)
	prev := imageproc.ToGray(frames[0])
	for i := 1; i < len(frames); i++ {
		cur := imageproc.ToGray(frames[i])
		diff := make([]float64, len(cur.Pix))
		for j := range diff {
			diff[j] = math.Abs(cur.Pix[j] - prev.Pix[j])
		}
		levels = append(levels, statutil.Std(diff))
		prev = cur
	}

	temporalStd := statutil.Std(levels)
	isAnomaly := temporalStd < a.cfg.Thresholds.TemporalNoiseRealMin ||
		temporalStd > a.cfg.Thresholds.TemporalNoiseRealMax
	confidence := 0.0
	if isAnomaly {
		confidence = 0.7
	}
	return TemporalNoiseResult{TemporalNoiseStd: temporalStd, IsAnomaly: isAnomaly, Confidence: confidence}
}

// analyzeFrameCorrelation correlates adjacent noise residuals. Real sensors
// correlate strongly but never perfectly; generated frames land outside that
// band on either side.
func (a *TemporalAnalyzer) analyzeFrameCorrelation(frames []*imageproc.Image) FrameCorrelationResult {
	if len(frames) < 2 {
		return FrameCorrelationResult{}
	}

	correlations := make([]float64, 0, len(frames)-1)
	prev := imageproc.ResidualValues(imageproc.NoiseResidual(frames[0]))
	for i := 1; i < len(frames); i++ {
		cur := imageproc.ResidualValues(imageproc.NoiseResidual(frames[i]))
		correlations = append(correlations, statutil.Pearson(prev, cur))
		prev = cur
	}

	avgCorr := statutil.Mean(correlations)
	isAnomaly := avgCorr < a.cfg.Thresholds.FrameCorrelationMin ||
		avgCorr > a.cfg.Thresholds.FrameCorrelationMax
	confidence := 0.0
	if isAnomaly {
		confidence = 0.6
	}
	return FrameCorrelationResult{AvgCorrelation: avgCorr, IsAnomaly: isAnomaly, Confidence: confidence}
}

// detectFlicker looks for a dominant 2-5 Hz component in the per-frame mean
// luminance, assuming 30 fps source material.
func (a *TemporalAnalyzer) detectFlicker(frames []*imageproc.Image) FlickerResult {
	if len(frames) < 10 {
		return FlickerResult{}
	}

	n := len(frames)
	timeline := make([]complex128, n)
	for i, frame := range frames {
		timeline[i] = complex(statutil.Mean(imageproc.ToGray(frame).Pix), 0)
	}
	spectrum := imageproc.FFT(timeline)

	magnitudes := make([]float64, n)
	for i, v := range spectrum {
		magnitudes[i] = cmplx.Abs(v)
	}
	meanMagnitude := statutil.Mean(magnitudes)

	// Positive-frequency bins inside the 2-5 Hz band.
	peakMagnitude := 0.0
	peakFrequency := 0.0
	for i := 0; i <= n/2; i++ {
		freq := float64(i) * assumedFPS / float64(n)
		if freq < 2 || freq > 5 {
			continue
		}
		if magnitudes[i] > peakMagnitude {
			peakMagnitude = magnitudes[i]
			peakFrequency = freq
		}
	}
	if peakMagnitude == 0 {
		return FlickerResult{}
	}

	peakStrength := peakMagnitude / (meanMagnitude + 1e-10)
	detected := peakStrength > a.cfg.Thresholds.FlickerPeakRatio
	confidence := 0.0
	if detected {
		confidence = math.Min(peakStrength/5.0, 1.0)
	}
	return FlickerResult{
		FlickerDetected: detected,
		PeakFrequency:   peakFrequency,
		PeakStrength:    peakStrength,
		Confidence:      confidence,
	}
}
