package analyzers

import (
	"math"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
)

// WatermarkAnalyzer looks for visible and embedded watermarks: corner edge
// density, frequency-domain periodic patterns, and LSB steganography.
type WatermarkAnalyzer struct {
	cfg *config.Config
}

// NewWatermarkAnalyzer creates a watermark analyzer.
func NewWatermarkAnalyzer(cfg *config.Config) *WatermarkAnalyzer {
	return &WatermarkAnalyzer{cfg: cfg}
}

// CornerWatermarkResult is the corner edge-density sub-probe outcome.
type CornerWatermarkResult struct {
	Detected   bool    `json:"detected"`
	Location   string  `json:"location,omitempty"`
	Confidence float64 `json:"confidence"`
}

// FrequencyWatermarkResult is the frequency-domain sub-probe outcome.
type FrequencyWatermarkResult struct {
	Detected     bool    `json:"detected"`
	PeakStrength float64 `json:"peak_strength"`
	Confidence   float64 `json:"confidence"`
}

// LSBResult is the least-significant-bit sub-probe outcome.
type LSBResult struct {
	Detected   bool    `json:"detected"`
	ChiSquare  float64 `json:"chi_square"`
	Confidence float64 `json:"confidence"`
}

// WatermarkResult is the combined watermark probe outcome.
type WatermarkResult struct {
	WatermarkDetected bool     `json:"watermark_detected"`
	Confidence        float64  `json:"confidence"`
	Detections        []string `json:"detections"`

	Corner    CornerWatermarkResult    `json:"text_watermark"`
	Frequency FrequencyWatermarkResult `json:"frequency_watermark"`
	LSB       LSBResult                `json:"lsb_steganography"`
}

// Analyze runs all watermark sub-probes over one image.
func (a *WatermarkAnalyzer) Analyze(img *imageproc.Image) WatermarkResult {
	var detections []string

	corner := a.detectCornerWatermark(img, &detections)
	freq := a.detectFrequencyWatermark(img, &detections)
	lsb := a.detectLSB(img, &detections)

	return WatermarkResult{
		WatermarkDetected: corner.Detected || freq.Detected || lsb.Detected,
		Confidence:        math.Max(corner.Confidence, math.Max(freq.Confidence, lsb.Confidence)),
		Detections:        detections,
		Corner:            corner,
		Frequency:         freq,
		LSB:               lsb,
	}
}

var cornerNames = []string{"top-left", "top-right", "bottom-left", "bottom-right"}

// detectCornerWatermark checks the four corner crops for high edge density,
// a cheap stand-in for burned-in logo or text watermarks.
func (a *WatermarkAnalyzer) detectCornerWatermark(img *imageproc.Image, detections *[]string) CornerWatermarkResult {
	gray := imageproc.ToGray(img)
	ch, cw := gray.H/10, gray.W/10
	if ch == 0 || cw == 0 {
		return CornerWatermarkResult{}
	}
	corners := []*imageproc.Gray{
		gray.Crop(0, 0, cw, ch),
		gray.Crop(gray.W-cw, 0, gray.W, ch),
		gray.Crop(0, gray.H-ch, cw, gray.H),
		gray.Crop(gray.W-cw, gray.H-ch, gray.W, gray.H),
	}
	for i, corner := range corners {
		edges := imageproc.Canny(corner, 50, 150)
		density := float64(edges.Count()) / float64(len(edges.Pix))
		if density > a.cfg.Thresholds.CornerEdgeDensityThreshold {
			*detections = append(*detections, "Corner watermark at "+cornerNames[i])
			return CornerWatermarkResult{Detected: true, Location: cornerNames[i], Confidence: 0.6}
		}
	}
	return CornerWatermarkResult{}
}

// detectFrequencyWatermark searches the high-frequency DCT band for a
// periodic pattern via its autocorrelation, ignoring the central peak.
func (a *WatermarkAnalyzer) detectFrequencyWatermark(img *imageproc.Image, detections *[]string) FrequencyWatermarkResult {
	dct := imageproc.DCT(img)
	h, w := dct.H, dct.W
	band := dct.Crop(w/2, h/2, w, h)
	if band.W == 0 || band.H == 0 {
		return FrequencyWatermarkResult{}
	}

	autocorr := imageproc.Autocorr2D(band)
	cy, cx := autocorr.H/2, autocorr.W/2
	maxPeak := 0.0
	for y := 0; y < autocorr.H; y++ {
		for x := 0; x < autocorr.W; x++ {
			if y >= cy-5 && y < cy+5 && x >= cx-5 && x < cx+5 {
				continue
			}
			if v := autocorr.At(x, y); v > maxPeak {
				maxPeak = v
			}
		}
	}

	detected := maxPeak > a.cfg.Thresholds.FrequencyWatermarkPeak
	if detected {
		*detections = append(*detections, "Frequency domain watermark pattern")
	}
	confidence := 0.0
	if detected {
		confidence = math.Min(maxPeak, 1.0)
	}
	return FrequencyWatermarkResult{Detected: detected, PeakStrength: maxPeak, Confidence: confidence}
}

// detectLSB runs a chi-square test on the least-significant bit plane of all
// channels against the 50/50 split clean images exhibit.
func (a *WatermarkAnalyzer) detectLSB(img *imageproc.Image, detections *[]string) LSBResult {
	if len(img.Pix) == 0 {
		return LSBResult{}
	}
	ones := 0
	for _, v := range img.Pix {
		ones += int(v & 1)
	}
	total := len(img.Pix)
	zeros := total - ones
	expected := float64(total) / 2
	chiSquare := (math.Pow(float64(zeros)-expected, 2) + math.Pow(float64(ones)-expected, 2)) / expected

	detected := chiSquare > a.cfg.Thresholds.LSBChiSquareThreshold
	if detected {
		*detections = append(*detections, "LSB steganography anomaly")
	}
	confidence := 0.0
	if detected {
		confidence = math.Min(chiSquare/10.0, 1.0)
	}
	return LSBResult{Detected: detected, ChiSquare: chiSquare, Confidence: confidence}
}
