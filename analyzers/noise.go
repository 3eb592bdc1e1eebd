package analyzers

import (
	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
	"github.com/synthscan/synthscan/util/statutil"
)

// NoiseAnalyzer inspects the sensor-noise residual. Cameras leave measurable
// high-frequency noise; generators tend to produce unnaturally clean output.
type NoiseAnalyzer struct {
	cfg *config.Config
}

// NewNoiseAnalyzer creates a noise analyzer.
func NewNoiseAnalyzer(cfg *config.Config) *NoiseAnalyzer {
	return &NoiseAnalyzer{cfg: cfg}
}

// NoiseVarianceResult is the global residual variance outcome.
type NoiseVarianceResult struct {
	Variance   float64 `json:"variance"`
	IsLow      bool    `json:"is_low"`
	Confidence float64 `json:"confidence"`
}

// NoiseEntropyResult is the residual histogram entropy outcome.
type NoiseEntropyResult struct {
	Entropy    float64 `json:"entropy"`
	IsLow      bool    `json:"is_low"`
	Confidence float64 `json:"confidence"`
}

// LocalVarianceResult is the block variance-of-variances outcome.
type LocalVarianceResult struct {
	VarianceOfVariances float64 `json:"variance_of_variances"`
	IsUnnatural         bool    `json:"is_unnatural"`
	Confidence          float64 `json:"confidence"`
}

// PixelChiSquareResult is the uniform-histogram chi-square outcome.
type PixelChiSquareResult struct {
	ChiSquare  float64 `json:"chi_square"`
	IsAnomaly  bool    `json:"is_anomaly"`
	Confidence float64 `json:"confidence"`
}

// NoiseResult is the combined noise probe outcome. Only NoiseVarianceLow is
// decision-wired; the other statistics are reported.
type NoiseResult struct {
	NoiseVarianceLow bool `json:"noise_variance_low"`

	Variance      NoiseVarianceResult  `json:"variance"`
	Entropy       NoiseEntropyResult   `json:"entropy"`
	LocalVariance LocalVarianceResult  `json:"local_variance"`
	ChiSquare     PixelChiSquareResult `json:"chi_square"`
}

// Analyze runs all noise sub-probes over one image.
func (a *NoiseAnalyzer) Analyze(img *imageproc.Image) NoiseResult {
	residual := imageproc.ResidualValues(imageproc.NoiseResidual(img))
	variance := a.analyzeVariance(residual)
	entropy := a.analyzeEntropy(residual)
	local := a.analyzeLocalVariance(img)
	chi2 := a.chiSquareTest(img)
	return NoiseResult{
		NoiseVarianceLow: variance.IsLow,
		Variance:         variance,
		Entropy:          entropy,
		LocalVariance:    local,
		ChiSquare:        chi2,
	}
}

func (a *NoiseAnalyzer) analyzeVariance(residual []float64) NoiseVarianceResult {
	variance := statutil.Variance(residual)
	isLow := variance < a.cfg.Thresholds.NoiseVarianceAIMax
	confidence := 0.0
	if isLow {
		confidence = 0.7
	}
	return NoiseVarianceResult{Variance: variance, IsLow: isLow, Confidence: confidence}
}

func (a *NoiseAnalyzer) analyzeEntropy(residual []float64) NoiseEntropyResult {
	hist := statutil.Histogram(residual, 256, -128, 128)
	entropy := statutil.Entropy(hist)
	isLow := entropy < a.cfg.Thresholds.NoiseEntropyMin
	confidence := 0.0
	if isLow {
		confidence = 0.5
	}
	return NoiseEntropyResult{Entropy: entropy, IsLow: isLow, Confidence: confidence}
}

// analyzeLocalVariance tiles the grayscale into 32x32 blocks and measures
// how much the per-block variance itself varies. Natural scenes mix flat and
// textured regions; generated content is often uniformly smooth.
func (a *NoiseAnalyzer) analyzeLocalVariance(img *imageproc.Image) LocalVarianceResult {
	gray := imageproc.ToGray(img)
	const blockSize = 32

	var variances []float64
	block := make([]float64, 0, blockSize*blockSize)
	for y := 0; y+blockSize < gray.H; y += blockSize {
		for x := 0; x+blockSize < gray.W; x += blockSize {
			block = block[:0]
			for by := y; by < y+blockSize; by++ {
				block = append(block, gray.Pix[by*gray.W+x:by*gray.W+x+blockSize]...)
			}
			variances = append(variances, statutil.Variance(block))
		}
	}
	if len(variances) == 0 {
		return LocalVarianceResult{}
	}

	vov := statutil.Variance(variances)
	isUnnatural := vov < a.cfg.Thresholds.LocalVarianceMin
	confidence := 0.0
	if isUnnatural {
		confidence = 0.4
	}
	return LocalVarianceResult{VarianceOfVariances: vov, IsUnnatural: isUnnatural, Confidence: confidence}
}

func (a *NoiseAnalyzer) chiSquareTest(img *imageproc.Image) PixelChiSquareResult {
	gray := imageproc.ToGray(img)
	hist := statutil.Histogram(gray.Pix, 256, 0, 256)
	n := float64(len(gray.Pix))
	expected := n / 256

	chi2 := 0.0
	for _, c := range hist {
		d := float64(c) - expected
		chi2 += d * d / (expected + 1e-10)
	}
	chi2 /= n

	isAnomaly := chi2 < a.cfg.Thresholds.PixelChiSquareMin
	confidence := 0.0
	if isAnomaly {
		confidence = 0.3
	}
	return PixelChiSquareResult{ChiSquare: chi2, IsAnomaly: isAnomaly, Confidence: confidence}
}
