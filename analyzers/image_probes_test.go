package analyzers

import (
	"math/bits"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/imageproc"
)

// flatImage is a uniform RGB image.
func flatImage(w, h int, value uint8) *imageproc.Image {
	img := imageproc.NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

// texturedImage carries strong deterministic noise-like texture spread
// across the whole spectrum.
func texturedImage(w, h int) *imageproc.Image {
	img := imageproc.NewImage(w, h)
	seed := uint32(1)
	for i := range img.Pix {
		seed = seed*1664525 + 1013904223
		img.Pix[i] = uint8(seed >> 24)
	}
	return img
}

// balancedLSBImage has low amplitude and an exactly bias-free LSB plane
// (Thue-Morse sequence), so neither the corner nor the LSB sub-probe fires.
func balancedLSBImage(w, h int) *imageproc.Image {
	img := imageproc.NewImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = 128 + uint8(bits.OnesCount(uint(i))&1)
	}
	return img
}

func TestWatermarkLSBBiased(t *testing.T) {
	// Every LSB is zero: the chi-square statistic equals the sample count.
	img := flatImage(64, 64, 128)
	result := NewWatermarkAnalyzer(config.Default()).Analyze(img)

	assert.True(t, result.LSB.Detected)
	assert.InDelta(t, float64(64*64*3), result.LSB.ChiSquare, 1e-9)
	assert.True(t, result.WatermarkDetected)
	assert.Contains(t, result.Detections, "LSB steganography anomaly")
	assert.Equal(t, 1.0, result.Confidence)
}

func TestWatermarkCleanImage(t *testing.T) {
	// At 48x48 the high-band autocorrelation of this pattern also stays below
	// the frequency sub-probe's peak threshold (at 64x64 it reaches 0.36).
	img := balancedLSBImage(48, 48)
	result := NewWatermarkAnalyzer(config.Default()).Analyze(img)

	assert.False(t, result.LSB.Detected)
	assert.Less(t, result.LSB.ChiSquare, 3.84)
	assert.False(t, result.Corner.Detected)
	assert.False(t, result.WatermarkDetected)
	assert.Empty(t, result.Detections)
	assert.Equal(t, 0.0, result.Confidence)
}

func TestWatermarkCornerDense(t *testing.T) {
	// A checker pattern of 4 px cells burned into the top-left corner crop
	// produces heavy Canny response there (finer cells are smoothed away by
	// Canny's Gaussian pre-blur).
	img := flatImage(100, 100, 128)
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if (x/4+y/4)%2 == 0 {
				img.Set(x, y, 255, 255, 255)
			} else {
				img.Set(x, y, 0, 0, 0)
			}
		}
	}
	result := NewWatermarkAnalyzer(config.Default()).Analyze(img)
	assert.True(t, result.Corner.Detected)
	assert.Equal(t, "top-left", result.Corner.Location)
	assert.Contains(t, result.Detections, "Corner watermark at top-left")
}

func TestFrequencyDCTRatioFlatImage(t *testing.T) {
	// A flat image has zero high-band energy: the ratio collapses.
	result := NewFrequencyAnalyzer(config.Default()).Analyze(flatImage(64, 64, 200))
	assert.True(t, result.FreqRatioAnomaly)
	assert.Less(t, result.DCTRatio.Ratio, 0.10)
	assert.Equal(t, 0.8, result.DCTRatio.Confidence)
}

func TestFrequencyDCTRatioTexturedImage(t *testing.T) {
	result := NewFrequencyAnalyzer(config.Default()).Analyze(texturedImage(64, 64))
	assert.False(t, result.FreqRatioAnomaly)
	assert.GreaterOrEqual(t, result.DCTRatio.Ratio, 0.10)
}

func TestFrequencyCheckerboardPeriodicStripes(t *testing.T) {
	// Stripes with an 8 px period put full-strength autocorrelation peaks at
	// the probed offsets.
	img := imageproc.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/4)%2 == 0 {
				img.Set(x, y, 230, 230, 230)
			} else {
				img.Set(x, y, 20, 20, 20)
			}
		}
	}
	result := NewFrequencyAnalyzer(config.Default()).Analyze(img)
	assert.True(t, result.CheckerboardPattern)
	assert.Greater(t, result.Checkerboard.PeakStrength, 0.25)
}

func TestFrequencyGANGridStripeBoundaries(t *testing.T) {
	img := imageproc.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8)%2 == 0 {
				img.Set(x, y, 255, 255, 255)
			} else {
				img.Set(x, y, 0, 0, 0)
			}
		}
	}
	result := NewFrequencyAnalyzer(config.Default()).Analyze(img)
	assert.True(t, result.GANGridArtifacts)
	assert.Greater(t, result.GANGrid.GridStrength, 15.0)
}

func TestNoiseFlatImageIsSuspicious(t *testing.T) {
	result := NewNoiseAnalyzer(config.Default()).Analyze(flatImage(64, 64, 77))

	assert.True(t, result.NoiseVarianceLow)
	assert.InDelta(t, 0.0, result.Variance.Variance, 1e-9)
	assert.Equal(t, 0.7, result.Variance.Confidence)
	assert.True(t, result.Entropy.IsLow)
	assert.True(t, result.LocalVariance.IsUnnatural)
	// A single-value histogram is maximally non-uniform, not an anomaly.
	assert.False(t, result.ChiSquare.IsAnomaly)
}

func TestNoiseTexturedImageIsClean(t *testing.T) {
	result := NewNoiseAnalyzer(config.Default()).Analyze(texturedImage(96, 96))
	assert.False(t, result.NoiseVarianceLow)
	assert.Greater(t, result.Variance.Variance, 5.0)
}

func TestColorGrayImageCorrelation(t *testing.T) {
	// Identical channels correlate perfectly and share one histogram mode.
	img := imageproc.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8((x*31 + y*17) % 256)
			img.Set(x, y, v, v, v)
		}
	}
	result := NewColorAnalyzer(config.Default()).Analyze(img)
	assert.True(t, result.RGBCorrelationHigh)
	assert.InDelta(t, 1.0, result.RGBCorrelation.AvgCorrelation, 1e-9)
	assert.True(t, result.ColorCast.IsUnnatural)
}

func TestColorIndependentChannels(t *testing.T) {
	img := imageproc.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			r := uint8((x * 61) % 256)
			g := uint8((y * 67) % 256)
			img.Set(x, y, r, g, 255-r)
		}
	}
	result := NewColorAnalyzer(config.Default()).Analyze(img)
	assert.False(t, result.RGBCorrelationHigh)
	assert.Less(t, result.RGBCorrelation.AvgCorrelation, 0.95)
}

func TestColorSaturationExtremes(t *testing.T) {
	analyzer := NewColorAnalyzer(config.Default())

	red := imageproc.NewImage(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			red.Set(x, y, 255, 0, 0)
		}
	}
	assert.True(t, analyzer.Analyze(red).Saturation.IsExtreme)

	assert.True(t, analyzer.Analyze(flatImage(16, 16, 180)).Saturation.IsExtreme)

	muted := imageproc.NewImage(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			muted.Set(x, y, 200, 100, 100)
		}
	}
	assert.False(t, analyzer.Analyze(muted).Saturation.IsExtreme)
}

func TestGeometryBlankImageFragmented(t *testing.T) {
	result := NewGeometryAnalyzer(config.Default()).Analyze(flatImage(64, 64, 128))
	assert.True(t, result.EdgeFragmented)
	assert.Equal(t, 0.0, result.EdgeCoherence.ContinuityScore)
	assert.Equal(t, 0.5, result.EdgeCoherence.Confidence)
	assert.False(t, result.Perspective.IsInconsistent)
}

func TestGeometryLongLinesAreCoherent(t *testing.T) {
	// Full-height vertical bars give long Hough segments.
	img := flatImage(128, 128, 0)
	for y := 0; y < 128; y++ {
		for x := 40; x < 48; x++ {
			img.Set(x, y, 255, 255, 255)
		}
		for x := 90; x < 98; x++ {
			img.Set(x, y, 255, 255, 255)
		}
	}
	result := NewGeometryAnalyzer(config.Default()).Analyze(img)
	require.Greater(t, result.EdgeCoherence.NumLines, 0)
	assert.False(t, result.EdgeFragmented)
	assert.GreaterOrEqual(t, result.EdgeCoherence.ContinuityScore, 0.4)
}

func TestGeometryMirroredImageSymmetry(t *testing.T) {
	img := imageproc.NewImage(64, 64)
	for y := 0; y < 64; y++ {
		for x := 0; x < 32; x++ {
			v := uint8((x*37 + y*23) % 256)
			img.Set(x, y, v, v, v)
			img.Set(63-x, y, v, v, v)
		}
	}
	result := NewGeometryAnalyzer(config.Default()).Analyze(img)
	assert.True(t, result.Symmetry.IsUnnatural)
	assert.InDelta(t, 1.0, result.Symmetry.HorizontalSymmetry, 1e-9)
}
