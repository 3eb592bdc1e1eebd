// Package detector wires the analysis probes and the decision engine into
// the single-asset pipeline: decode, probe in fixed order, score, verdict.
package detector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	log "github.com/sirupsen/logrus"

	// Decoders for the supported image formats beyond the stdlib set.
	_ "golang.org/x/image/webp"

	"github.com/synthscan/synthscan/analyzers"
	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/decision"
	"github.com/synthscan/synthscan/imageproc"
)

// ErrNoFrames means a video yielded no decodable frames.
var ErrNoFrames = errors.New("could not extract frames from video")

// Result is a complete analysis outcome for one asset.
type Result struct {
	decision.Verdict
	AnalysisDetails  map[string]any `json:"analysis_details"`
	FramesAnalyzed   int            `json:"frames_analyzed,omitempty"`
	ProcessingTimeMs float64        `json:"processing_time_ms"`
	Filename         string         `json:"filename,omitempty"`
}

// Detector runs the full probe pipeline. It is stateless apart from the
// immutable configuration and safe for concurrent use across assets.
type Detector struct {
	cfg *config.Config

	metadata  *analyzers.MetadataAnalyzer
	watermark *analyzers.WatermarkAnalyzer
	frequency *analyzers.FrequencyAnalyzer
	noise     *analyzers.NoiseAnalyzer
	color     *analyzers.ColorAnalyzer
	geometry  *analyzers.GeometryAnalyzer
	temporal  *analyzers.TemporalAnalyzer
	motion    *analyzers.MotionAnalyzer
}

// New creates a detector bound to the given configuration.
func New(cfg *config.Config) *Detector {
	return &Detector{
		cfg:       cfg,
		metadata:  analyzers.NewMetadataAnalyzer(cfg),
		watermark: analyzers.NewWatermarkAnalyzer(cfg),
		frequency: analyzers.NewFrequencyAnalyzer(cfg),
		noise:     analyzers.NewNoiseAnalyzer(cfg),
		color:     analyzers.NewColorAnalyzer(cfg),
		geometry:  analyzers.NewGeometryAnalyzer(cfg),
		temporal:  analyzers.NewTemporalAnalyzer(cfg),
		motion:    analyzers.NewMotionAnalyzer(cfg),
	}
}

// loadImage decodes the file at path into an RGB buffer.
func loadImage(path string) (*imageproc.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imaging.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return imageproc.FromImage(img), nil
}

// AnalyzeImage runs the image pipeline over the file at path. Fast mode
// skips the noise and geometry probes. Cancellation is honored between
// probes.
func (d *Detector) AnalyzeImage(ctx context.Context, path string, fastMode bool) (*Result, error) {
	img, err := loadImage(path)
	if err != nil {
		return nil, err
	}
	log.WithField("path", path).Debugf("analyzing %dx%d image, fast=%v", img.W, img.H, fastMode)

	engine := decision.NewEngine(d.cfg)
	details := map[string]any{}

	// Metadata and embedded credentials come first; they are the cheapest
	// and the most conclusive.
	metaResult := d.metadata.Analyze(path, false)
	details["metadata"] = metaResult
	for _, indicator := range metaResult.Indicators {
		engine.AddEvidence(indicator)
	}
	engine.AddDetection(decision.KindC2PASynthetic, metaResult.C2PASynthetic,
		"C2PA metadata indicates synthetic origin")
	engine.AddDetection(decision.KindMetadataSuspicious, metaResult.MetadataSuspicious,
		"Suspicious metadata patterns")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	watermarkResult := d.watermark.Analyze(img)
	details["watermark"] = watermarkResult
	engine.AddDetection(decision.KindWatermarkDetected, watermarkResult.WatermarkDetected,
		"Watermark detected: "+strings.Join(watermarkResult.Detections, ", "))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	freqResult := d.frequency.Analyze(img)
	details["frequency"] = freqResult
	engine.AddDetection(decision.KindFreqRatioAnomaly, freqResult.FreqRatioAnomaly,
		"DCT frequency ratio anomaly")
	engine.AddDetection(decision.KindCheckboardPattern, freqResult.CheckerboardPattern,
		"Diffusion checkerboard pattern detected")

	if !fastMode {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		noiseResult := d.noise.Analyze(img)
		details["noise"] = noiseResult
		engine.AddDetection(decision.KindNoiseVarianceLow, noiseResult.NoiseVarianceLow,
			"Unnaturally low noise variance")
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	colorResult := d.color.Analyze(img)
	details["color"] = colorResult
	engine.AddDetection(decision.KindRGBCorrelationHigh, colorResult.RGBCorrelationHigh,
		"Abnormally high RGB channel correlation")

	if !fastMode {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		geomResult := d.geometry.Analyze(img)
		details["geometry"] = geomResult
		engine.AddDetection(decision.KindEdgeFragmented, geomResult.EdgeFragmented,
			"Fragmented edge patterns")
	}

	verdict := engine.CalculateVerdict()
	return &Result{Verdict: *verdict, AnalysisDetails: details}, nil
}
