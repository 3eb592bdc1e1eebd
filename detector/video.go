package detector

import (
	"bufio"
	"context"
	"fmt"
	"image/png"
	"io"
	"os/exec"
	"strconv"

	log "github.com/sirupsen/logrus"

	"github.com/synthscan/synthscan/decision"
	"github.com/synthscan/synthscan/imageproc"
)

// sampleFrames decodes every Nth frame of the video at path, capped at the
// configured maximum, by piping PNG frames out of ffmpeg.
func (d *Detector) sampleFrames(ctx context.Context, path string) ([]*imageproc.Image, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-vf", fmt.Sprintf(`select=not(mod(n\,%d))`, d.cfg.VideoFrameSampleRate),
		"-vsync", "vfr",
		"-frames:v", strconv.Itoa(d.cfg.MaxFramesToAnalyze),
		"-f", "image2pipe", "-vcodec", "png", "-",
	}
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to run ffmpeg: %w", err)
	}

	var frames []*imageproc.Image
	reader := bufio.NewReader(stdout)
	for len(frames) < d.cfg.MaxFramesToAnalyze {
		img, err := png.Decode(reader)
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				log.WithField("path", path).Debugf("frame decode stopped: %v", err)
			}
			break
		}
		frames = append(frames, imageproc.FromImage(img))
	}
	// Drain so ffmpeg can exit cleanly if the frame cap stopped us early.
	_, _ = io.Copy(io.Discard, reader)
	if err := cmd.Wait(); err != nil && len(frames) == 0 {
		return nil, fmt.Errorf("ffmpeg failed: %w", err)
	}
	return frames, nil
}

// AnalyzeVideo runs the video pipeline over the file at path: container
// metadata scan, image probes on the first sampled frame, then the temporal
// and motion probes across the sequence. Fast mode skips the motion probe.
func (d *Detector) AnalyzeVideo(ctx context.Context, path string, fastMode bool) (*Result, error) {
	engine := decision.NewEngine(d.cfg)
	details := map[string]any{}

	metaResult := d.metadata.Analyze(path, true)
	details["metadata"] = metaResult
	for _, indicator := range metaResult.Indicators {
		engine.AddEvidence(indicator)
	}
	engine.AddDetection(decision.KindMetadataSuspicious, metaResult.MetadataSuspicious,
		"Suspicious video metadata")

	frames, err := d.sampleFrames(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	log.WithField("path", path).Debugf("analyzing %d sampled frames, fast=%v", len(frames), fastMode)

	firstFrame := frames[0]

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	watermarkResult := d.watermark.Analyze(firstFrame)
	details["watermark"] = watermarkResult
	engine.AddDetection(decision.KindWatermarkDetected, watermarkResult.WatermarkDetected,
		"Video watermark detected")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	freqResult := d.frequency.Analyze(firstFrame)
	details["frequency"] = freqResult
	engine.AddDetection(decision.KindCheckboardPattern, freqResult.CheckerboardPattern,
		"Diffusion artifacts in video frames")

	if len(frames) >= 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		temporalResult := d.temporal.Analyze(frames)
		details["temporal"] = temporalResult
		engine.AddDetection(decision.KindTemporalFlicker, temporalResult.TemporalFlicker,
			"Diffusion flicker detected")
	}

	if !fastMode && len(frames) >= 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		motionResult := d.motion.Analyze(frames)
		details["motion"] = motionResult
		engine.AddDetection(decision.KindMotionVectorIrregular, motionResult.MotionVectorIrregular,
			"Irregular motion vectors")
	}

	verdict := engine.CalculateVerdict()
	return &Result{
		Verdict:         *verdict,
		AnalysisDetails: details,
		FramesAnalyzed:  len(frames),
	}, nil
}
