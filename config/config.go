package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/synthscan/synthscan/constants"
)

// Thresholds holds the per-probe decision thresholds. Two calibration sets
// circulate for the checkerboard / DCT-ratio / edge-continuity values:
// the default (stricter) set is {0.25, 0.10, 0.4}, the looser historical set
// is {0.15, 0.22, 0.6}. Either can be selected via a config file; the values
// are never averaged.
type Thresholds struct {
	// DCT frequency ratio. Below this the high/low band energy ratio is an anomaly.
	DCTFreqRatioAIMax float64 `toml:"dct_freq_ratio_ai_max" yaml:"dct_freq_ratio_ai_max"`

	// Noise residual variance below this is unnaturally clean.
	NoiseVarianceAIMax float64 `toml:"noise_variance_ai_max" yaml:"noise_variance_ai_max"`

	// Mean pairwise RGB channel correlation above this is suspicious.
	RGBCorrelationAIMin float64 `toml:"rgb_correlation_ai_min" yaml:"rgb_correlation_ai_min"`

	// Inter-frame diff std outside [min, max] is a temporal anomaly.
	TemporalNoiseRealMin float64 `toml:"temporal_noise_real_min" yaml:"temporal_noise_real_min"`
	TemporalNoiseRealMax float64 `toml:"temporal_noise_real_max" yaml:"temporal_noise_real_max"`

	// Autocorrelation peak at 8/16 px offsets above this is a checkerboard pattern.
	CheckerboardThreshold float64 `toml:"checkerboard_threshold" yaml:"checkerboard_threshold"`

	// Hough line continuity score below this means fragmented edges.
	EdgeContinuityAIMax float64 `toml:"edge_continuity_ai_max" yaml:"edge_continuity_ai_max"`

	// Watermark sub-probe thresholds.
	CornerEdgeDensityThreshold float64 `toml:"corner_edge_density_threshold" yaml:"corner_edge_density_threshold"`
	FrequencyWatermarkPeak     float64 `toml:"frequency_watermark_peak" yaml:"frequency_watermark_peak"`
	LSBChiSquareThreshold      float64 `toml:"lsb_chi_square_threshold" yaml:"lsb_chi_square_threshold"`

	// Grand-mean gradient strength along 8/16 px grid lines above this is a GAN grid.
	GANGridThreshold float64 `toml:"gan_grid_threshold" yaml:"gan_grid_threshold"`

	// Reported-only noise statistics.
	NoiseEntropyMin   float64 `toml:"noise_entropy_min" yaml:"noise_entropy_min"`
	LocalVarianceMin  float64 `toml:"local_variance_min" yaml:"local_variance_min"`
	PixelChiSquareMin float64 `toml:"pixel_chi_square_min" yaml:"pixel_chi_square_min"`

	// Reported-only color statistics.
	ModeSpreadMin  float64 `toml:"mode_spread_min" yaml:"mode_spread_min"`
	SaturationHigh float64 `toml:"saturation_high" yaml:"saturation_high"`
	SaturationLow  float64 `toml:"saturation_low" yaml:"saturation_low"`

	// Reported-only geometry statistics.
	SymmetryMax            float64 `toml:"symmetry_max" yaml:"symmetry_max"`
	PerspectiveAngleStdMax float64 `toml:"perspective_angle_std_max" yaml:"perspective_angle_std_max"`

	// Inter-frame noise residual correlation outside [min, max] is reported as an anomaly.
	FrameCorrelationMin float64 `toml:"frame_correlation_min" yaml:"frame_correlation_min"`
	FrameCorrelationMax float64 `toml:"frame_correlation_max" yaml:"frame_correlation_max"`

	// Flicker band peak magnitude / mean magnitude above this is diffusion flicker.
	FlickerPeakRatio float64 `toml:"flicker_peak_ratio" yaml:"flicker_peak_ratio"`

	// Optical flow magnitude variance outside [min, max] is irregular motion.
	// Calibrated against the block-matching flow in imageproc; substituting
	// another flow algorithm requires re-calibrating these.
	MotionVarianceMin float64 `toml:"motion_variance_min" yaml:"motion_variance_min"`
	MotionVarianceMax float64 `toml:"motion_variance_max" yaml:"motion_variance_max"`

	// Mean consecutive flow-magnitude difference below this is reported as unnaturally smooth.
	MotionSmoothnessMin float64 `toml:"motion_smoothness_min" yaml:"motion_smoothness_min"`
}

// Config is the process-wide immutable configuration. It is built once at
// startup (defaults + optional config file) and passed by pointer to every
// analyzer; nothing mutates it afterwards.
type Config struct {
	// Weight of each detection kind (0-100). Unknown kinds score nothing.
	ScoreWeights map[string]int `toml:"score_weights" yaml:"score_weights"`

	// Confidence cutoffs for the verdict labels.
	ConfidenceAIGenerated float64 `toml:"confidence_ai_generated" yaml:"confidence_ai_generated"`
	ConfidenceLikelyAI    float64 `toml:"confidence_likely_ai" yaml:"confidence_likely_ai"`
	ConfidenceSuspicious  float64 `toml:"confidence_suspicious" yaml:"confidence_suspicious"`

	// Alternative score-based verdict mode. Off by default; the confidence
	// path is canonical.
	ScoreBasedVerdict     bool `toml:"score_based_verdict" yaml:"score_based_verdict"`
	ScoreHighConfidence   int  `toml:"score_high_confidence" yaml:"score_high_confidence"`
	ScoreMediumConfidence int  `toml:"score_medium_confidence" yaml:"score_medium_confidence"`
	ScoreSuspicious       int  `toml:"score_suspicious" yaml:"score_suspicious"`

	Thresholds Thresholds `toml:"thresholds" yaml:"thresholds"`

	// Marker substrings searched (lowercase) in metadata text.
	AIWatermarkStrings []string `toml:"ai_watermark_strings" yaml:"ai_watermark_strings"`
	AISoftwareTags     []string `toml:"ai_software_tags" yaml:"ai_software_tags"`
	SyntheticEncoders  []string `toml:"synthetic_encoders" yaml:"synthetic_encoders"`

	// Video analysis settings.
	VideoFrameSampleRate int `toml:"video_frame_sample_rate" yaml:"video_frame_sample_rate"`
	MaxFramesToAnalyze   int `toml:"max_frames_to_analyze" yaml:"max_frames_to_analyze"`

	// Upload size caps (bytes), enforced before decoding.
	MaxImageSize int64 `toml:"max_image_size" yaml:"max_image_size"`
	MaxVideoSize int64 `toml:"max_video_size" yaml:"max_video_size"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ScoreWeights: map[string]int{
			"watermark_detected":      100,
			"c2pa_synthetic":          90,
			"metadata_suspicious":     40,
			"checkboard_pattern":      40,
			"temporal_flicker":        35,
			"freq_ratio_anomaly":      30,
			"noise_variance_low":      25,
			"motion_vector_irregular": 25,
			"rgb_correlation_high":    20,
			"shadow_inconsistent":     15,
			"edge_fragmented":         15,
		},
		ConfidenceAIGenerated: 0.70,
		ConfidenceLikelyAI:    0.50,
		ConfidenceSuspicious:  0.30,

		ScoreBasedVerdict:     false,
		ScoreHighConfidence:   100,
		ScoreMediumConfidence: 60,
		ScoreSuspicious:       30,

		Thresholds: Thresholds{
			DCTFreqRatioAIMax:          0.10,
			NoiseVarianceAIMax:         5.0,
			RGBCorrelationAIMin:        0.95,
			TemporalNoiseRealMin:       2.5,
			TemporalNoiseRealMax:       10.0,
			CheckerboardThreshold:      0.25,
			EdgeContinuityAIMax:        0.4,
			CornerEdgeDensityThreshold: 0.05,
			FrequencyWatermarkPeak:     0.3,
			LSBChiSquareThreshold:      3.84,
			GANGridThreshold:           15.0,
			NoiseEntropyMin:            4.0,
			LocalVarianceMin:           50.0,
			PixelChiSquareMin:          0.5,
			ModeSpreadMin:              10.0,
			SaturationHigh:             200,
			SaturationLow:              30,
			SymmetryMax:                0.85,
			PerspectiveAngleStdMax:     1.0,
			FrameCorrelationMin:        0.5,
			FrameCorrelationMax:        0.98,
			FlickerPeakRatio:           3.0,
			MotionVarianceMin:          0.5,
			MotionVarianceMax:          50.0,
			MotionSmoothnessMin:        0.1,
		},

		AIWatermarkStrings: []string{
			"midjourney",
			"dall-e",
			"dall·e",
			"openai",
			"runway",
			"stable diffusion",
			"adobe firefly",
			"pika",
			"sora",
			"kling",
			"synthetic",
			"ai generated",
			"content credentials",
			"c2pa",
		},
		AISoftwareTags: []string{
			"midjourney",
			"dall-e",
			"stable diffusion",
			"adobe firefly",
			"runway",
			"pika labs",
			"synthesia",
			"d-id",
		},
		SyntheticEncoders: []string{"runway", "pika", "sora", "synthesia"},

		VideoFrameSampleRate: 10,
		MaxFramesToAnalyze:   100,

		MaxImageSize: 50 * 1024 * 1024,
		MaxVideoSize: 500 * 1024 * 1024,
	}
}

// Load builds the configuration from defaults, overlaid with the given
// config file if path is non-empty. If path is empty, the env variable
// SYNTHSCAN_CONFIG is consulted.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(constants.ENV_CONFIG)
	}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// MaxPossibleScore returns the sum of all detection weights.
func (c *Config) MaxPossibleScore() int {
	total := 0
	for _, w := range c.ScoreWeights {
		total += w
	}
	return total
}
