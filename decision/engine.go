// Package decision implements the evidence-weighted scoring engine. The
// engine knows nothing about what the probes measure; it is a weighted-OR
// accumulator with an evidence log.
package decision

import (
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/synthscan/synthscan/config"
)

// Detection kind names, matching the keys of config.ScoreWeights.
const (
	KindWatermarkDetected     = "watermark_detected"
	KindC2PASynthetic         = "c2pa_synthetic"
	KindMetadataSuspicious    = "metadata_suspicious"
	KindCheckboardPattern     = "checkboard_pattern"
	KindTemporalFlicker       = "temporal_flicker"
	KindFreqRatioAnomaly      = "freq_ratio_anomaly"
	KindNoiseVarianceLow      = "noise_variance_low"
	KindMotionVectorIrregular = "motion_vector_irregular"
	KindRGBCorrelationHigh    = "rgb_correlation_high"
	KindShadowInconsistent    = "shadow_inconsistent"
	KindEdgeFragmented        = "edge_fragmented"
)

// Verdict labels.
const (
	LabelAIGenerated = "AI-Generated"
	LabelLikelyAI    = "Likely AI-Generated"
	LabelSuspicious  = "Suspicious"
	LabelLikelyReal  = "Likely Real"

	// Score-based mode labels, kept for the alternative verdict table.
	LabelAIHighConfidence   = "AI-Generated (High Confidence)"
	LabelAIMediumConfidence = "AI-Generated (Medium Confidence)"
)

// Verdict is the final analysis outcome.
type Verdict struct {
	Verdict    string         `json:"verdict"`
	Confidence float64        `json:"confidence"`
	TotalScore int            `json:"total_score"`
	Scores     map[string]int `json:"scores"`
	Evidence   []string       `json:"evidence"`
}

// Comparison decides whether a metric value counts as a detection.
type Comparison interface {
	matches(value float64) bool
}

type lessCmp float64
type greaterCmp float64
type betweenCmp struct{ lo, hi float64 }

func (c lessCmp) matches(v float64) bool    { return v < float64(c) }
func (c greaterCmp) matches(v float64) bool { return v > float64(c) }
func (c betweenCmp) matches(v float64) bool { return v >= c.lo && v <= c.hi }

// Less matches values strictly below threshold.
func Less(threshold float64) Comparison { return lessCmp(threshold) }

// Greater matches values strictly above threshold.
func Greater(threshold float64) Comparison { return greaterCmp(threshold) }

// Between matches values inside [lo, hi].
func Between(lo, hi float64) Comparison { return betweenCmp{lo, hi} }

// Engine accumulates weighted detections for a single asset. It is not safe
// for concurrent use; a single collector feeds it in probe order.
type Engine struct {
	cfg      *config.Config
	scores   map[string]int
	evidence []string
}

// NewEngine creates an engine bound to the given immutable configuration.
func NewEngine(cfg *config.Config) *Engine {
	return &Engine{
		cfg:    cfg,
		scores: map[string]int{},
	}
}

// AddDetection records a detection. A kind contributes its configured weight
// at most once; re-adding an already scored kind is a no-op. Unknown kinds
// never score and leave a diagnostic in the evidence log.
func (e *Engine) AddDetection(kind string, detected bool, evidenceText string) {
	if !detected {
		return
	}
	weight, known := e.cfg.ScoreWeights[kind]
	if !known {
		log.Debugf("unknown detection kind: %s", kind)
		e.evidence = append(e.evidence, "Ignored unknown detection kind: "+kind)
		return
	}
	if _, scored := e.scores[kind]; scored {
		return
	}
	e.scores[kind] = weight
	if evidenceText != "" {
		e.evidence = append(e.evidence, evidenceText)
	}
}

// AddEvidence appends a human-readable evidence line without scoring.
func (e *Engine) AddEvidence(text string) {
	if text != "" {
		e.evidence = append(e.evidence, text)
	}
}

// AddMetricScore evaluates a scalar metric against a comparison and delegates
// to AddDetection under the metric's kind name.
func (e *Engine) AddMetricScore(kind string, value float64, cmp Comparison, evidenceText string) {
	e.AddDetection(kind, cmp.matches(value), evidenceText)
}

// CalculateVerdict derives the verdict from the accumulated scores. It does
// not mutate the engine; repeated calls yield identical output.
func (e *Engine) CalculateVerdict() *Verdict {
	total := 0
	for _, w := range e.scores {
		total += w
	}
	confidence := 0.0
	if maxScore := e.cfg.MaxPossibleScore(); maxScore > 0 {
		confidence = math.Min(float64(total)/float64(maxScore), 1.0)
	}
	confidence = math.Round(confidence*1000) / 1000

	var label string
	if e.cfg.ScoreBasedVerdict {
		label = e.scoreLabel(total)
	} else {
		label = e.confidenceLabel(confidence)
	}

	scores := make(map[string]int, len(e.scores))
	for k, v := range e.scores {
		scores[k] = v
	}
	evidence := make([]string, len(e.evidence))
	copy(evidence, e.evidence)

	return &Verdict{
		Verdict:    label,
		Confidence: confidence,
		TotalScore: total,
		Scores:     scores,
		Evidence:   evidence,
	}
}

func (e *Engine) confidenceLabel(confidence float64) string {
	switch {
	case confidence >= e.cfg.ConfidenceAIGenerated:
		return LabelAIGenerated
	case confidence >= e.cfg.ConfidenceLikelyAI:
		return LabelLikelyAI
	case confidence >= e.cfg.ConfidenceSuspicious:
		return LabelSuspicious
	default:
		return LabelLikelyReal
	}
}

func (e *Engine) scoreLabel(total int) string {
	switch {
	case total >= e.cfg.ScoreHighConfidence:
		return LabelAIHighConfidence
	case total >= e.cfg.ScoreMediumConfidence:
		return LabelAIMediumConfidence
	case total >= e.cfg.ScoreSuspicious:
		return LabelSuspicious
	default:
		return LabelLikelyReal
	}
}

// Reset clears all scores and evidence.
func (e *Engine) Reset() {
	e.scores = map[string]int{}
	e.evidence = nil
}
