package decision

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthscan/synthscan/config"
)

func TestAddDetection(t *testing.T) {
	cfg := config.Default()
	engine := NewEngine(cfg)

	engine.AddDetection(KindMetadataSuspicious, true, "Suspicious metadata patterns")
	verdict := engine.CalculateVerdict()
	assert.Equal(t, 40, verdict.TotalScore)
	assert.Equal(t, map[string]int{KindMetadataSuspicious: 40}, verdict.Scores)
	assert.Equal(t, []string{"Suspicious metadata patterns"}, verdict.Evidence)

	// Not-detected contributes nothing.
	engine.AddDetection(KindWatermarkDetected, false, "should not appear")
	verdict = engine.CalculateVerdict()
	assert.Equal(t, 40, verdict.TotalScore)
	assert.Len(t, verdict.Evidence, 1)
}

func TestAddDetectionIdempotent(t *testing.T) {
	engine := NewEngine(config.Default())
	engine.AddDetection(KindCheckboardPattern, true, "Diffusion checkerboard pattern detected")
	engine.AddDetection(KindCheckboardPattern, true, "Diffusion checkerboard pattern detected")
	verdict := engine.CalculateVerdict()
	assert.Equal(t, 40, verdict.TotalScore)
	assert.Len(t, verdict.Evidence, 1)
}

func TestUnknownKindIgnored(t *testing.T) {
	engine := NewEngine(config.Default())
	engine.AddDetection("bogus_kind", true, "evidence")
	verdict := engine.CalculateVerdict()
	assert.Equal(t, 0, verdict.TotalScore)
	assert.Empty(t, verdict.Scores)
	// A diagnostic is left in the evidence log.
	require.Len(t, verdict.Evidence, 1)
	assert.Contains(t, verdict.Evidence[0], "bogus_kind")
	assert.Equal(t, LabelLikelyReal, verdict.Verdict)
}

func TestMonotonicity(t *testing.T) {
	engine := NewEngine(config.Default())
	labelRank := map[string]int{
		LabelLikelyReal:  0,
		LabelSuspicious:  1,
		LabelLikelyAI:    2,
		LabelAIGenerated: 3,
	}
	kinds := []string{
		KindEdgeFragmented, KindRGBCorrelationHigh, KindNoiseVarianceLow,
		KindFreqRatioAnomaly, KindCheckboardPattern, KindMetadataSuspicious,
		KindC2PASynthetic, KindWatermarkDetected,
	}
	prevScore := 0
	prevConfidence := 0.0
	prevRank := 0
	for _, kind := range kinds {
		engine.AddDetection(kind, true, "")
		verdict := engine.CalculateVerdict()
		assert.GreaterOrEqual(t, verdict.TotalScore, prevScore)
		assert.GreaterOrEqual(t, verdict.Confidence, prevConfidence)
		assert.GreaterOrEqual(t, labelRank[verdict.Verdict], prevRank)
		assert.GreaterOrEqual(t, verdict.Confidence, 0.0)
		assert.LessOrEqual(t, verdict.Confidence, 1.0)
		prevScore = verdict.TotalScore
		prevConfidence = verdict.Confidence
		prevRank = labelRank[verdict.Verdict]
	}
}

func TestConfidenceAndLabels(t *testing.T) {
	cfg := config.Default()
	maxScore := float64(cfg.MaxPossibleScore())

	tests := []struct {
		name  string
		kinds []string
		label string
	}{
		{"nothing fires", nil, LabelLikelyReal},
		{"metadata only", []string{KindMetadataSuspicious}, LabelLikelyReal},
		{
			// 130 of 435 rounds to 0.299, just below the Suspicious cutoff.
			"c2pa plus metadata",
			[]string{KindC2PASynthetic, KindMetadataSuspicious},
			LabelLikelyReal,
		},
		{
			"c2pa plus pattern hits",
			[]string{KindC2PASynthetic, KindCheckboardPattern, KindEdgeFragmented},
			LabelSuspicious,
		},
		{
			"strong multi-probe hit",
			[]string{
				KindWatermarkDetected, KindC2PASynthetic, KindFreqRatioAnomaly,
				KindNoiseVarianceLow, KindRGBCorrelationHigh,
			},
			LabelLikelyAI,
		},
		{
			"everything fires",
			[]string{
				KindWatermarkDetected, KindC2PASynthetic, KindMetadataSuspicious,
				KindCheckboardPattern, KindTemporalFlicker, KindFreqRatioAnomaly,
				KindNoiseVarianceLow, KindMotionVectorIrregular,
				KindRGBCorrelationHigh, KindShadowInconsistent, KindEdgeFragmented,
			},
			LabelAIGenerated,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			engine := NewEngine(cfg)
			want := 0
			for _, kind := range test.kinds {
				engine.AddDetection(kind, true, "")
				want += cfg.ScoreWeights[kind]
			}
			verdict := engine.CalculateVerdict()
			assert.Equal(t, want, verdict.TotalScore)
			sum := 0
			for _, v := range verdict.Scores {
				sum += v
			}
			assert.Equal(t, verdict.TotalScore, sum)
			wantConfidence := float64(want) / maxScore
			assert.InDelta(t, wantConfidence, verdict.Confidence, 0.0005)
			assert.Equal(t, test.label, verdict.Verdict)
		})
	}
}

func TestAddMetricScore(t *testing.T) {
	cfg := config.Default()

	engine := NewEngine(cfg)
	engine.AddMetricScore(KindNoiseVarianceLow, 3.2, Less(cfg.Thresholds.NoiseVarianceAIMax), "Unnaturally low noise variance")
	assert.Equal(t, 25, engine.CalculateVerdict().TotalScore)

	engine = NewEngine(cfg)
	engine.AddMetricScore(KindNoiseVarianceLow, 9.0, Less(cfg.Thresholds.NoiseVarianceAIMax), "")
	assert.Equal(t, 0, engine.CalculateVerdict().TotalScore)

	engine = NewEngine(cfg)
	engine.AddMetricScore(KindRGBCorrelationHigh, 0.97, Greater(cfg.Thresholds.RGBCorrelationAIMin), "")
	assert.Equal(t, 20, engine.CalculateVerdict().TotalScore)

	engine = NewEngine(cfg)
	engine.AddMetricScore(KindTemporalFlicker, 3.5, Between(3.0, 5.0), "")
	assert.Equal(t, 35, engine.CalculateVerdict().TotalScore)

	engine = NewEngine(cfg)
	engine.AddMetricScore(KindTemporalFlicker, 5.5, Between(3.0, 5.0), "")
	assert.Equal(t, 0, engine.CalculateVerdict().TotalScore)
}

func TestResetReplay(t *testing.T) {
	engine := NewEngine(config.Default())
	add := func() {
		engine.AddDetection(KindMetadataSuspicious, true, "Suspicious metadata patterns")
		engine.AddDetection(KindFreqRatioAnomaly, true, "DCT frequency ratio anomaly")
	}
	add()
	first := engine.CalculateVerdict()

	engine.Reset()
	assert.Equal(t, 0, engine.CalculateVerdict().TotalScore)

	add()
	second := engine.CalculateVerdict()
	assert.Equal(t, first, second)
}

func TestVerdictIdempotent(t *testing.T) {
	engine := NewEngine(config.Default())
	engine.AddDetection(KindC2PASynthetic, true, "C2PA metadata indicates synthetic origin")
	first := engine.CalculateVerdict()
	second := engine.CalculateVerdict()
	assert.Equal(t, first, second)
}

func TestVerdictJSONRoundTrip(t *testing.T) {
	engine := NewEngine(config.Default())
	engine.AddDetection(KindWatermarkDetected, true, "Watermark detected: LSB steganography anomaly")
	engine.AddDetection(KindMetadataSuspicious, true, "Suspicious metadata patterns")
	verdict := engine.CalculateVerdict()

	data, err := json.Marshal(verdict)
	require.NoError(t, err)
	var decoded Verdict
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *verdict, decoded)
}

func TestScoreBasedVerdictMode(t *testing.T) {
	cfg := config.Default()
	cfg.ScoreBasedVerdict = true

	engine := NewEngine(cfg)
	engine.AddDetection(KindWatermarkDetected, true, "")
	assert.Equal(t, LabelAIHighConfidence, engine.CalculateVerdict().Verdict)

	engine = NewEngine(cfg)
	engine.AddDetection(KindC2PASynthetic, true, "")
	assert.Equal(t, LabelAIMediumConfidence, engine.CalculateVerdict().Verdict)

	engine = NewEngine(cfg)
	engine.AddDetection(KindMetadataSuspicious, true, "")
	assert.Equal(t, LabelSuspicious, engine.CalculateVerdict().Verdict)

	engine = NewEngine(cfg)
	engine.AddDetection(KindEdgeFragmented, true, "")
	assert.Equal(t, LabelLikelyReal, engine.CalculateVerdict().Verdict)
}
