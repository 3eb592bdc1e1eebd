package detector

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/bits"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/decision"
)

// encodePNG renders a deterministic low-amplitude noise image whose LSB
// plane is bias-free (Thue-Morse), so the steganography probe stays quiet.
func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			img.SetNRGBA(x, y, color.NRGBA{
				R: 128 + uint8(bits.OnesCount(uint(i))&1),
				G: 128 + uint8(bits.OnesCount(uint(i+1))&1),
				B: 128 + uint8(bits.OnesCount(uint(i+2))&1),
				A: 255,
			})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// injectTextChunk splices a tEXt chunk (with a valid CRC) right after IHDR.
func injectTextChunk(t *testing.T, data []byte, keyword, text string) []byte {
	t.Helper()
	require.Greater(t, len(data), 16)
	ihdrLen := int(binary.BigEndian.Uint32(data[8:12]))
	insertAt := 8 + 12 + ihdrLen

	payload := append(append([]byte(keyword), 0), []byte(text)...)
	var chunk bytes.Buffer
	binary.Write(&chunk, binary.BigEndian, uint32(len(payload)))
	chunk.WriteString("tEXt")
	chunk.Write(payload)
	binary.Write(&chunk, binary.BigEndian, crc32.ChecksumIEEE(chunk.Bytes()[4:]))

	out := append([]byte(nil), data[:insertAt]...)
	out = append(out, chunk.Bytes()...)
	out = append(out, data[insertAt:]...)
	return out
}

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func scoredKinds(result *Result) map[string]bool {
	kinds := map[string]bool{}
	for kind := range result.Scores {
		kinds[kind] = true
	}
	return kinds
}

func TestAnalyzeImageMetadataHit(t *testing.T) {
	cfg := config.Default()
	// 48x48 keeps the frequency watermark sub-probe quiet on this pattern.
	data := injectTextChunk(t, encodePNG(t, 48, 48), "Software", "Midjourney v5")
	path := writeTemp(t, "gen.png", data)

	result, err := New(cfg).AnalyzeImage(context.Background(), path, true)
	require.NoError(t, err)

	assert.Equal(t, 40, result.Scores[decision.KindMetadataSuspicious])
	assert.Contains(t, result.Evidence, "AI software in PNG: midjourney")
	assert.Contains(t, result.Evidence, "No EXIF data (suspicious for real camera)")
	assert.Contains(t, result.Evidence, "Suspicious metadata patterns")
	assert.NotContains(t, result.Scores, decision.KindWatermarkDetected)

	// Fast mode runs neither the noise nor the geometry probe.
	assert.Contains(t, result.AnalysisDetails, "metadata")
	assert.Contains(t, result.AnalysisDetails, "watermark")
	assert.Contains(t, result.AnalysisDetails, "frequency")
	assert.Contains(t, result.AnalysisDetails, "color")
	assert.NotContains(t, result.AnalysisDetails, "noise")
	assert.NotContains(t, result.AnalysisDetails, "geometry")
}

func TestAnalyzeImageC2PASynthetic(t *testing.T) {
	cfg := config.Default()
	data := injectTextChunk(t, encodePNG(t, 64, 64), "Comment",
		"c2pa content credentials: synthetic media")
	path := writeTemp(t, "cc.png", data)

	result, err := New(cfg).AnalyzeImage(context.Background(), path, true)
	require.NoError(t, err)

	assert.Equal(t, 90, result.Scores[decision.KindC2PASynthetic])
	assert.Equal(t, 40, result.Scores[decision.KindMetadataSuspicious])
	assert.Contains(t, result.Evidence, "C2PA metadata indicates synthetic origin")
}

func TestAnalyzeImageInvariants(t *testing.T) {
	cfg := config.Default()
	path := writeTemp(t, "plain.png", encodePNG(t, 64, 64))

	result, err := New(cfg).AnalyzeImage(context.Background(), path, false)
	require.NoError(t, err)

	sum := 0
	for kind, score := range result.Scores {
		assert.Equal(t, cfg.ScoreWeights[kind], score)
		sum += score
	}
	assert.Equal(t, sum, result.TotalScore)

	want := math.Min(float64(result.TotalScore)/float64(cfg.MaxPossibleScore()), 1.0)
	assert.InDelta(t, want, result.Confidence, 0.0005)
	assert.GreaterOrEqual(t, result.Confidence, 0.0)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestAnalyzeImageDeterministic(t *testing.T) {
	cfg := config.Default()
	path := writeTemp(t, "same.png", encodePNG(t, 48, 48))
	det := New(cfg)

	first, err := det.AnalyzeImage(context.Background(), path, false)
	require.NoError(t, err)
	second, err := det.AnalyzeImage(context.Background(), path, false)
	require.NoError(t, err)

	assert.Equal(t, first.Scores, second.Scores)
	assert.Equal(t, first.Evidence, second.Evidence)
	assert.Equal(t, first.Confidence, second.Confidence)
}

func TestAnalyzeImageFastModeSubset(t *testing.T) {
	cfg := config.Default()
	path := writeTemp(t, "subset.png", encodePNG(t, 64, 64))
	det := New(cfg)

	fast, err := det.AnalyzeImage(context.Background(), path, true)
	require.NoError(t, err)
	full, err := det.AnalyzeImage(context.Background(), path, false)
	require.NoError(t, err)

	fullKinds := scoredKinds(full)
	for kind := range scoredKinds(fast) {
		assert.True(t, fullKinds[kind], "kind %s fired in fast mode only", kind)
	}
}

func TestAnalyzeImageDecodeFailure(t *testing.T) {
	path := writeTemp(t, "broken.png", []byte("this is not an image"))
	_, err := New(config.Default()).AnalyzeImage(context.Background(), path, false)
	assert.Error(t, err)

	_, err = New(config.Default()).AnalyzeImage(context.Background(), "/nonexistent.png", false)
	assert.Error(t, err)
}

func TestAnalyzeImageCanceled(t *testing.T) {
	path := writeTemp(t, "cancel.png", encodePNG(t, 64, 64))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(config.Default()).AnalyzeImage(ctx, path, false)
	assert.ErrorIs(t, err, context.Canceled)
}
