package statutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanVarianceStd(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
	assert.InDelta(t, 2.0/3.0, Variance([]float64{1, 2, 3}), 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), Std([]float64{1, 2, 3}), 1e-12)
	assert.Equal(t, 0.0, Variance([]float64{5, 5, 5, 5}))
}

func TestPearson(t *testing.T) {
	a := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, Pearson(a, a), 1e-12)

	b := []float64{10, 8, 6, 4, 2}
	assert.InDelta(t, -1.0, Pearson(a, b), 1e-12)

	// Zero-variance series and size mismatches degrade to 0.
	assert.Equal(t, 0.0, Pearson(a, []float64{7, 7, 7, 7, 7}))
	assert.Equal(t, 0.0, Pearson(a, []float64{1, 2}))
	assert.Equal(t, 0.0, Pearson(nil, nil))
}

func TestHistogram(t *testing.T) {
	hist := Histogram([]float64{0, 1, 2, 3, 255, 300, -5}, 256, 0, 256)
	assert.Equal(t, 2, hist[0]) // 0 and the clamped -5
	assert.Equal(t, 1, hist[1])
	assert.Equal(t, 2, hist[255]) // 255 and the clamped 300

	total := 0
	for _, c := range hist {
		total += c
	}
	assert.Equal(t, 7, total)
}

func TestEntropy(t *testing.T) {
	// A single occupied bin carries no information.
	concentrated := make([]int, 256)
	concentrated[17] = 1000
	assert.InDelta(t, 0.0, Entropy(concentrated), 1e-6)

	// The uniform distribution over 256 bins maxes out at ln(256).
	uniform := make([]int, 256)
	for i := range uniform {
		uniform[i] = 10
	}
	assert.InDelta(t, math.Log(256), Entropy(uniform), 1e-6)

	assert.Equal(t, 0.0, Entropy(make([]int, 256)))
}

func TestArgMax(t *testing.T) {
	assert.Equal(t, -1, ArgMax(nil))
	assert.Equal(t, 2, ArgMax([]int{1, 5, 9, 3}))
	assert.Equal(t, 0, ArgMax([]int{4, 4, 4}))
}
