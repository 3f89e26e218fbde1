package recognition

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"cohiba", "Cohiba", 1},
		{"behike", "Behike 52", 0.8},
		{"robusto", "rob", 0.8},
		{"abc", "abd", 0.5},
		{"abc", "xyz", 0},
		{"", "cohiba", 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}
}

func TestWeights_Confidence(t *testing.T) {
	w := DefaultWeights()
	full := models.Extraction{Brand: "cohiba", Model: "behike", Size: "robusto", Wrapper: "maduro"}

	assert.InDelta(t, 1.0, w.Confidence(full, 2), 1e-9)
	assert.InDelta(t, 0.5, w.Confidence(full, 1), 1e-9)
	assert.InDelta(t, 0.9, w.Confidence(models.Extraction{Brand: "cohiba", Model: "behike", Size: "robusto"}, 3), 1e-9)
	assert.InDelta(t, 0.2, w.Confidence(models.Extraction{Brand: "cohiba"}, 0), 1e-9)
	assert.Zero(t, w.Confidence(models.Extraction{}, 5))

	// Завышенные веса не выводят оценку за пределы [0,1]
	heavy := Weights{Brand: 2, Model: 2, Size: 2, Wrapper: 2, UncorroboratedPenalty: 1, MinCategoryLabels: 0}
	assert.InDelta(t, 1.0, heavy.Confidence(full, 0), 1e-9)
}

func TestWeights_ScoreCandidate(t *testing.T) {
	w := DefaultWeights()
	ex := models.Extraction{Brand: "cohiba", Model: "behike", Size: "robusto"}

	exact := w.ScoreCandidate(ex, &models.Product{Brand: "Cohiba", Name: "Behike 52", Size: "Robusto"})
	assert.InDelta(t, (0.4+0.3*0.8+0.2)/0.9, exact.Confidence, 1e-9)
	assert.InDelta(t, (1+0.8+1)/3.0, exact.Similarity, 1e-9)

	noSize := w.ScoreCandidate(ex, &models.Product{Brand: "Cohiba", Name: "Behike 52"})
	assert.InDelta(t, (0.4+0.3*0.8)/0.9, noSize.Confidence, 1e-9)
	assert.InDelta(t, 0.9, noSize.Similarity, 1e-9)
	assert.Less(t, noSize.Confidence, exact.Confidence)

	empty := w.ScoreCandidate(models.Extraction{}, &models.Product{Brand: "Cohiba"})
	assert.Zero(t, empty.Confidence)
	assert.Zero(t, empty.Similarity)
}

func TestScoresStayInUnitInterval(t *testing.T) {
	extractions := []models.Extraction{
		{},
		{Brand: "cohiba"},
		{Brand: "cohiba", Model: "behike", Size: "robusto", Wrapper: "maduro"},
		{Model: "maduro", Wrapper: "oscuro"},
		{Brand: "ü", Model: "🙂", Size: "x"},
	}
	products := []*models.Product{
		{},
		{Brand: "Cohiba", Name: "Behike 52", Size: "robusto", Wrapper: "maduro"},
		{Brand: "Padron", Name: "1964 Anniversary", Size: "toro", Wrapper: "natural"},
		{Brand: "ü", Name: "🙂🙂", Size: "xx"},
	}
	weights := []Weights{
		DefaultWeights(),
		{Brand: 1, Model: 1, Size: 1, Wrapper: 1, UncorroboratedPenalty: 1},
		{Brand: 0.1, UncorroboratedPenalty: 0, MinCategoryLabels: 2},
	}

	for _, w := range weights {
		for _, ex := range extractions {
			for labels := 0; labels < 4; labels++ {
				c := w.Confidence(ex, labels)
				assert.True(t, c >= 0 && c <= 1, "confidence %v", c)
			}
			for _, p := range products {
				cand := w.ScoreCandidate(ex, p)
				assert.True(t, cand.Confidence >= 0 && cand.Confidence <= 1, "candidate confidence %v", cand.Confidence)
				assert.True(t, cand.Similarity >= 0 && cand.Similarity <= 1, "similarity %v", cand.Similarity)
			}
		}
	}
}
