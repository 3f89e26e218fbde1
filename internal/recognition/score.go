package recognition

import (
	"strings"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// Weights tunes recognition scoring
type Weights struct {
	Brand   float64 `mapstructure:"brand"`
	Model   float64 `mapstructure:"model"`
	Size    float64 `mapstructure:"size"`
	Wrapper float64 `mapstructure:"wrapper"`
	// UncorroboratedPenalty multiplies the confidence when labels do not
	// confirm the product category
	UncorroboratedPenalty float64 `mapstructure:"uncorroborated_penalty"`
	MinCategoryLabels     int     `mapstructure:"min_category_labels"`
}

// DefaultWeights returns the stock heuristic weights
func DefaultWeights() Weights {
	return Weights{
		Brand:                 0.4,
		Model:                 0.3,
		Size:                  0.2,
		Wrapper:               0.1,
		UncorroboratedPenalty: 0.5,
		MinCategoryLabels:     2,
	}
}

// Confidence scores an extraction by which fields were found.
// categoryLabels is the number of labels naming the product category.
func (w Weights) Confidence(ex models.Extraction, categoryLabels int) float64 {
	var score float64
	if ex.Brand != "" {
		score += w.Brand
	}
	if ex.Model != "" {
		score += w.Model
	}
	if ex.Size != "" {
		score += w.Size
	}
	if ex.Wrapper != "" {
		score += w.Wrapper
	}
	if categoryLabels < w.MinCategoryLabels {
		score *= w.UncorroboratedPenalty
	}
	return clamp01(score)
}

// ScoreCandidate rates a catalog product against an extraction
func (w Weights) ScoreCandidate(ex models.Extraction, p *models.Product) *models.Candidate {
	pairs := []struct {
		weight float64
		want   string
		got    string
	}{
		{w.Brand, ex.Brand, p.Brand},
		{w.Model, ex.Model, p.Name},
		{w.Size, ex.Size, p.Size},
		{w.Wrapper, ex.Wrapper, p.Wrapper},
	}

	var weighted, total float64
	for _, pr := range pairs {
		if pr.want == "" {
			continue
		}
		total += pr.weight
		weighted += pr.weight * Similarity(pr.want, pr.got)
	}

	var simSum float64
	var simN int
	for _, pr := range pairs[:3] {
		if pr.want == "" || pr.got == "" {
			continue
		}
		simSum += Similarity(pr.want, pr.got)
		simN++
	}

	c := &models.Candidate{Product: p}
	if total > 0 {
		c.Confidence = clamp01(weighted / total)
	}
	if simN > 0 {
		c.Similarity = clamp01(simSum / float64(simN))
	}
	return c
}

// Similarity compares two strings case-insensitively: 1 for equal, 0.8 when
// one contains the other, otherwise the Jaccard index of their character sets.
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	setA := make(map[rune]struct{})
	for _, r := range a {
		setA[r] = struct{}{}
	}
	setB := make(map[rune]struct{})
	for _, r := range b {
		setB[r] = struct{}{}
	}
	inter := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
