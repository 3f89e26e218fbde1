// Package recognition matches vision analysis output against the product
// catalog with dictionary heuristics.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/vision"
)

//go:generate moq -out catalog_mock.go . Catalog

// MaxCandidates caps the ranked candidate list
const MaxCandidates = 10

// Degradation messages shown to callers instead of errors
const (
	MsgVisionUnavailable = "image analysis unavailable, please enter the product manually"
	MsgUnsafeImage       = "image rejected by content moderation"
	MsgNoMatch           = "no matching products found"
	MsgUnknownType       = "product type is not supported by recognition"
)

// Catalog looks up products. Results are ordered by brand exact match, then
// brand substring match.
type Catalog interface {
	SearchProducts(ctx context.Context, filter models.ProductFilter) ([]*models.Product, error)
}

// Dictionaries provides the active dictionary
type Dictionaries interface {
	Current() *Dictionary
}

// Service runs the recognition pipeline
type Service struct {
	analyzer vision.Analyzer
	catalog  Catalog
	dicts    Dictionaries
	logger   *slog.Logger
	weights  Weights
}

// NewService creates a new recognition service
func NewService(analyzer vision.Analyzer, catalog Catalog, dicts Dictionaries, weights Weights, logger *slog.Logger) *Service {
	return &Service{
		analyzer: analyzer,
		catalog:  catalog,
		dicts:    dicts,
		weights:  weights,
		logger:   logger,
	}
}

// Recognize analyzes an image and ranks catalog candidates.
// It never fails: problems degrade to a zero-confidence result with a message.
func (s *Service) Recognize(ctx context.Context, img vision.Image, pt models.ProductType) *models.RecognitionResult {
	analysis, err := s.analyzer.Analyze(ctx, img)
	switch {
	case errors.Is(err, vision.ErrUnsafeImage):
		s.logger.Warn("Recognition image rejected by moderation")
		return models.EmptyRecognition(pt, MsgUnsafeImage)
	case err != nil:
		s.logger.Error("Vision analysis failed", "error", err)
		return models.EmptyRecognition(pt, MsgVisionUnavailable)
	case analysis.Unsafe:
		return models.EmptyRecognition(pt, MsgUnsafeImage)
	}

	return s.Match(ctx, analysis, pt)
}

// Match runs extraction and catalog matching over an existing analysis
func (s *Service) Match(ctx context.Context, analysis *models.VisionAnalysis, pt models.ProductType) *models.RecognitionResult {
	dict, err := s.dicts.Current().For(pt)
	if err != nil {
		s.logger.Warn("Recognition for unsupported type", "type", pt)
		return models.EmptyRecognition(pt, MsgUnknownType)
	}

	res := models.EmptyRecognition(pt, "")
	res.RawText = analysis.Text
	for _, l := range analysis.Labels {
		res.Labels = append(res.Labels, l.Description)
	}
	for _, l := range analysis.Logos {
		res.Logos = append(res.Logos, l.Description)
	}

	res.Extraction = Extract(dict, analysis)
	res.Confidence = s.weights.Confidence(res.Extraction, CountCategoryLabels(dict, res.Labels))

	candidates, err := s.findCandidates(ctx, pt, res.Extraction)
	if err != nil {
		// Извлечённые поля всё ещё полезны для ручного ввода
		s.logger.Error("Catalog lookup failed", "error", err)
		res.Message = MsgNoMatch
		return res
	}
	res.Candidates = candidates
	if len(candidates) == 0 {
		res.Message = MsgNoMatch
	}

	s.logger.Debug("Recognition finished",
		"brand", res.Brand,
		"model", res.Model,
		"size", res.Size,
		"confidence", res.Confidence,
		"candidates", len(res.Candidates))
	return res
}

// Extract applies every heuristic to an analysis
func Extract(dict *TypeDictionary, analysis *models.VisionAnalysis) models.Extraction {
	logos := make([]string, 0, len(analysis.Logos))
	for _, l := range analysis.Logos {
		logos = append(logos, l.Description)
	}

	var ex models.Extraction
	ex.Brand = ExtractBrand(dict, analysis.Text, logos)
	ex.Model = ExtractModel(dict, analysis.Text, ex.Brand)
	ex.Size, ex.Length, ex.RingGauge = ExtractSize(dict, analysis.Text)
	if len(dict.Sizes) > 0 {
		// Обёртка определяется только для сигар
		ex.Wrapper = ExtractWrapper(analysis.Colors)
	}
	return ex
}

// findCandidates queries the catalog with the extracted fields, relaxing
// the filter when nothing matches
func (s *Service) findCandidates(ctx context.Context, pt models.ProductType, ex models.Extraction) ([]*models.Candidate, error) {
	if ex.Brand == "" && ex.Model == "" {
		return []*models.Candidate{}, nil
	}

	filters := []models.ProductFilter{
		{Type: pt, Brand: ex.Brand, Name: ex.Model, Size: ex.Size, Limit: MaxCandidates},
	}
	if ex.Size != "" {
		filters = append(filters, models.ProductFilter{Type: pt, Brand: ex.Brand, Name: ex.Model, Limit: MaxCandidates})
	}
	if ex.Model != "" && ex.Brand != "" {
		filters = append(filters, models.ProductFilter{Type: pt, Brand: ex.Brand, Limit: MaxCandidates})
	}

	var products []*models.Product
	for _, f := range filters {
		var err error
		products, err = s.catalog.SearchProducts(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("failed to search catalog: %w", err)
		}
		if len(products) > 0 {
			break
		}
	}
	if len(products) > MaxCandidates {
		products = products[:MaxCandidates]
	}

	candidates := make([]*models.Candidate, 0, len(products))
	for _, p := range products {
		candidates = append(candidates, s.weights.ScoreCandidate(ex, p))
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	return candidates, nil
}
