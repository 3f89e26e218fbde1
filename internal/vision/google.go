package vision

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	cloudvision "google.golang.org/api/vision/v1"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

const (
	defaultMaxResults = 10
	defaultTimeout    = 15 * time.Second
)

// GoogleAnalyzer calls the Cloud Vision images:annotate endpoint
type GoogleAnalyzer struct {
	service    *cloudvision.Service
	logger     *slog.Logger
	maxResults int64
	timeout    time.Duration
}

// NewAnalyzer returns a GoogleAnalyzer when credentials are configured and
// Disabled otherwise
func NewAnalyzer(ctx context.Context, cfg Config, logger *slog.Logger, extra ...option.ClientOption) (Analyzer, error) {
	if !cfg.Enabled() && len(extra) == 0 {
		logger.Warn("Vision credentials not configured, recognition will return empty results")
		return Disabled{}, nil
	}
	return NewGoogleAnalyzer(ctx, cfg, logger, extra...)
}

// NewGoogleAnalyzer creates the Cloud Vision client. A service account file
// takes precedence over an API key.
func NewGoogleAnalyzer(ctx context.Context, cfg Config, logger *slog.Logger, extra ...option.ClientOption) (*GoogleAnalyzer, error) {
	opts := make([]option.ClientOption, 0, len(extra)+2)
	switch {
	case cfg.CredentialsFile != "":
		jsonKey, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}
		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, cloudvision.CloudVisionScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		opts = append(opts, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	opts = append(opts, extra...)

	srv, err := cloudvision.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create vision service: %w", err)
	}

	a := &GoogleAnalyzer{
		service:    srv,
		logger:     logger,
		maxResults: cfg.MaxResults,
		timeout:    cfg.Timeout,
	}
	if a.maxResults <= 0 {
		a.maxResults = defaultMaxResults
	}
	if a.timeout <= 0 {
		a.timeout = defaultTimeout
	}
	return a, nil
}

// Analyze implements Analyzer.
func (a *GoogleAnalyzer) Analyze(ctx context.Context, img Image) (*models.VisionAnalysis, error) {
	req, err := a.buildRequest(img)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	resp, err := a.service.Images.Annotate(&cloudvision.BatchAnnotateImagesRequest{
		Requests: []*cloudvision.AnnotateImageRequest{req},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("vision annotate request failed: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, fmt.Errorf("vision annotate returned no responses")
	}

	r := resp.Responses[0]
	if r.Error != nil && r.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate failed (%d): %s", r.Error.Code, r.Error.Message)
	}

	analysis := toAnalysis(r)
	a.logger.Debug("Image analyzed",
		"labels", len(analysis.Labels),
		"logos", len(analysis.Logos),
		"colors", len(analysis.Colors),
		"unsafe", analysis.Unsafe,
		"duration", time.Since(started))

	if analysis.Unsafe {
		return analysis, ErrUnsafeImage
	}
	return analysis, nil
}

func (a *GoogleAnalyzer) buildRequest(img Image) (*cloudvision.AnnotateImageRequest, error) {
	image := &cloudvision.Image{}
	switch {
	case len(img.Content) > 0:
		image.Content = base64.StdEncoding.EncodeToString(img.Content)
	case img.URI != "":
		image.Source = &cloudvision.ImageSource{ImageUri: img.URI}
	default:
		return nil, ErrEmptyImage
	}

	return &cloudvision.AnnotateImageRequest{
		Image: image,
		Features: []*cloudvision.Feature{
			{Type: "LABEL_DETECTION", MaxResults: a.maxResults},
			{Type: "TEXT_DETECTION"},
			{Type: "LOGO_DETECTION", MaxResults: a.maxResults},
			{Type: "IMAGE_PROPERTIES"},
			{Type: "SAFE_SEARCH_DETECTION"},
		},
	}, nil
}

// toAnalysis maps a provider response to the provider-independent form
func toAnalysis(r *cloudvision.AnnotateImageResponse) *models.VisionAnalysis {
	out := &models.VisionAnalysis{
		Labels: annotations(r.LabelAnnotations),
		Logos:  annotations(r.LogoAnnotations),
		Colors: []models.ColorSwatch{},
	}

	// Первая текстовая аннотация содержит весь распознанный текст
	switch {
	case r.FullTextAnnotation != nil && r.FullTextAnnotation.Text != "":
		out.Text = r.FullTextAnnotation.Text
	case len(r.TextAnnotations) > 0:
		out.Text = r.TextAnnotations[0].Description
	}
	out.Text = strings.TrimSpace(out.Text)

	if p := r.ImagePropertiesAnnotation; p != nil && p.DominantColors != nil {
		for _, c := range p.DominantColors.Colors {
			if c == nil || c.Color == nil {
				continue
			}
			out.Colors = append(out.Colors, models.ColorSwatch{
				Red:           c.Color.Red,
				Green:         c.Color.Green,
				Blue:          c.Color.Blue,
				PixelFraction: c.PixelFraction,
				Score:         c.Score,
			})
		}
	}

	if s := r.SafeSearchAnnotation; s != nil {
		out.Unsafe = likely(s.Adult) || likely(s.Violence)
	}
	return out
}

func annotations(in []*cloudvision.EntityAnnotation) []models.Annotation {
	out := make([]models.Annotation, 0, len(in))
	for _, a := range in {
		if a == nil || a.Description == "" {
			continue
		}
		out = append(out, models.Annotation{Description: a.Description, Score: a.Score})
	}
	return out
}

func likely(v string) bool {
	return v == "LIKELY" || v == "VERY_LIKELY"
}
