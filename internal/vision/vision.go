// Package vision wraps the external image analysis provider.
package vision

import (
	"context"
	"errors"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

//go:generate moq -out analyzer_mock.go . Analyzer

var (
	// ErrUnsafeImage indicates that moderation rejected the image
	ErrUnsafeImage = errors.New("image rejected by content moderation")
	// ErrDisabled indicates that no provider credentials are configured
	ErrDisabled = errors.New("vision analysis is disabled")
	// ErrEmptyImage indicates that neither content nor a URI was given
	ErrEmptyImage = errors.New("image has no content and no uri")
)

// Image is either raw bytes or a URI the provider can fetch
type Image struct {
	URI     string
	Content []byte
}

// Analyzer extracts labels, text, logos and colors from an image
type Analyzer interface {
	Analyze(ctx context.Context, img Image) (*models.VisionAnalysis, error)
}

// Config configures the Google Cloud Vision analyzer.
// Either APIKey or CredentialsFile enables it.
type Config struct {
	APIKey          string        `mapstructure:"api_key"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Endpoint        string        `mapstructure:"endpoint"`
	MaxResults      int64         `mapstructure:"max_results"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// Enabled reports whether credentials are configured
func (c Config) Enabled() bool {
	return c.APIKey != "" || c.CredentialsFile != ""
}

// Disabled is an Analyzer that always fails with ErrDisabled
type Disabled struct{}

// Analyze implements Analyzer.
func (Disabled) Analyze(context.Context, Image) (*models.VisionAnalysis, error) {
	return nil, ErrDisabled
}
