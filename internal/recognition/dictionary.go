package recognition

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Brand is a canonical brand with its spelling variants and model names
type Brand struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Models  []string `yaml:"models"`
}

// SizeAlias maps spellings to a canonical size name
type SizeAlias struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// TypeDictionary holds the vocabulary of one product type.
// Order matters: the first matching entry wins.
type TypeDictionary struct {
	Brands         []Brand     `yaml:"brands"`
	GenericModels  []string    `yaml:"generic_models"`
	Sizes          []SizeAlias `yaml:"sizes"`
	CategoryLabels []string    `yaml:"category_labels"`
}

// Dictionary is the recognition vocabulary for all product types
type Dictionary struct {
	Types map[models.ProductType]*TypeDictionary `yaml:"types"`
}

// ErrUnknownType indicates that the dictionary has no entry for a product type
var ErrUnknownType = errors.New("product type not in dictionary")

// For returns the vocabulary of a product type
func (d *Dictionary) For(pt models.ProductType) (*TypeDictionary, error) {
	td, ok := d.Types[pt]
	if !ok || td == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, pt)
	}
	return td, nil
}

// ParseDictionary decodes and normalizes a YAML dictionary
func ParseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse dictionary: %w", err)
	}
	if len(d.Types) == 0 {
		return nil, errors.New("dictionary has no product types")
	}

	for pt, td := range d.Types {
		if _, err := models.ParseProductType(string(pt)); err != nil {
			return nil, err
		}
		if td == nil {
			return nil, fmt.Errorf("dictionary entry for %s is empty", pt)
		}
		for i := range td.Brands {
			b := &td.Brands[i]
			b.Name = normalize(b.Name)
			if b.Name == "" {
				return nil, fmt.Errorf("%s: brand #%d has no name", pt, i)
			}
			b.Aliases = normalizeAll(append([]string{b.Name}, b.Aliases...))
			b.Models = normalizeAll(b.Models)
		}
		for i := range td.Sizes {
			s := &td.Sizes[i]
			s.Name = normalize(s.Name)
			s.Aliases = normalizeAll(append([]string{s.Name}, s.Aliases...))
		}
		td.GenericModels = normalizeAll(td.GenericModels)
		td.CategoryLabels = normalizeAll(td.CategoryLabels)
	}
	return &d, nil
}

// DefaultDictionary returns the embedded dictionary
func DefaultDictionary() (*Dictionary, error) {
	return ParseDictionary(defaultDictionary)
}

// LoadDictionary reads a dictionary file, or the embedded one if path is empty
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return DefaultDictionary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dictionary: %w", err)
	}
	return ParseDictionary(data)
}

// normalize lowercases and collapses whitespace
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// normalizeAll normalizes values, dropping empties and duplicates
func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = normalize(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
