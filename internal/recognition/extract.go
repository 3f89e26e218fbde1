package recognition

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
)

// Wrapper categories.
const (
	WrapperOscuro      = "oscuro"
	WrapperMaduro      = "maduro"
	WrapperColorado    = "colorado"
	WrapperClaro       = "claro"
	WrapperConnecticut = "connecticut"
	WrapperNatural     = "natural"
)

// Ring gauge and length bounds accepted from text
const (
	minGauge  = 26
	maxGauge  = 80
	minLength = 3.0
	maxLength = 10.0
)

var (
	// 6 x 52, 6.5" x 52, 6in x 52
	lengthByGauge = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*(?:"|''|in(?:ch(?:es)?)?)?\s*[x×]\s*(\d{2})\b`)
	// 52 x 6
	gaugeByLength = regexp.MustCompile(`\b(\d{2})\s*[x×]\s*(\d{1,2}(?:\.\d+)?)`)
	// одиночный ring gauge
	loneGauge = regexp.MustCompile(`\b(\d{2})\b`)
	// 6.5" или 6 in
	loneLength = regexp.MustCompile(`(\d{1,2}(?:\.\d+)?)\s*(?:"|''|in\b|inch(?:es)?\b)`)
)

// ExtractBrand returns the canonical brand. Logos are trusted first; a logo
// outside the dictionary is still preferred over text. Text is then scanned
// for brand aliases in dictionary order.
func ExtractBrand(dict *TypeDictionary, text string, logos []string) string {
	for _, logo := range logos {
		logo = normalize(logo)
		if logo == "" {
			continue
		}
		if b := matchBrand(dict, logo); b != "" {
			return b
		}
	}
	for _, logo := range logos {
		if logo = normalize(logo); logo != "" {
			return logo
		}
	}
	return matchBrand(dict, normalize(text))
}

func matchBrand(dict *TypeDictionary, text string) string {
	if text == "" {
		return ""
	}
	for _, b := range dict.Brands {
		for _, alias := range b.Aliases {
			if strings.Contains(text, alias) {
				return b.Name
			}
		}
	}
	return ""
}

// ExtractModel returns a brand-specific model if the brand is known, else a
// generic descriptor
func ExtractModel(dict *TypeDictionary, text, brand string) string {
	text = normalize(text)
	if text == "" {
		return ""
	}
	brand = normalize(brand)
	for _, b := range dict.Brands {
		if b.Name != brand {
			continue
		}
		if m := longestContained(text, b.Models); m != "" {
			return m
		}
		break
	}
	return longestContained(text, dict.GenericModels)
}

// longestContained returns the longest candidate contained in text, so that
// "gran reserva" wins over "reserva"
func longestContained(text string, candidates []string) string {
	best := ""
	for _, c := range candidates {
		if len(c) > len(best) && strings.Contains(text, c) {
			best = c
		}
	}
	return best
}

// ExtractSize returns a size name and any dimensions read from text.
// A size alias wins; otherwise numeric patterns are mapped by SizeFromDimensions.
func ExtractSize(dict *TypeDictionary, text string) (size string, length float64, gauge int) {
	norm := normalize(text)
	length, gauge = parseDimensions(norm)

	if name := matchSizeAlias(dict, norm); name != "" {
		return name, length, gauge
	}
	if len(dict.Sizes) == 0 || (gauge == 0 && length == 0) {
		return "", length, gauge
	}
	return SizeFromDimensions(length, gauge), length, gauge
}

// matchSizeAlias checks longer aliases first so that "petit corona" is not
// read as "corona"
func matchSizeAlias(dict *TypeDictionary, text string) string {
	type alias struct{ name, alias string }
	aliases := make([]alias, 0)
	for _, s := range dict.Sizes {
		for _, a := range s.Aliases {
			aliases = append(aliases, alias{name: s.Name, alias: a})
		}
	}
	sort.SliceStable(aliases, func(i, j int) bool { return len(aliases[i].alias) > len(aliases[j].alias) })

	for _, a := range aliases {
		if strings.Contains(text, a.alias) {
			return a.name
		}
	}
	return ""
}

// parseDimensions reads length (inches) and ring gauge. Patterns are tried
// from most to least specific.
func parseDimensions(text string) (length float64, gauge int) {
	if m := lengthByGauge.FindStringSubmatch(text); m != nil {
		l, g := parseLength(m[1]), parseGauge(m[2])
		if l > 0 && g > 0 {
			return l, g
		}
	}
	if m := gaugeByLength.FindStringSubmatch(text); m != nil {
		g, l := parseGauge(m[1]), parseLength(m[2])
		if l > 0 && g > 0 {
			return l, g
		}
	}
	for _, m := range loneGauge.FindAllStringSubmatch(text, -1) {
		if g := parseGauge(m[1]); g > 0 {
			gauge = g
			break
		}
	}
	if m := loneLength.FindStringSubmatch(text); m != nil {
		length = parseLength(m[1])
	}
	return length, gauge
}

func parseGauge(s string) int {
	g, err := strconv.Atoi(s)
	if err != nil || g < minGauge || g > maxGauge {
		return 0
	}
	return g
}

func parseLength(s string) float64 {
	l, err := strconv.ParseFloat(s, 64)
	if err != nil || l < minLength || l > maxLength {
		return 0
	}
	return l
}

// SizeFromDimensions maps ring gauge and length to the nearest size bucket.
// Zero length means unknown.
func SizeFromDimensions(length float64, gauge int) string {
	switch {
	case gauge >= 56:
		return "gordo"
	case gauge >= 50:
		switch {
		case length == 0 || length <= 5.5:
			return "robusto"
		case length <= 6.5:
			return "toro"
		default:
			return "churchill"
		}
	case gauge >= 46:
		if length >= 6.75 {
			return "churchill"
		}
		return "corona gorda"
	case gauge >= 40:
		switch {
		case length != 0 && length <= 4.75:
			return "petit corona"
		case length == 0 || length <= 6:
			return "corona"
		default:
			return "lonsdale"
		}
	case gauge > 0:
		if length >= 7 {
			return "lancero"
		}
		return "cigarillo"
	default:
		// Известна только длина
		switch {
		case length >= 7:
			return "churchill"
		case length > 5.5:
			return "toro"
		default:
			return "robusto"
		}
	}
}

// ExtractWrapper buckets the dominant color into a wrapper category.
// It returns "" when there is no color data.
func ExtractWrapper(colors []models.ColorSwatch) string {
	if len(colors) == 0 {
		return ""
	}

	dominant := colors[0]
	for _, c := range colors[1:] {
		if c.PixelFraction > dominant.PixelFraction ||
			(c.PixelFraction == dominant.PixelFraction && c.Score > dominant.Score) {
			dominant = c
		}
	}

	r, g, b := dominant.Red, dominant.Green, dominant.Blue
	brightness := (r + g + b) / 3
	redDominant := r > g+20 && r > b+20

	switch {
	case brightness < 60:
		return WrapperOscuro
	case brightness < 90:
		return WrapperMaduro
	case redDominant && brightness < 140:
		return WrapperColorado
	case brightness >= 170:
		return WrapperClaro
	case brightness >= 150:
		return WrapperConnecticut
	default:
		return WrapperNatural
	}
}

// CountCategoryLabels counts detected labels that name the product category
func CountCategoryLabels(dict *TypeDictionary, labels []string) int {
	n := 0
	for _, label := range labels {
		label = normalize(label)
		for _, c := range dict.CategoryLabels {
			if strings.Contains(label, c) {
				n++
				break
			}
		}
	}
	return n
}
