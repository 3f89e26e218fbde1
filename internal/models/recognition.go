package models

// Annotation is a scored label, logo or text detection.
type Annotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// ColorSwatch is a dominant color of an image.
type ColorSwatch struct {
	Red           float64 `json:"red"`
	Green         float64 `json:"green"`
	Blue          float64 `json:"blue"`
	PixelFraction float64 `json:"pixel_fraction"`
	Score         float64 `json:"score"`
}

// VisionAnalysis is the provider-independent output of an image analysis.
type VisionAnalysis struct {
	Text   string        `json:"text"`
	Labels []Annotation  `json:"labels"`
	Logos  []Annotation  `json:"logos"`
	Colors []ColorSwatch `json:"colors"`
	Unsafe bool          `json:"unsafe"`
}

// Extraction holds the heuristic guesses made from an analysis.
type Extraction struct {
	Brand     string  `json:"brand,omitempty"`
	Model     string  `json:"model,omitempty"`
	Size      string  `json:"size,omitempty"`
	Wrapper   string  `json:"wrapper,omitempty"`
	Length    float64 `json:"length,omitempty"`
	RingGauge int     `json:"ring_gauge,omitempty"`
}

// Candidate is a catalog product ranked against an extraction.
type Candidate struct {
	Product    *Product `json:"product"`
	Confidence float64  `json:"confidence"`
	Similarity float64  `json:"similarity"`
}

// RecognitionResult is the transient outcome of a recognition request.
// It is never persisted.
type RecognitionResult struct {
	Extraction
	ProductType ProductType  `json:"product_type"`
	RawText     string       `json:"raw_text"`
	Message     string       `json:"message,omitempty"`
	Labels      []string     `json:"labels"`
	Logos       []string     `json:"logos"`
	Candidates  []*Candidate `json:"candidates"`
	Confidence  float64      `json:"confidence"`
}

// EmptyRecognition returns a zero-confidence result carrying a message.
func EmptyRecognition(productType ProductType, message string) *RecognitionResult {
	return &RecognitionResult{
		ProductType: productType,
		Message:     message,
		Labels:      []string{},
		Logos:       []string{},
		Candidates:  []*Candidate{},
	}
}
