package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/vision"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// MaxImageSize ограничивает размер загружаемого изображения
const MaxImageSize = 10 << 20

//go:generate moq -out recognizer_mock.go . Recognizer

// Recognizer identifies a product on an image. It never fails: problems
// are reported through the result message.
type Recognizer interface {
	Recognize(ctx context.Context, img vision.Image, pt models.ProductType) *models.RecognitionResult
}

// RecognizeHandler serves product recognition
type RecognizeHandler struct {
	logger     *slog.Logger
	recognizer Recognizer
}

// NewRecognizeHandler creates a new recognition handler
func NewRecognizeHandler(logger *slog.Logger, recognizer Recognizer) *RecognizeHandler {
	return &RecognizeHandler{logger: logger, recognizer: recognizer}
}

// Recognize обрабатывает POST /api/v1/recognize.
// Принимает multipart с полем image или JSON с image_uri.
func (h *RecognizeHandler) Recognize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		img         vision.Image
		productType string
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+1<<20)
		file, _, err := r.FormFile("image")
		if err != nil {
			sendError(w, h.logger, "image is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		img.Content, err = io.ReadAll(io.LimitReader(file, MaxImageSize+1))
		if err != nil {
			sendError(w, h.logger, "failed to read image", http.StatusBadRequest)
			return
		}
		if len(img.Content) > MaxImageSize {
			sendError(w, h.logger, "image is too large", http.StatusRequestEntityTooLarge)
			return
		}
		productType = r.FormValue("product_type")

	case "application/json":
		var req api.RecognizeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBody)).Decode(&req); err != nil {
			sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
			return
		}
		img.URI = strings.TrimSpace(req.ImageURI)
		productType = req.ProductType

	default:
		sendError(w, h.logger, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	if len(img.Content) == 0 && img.URI == "" {
		sendError(w, h.logger, "image is empty", http.StatusBadRequest)
		return
	}

	// По умолчанию распознаём сигары; неизвестный тип даёт пустой результат
	pt := models.ProductCigar
	if productType != "" {
		pt = models.ProductType(strings.ToLower(strings.TrimSpace(productType)))
	}

	res := h.recognizer.Recognize(ctx, img, pt)
	h.logger.InfoContext(ctx, "recognition finished",
		slog.String("product_type", string(pt)),
		slog.Float64("confidence", res.Confidence),
		slog.Int("candidates", len(res.Candidates)),
		slog.String("message", res.Message))
	sendJSON(w, h.logger, res, http.StatusOK)
}
