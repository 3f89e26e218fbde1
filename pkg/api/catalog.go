package api

import "github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"

// ProductListResponse представляет страницу каталога
type ProductListResponse struct {
	Products []*models.Product `json:"products"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// RecognizeRequest представляет JSON-запрос распознавания по URI изображения
type RecognizeRequest struct {
	ImageURI    string `json:"image_uri"`
	ProductType string `json:"product_type,omitempty"`
}

// RecognizeResponse is the recognition result returned to callers.
type RecognizeResponse = models.RecognitionResult
