package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/validation"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// ProductsHandler serves the product catalog
type ProductsHandler struct {
	logger  *slog.Logger
	storage storage.ProductStorage
}

// NewProductsHandler creates a new catalog handler
func NewProductsHandler(logger *slog.Logger, storage storage.ProductStorage) *ProductsHandler {
	return &ProductsHandler{logger: logger, storage: storage}
}

// List обрабатывает GET /api/v1/products?type&brand&q&limit&offset
func (h *ProductsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	limit, offset, ok := pageParams(r, defaultProductLimit, maxProductLimit)
	if !ok {
		sendError(w, h.logger, "invalid pagination parameters", http.StatusBadRequest)
		return
	}
	filter := models.ProductFilter{
		Brand:  q.Get("brand"),
		Name:   q.Get("name"),
		Size:   q.Get("size"),
		Query:  q.Get("q"),
		Limit:  limit,
		Offset: offset,
	}
	if t := q.Get("type"); t != "" {
		pt, err := models.ParseProductType(t)
		if err != nil {
			sendError(w, h.logger, err.Error(), http.StatusBadRequest)
			return
		}
		filter.Type = pt
	}

	products, err := h.storage.SearchProducts(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to search products", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, h.logger, api.ProductListResponse{Products: products, Limit: limit, Offset: offset}, http.StatusOK)
}

// Get обрабатывает GET /api/v1/products/{id}
func (h *ProductsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := mux.Vars(r)["id"]

	p, err := h.storage.GetProduct(ctx, id)
	if errors.Is(err, storage.ErrProductNotFound) {
		sendError(w, h.logger, "product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product", slog.String("id", id), slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}
	sendJSON(w, h.logger, p, http.StatusOK)
}

// Create обрабатывает POST /api/v1/products
func (h *ProductsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var p models.Product
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRecordBody)).Decode(&p); err != nil {
		sendError(w, h.logger, "invalid request body", http.StatusBadRequest)
		return
	}
	p.Type = models.ProductType(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if err := validation.ValidateProduct(&p); err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}
	p.ID = ""

	if err := h.storage.CreateProduct(ctx, &p); err != nil {
		h.logger.ErrorContext(ctx, "failed to create product", slog.Any("error", err))
		sendError(w, h.logger, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "product created",
		slog.String("id", p.ID), slog.String("brand", p.Brand), slog.String("name", p.Name))
	sendJSON(w, h.logger, &p, http.StatusCreated)
}
