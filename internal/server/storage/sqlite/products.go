package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
)

const (
	defaultProductLimit = 20
	maxProductLimit     = 100
)

// CreateProduct inserts a catalog product
func (s *Storage) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	// Агрегаты рейтинга считаются сервером
	p.AverageRating = 0
	p.RatingCount = 0

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO products (id, type, brand, name, size, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, string(p.Type), p.Brand, p.Name, p.Size, string(data),
		toMicros(p.CreatedAt), toMicros(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetProduct retrieves a catalog product by id
func (s *Storage) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT data, average_rating, rating_count, updated_at FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrProductNotFound
	}
	return p, err
}

// SearchProducts returns products matching filter. Brand and name match as
// case-insensitive substrings, size exactly. Brand exact matches come first,
// then brand substring matches.
func (s *Storage) SearchProducts(ctx context.Context, f models.ProductFilter) ([]*models.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(f.Type))
	}
	if b := strings.ToLower(strings.TrimSpace(f.Brand)); b != "" {
		where = append(where, `lower(brand) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(b))
	}
	if n := strings.ToLower(strings.TrimSpace(f.Name)); n != "" {
		where = append(where, `lower(name) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(n))
	}
	if sz := strings.ToLower(strings.TrimSpace(f.Size)); sz != "" {
		where = append(where, "lower(size) = ?")
		args = append(args, sz)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where = append(where, `lower(brand || ' ' || name) LIKE ? ESCAPE '\'`)
		args = append(args, likePattern(q))
	}

	query := "SELECT data, average_rating, rating_count, updated_at FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	brand := strings.ToLower(strings.TrimSpace(f.Brand))
	query += ` ORDER BY CASE WHEN ? <> '' AND lower(brand) = ? THEN 0
		WHEN ? <> '' AND lower(brand) LIKE ? ESCAPE '\' THEN 1 ELSE 2 END, brand, name, id
		LIMIT ? OFFSET ?`
	args = append(args, brand, brand, brand, likePattern(brand), clampLimit(f.Limit), max(f.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row scanner) (*models.Product, error) {
	var (
		data      string
		avg       float64
		count     int
		updatedAt int64
	)
	if err := row.Scan(&data, &avg, &count, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	var p models.Product
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	p.AverageRating = avg
	p.RatingCount = count
	p.UpdatedAt = fromMicros(updatedAt)
	return &p, nil
}

// likePattern escapes LIKE wildcards and wraps s for a substring match
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultProductLimit
	case limit > maxProductLimit:
		return maxProductLimit
	default:
		return limit
	}
}
