package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient создает новый API клиент
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Ограничиваем количество редиректов
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовок Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
}

// Health checks that the server is reachable
func (c *Client) Health(ctx context.Context) error {
	var resp api.HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/health", "", nil, &resp, nil); err != nil {
		return fmt.Errorf("health request failed: %w", err)
	}
	return nil
}

// CreateRecord creates a record. The client id doubles as idempotency key,
// so a repeated create returns the record created the first time.
func (c *Client) CreateRecord(ctx context.Context, accessToken, table string, req api.CreateRecordRequest) (*api.Record, error) {
	var resp api.Record
	headers := map[string]string{api.IdempotencyKeyHeader: req.ClientID}
	path := "/api/v1/records/" + url.PathEscape(table)
	if err := c.doRequest(ctx, http.MethodPost, path, accessToken, req, &resp, headers); err != nil {
		return nil, fmt.Errorf("create %s request failed: %w", table, err)
	}
	return &resp, nil
}

// UpdateRecord updates a record based on req.BaseVersion
func (c *Client) UpdateRecord(ctx context.Context, accessToken, table, id string, req api.UpdateRecordRequest) (*api.Record, error) {
	var resp api.Record
	path := fmt.Sprintf("/api/v1/records/%s/%s", url.PathEscape(table), url.PathEscape(id))
	if err := c.doRequest(ctx, http.MethodPut, path, accessToken, req, &resp, nil); err != nil {
		return nil, fmt.Errorf("update %s request failed: %w", table, err)
	}
	return &resp, nil
}

// DeleteRecord deletes a record based on baseVersion
func (c *Client) DeleteRecord(ctx context.Context, accessToken, table, id string, baseVersion int64) (*api.Record, error) {
	var resp api.Record
	path := fmt.Sprintf("/api/v1/records/%s/%s?base_version=%d", url.PathEscape(table), url.PathEscape(id), baseVersion)
	if err := c.doRequest(ctx, http.MethodDelete, path, accessToken, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("delete %s request failed: %w", table, err)
	}
	return &resp, nil
}

// ListRecords returns a page of the caller's records
func (c *Client) ListRecords(ctx context.Context, accessToken, table string, limit, offset int) (*api.RecordListResponse, error) {
	var resp api.RecordListResponse
	path := fmt.Sprintf("/api/v1/records/%s?limit=%d&offset=%d", url.PathEscape(table), limit, offset)
	if err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("list %s request failed: %w", table, err)
	}
	return &resp, nil
}

// Changes returns server changes after the since cursor
func (c *Client) Changes(ctx context.Context, accessToken string, since int64, limit int) (*api.ChangesResponse, error) {
	var resp api.ChangesResponse
	path := fmt.Sprintf("/api/v1/changes?since=%d&limit=%d", since, limit)
	if err := c.doRequest(ctx, http.MethodGet, path, accessToken, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("changes request failed: %w", err)
	}
	return &resp, nil
}

// ListProducts searches the catalog
func (c *Client) ListProducts(ctx context.Context, accessToken string, productType, brand, q string, limit, offset int) (*api.ProductListResponse, error) {
	params := url.Values{}
	if productType != "" {
		params.Set("type", productType)
	}
	if brand != "" {
		params.Set("brand", brand)
	}
	if q != "" {
		params.Set("q", q)
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp api.ProductListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/products?"+params.Encode(), accessToken, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("list products request failed: %w", err)
	}
	return &resp, nil
}

// GetProduct fetches a catalog product
func (c *Client) GetProduct(ctx context.Context, accessToken, id string) (*models.Product, error) {
	var resp models.Product
	if err := c.doRequest(ctx, http.MethodGet, "/api/v1/products/"+url.PathEscape(id), accessToken, nil, &resp, nil); err != nil {
		return nil, fmt.Errorf("get product request failed: %w", err)
	}
	return &resp, nil
}

// Recognize uploads an image and returns the recognition result
func (c *Client) Recognize(ctx context.Context, accessToken, filename string, image io.Reader, productType string) (*api.RecognizeResponse, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if productType != "" {
		if err := mw.WriteField("product_type", productType); err != nil {
			return nil, fmt.Errorf("failed to write form field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/recognize", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var resp api.RecognizeResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("recognize request failed: %w", err)
	}
	return &resp, nil
}

// doRequest выполняет JSON HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any, headers map[string]string) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return c.do(req, result)
}

func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, respBody)
	}

	// Декодируем успешный ответ
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
