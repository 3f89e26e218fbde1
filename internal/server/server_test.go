package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/models"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage/sqlite"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/vision"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

var testJWT = handlers.JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testAPI struct {
	t          *testing.T
	srv        *httptest.Server
	store      *sqlite.Storage
	recognizer *handlers.RecognizerMock
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	recognizer := &handlers.RecognizerMock{
		RecognizeFunc: func(ctx context.Context, img vision.Image, pt models.ProductType) *models.RecognitionResult {
			return models.EmptyRecognition(pt, "no match")
		},
	}
	router := NewRouter(setupTestLogger(), Config{JWT: testJWT}, store, recognizer)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testAPI{t: t, srv: srv, store: store, recognizer: recognizer}
}

func token(t *testing.T, userID string) string {
	t.Helper()
	tok, _, err := handlers.GenerateAccessToken(testJWT, userID, userID+"_name")
	require.NoError(t, err)
	return tok
}

// do sends a JSON request and decodes the response into out when non-nil
func (a *testAPI) do(method, path, userID string, body any, headers map[string]string, out any) int {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+token(a.t, userID))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func createReq(t *testing.T, e models.Entity) api.CreateRecordRequest {
	t.Helper()
	data, err := json.Marshal(e)
	require.NoError(t, err)
	return api.CreateRecordRequest{ClientID: e.RecordID(), Data: data}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)

	var resp api.HealthResponse
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/health", "", nil, nil, &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotZero(t, resp.Time)
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	var errResp api.ErrorResponse
	status := a.do(http.MethodGet, "/api/v1/changes", "", nil, nil, &errResp)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, http.StatusUnauthorized, errResp.StatusCode)
}

func TestCreateRecord(t *testing.T) {
	a := newTestAPI(t)
	post := &models.Post{ID: "local-post-1", UserID: "user-1", Content: "Behike after dinner"}
	req := createReq(t, post)
	headers := map[string]string{api.IdempotencyKeyHeader: post.ID}

	var first api.Record
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/records/posts", "user-1", req, headers, &first))
	assert.Equal(t, "local-post-1", first.ClientID)
	assert.Equal(t, int64(1), first.Version)

	t.Run("retry returns existing record", func(t *testing.T) {
		var again api.Record
		require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/v1/records/posts", "user-1", req, headers, &again))
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("client id of another user", func(t *testing.T) {
		other := createReq(t, &models.Post{ID: "local-post-1", UserID: "user-2", Content: "mine"})
		assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, "/api/v1/records/posts", "user-2", other, nil, nil))
	})

	tests := []struct {
		name    string
		path    string
		req     api.CreateRecordRequest
		headers map[string]string
		want    int
	}{
		{
			name:    "idempotency key mismatch",
			path:    "/api/v1/records/posts",
			req:     createReq(t, &models.Post{ID: "p-2", UserID: "user-1", Content: "x"}),
			headers: map[string]string{api.IdempotencyKeyHeader: "p-3"},
			want:    http.StatusBadRequest,
		},
		{
			name: "owner mismatch",
			path: "/api/v1/records/posts",
			req:  createReq(t, &models.Post{ID: "p-4", UserID: "user-2", Content: "impersonation"}),
			want: http.StatusForbidden,
		},
		{
			name: "validation failure",
			path: "/api/v1/records/ratings",
			req:  createReq(t, &models.Rating{ID: "r-1", UserID: "user-1", ProductID: "prod", ProductType: models.ProductCigar, Score: 7}),
			want: http.StatusBadRequest,
		},
		{
			name: "unknown table",
			path: "/api/v1/records/humidors",
			req:  createReq(t, &models.Post{ID: "p-5", UserID: "user-1", Content: "x"}),
			want: http.StatusNotFound,
		},
		{
			name: "products are not a synced table",
			path: "/api/v1/records/products",
			req:  createReq(t, &models.Post{ID: "p-6", UserID: "user-1", Content: "x"}),
			want: http.StatusNotFound,
		},
		{
			name: "data id differs from client id",
			path: "/api/v1/records/posts",
			req: api.CreateRecordRequest{
				ClientID: "p-7",
				Data:     createReq(t, &models.Post{ID: "p-8", UserID: "user-1", Content: "x"}).Data,
			},
			want: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp api.ErrorResponse
			assert.Equal(t, tt.want, a.do(http.MethodPost, tt.path, "user-1", tt.req, tt.headers, &errResp))
			assert.Equal(t, tt.want, errResp.StatusCode)
			assert.NotEmpty(t, errResp.Message)
		})
	}
}

func TestUpdateConflict(t *testing.T) {
	a := newTestAPI(t)
	rating := &models.Rating{ID: "r-1", UserID: "user-1", ProductID: "prod-1", ProductType: models.ProductCigar, Score: 3}

	var rec api.Record
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/records/ratings", "user-1", createReq(t, rating), nil, &rec))
	path := "/api/v1/records/ratings/" + rec.ID

	rating.Score = 4
	upd := api.UpdateRecordRequest{Data: createReq(t, rating).Data, BaseVersion: 1}
	var updated api.Record
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, path, "user-1", upd, nil, &updated))
	assert.Equal(t, int64(2), updated.Version)

	// Второе устройство всё ещё на версии 1
	rating.Score = 5
	stale := api.UpdateRecordRequest{Data: createReq(t, rating).Data, BaseVersion: 1}
	var errResp api.ErrorResponse
	require.Equal(t, http.StatusConflict, a.do(http.MethodPut, path, "user-1", stale, nil, &errResp))
	require.NotNil(t, errResp.Current)
	assert.Equal(t, int64(2), errResp.Current.Version)

	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPut, path, "user-2", upd, nil, nil))
	assert.Equal(t, http.StatusNotFound, a.do(http.MethodPut, "/api/v1/records/ratings/missing", "user-1", upd, nil, nil))
}

func TestDeleteRecord(t *testing.T) {
	a := newTestAPI(t)

	var rec api.Record
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/records/follows", "user-1",
		createReq(t, &models.Follow{ID: "f-1", FollowerID: "user-1", FolloweeID: "user-2"}), nil, &rec))
	path := "/api/v1/records/follows/" + rec.ID

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodDelete, path, "user-1", nil, nil, nil))
	assert.Equal(t, http.StatusConflict, a.do(http.MethodDelete, path+"?base_version=3", "user-1", nil, nil, nil))

	var deleted api.Record
	require.Equal(t, http.StatusOK, a.do(http.MethodDelete, path+"?base_version=1", "user-1", nil, nil, &deleted))
	assert.True(t, deleted.Deleted)

	var list api.RecordListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/records/follows", "user-1", nil, nil, &list))
	assert.Empty(t, list.Records)
}

func TestChanges(t *testing.T) {
	a := newTestAPI(t)

	for i := range 3 {
		post := &models.Post{ID: fmt.Sprintf("p-%d", i), UserID: "user-1", Content: "post"}
		require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/records/posts", "user-1", createReq(t, post), nil, nil))
	}
	item := &models.CollectionItem{ID: "c-1", UserID: "user-1", ProductID: "prod-1", ProductType: models.ProductWine, Quantity: 2}
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/records/collection_items", "user-1", createReq(t, item), nil, nil))

	var page api.ChangesResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/changes?since=0&limit=2", "user-2", nil, nil, &page))
	require.Len(t, page.Records, 2)
	assert.True(t, page.HasMore)
	assert.Equal(t, page.Records[1].Seq, page.Cursor)

	var rest api.ChangesResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/api/v1/changes?since=%d", page.Cursor), "user-2", nil, nil, &rest))
	require.Len(t, rest.Records, 1, "collection items of other users are private")
	assert.False(t, rest.HasMore)

	var own api.ChangesResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/changes", "user-1", nil, nil, &own))
	assert.Len(t, own.Records, 4)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/changes?since=abc", "user-1", nil, nil, nil))
}

func TestProducts(t *testing.T) {
	a := newTestAPI(t)

	var created models.Product
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/api/v1/products", "admin",
		&models.Product{Type: "Cigar", Brand: "Cohiba", Name: "Behike 52", Size: "robusto"}, nil, &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.ProductCigar, created.Type)

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/products", "admin",
		&models.Product{Type: "sake", Brand: "Dassai", Name: "23"}, nil, nil))

	var list api.ProductListResponse
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/products?type=cigar&brand=cohiba", "user-1", nil, nil, &list))
	require.Len(t, list.Products, 1)
	assert.Equal(t, 20, list.Limit)

	var got models.Product
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/v1/products/"+created.ID, "user-1", nil, nil, &got))
	assert.Equal(t, "Behike 52", got.Name)

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/v1/products/missing", "user-1", nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/products?type=sake", "user-1", nil, nil, nil))
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/v1/products?limit=-1", "user-1", nil, nil, nil))
}

func TestRecognize(t *testing.T) {
	a := newTestAPI(t)

	t.Run("multipart upload", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("image", "band.jpg")
		require.NoError(t, err)
		_, _ = part.Write([]byte("jpeg-bytes"))
		require.NoError(t, mw.WriteField("product_type", "wine"))
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/v1/recognize", &body)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var res api.RecognizeResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, models.ProductWine, res.ProductType)

		calls := a.recognizer.RecognizeCalls()
		require.NotEmpty(t, calls)
		last := calls[len(calls)-1]
		assert.Equal(t, []byte("jpeg-bytes"), last.Img.Content)
		assert.Equal(t, models.ProductWine, last.Pt)
	})

	t.Run("json image uri defaults to cigar", func(t *testing.T) {
		var res api.RecognizeResponse
		require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/v1/recognize", "user-1",
			api.RecognizeRequest{ImageURI: "gs://bands/cohiba.jpg"}, nil, &res))
		calls := a.recognizer.RecognizeCalls()
		last := calls[len(calls)-1]
		assert.Equal(t, "gs://bands/cohiba.jpg", last.Img.URI)
		assert.Equal(t, models.ProductCigar, last.Pt)
	})

	t.Run("empty image", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, a.do(http.MethodPost, "/api/v1/recognize", "user-1",
			api.RecognizeRequest{}, nil, nil))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPost, a.srv.URL+"/api/v1/recognize", bytes.NewReader([]byte("raw")))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "image/jpeg")
		req.Header.Set("Authorization", "Bearer "+token(t, "user-1"))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})
}

func TestRateLimit(t *testing.T) {
	store, err := sqlite.New(context.Background(), filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	defer store.Close()

	cfg := Config{JWT: testJWT, RateLimit: RateLimitConfig{Requests: 2, Window: time.Minute}}
	router := NewRouter(setupTestLogger(), cfg, store, &handlers.RecognizerMock{})

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, setupTestLogger(), "127.0.0.1:0", http.NotFoundHandler())
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
