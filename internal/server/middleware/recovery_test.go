package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecover(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{name: "string", value: "nil map write in rating aggregate"},
		{name: "error", value: errors.New("storage exploded")},
		{name: "struct", value: struct{ table string }{"posts"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := captureLogger()
			handler := RequestLogger(logger)(Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				panic(tt.value)
			})))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/records/ratings", nil)
			req.Header.Set(RequestIDHeader, "req-1")
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			resp := decodeError(t, w.Body)
			assert.Equal(t, "internal server error", resp.Message)
			assert.NotContains(t, resp.Message, "exploded")

			out := buf.String()
			assert.Contains(t, out, "Panic recovered")
			assert.Contains(t, out, `"request_id":"req-1"`)
			assert.Contains(t, out, "goroutine", "stack trace is logged")
		})
	}
}

func TestRecover_PassesThrough(t *testing.T) {
	handler := Recover(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestRecover_AbortHandlerPropagates(t *testing.T) {
	handler := Recover(setupTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}
