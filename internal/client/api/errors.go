package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/pkg/api"
)

// ErrorKind classifies a failed remote call for the sync manager.
type ErrorKind int

// Error kinds.
const (
	KindTransient ErrorKind = iota // сеть, 5xx, 429: повторить с backoff
	KindPermanent                  // 4xx: не повторять
	KindConflict                   // 409: версия на сервере изменилась
	KindAuth                       // 401, 403: токен отклонён, повторить после входа
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindPermanent:
		return "permanent"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error is a non-2xx server response.
type Error struct {
	Current    *api.Record // серверная копия при 409
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Kind classifies the response status.
func (e *Error) Kind() ErrorKind {
	switch {
	case e.StatusCode == http.StatusConflict:
		return KindConflict
	case e.StatusCode == http.StatusUnauthorized,
		e.StatusCode == http.StatusForbidden:
		return KindAuth
	case e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode >= 500:
		return KindTransient
	default:
		return KindPermanent
	}
}

func newError(status int, body []byte) *Error {
	apiErr := &Error{StatusCode: status}

	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		apiErr.Message = errResp.Message
		apiErr.Current = errResp.Current
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// Classify returns the kind of err. Errors without a server response
// (network failures, timeouts) are transient.
func Classify(err error) ErrorKind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind()
	}
	return KindTransient
}

// ConflictCurrent returns the server copy carried by a conflict error.
func ConflictCurrent(err error) *api.Record {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Current
	}
	return nil
}
