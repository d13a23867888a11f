package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var got errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func TestHandleError_ServiceErrorCarriesReason(t *testing.T) {
	h := HandleError(func(http.ResponseWriter, *http.Request) error {
		return apperrors.New(apperrors.CategoryDataConflict, "DuplicateIdentity", "user already registered", nil)
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/register", nil))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status %d, got %d", http.StatusConflict, rec.Code)
	}
	got := decodeError(t, rec)
	if got.ErrMsg != "user already registered" || got.Reason != "DuplicateIdentity" || got.ErrMsgCode != http.StatusConflict {
		t.Fatalf("unexpected body: %+v", got)
	}
}

func TestHandleError_UnknownErrorIsMasked(t *testing.T) {
	h := HandleError(func(http.ResponseWriter, *http.Request) error {
		return errors.New("pq: connection refused to 10.0.0.3")
	})

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if got := decodeError(t, rec); got.ErrMsg != "Unexpected Service Error" {
		t.Fatalf("expected masked message, got %q", got.ErrMsg)
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"alice"}`))
	if err := DecodeJSON(req, 1024, &v); err != nil {
		t.Fatalf("DecodeJSON() failed: %v", err)
	}
	if v.Name != "alice" {
		t.Fatalf("expected alice, got %q", v.Name)
	}

	req = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{bad`))
	if err := DecodeJSON(req, 1024, &v); !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected data error, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 64)+`"}`))
	err := DecodeJSON(req, 16, &v)
	if !apperrors.Is(err, apperrors.CategoryDataError) {
		t.Fatalf("expected data error for oversized body, got %v", err)
	}
}

func TestRateLimiter_PerClientBudget(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := NewRateLimiter(60, 2)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1") || !l.Allow("10.0.0.1") {
		t.Fatal("expected burst of 2 to be allowed")
	}
	if l.Allow("10.0.0.1") {
		t.Fatal("expected third request to be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatal("expected other client to have its own budget")
	}

	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1") {
		t.Fatal("expected a token to refill after one second")
	}
}

func TestRateLimiter_Middleware(t *testing.T) {
	l := NewRateLimiter(60, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/verify", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusNoContent {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
}
