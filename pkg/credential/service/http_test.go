package service

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/credential/service/mocks"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/session"
)

const testMaxBody = 1 << 20

type errorBody struct {
	Error  string `json:"error"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

func newTestServer(svc Service, sessions *session.Issuer) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, svc, sessions, testMaxBody, zap.NewNop())
	return r
}

func testIssuer() *session.Issuer {
	return session.NewIssuer(&config.SessionConfig{
		Enabled: true,
		Secret:  "0123456789abcdef0123456789abcdef",
		Issuer:  "faceauth-test",
		TTL:     time.Minute,
	})
}

func credentialBody(t *testing.T, username, image string) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(map[string]string{
		"username":   username,
		"password":   password,
		"face_image": image,
	})
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return bytes.NewBuffer(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var got errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	return got
}

func TestRegisterHTTP_InvalidJSON_ReturnsBadRequest(t *testing.T) {
	handler := newTestServer(mocks.NewService(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString("{invalid"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.Error != "invalid JSON" {
		t.Fatalf("expected error %q, got %q", "invalid JSON", got.Error)
	}
}

func TestRegisterHTTP_BadBase64_ReturnsValidationError(t *testing.T) {
	handler := newTestServer(mocks.NewService(t), nil)

	req := httptest.NewRequest(http.MethodPost, "/register", credentialBody(t, "alice", "not base64!!"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
	if got := decodeError(t, rec); got.Reason != ReasonValidation {
		t.Fatalf("expected reason %q, got %q", ReasonValidation, got.Reason)
	}
}

func TestRegisterHTTP_Success(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().
		Register(mock.Anything, mock.MatchedBy(func(req *identity.RegisterRequest) bool {
			return req.Username == "alice" && req.Password == password && bytes.Equal(req.Image, imageA)
		})).
		Return(&identity.RegisterResponse{
			Username:            "alice",
			PasswordFingerprint: "pfp",
			FaceFingerprint:     "ffp",
		}, nil)
	handler := newTestServer(svc, nil)

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageA)
	req := httptest.NewRequest(http.MethodPost, "/register", credentialBody(t, "alice", dataURL))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type %q, got %q", "application/json", ct)
	}

	var got identity.RegisterResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.FaceFingerprint != "ffp" || got.PasswordFingerprint != "pfp" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestRegisterHTTP_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"duplicate", duplicateError("alice"), http.StatusConflict, ReasonDuplicateIdentity},
		{"no face", noFaceError(nil), http.StatusBadRequest, ReasonNoFaceDetected},
		{"unavailable", ledgerUnavailableError(nil), http.StatusServiceUnavailable, ReasonLedgerUnavailable},
		{"timeout", ledgerTimeoutError(nil), http.StatusGatewayTimeout, ReasonLedgerTimeout},
		{"reject", ledgerRejectError(nil), http.StatusBadGateway, ReasonLedgerReject},
		{"inconsistent", inconsistentError("alice"), http.StatusInternalServerError, ReasonRegistrationInconsistent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := mocks.NewService(t)
			svc.EXPECT().Register(mock.Anything, mock.Anything).Return(nil, tt.err)
			handler := newTestServer(svc, nil)

			body := credentialBody(t, "alice", base64.StdEncoding.EncodeToString(imageA))
			req := httptest.NewRequest(http.MethodPost, "/register", body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := decodeError(t, rec); got.Reason != tt.wantReason {
				t.Fatalf("expected reason %q, got %q", tt.wantReason, got.Reason)
			}
		})
	}
}

func TestVerifyHTTP_AuthenticationFailuresLookAlike(t *testing.T) {
	for _, sentinel := range []error{ErrInvalidCredential, ErrBiometricMismatch} {
		t.Run(sentinel.Error(), func(t *testing.T) {
			svc := mocks.NewService(t)
			svc.EXPECT().Verify(mock.Anything, mock.Anything).Return(nil, authenticationError(sentinel))
			handler := newTestServer(svc, nil)

			body := credentialBody(t, "alice", base64.StdEncoding.EncodeToString(imageA))
			req := httptest.NewRequest(http.MethodPost, "/verify", body)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
			}
			got := decodeError(t, rec)
			if got.Reason != ReasonAuthenticationFailed || got.Error != "authentication failed" {
				t.Fatalf("unexpected error body: %+v", got)
			}
		})
	}
}

func TestVerifyHTTP_IssuesSessionToken(t *testing.T) {
	svc := mocks.NewService(t)
	svc.EXPECT().Verify(mock.Anything, mock.Anything).Return(&identity.VerifyResult{
		Username:                   "alice",
		PasswordFingerprint:        "pfp",
		FaceFingerprint:            "ffp",
		MatchedViaDegradedFallback: true,
	}, nil)
	handler := newTestServer(svc, testIssuer())

	body := credentialBody(t, "alice", base64.StdEncoding.EncodeToString(imageA))
	req := httptest.NewRequest(http.MethodPost, "/verify", body)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var got struct {
		Username     string `json:"username"`
		Degraded     bool   `json:"matched_via_degraded_fallback"`
		SessionToken string `json:"session_token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.Username != "alice" || !got.Degraded || got.SessionToken == "" {
		t.Fatalf("unexpected response: %+v", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer "+got.SessionToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var sess sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if sess.Username != "alice" || !sess.Degraded {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestSessionHTTP_RejectsBadTokens(t *testing.T) {
	handler := newTestServer(mocks.NewService(t), testIssuer())

	for _, header := range []string{"", "Bearer ", "Bearer not-a-jwt", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/session", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected status %d, got %d", header, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestSessionHTTP_NotMountedWithoutIssuer(t *testing.T) {
	handler := newTestServer(mocks.NewService(t), nil)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestStatsHTTP(t *testing.T) {
	users := uint64(2)
	svc := mocks.NewService(t)
	svc.EXPECT().Stats(mock.Anything).Return(&identity.Stats{LedgerUsers: &users, IndexRecords: 1}, nil)
	handler := newTestServer(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	var got identity.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response JSON: %v", err)
	}
	if got.LedgerUsers == nil || *got.LedgerUsers != 2 || got.IndexRecords != 1 {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestDecodeImage(t *testing.T) {
	raw := []byte{0xff, 0xd8, 0xff, 0x00}
	std := base64.StdEncoding.EncodeToString(raw)
	rawStd := base64.RawStdEncoding.EncodeToString(raw)

	for _, in := range []string{std, rawStd, "data:image/png;base64," + std} {
		got, err := decodeImage(in)
		if err != nil {
			t.Fatalf("decodeImage(%q) failed: %v", in, err)
		}
		if !bytes.Equal(got, raw) {
			t.Fatalf("decodeImage(%q) = %x, want %x", in, got, raw)
		}
	}

	if got, err := decodeImage(""); err != nil || got != nil {
		t.Fatalf("expected empty image to decode to nil, got %x, %v", got, err)
	}
	if _, err := decodeImage("data:image/png;base64"); err == nil {
		t.Fatal("expected error for data URL without payload")
	}
}
