package service

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/faceauth-middleware/pkg/app/errors"
	apphttp "github.com/chainsafe/faceauth-middleware/pkg/app/http"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
	"github.com/chainsafe/faceauth-middleware/pkg/session"
)

// credentialRequest is the JSON body of /register and /verify. face_image is
// standard base64 or a data URL.
type credentialRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FaceImage string `json:"face_image"`
}

type verifyResponse struct {
	*identity.VerifyResult
	*session.Token
}

type sessionResponse struct {
	Username  string    `json:"username"`
	Degraded  bool      `json:"matched_via_degraded_fallback"`
	ExpiresAt time.Time `json:"expires_at"`
}

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service      Service
	sessions     *session.Issuer
	maxBodyBytes int64
	logger       *zap.Logger
}

// RegisterRoutes registers the credential endpoints on the given chi router.
// sessions may be nil, in which case no tokens are issued and /session is
// not mounted.
func RegisterRoutes(r chi.Router, service Service, sessions *session.Issuer, maxBodyBytes int64, logger *zap.Logger) {
	h := &HTTP{
		service:      service,
		sessions:     sessions,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}

	r.Post("/register", apphttp.HandleError(h.register))
	r.Post("/verify", apphttp.HandleError(h.verify))
	r.Get("/stats", apphttp.HandleError(h.stats))
	if sessions != nil {
		r.Get("/session", apphttp.HandleError(h.session))
	}
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	var req credentialRequest
	if err := apphttp.DecodeJSON(r, h.maxBodyBytes, &req); err != nil {
		return err
	}
	image, err := decodeImage(req.FaceImage)
	if err != nil {
		return err
	}

	resp, err := h.service.Register(r.Context(), &identity.RegisterRequest{
		Username: req.Username,
		Password: req.Password,
		Image:    image,
	})
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, resp)
	return nil
}

func (h *HTTP) verify(w http.ResponseWriter, r *http.Request) error {
	var req credentialRequest
	if err := apphttp.DecodeJSON(r, h.maxBodyBytes, &req); err != nil {
		return err
	}
	image, err := decodeImage(req.FaceImage)
	if err != nil {
		return err
	}

	res, err := h.service.Verify(r.Context(), &identity.VerifyRequest{
		Username: req.Username,
		Password: req.Password,
		Image:    image,
	})
	if err != nil {
		return err
	}

	out := verifyResponse{VerifyResult: res}
	if h.sessions != nil {
		tok, err := h.sessions.Issue(res.Username, res.MatchedViaDegradedFallback)
		if err != nil {
			return apperrors.GeneralError(err)
		}
		out.Token = tok
	}

	apphttp.WriteJSON(w, http.StatusOK, out)
	return nil
}

func (h *HTTP) stats(w http.ResponseWriter, r *http.Request) error {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		return err
	}
	apphttp.WriteJSON(w, http.StatusOK, stats)
	return nil
}

func (h *HTTP) session(w http.ResponseWriter, r *http.Request) error {
	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return apperrors.UnAuthorizedError(nil, "bearer token required")
	}

	claims, err := h.sessions.Parse(strings.TrimSpace(raw))
	if err != nil {
		return apperrors.UnAuthorizedError(err, "invalid session token")
	}

	apphttp.WriteJSON(w, http.StatusOK, sessionResponse{
		Username:  claims.Subject,
		Degraded:  claims.Degraded,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	return nil
}

// decodeImage accepts plain base64 or a data:image/...;base64, URL. An empty
// string yields no bytes so the service reports the missing field.
func decodeImage(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.HasPrefix(s, "data:") {
		_, payload, ok := strings.Cut(s, ",")
		if !ok {
			return nil, apperrors.New(apperrors.CategoryDataError, ReasonValidation,
				"face_image data URL has no payload", errors.New("malformed data URL"))
		}
		s = payload
	}

	image, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		image, err = base64.RawStdEncoding.DecodeString(s)
	}
	if err != nil {
		return nil, apperrors.New(apperrors.CategoryDataError, ReasonValidation,
			"face_image must be base64 encoded", err)
	}
	return image, nil
}
