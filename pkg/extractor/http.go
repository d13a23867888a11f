package extractor

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/faceauth-middleware/pkg/config"
	"github.com/chainsafe/faceauth-middleware/pkg/health"
	"github.com/chainsafe/faceauth-middleware/pkg/identity"
)

const (
	encodePath      = "/encode"
	healthPath      = "/health"
	maxResponseSize = 1 << 20
)

type encodeRequest struct {
	Image string `json:"image"`
}

type encodeResponse struct {
	Encodings [][]float64 `json:"encodings"`
}

// HTTPClient calls an extraction sidecar over JSON.
//
// POST /encode {"image": "<base64>"} answers {"encodings": [[...], ...]}
// with one vector per detected face; an empty list means no face.
type HTTPClient struct {
	baseURL    string
	dimensions int
	client     *http.Client
	health     *health.Cache
	logger     *zap.Logger
}

// NewHTTPClient creates an extractor client. dimensions is the expected
// vector length; responses of any other length are rejected.
func NewHTTPClient(cfg *config.ExtractorConfig, dimensions int, logger *zap.Logger) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		dimensions: dimensions,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
	c.health = health.NewCache(c.ping, 5*time.Second, 3*time.Second)
	return c
}

// Extract returns the embedding of the first face found in image.
func (c *HTTPClient) Extract(ctx context.Context, image []byte) (identity.Embedding, error) {
	body, err := json.Marshal(&encodeRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode extractor request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+encodePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extractor request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read extractor response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnprocessableEntity:
		return nil, ErrNoFace
	default:
		return nil, fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var out encodeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode extractor response: %w", err)
	}
	if len(out.Encodings) == 0 {
		return nil, ErrNoFace
	}
	if len(out.Encodings) > 1 {
		c.logger.Debug("Multiple faces detected, using the first", zap.Int("faces", len(out.Encodings)))
	}

	embedding := identity.Embedding(out.Encodings[0])
	if c.dimensions > 0 && len(embedding) != c.dimensions {
		return nil, fmt.Errorf("extractor returned %d dimensions, expected %d", len(embedding), c.dimensions)
	}
	return embedding, nil
}

// Healthy reports whether the sidecar answers its health endpoint.
func (c *HTTPClient) Healthy(ctx context.Context) error {
	return c.health.Check(ctx)
}

func (c *HTTPClient) ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("extractor unreachable: %w", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("extractor health returned status %d", resp.StatusCode)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
