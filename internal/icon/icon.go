package icon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "imagen-3.0-generate-001"
)

var (
	ErrNotConfigured = errors.New("icon generation is not configured")
	ErrNoImage       = errors.New("icon generation returned no image")
)

// Generator renders a pixel-art icon for a description and returns an image reference.
type Generator interface {
	Generate(ctx context.Context, description string) (string, error)
}

// Prompt wraps a description in the sprite style every icon shares.
func Prompt(description string) string {
	return fmt.Sprintf("16-bit pixel art icon of %s. Retro game style, clean simplified look, solid background, vibrant colors, centered, high contrast. As a game icon sprite.", strings.TrimSpace(description))
}

type Disabled struct{}

func (Disabled) Generate(context.Context, string) (string, error) { return "", ErrNotConfigured }

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Imagen calls the Imagen predict endpoint and returns a PNG data URL.
type Imagen struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) Generator {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return Disabled{}
	}
	return NewImagen(cfg, nil)
}

func NewImagen(cfg Config, hc *http.Client) *Imagen {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Imagen{cfg: cfg, http: hc}
}

type predictRequest struct {
	Instances  []map[string]string `json:"instances"`
	Parameters map[string]any      `json:"parameters"`
}

type predictResponse struct {
	Predictions []struct {
		BytesBase64Encoded string `json:"bytesBase64Encoded"`
		MimeType           string `json:"mimeType"`
	} `json:"predictions"`
}

func (g *Imagen) Generate(ctx context.Context, description string) (string, error) {
	body, err := json.Marshal(predictRequest{
		Instances:  []map[string]string{{"prompt": Prompt(description)}},
		Parameters: map[string]any{"sampleCount": 1, "aspectRatio": "1:1"},
	})
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/models/%s:predict?key=%s",
		strings.TrimRight(g.cfg.BaseURL, "/"), g.cfg.Model, url.QueryEscape(g.cfg.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, 16<<20))
	if err != nil {
		return "", err
	}
	if res.StatusCode/100 != 2 {
		return "", fmt.Errorf("imagen: status %d: %s", res.StatusCode, strings.TrimSpace(string(b)))
	}

	var out predictResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("imagen: decode: %w", err)
	}
	if len(out.Predictions) == 0 || out.Predictions[0].BytesBase64Encoded == "" {
		return "", ErrNoImage
	}
	mime := out.Predictions[0].MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + out.Predictions[0].BytesBase64Encoded, nil
}
