// Package extractor is a client for a Tika-style text extraction service:
// the raw file goes out over PUT, plain text comes back.
package extractor

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
)

// Client extracts plain text from uploaded documents.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the extraction service settings.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates an extraction client.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  cfg.Logger,
	}
}

// ExtractText sends the file body to the extraction service and returns the
// plain text. The MIME type is inferred from the filename extension.
func (c *Client) ExtractText(ctx context.Context, file io.Reader, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/tika", file)
	if err != nil {
		return "", fmt.Errorf("build extract request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("Content-Type", detectMimeType(filename))

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w: %w", filename, domain.ErrExternalService, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("extract %s: service returned %d: %s: %w",
			filename, resp.StatusCode, string(body), domain.ErrExternalService)
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read extract response: %w: %w", domain.ErrExternalService, err)
	}

	c.logger.Debug("Text extracted",
		zap.String("filename", filename),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)),
	)
	return string(text), nil
}

// detectMimeType maps the filename extension to a Content-Type.
func detectMimeType(filename string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		return "application/octet-stream"
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return mimeType
	}
	return "application/octet-stream"
}
