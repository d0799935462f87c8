package extractor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/paperdex/internal/domain"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(&Config{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
}

func TestExtractText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/tika" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "text/plain" {
			t.Errorf("unexpected Accept: %s", r.Header.Get("Accept"))
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/pdf") {
			t.Errorf("expected pdf content type, got %s", ct)
		}

		body, _ := io.ReadAll(r.Body)
		if string(body) != "%PDF-fake" {
			t.Errorf("unexpected body: %s", body)
		}

		_, _ = w.Write([]byte("Extracted paper text."))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	text, err := c.ExtractText(context.Background(), strings.NewReader("%PDF-fake"), "paper.pdf")
	if err != nil {
		t.Fatalf("ExtractText failed: %v", err)
	}
	if text != "Extracted paper text." {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractText_UnknownExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/octet-stream" {
			t.Errorf("expected octet-stream fallback, got %s", ct)
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	if _, err := c.ExtractText(context.Background(), strings.NewReader("data"), "noext"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExtractText_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte("cannot parse"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	_, err := c.ExtractText(context.Background(), strings.NewReader("data"), "broken.pdf")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}

func TestExtractText_Unreachable(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")

	_, err := c.ExtractText(context.Background(), strings.NewReader("data"), "paper.pdf")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Errorf("expected ErrExternalService, got %v", err)
	}
}
