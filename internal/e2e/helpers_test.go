package e2e

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"envit5d/internal/httpapi"
	"envit5d/internal/pipeline"
)

// stubModel stands in for the ONNX runtime so the suite can exercise the
// full HTTP -> pipeline path without model files on disk.
type stubModel struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *stubModel) Generate(ctx context.Context, input string, maxLength int) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	// Mimic the real model: answer in the opposite language, tagged with it.
	switch {
	case strings.HasPrefix(input, "en: "):
		return "vi: xin chào", nil
	case strings.HasPrefix(input, "vi: "):
		return "en: hello", nil
	}
	return input, nil
}

func (s *stubModel) Device() string    { return "cpu" }
func (s *stubModel) ModelName() string { return "stub-envit5" }

func (s *stubModel) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// newServer builds the HTTP mux over a pipeline and starts a test server.
func newServer(t *testing.T, backend pipeline.Backend, cfg pipeline.Config) *httptest.Server {
	t.Helper()
	cfg.Backend = backend
	svc := pipeline.New(cfg)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil { t.Fatalf("new req: %v", err) }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do req: %v", err) }
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do req: %v", err) }
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}
