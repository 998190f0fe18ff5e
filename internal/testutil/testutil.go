// Package testutil provides shared test helpers for config files and a fake Gemini upstream.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetupTestConfig writes a minimal config file pointing the Gemini client at baseURL.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`server:
  host: 127.0.0.1
  port: 18080
gemini:
  model: gemini-test
  base_url: %s
  timeout: 5s
log:
  level: debug
`, baseURL)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// CandidateResponse is a generateContent response whose first candidate carries text
func CandidateResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"modelVersion": "gemini-test",
	}
}

// WriteCandidateText writes CandidateResponse(text) with status 200
func WriteCandidateText(t *testing.T, w http.ResponseWriter, text string) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	require.NoError(t, json.NewEncoder(w).Encode(CandidateResponse(text)))
}

// GeminiRequest is one request received by GeminiServer
type GeminiRequest struct {
	Path   string
	APIKey string
	Body   map[string]any
}

// GeminiServer is a fake generateContent endpoint answering every call with the same text
type GeminiServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []GeminiRequest
}

// NewGeminiServer starts a fake upstream that is closed with the test
func NewGeminiServer(t *testing.T, text string) *GeminiServer {
	t.Helper()

	server := &GeminiServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var decoded map[string]any
		if err := json.Unmarshal(body, &decoded); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		server.mu.Lock()
		server.requests = append(server.requests, GeminiRequest{
			Path:   r.URL.Path,
			APIKey: r.URL.Query().Get("key"),
			Body:   decoded,
		})
		server.mu.Unlock()

		WriteCandidateText(t, w, text)
	}))
	t.Cleanup(server.Close)
	return server
}

// Requests returns a copy of the requests received so far
func (server *GeminiServer) Requests() []GeminiRequest {
	server.mu.Lock()
	defer server.mu.Unlock()
	requests := make([]GeminiRequest, len(server.requests))
	copy(requests, server.requests)
	return requests
}
