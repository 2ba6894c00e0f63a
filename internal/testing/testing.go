// package testing contains shared testing utilities
package testing

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
)

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Upstream is a scripted stand-in for the Spotify Web API.
//
// Routes use [http.ServeMux] patterns ("GET /users/{id}"). Every request must carry "Bearer <Token>"
// or it is answered with 401, matching the real API.
type Upstream struct {
	*httptest.Server
	Token string

	hits atomic.Int64
}

// NewUpstream starts an [Upstream] serving routes; it is closed when the test ends.
func NewUpstream(t *testing.T, token string, routes map[string]http.HandlerFunc) *Upstream {
	t.Helper()

	u := &Upstream{Token: token}
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}

	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+u.Token {
			WriteJSON(w, http.StatusUnauthorized, map[string]any{
				"error": map[string]any{"status": 401, "message": "Invalid access token"},
			})
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(u.Close)

	return u
}

// Hits returns how many requests the upstream has received.
func (u *Upstream) Hits() int64 { return u.hits.Load() }

// JSON returns a handler that always answers with status and body.
func JSON(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, body)
	}
}

// WriteJSON encodes body as the JSON response.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }
