// Package testsupport holds helpers shared by package tests: golden files and
// a scripted fake of the external form endpoints.
package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// Response scripts one answer of a FakeEndpoint.
type Response struct {
	Status      int
	ContentType string
	Body        string
}

// JSON builds a 200 application/json response.
func JSON(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "application/json", Body: body}
}

// HTML builds a 200 text/html response, the shape free PHP hosts return when
// they inject an interstitial page.
func HTML(body string) Response {
	return Response{Status: http.StatusOK, ContentType: "text/html; charset=utf-8", Body: body}
}

// FakeEndpoint records JSON posts and answers them with a scripted response.
type FakeEndpoint struct {
	Server *httptest.Server

	mu       sync.Mutex
	response Response
	requests []Request
	block    chan struct{}
	arrived  chan struct{}
}

// Request is one recorded post.
type Request struct {
	Method      string
	ContentType string
	Body        map[string]any
}

// NewFakeEndpoint starts a fake answering every request with resp. The server
// is closed through t.Cleanup.
func NewFakeEndpoint(t *testing.T, resp Response) *FakeEndpoint {
	t.Helper()
	fake := &FakeEndpoint{response: resp, arrived: make(chan struct{}, 16)}
	fake.Server = httptest.NewServer(http.HandlerFunc(fake.serve))
	t.Cleanup(fake.Server.Close)
	return fake
}

// URL returns the fake's base URL.
func (f *FakeEndpoint) URL() string {
	return f.Server.URL
}

// Respond replaces the scripted response.
func (f *FakeEndpoint) Respond(resp Response) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.response = resp
}

// Hold makes the fake wait before answering until release is called. Arrived
// receives once per request that reached the fake, so tests can observe a
// submission while it is in flight.
func (f *FakeEndpoint) Hold() (arrived <-chan struct{}, release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.block = ch
	var once sync.Once
	return f.arrived, func() { once.Do(func() { close(ch) }) }
}

// Requests returns the recorded requests.
func (f *FakeEndpoint) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *FakeEndpoint) serve(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.requests = append(f.requests, Request{
		Method:      r.Method,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})
	resp := f.response
	block := f.block
	f.mu.Unlock()

	select {
	case f.arrived <- struct{}{}:
	default:
	}

	if block != nil {
		select {
		case <-block:
		case <-r.Context().Done():
			return
		}
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp.Body)
}
