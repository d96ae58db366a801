// Package testutil provides testing utilities for the TourAPI client.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock TourAPI endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockTourAPI is a configurable mock TourAPI server for testing.
type MockTourAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount   int
	LastRequestURL string
	RequestsByPath map[string]int
}

// NewMockTourAPI creates a new mock TourAPI server.
func NewMockTourAPI() *MockTourAPI {
	mock := &MockTourAPI{
		handlers:       make(map[string]func(w http.ResponseWriter, r *http.Request)),
		RequestsByPath: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.LastRequestURL = r.URL.String()
		mock.RequestsByPath[r.URL.Path]++
		mock.mu.Unlock()

		mock.mu.RLock()
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.RUnlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockTourAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockTourAPI) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockTourAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.LastRequestURL = ""
	m.RequestsByPath = make(map[string]int)
}

// SetHandler sets a custom handler for an endpoint path (e.g. "/areaCode2").
func (m *MockTourAPI) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a simple response for an endpoint path.
func (m *MockTourAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockTourAPI) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// GetPathCount returns the number of requests made to one endpoint path.
func (m *MockTourAPI) GetPathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestsByPath[path]
}

// defaultHandler answers any unconfigured path with an empty success
// envelope.
func (m *MockTourAPI) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(SuccessEnvelope("", 0, 1, 0)))
}

// SuccessEnvelope builds a success envelope around the given item JSON.
// Pass an empty item for an empty listing (the upstream encodes that as
// items being an empty string).
func SuccessEnvelope(itemJSON string, numOfRows, pageNo, totalCount int) string {
	items := `""`
	if itemJSON != "" {
		items = fmt.Sprintf(`{"item":%s}`, itemJSON)
	}
	return fmt.Sprintf(
		`{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":%s,"numOfRows":%d,"pageNo":%d,"totalCount":%d}}}`,
		items, numOfRows, pageNo, totalCount,
	)
}

// ErrorEnvelope builds the upstream's flat application-error envelope.
func ErrorEnvelope(resultCode, resultMsg string) string {
	return fmt.Sprintf(
		`{"responseTime":"%s","resultCode":"%s","resultMsg":"%s"}`,
		time.Now().Format("20060102150405"), resultCode, resultMsg,
	)
}

// NewSuccessResponse creates a 200 response carrying a success envelope.
func NewSuccessResponse(itemJSON string, totalCount int) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       SuccessEnvelope(itemJSON, 1, 1, totalCount),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUpstreamErrorResponse creates a 200 response carrying the flat error
// envelope (the upstream reports application errors with HTTP 200).
func NewUpstreamErrorResponse(resultCode, resultMsg string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       ErrorEnvelope(resultCode, resultMsg),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response. A
// non-empty retryAfter is sent as the Retry-After header (seconds).
func NewRateLimitResponse(retryAfter string) MockResponse {
	headers := map[string]string{
		"Content-Type": "application/json; charset=utf-8",
	}
	if retryAfter != "" {
		headers["Retry-After"] = retryAfter
	}
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error": "rate limit exceeded"}`,
		Headers:    headers,
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}
