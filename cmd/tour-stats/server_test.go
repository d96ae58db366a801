package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hojin-kr/kto-tour-client/internal/testutil"
	"github.com/hojin-kr/kto-tour-client/pkg/client"
	"github.com/hojin-kr/kto-tour-client/pkg/logging"
	"github.com/hojin-kr/kto-tour-client/pkg/ratelimit"
	"github.com/hojin-kr/kto-tour-client/pkg/stats"
	"github.com/hojin-kr/kto-tour-client/pkg/tourapi"
)

// setupTestServer wires the full stack against a mock upstream.
func setupTestServer(t *testing.T) (*server, *testutil.MockTourAPI) {
	t.Helper()

	mock := testutil.NewMockTourAPI()
	t.Cleanup(mock.Close)

	cfg := client.Config{
		BaseURL:    mock.URL(),
		ServiceKey: "test-key",
		AppName:    "tour-test",
		MaxRetries: 1,
		BaseDelay:  5 * time.Millisecond,
	}
	tourClient, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	api := tourapi.NewService(tourClient)
	aggregator := stats.New(api, stats.Config{
		Policy: ratelimit.Policy{GroupSize: 3, Cooldown: 0},
	})

	logger := logging.NewLogger("test")
	return newServer(api, aggregator, logger), mock
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := setupTestServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "# HELP") || !strings.Contains(string(body), "# TYPE") {
		t.Error("Expected Prometheus format metrics output")
	}
}

func TestAreasEndpoint(t *testing.T) {
	srv, mock := setupTestServer(t)
	mock.SetResponse("/areaCode2", testutil.NewSuccessResponse(
		`[{"rnum":1,"code":"1","name":"Seoul"},{"rnum":2,"code":"39","name":"Jeju"}]`, 2))

	req := httptest.NewRequest("GET", "/api/areas", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var areas []tourapi.AreaCode
	if err := json.Unmarshal(w.Body.Bytes(), &areas); err != nil {
		t.Fatalf("Response not valid JSON: %v", err)
	}
	if len(areas) != 2 {
		t.Errorf("len(areas) = %d, want 2", len(areas))
	}
}

func TestSearchEndpoint(t *testing.T) {
	t.Run("blank keyword is a client error", func(t *testing.T) {
		srv, mock := setupTestServer(t)

		req := httptest.NewRequest("GET", "/api/search?keyword=%20%20", nil)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
		if mock.GetRequestCount() != 0 {
			t.Errorf("Blank keyword reached the upstream: %d calls", mock.GetRequestCount())
		}
	})

	t.Run("successful search with pagination", func(t *testing.T) {
		srv, mock := setupTestServer(t)
		mock.SetHandler("/searchKeyword2", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(testutil.SuccessEnvelope(
				`[{"contentid":"100","title":"Palace"}]`, 10, 1, 95)))
		})

		req := httptest.NewRequest("GET", "/api/search?keyword=palace&numOfRows=10", nil)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var page pagedItems
		if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
			t.Fatalf("Response not valid JSON: %v", err)
		}
		if len(page.Items) != 1 {
			t.Errorf("len(items) = %d, want 1", len(page.Items))
		}
		if page.Pagination.TotalPages != 10 {
			t.Errorf("TotalPages = %d, want 10", page.Pagination.TotalPages)
		}
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		srv, mock := setupTestServer(t)
		mock.SetResponse("/searchKeyword2", testutil.NewUpstreamErrorResponse("22", "LIMITED NUMBER OF SERVICE REQUESTS EXCEEDS ERROR"))

		req := httptest.NewRequest("GET", "/api/search?keyword=palace", nil)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}

func TestDetailEndpoint(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		srv, mock := setupTestServer(t)
		mock.SetResponse("/detailCommon2", testutil.NewSuccessResponse(
			`{"contentid":"100","title":"Palace","overview":"Old royal palace"}`, 1))

		req := httptest.NewRequest("GET", "/api/places/100", nil)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var detail tourapi.TourDetail
		if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
			t.Fatalf("Response not valid JSON: %v", err)
		}
		if detail.Title != "Palace" {
			t.Errorf("Title = %q, want Palace", detail.Title)
		}
	})

	t.Run("absent is not found", func(t *testing.T) {
		srv, mock := setupTestServer(t)
		mock.SetResponse("/detailCommon2", testutil.NewSuccessResponse("", 0))

		req := httptest.NewRequest("GET", "/api/places/100", nil)
		w := httptest.NewRecorder()
		srv.routes().ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestSummaryEndpoint(t *testing.T) {
	srv, mock := setupTestServer(t)
	mock.SetHandler("/areaBasedList2", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testutil.SuccessEnvelope(`{"contentid":"100"}`, 1, 1, 1234)))
	})

	req := httptest.NewRequest("GET", "/api/stats/summary", nil)
	w := httptest.NewRecorder()
	srv.routes().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary stats.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("Response not valid JSON: %v", err)
	}
	if summary.TotalCount != 1234 {
		t.Errorf("TotalCount = %d, want 1234", summary.TotalCount)
	}
	if len(summary.TopRegions) != 5 {
		t.Errorf("len(TopRegions) = %d, want 5", len(summary.TopRegions))
	}
}

func TestIntQuery(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue int
		expected     int
	}{
		{"10", 1, 10},
		{"", 7, 7},
		{"abc", 7, 7},
		{"0", 7, 7},
		{"-3", 7, 7},
	}

	for _, tt := range tests {
		if got := intQuery(tt.value, tt.defaultValue); got != tt.expected {
			t.Errorf("intQuery(%q, %d) = %d, want %d", tt.value, tt.defaultValue, got, tt.expected)
		}
	}
}
