package envelope

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestItemList_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{
			name:     "array of items",
			input:    `[{"code":"1"},{"code":"2"}]`,
			expected: 2,
		},
		{
			name:     "single bare item",
			input:    `{"code":"1"}`,
			expected: 1,
		},
		{
			name:     "null",
			input:    `null`,
			expected: 0,
		},
		{
			name:     "empty string",
			input:    `""`,
			expected: 0,
		},
		{
			name:     "empty array",
			input:    `[]`,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list ItemList
			if err := json.Unmarshal([]byte(tt.input), &list); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if len(list) != tt.expected {
				t.Errorf("len = %d, want %d", len(list), tt.expected)
			}
		})
	}
}

func TestItemList_NormalizeIsIdempotent(t *testing.T) {
	// Re-encoding an already-normalized list and decoding it again must be
	// a no-op.
	var list ItemList
	if err := json.Unmarshal([]byte(`{"code":"1"}`), &list); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	encoded, err := json.Marshal([]json.RawMessage(list))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var again ItemList
	if err := json.Unmarshal(encoded, &again); err != nil {
		t.Fatalf("second Unmarshal failed: %v", err)
	}
	if len(again) != 1 {
		t.Errorf("len after round-trip = %d, want 1", len(again))
	}
}

func TestNormalize_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name         string
		payload      string
		expectedCode string
	}{
		{
			name:         "rate excess",
			payload:      `{"responseTime":"20250101","resultCode":"22","resultMsg":"LIMITED NUMBER OF SERVICE REQUESTS EXCEEDS ERROR"}`,
			expectedCode: "22",
		},
		{
			name:         "invalid key",
			payload:      `{"responseTime":"20250101","resultCode":"30","resultMsg":"SERVICE KEY IS NOT REGISTERED ERROR"}`,
			expectedCode: "30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			_, err = Normalize(raw)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}

			var upstream *UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("Expected UpstreamError, got %T: %v", err, err)
			}
			if upstream.Code != tt.expectedCode {
				t.Errorf("Code = %q, want %q", upstream.Code, tt.expectedCode)
			}
		})
	}
}

func TestNormalize_HeaderError(t *testing.T) {
	payload := `{"response":{"header":{"resultCode":"03","resultMsg":"NODATA_ERROR"},"body":{"items":"","numOfRows":0,"pageNo":1,"totalCount":0}}}`

	raw, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	_, err = Normalize(raw)
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("Expected UpstreamError, got %T: %v", err, err)
	}
	if upstream.Code != "03" {
		t.Errorf("Code = %q, want %q", upstream.Code, "03")
	}
}

func TestNormalize_Success(t *testing.T) {
	tests := []struct {
		name          string
		payload       string
		expectedItems int
		expectedTotal int
	}{
		{
			name:          "single item",
			payload:       `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":{"item":{"code":"1","name":"Seoul"}},"numOfRows":1,"pageNo":1,"totalCount":1}}}`,
			expectedItems: 1,
			expectedTotal: 1,
		},
		{
			name:          "item array",
			payload:       `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":{"item":[{"code":"1"},{"code":"2"},{"code":"3"}]},"numOfRows":3,"pageNo":1,"totalCount":95}}}`,
			expectedItems: 3,
			expectedTotal: 95,
		},
		{
			name:          "absent items",
			payload:       `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":"","numOfRows":10,"pageNo":1,"totalCount":0}}}`,
			expectedItems: 0,
			expectedTotal: 0,
		},
		{
			name:          "counts as strings",
			payload:       `{"response":{"header":{"resultCode":"0000","resultMsg":"OK"},"body":{"items":{"item":{"code":"1"}},"numOfRows":"1","pageNo":"1","totalCount":"42"}}}`,
			expectedItems: 1,
			expectedTotal: 42,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			body, err := Normalize(raw)
			if err != nil {
				t.Fatalf("Normalize failed: %v", err)
			}

			if body.Items == nil {
				t.Error("Items is nil, want non-nil slice")
			}
			if len(body.Items) != tt.expectedItems {
				t.Errorf("len(Items) = %d, want %d", len(body.Items), tt.expectedItems)
			}
			if body.TotalCount != tt.expectedTotal {
				t.Errorf("TotalCount = %d, want %d", body.TotalCount, tt.expectedTotal)
			}
		})
	}
}

func TestNormalize_MissingBody(t *testing.T) {
	raw, err := Decode([]byte(`{"response":{"header":{"resultCode":"0000","resultMsg":"OK"}}}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	_, err = Normalize(raw)
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %T: %v", err, err)
	}
}

func TestDecode_NotJSON(t *testing.T) {
	_, err := Decode([]byte(`<OpenAPI_ServiceResponse>error</OpenAPI_ServiceResponse>`))

	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("Expected DecodeError, got %T: %v", err, err)
	}
}
