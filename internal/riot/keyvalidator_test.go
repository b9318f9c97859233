package riot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestValidateKey_Status tests how each status-endpoint response maps to a verdict
func TestValidateKey_Status(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantValid bool
		wantErr   bool
	}{
		{"valid key", http.StatusOK, `{"id":"NA1","name":"North America","locales":["en_US"]}`, true, false},
		{"expired key", http.StatusForbidden, `{"status":{"message":"Forbidden","status_code":403}}`, false, false},
		{"unauthorized", http.StatusUnauthorized, `{"status":{"message":"Unauthorized","status_code":401}}`, false, false},
		{"server error", http.StatusInternalServerError, `{"status":{"message":"Internal Server Error","status_code":500}}`, false, true},
		{"unavailable", http.StatusServiceUnavailable, ``, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPath, gotToken string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotToken = r.Header.Get("X-Riot-Token")
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			validator := NewKeyValidator(WithBaseURL(server.URL))
			valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")

			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateKey() error = %v, wantErr %v", err, tt.wantErr)
			}
			if valid != tt.wantValid {
				t.Errorf("ValidateKey() valid = %v, want %v", valid, tt.wantValid)
			}
			if gotPath != "/lol/status/v4/platform-data" {
				t.Errorf("Expected status endpoint, got: %s", gotPath)
			}
			if gotToken != "RGAPI-test-key" {
				t.Errorf("Expected X-Riot-Token header, got: %q", gotToken)
			}
		})
	}
}

// TestValidateKey_NetworkError tests that network errors return an error (not invalid)
func TestValidateKey_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hj, ok := w.(http.Hijacker)
		if ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer server.Close()

	validator := NewKeyValidator(WithBaseURL(server.URL))
	valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")

	if err == nil {
		t.Error("Expected network error to be returned")
	}
	if valid {
		t.Error("Expected key to not be valid on network error")
	}
}

// TestValidateKey_Timeout tests that timeouts return an error
func TestValidateKey_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewKeyValidator(
		WithBaseURL(server.URL),
		WithTimeout(100*time.Millisecond),
	)

	valid, err := validator.ValidateKey(context.Background(), "RGAPI-test-key")
	if err == nil {
		t.Error("Expected timeout error to be returned")
	}
	if valid {
		t.Error("Expected key to not be valid on timeout")
	}
}

// TestValidateKey_EmptyKey tests that empty key returns error without a request
func TestValidateKey_EmptyKey(t *testing.T) {
	validator := NewKeyValidator(WithBaseURL("http://127.0.0.1:1"))

	valid, err := validator.ValidateKey(context.Background(), "")
	if err == nil {
		t.Error("Expected error for empty key")
	}
	if valid {
		t.Error("Expected empty key to be invalid")
	}
}

// TestValidateKey_ContextCancelled tests that cancelled context is handled
func TestValidateKey_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	validator := NewKeyValidator(WithBaseURL(server.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	valid, err := validator.ValidateKey(ctx, "RGAPI-test-key")
	if err == nil {
		t.Error("Expected context cancelled error")
	}
	if valid {
		t.Error("Expected key to not be valid on cancelled context")
	}
}

func TestPlatformBaseURL(t *testing.T) {
	tests := []struct {
		region string
		want   string
	}{
		{"americas", "https://na1.api.riotgames.com"},
		{"europe", "https://euw1.api.riotgames.com"},
		{"asia", "https://kr.api.riotgames.com"},
		{"sea", "https://oc1.api.riotgames.com"},
		{"unknown", "https://na1.api.riotgames.com"},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			if got := PlatformBaseURL(tt.region); got != tt.want {
				t.Errorf("PlatformBaseURL(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}
}
