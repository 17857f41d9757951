package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORSOriginMatching(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"exact origin", []string{"https://shop.example.com"}, "https://shop.example.com", true},
		{"bare host", []string{"example.com"}, "https://example.com", true},
		{"subdomain of bare host", []string{"example.com"}, "https://shop.example.com", true},
		{"lookalike host rejected", []string{"example.com"}, "https://evil-example.com", false},
		{"embedded host rejected", []string{"example.com"}, "https://example.com.evil.net", false},
		{"unlisted origin", []string{"https://shop.example.com"}, "https://other.example.org", false},
		{"wildcard", []string{"*"}, "https://anything.test", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cors := NewCORSMiddleware(tc.allowed)
			handler := cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
			req.Header.Set("Origin", tc.origin)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			got := rr.Header().Get("Access-Control-Allow-Origin")
			if tc.want && got != tc.origin {
				t.Fatalf("Access-Control-Allow-Origin = %q, want %q", got, tc.origin)
			}
			if !tc.want && got != "" {
				t.Fatalf("Access-Control-Allow-Origin = %q for disallowed origin", got)
			}
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	cors := NewCORSMiddleware([]string{"https://shop.example.com"})
	called := false
	handler := cors.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if called {
		t.Fatal("preflight reached the inner handler")
	}
}
