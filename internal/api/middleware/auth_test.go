package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestBearerAuth(t *testing.T) {
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name     string
		token    string
		path     string
		header   string
		wantCode int
	}{
		{"valid token", "secret", "/api/upload", "Bearer secret", http.StatusOK},
		{"missing header", "secret", "/api/upload", "", http.StatusUnauthorized},
		{"wrong token", "secret", "/api/upload", "Bearer wrong", http.StatusUnauthorized},
		{"wrong scheme", "secret", "/api/upload", "Basic secret", http.StatusUnauthorized},
		{"empty configured token disables gate", "", "/api/upload", "", http.StatusOK},
		{"non-api path bypasses gate", "secret", "/health", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := BearerAuth(tt.token, zerolog.Nop())(okHandler)

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}
