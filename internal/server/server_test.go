package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type routes struct{}

func (routes) Register(e *echo.Echo) {
	e.POST("/webhook", func(c echo.Context) error { return c.String(http.StatusOK, "OK") })
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
}

func TestWebhookSecret(t *testing.T) {
	s := NewServer(nil, Options{WebhookPath: "/webhook", WebhookSecret: "s3cret"}, routes{})

	cases := []struct {
		name   string
		method string
		path   string
		header string
		want   int
	}{
		{"missing header", http.MethodPost, "/webhook", "", http.StatusUnauthorized},
		{"wrong header", http.MethodPost, "/webhook", "nope", http.StatusUnauthorized},
		{"right header", http.MethodPost, "/webhook", "s3cret", http.StatusOK},
		{"other path unchecked", http.MethodGet, "/ping", "", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		if tc.header != "" {
			req.Header.Set(SecretTokenHeader, tc.header)
		}
		rec := httptest.NewRecorder()
		s.echo.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, rec.Code, tc.want)
		}
	}
}

func TestNoSecretConfigured(t *testing.T) {
	s := NewServer(nil, Options{WebhookPath: "/webhook"}, routes{}, nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/webhook", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if s.Addr() != DefaultAddr {
		t.Fatalf("Addr() = %q, want %q", s.Addr(), DefaultAddr)
	}
}
