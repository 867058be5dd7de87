package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDeriveCookieSettings(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		secure  bool
	}{
		{"localhost http", "http://localhost:3443", false},
		{"loopback http", "http://127.0.0.1:3443", false},
		{"production https", "https://app.example.com", true},
		{"production http", "http://app.example.com", false},
		{"empty URL defaults secure", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := DeriveCookieSettings(tt.baseURL)
			if settings.Secure != tt.secure {
				t.Errorf("expected Secure=%v for %q, got %v", tt.secure, tt.baseURL, settings.Secure)
			}
		})
	}
}

func TestSetSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "token-value", CookieSettings{Secure: true}, 24*time.Hour)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("expected cookie name %q, got %q", CookieName, c.Name)
	}
	if c.Value != "token-value" {
		t.Errorf("expected cookie value 'token-value', got %q", c.Value)
	}
	if !c.HttpOnly {
		t.Error("expected cookie to be HttpOnly")
	}
	if !c.Secure {
		t.Error("expected cookie to be Secure")
	}
	if c.SameSite != http.SameSiteStrictMode {
		t.Errorf("expected SameSite=Strict, got %v", c.SameSite)
	}
	if c.MaxAge != int((24 * time.Hour).Seconds()) {
		t.Errorf("expected MaxAge of 24h in seconds, got %d", c.MaxAge)
	}
	if c.Path != "/" {
		t.Errorf("expected Path '/', got %q", c.Path)
	}
}

func TestClearSessionCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	ClearSessionCookie(rec, CookieSettings{Secure: false})

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}

	c := cookies[0]
	if c.Name != CookieName {
		t.Errorf("expected cookie name %q, got %q", CookieName, c.Name)
	}
	if c.Value != "" {
		t.Errorf("expected empty cookie value, got %q", c.Value)
	}
	if c.MaxAge >= 0 {
		t.Errorf("expected negative MaxAge to expire cookie, got %d", c.MaxAge)
	}
}
