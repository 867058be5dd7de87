package auth

import (
	"net/http"
	"net/url"
	"time"
)

// CookieName is the name of the session cookie carrying the signed token.
const CookieName = "auth_token"

// CookieSettings contains cookie security settings derived from base URL.
type CookieSettings struct {
	// Secure indicates whether the cookie should only be sent over HTTPS.
	Secure bool
}

// DeriveCookieSettings determines cookie security settings from the base URL.
// Localhost deployments allow plain HTTP; everything else requires HTTPS.
func DeriveCookieSettings(baseURL string) CookieSettings {
	parsedURL, err := url.Parse(baseURL)
	if err != nil || baseURL == "" {
		// Safe default for invalid URLs
		return CookieSettings{Secure: true}
	}

	hostname := parsedURL.Hostname()
	if hostname == "localhost" || hostname == "127.0.0.1" {
		return CookieSettings{Secure: false}
	}

	return CookieSettings{Secure: parsedURL.Scheme != "http"}
}

// SetSessionCookie writes the session token as an httpOnly cookie scoped to
// the whole site, valid for ttl.
func SetSessionCookie(w http.ResponseWriter, token string, settings CookieSettings, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(ttl.Seconds()),
		Path:     "/",
	})
}

// ClearSessionCookie expires the session cookie immediately, forcing the
// client to re-authenticate.
func ClearSessionCookie(w http.ResponseWriter, settings CookieSettings) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		HttpOnly: true,
		Secure:   settings.Secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
		Path:     "/",
	})
}
