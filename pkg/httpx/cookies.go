package httpx

import (
	"net/http"
	"strings"
	"time"
)

// Cookie and header names the token pair travels under. Browser clients use
// the httponly cookie pair; other clients send the same values as headers.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"

	AccessTokenHeader  = "Access-Token"
	RefreshTokenHeader = "Refresh-Token"
)

// SetTokenCookies stores both tokens as httponly cookies. The tokens are
// opaque bearer credentials as far as the transport is concerned.
func SetTokenCookies(w http.ResponseWriter, access, refresh string, accessTTL, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    access,
		Path:     "/",
		MaxAge:   int(accessTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    refresh,
		Path:     "/",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// SetGuestCookie marks an anonymous browsing session with the guest sentinel
// in place of a real access token.
func SetGuestCookie(w http.ResponseWriter, sentinel string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    sentinel,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// AccessTokenFromRequest reads the access token credential in order of
// preference: cookie, Authorization bearer header, Access-Token header,
// query parameter (the refresh redirect carries tokens as query values).
func AccessTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if h := r.Header.Get(AccessTokenHeader); h != "" {
		return h
	}
	return r.URL.Query().Get(AccessTokenCookie)
}

// RefreshTokenFromRequest reads the refresh token from cookie, header or
// query parameter.
func RefreshTokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(RefreshTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get(RefreshTokenHeader); h != "" {
		return h
	}
	return r.URL.Query().Get(RefreshTokenCookie)
}
