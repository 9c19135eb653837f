package httpx

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/parleyhq/parley/pkg/jwtx"
	"github.com/parleyhq/parley/pkg/slogx"
)

// Freshness classifies the access-token credential on a request.
type Freshness int

const (
	// FreshnessAbsent: no credential, or the guest sentinel. Anonymous
	// browsing is allowed; authorization happens in the handlers.
	FreshnessAbsent Freshness = iota
	// FreshnessFresh: the token decodes and has not expired.
	FreshnessFresh
	// FreshnessStale: the token is expired or undecodable and the client
	// should be sent through the refresh flow.
	FreshnessStale
)

// SessionGate is the per-request routing decision in front of every
// handler. It only checks whether a presented access token is still usable;
// it never resolves an identity and never authorizes an action. Stale
// sessions get a redirect to the refresh endpoint instead of an error page
// so browsing continues uninterrupted.
type SessionGate struct {
	Codec         *jwtx.Codec
	GuestSentinel string

	// RefreshPath is where stale sessions are redirected.
	RefreshPath string

	// BypassPaths are reachable without any token check: registration,
	// login, guest entry and the refresh endpoint itself. Entries ending
	// in "/" match as prefixes.
	BypassPaths []string
}

// ShouldPassthrough reports whether the path is on the fixed bypass list.
func (g *SessionGate) ShouldPassthrough(path string) bool {
	for _, p := range g.BypassPaths {
		if strings.HasSuffix(p, "/") {
			if strings.HasPrefix(path, p) {
				return true
			}
			continue
		}
		if path == p {
			return true
		}
	}
	return false
}

// CheckAccessFreshness classifies a raw access-token string.
func (g *SessionGate) CheckAccessFreshness(token string) Freshness {
	if token == "" || token == g.GuestSentinel {
		return FreshnessAbsent
	}
	if _, err := g.Codec.DecodeAccess(token); err != nil {
		return FreshnessStale
	}
	return FreshnessFresh
}

// Middleware returns the gate as a middleware.
func (g *SessionGate) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.ShouldPassthrough(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token := AccessTokenFromRequest(r)
			switch g.CheckAccessFreshness(token) {
			case FreshnessAbsent, FreshnessFresh:
				next.ServeHTTP(w, r)
			case FreshnessStale:
				g.redirectToRefresh(w, r, token)
			}
		})
	}
}

// redirectToRefresh sends the client to the refresh endpoint, carrying the
// original destination and both current tokens. 303 See Other makes the
// follow-up a GET regardless of the original method.
func (g *SessionGate) redirectToRefresh(w http.ResponseWriter, r *http.Request, access string) {
	slogx.FromContext(r.Context()).Info("stale session, redirecting to refresh", "path", r.URL.Path)

	q := url.Values{}
	q.Set("next", r.URL.RequestURI())
	q.Set(AccessTokenCookie, access)
	if refresh := RefreshTokenFromRequest(r); refresh != "" {
		q.Set(RefreshTokenCookie, refresh)
	}

	http.Redirect(w, r, g.RefreshPath+"?"+q.Encode(), http.StatusSeeOther)
}
