package httpx

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/pkg/jwtx"
)

func newTestGate(t *testing.T) (*SessionGate, *jwtx.Codec) {
	t.Helper()

	codec, err := jwtx.NewCodec("gate-test-secret", "HS256")
	require.NoError(t, err)

	return &SessionGate{
		Codec:         codec,
		GuestSentinel: "guest",
		RefreshPath:   "/v1/users/refresh",
		BypassPaths: []string{
			"/v1/users/register",
			"/v1/users/login",
			"/v1/users/guest",
			"/v1/users/refresh",
			"/livez",
			"/readyz",
			"/swagger/",
		},
	}, codec
}

func TestSessionGate_ShouldPassthrough(t *testing.T) {
	gate, _ := newTestGate(t)

	tests := []struct {
		path string
		want bool
	}{
		{"/v1/users/login", true},
		{"/v1/users/refresh", true},
		{"/livez", true},
		{"/swagger/index.html", true}, // trailing-slash entries match as prefixes
		{"/swagger/", true},
		{"/v1/topics", false},
		{"/v1/users/login/extra", false}, // exact entries do not match suffixes
		{"/v1/users", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, gate.ShouldPassthrough(tt.path))
		})
	}
}

func TestSessionGate_CheckAccessFreshness(t *testing.T) {
	gate, codec := newTestGate(t)

	fresh, err := codec.Encode(jwtx.NewAccessClaims("alice", false, time.Hour, time.Now()))
	require.NoError(t, err)

	expired, err := codec.Encode(jwtx.NewAccessClaims("alice", false, -time.Hour, time.Now()))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  Freshness
	}{
		{"empty", "", FreshnessAbsent},
		{"guest sentinel", "guest", FreshnessAbsent},
		{"valid token", fresh, FreshnessFresh},
		{"expired token", expired, FreshnessStale},
		{"garbage", "not-a-token", FreshnessStale},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, gate.CheckAccessFreshness(tt.token))
		})
	}
}

func TestSessionGate_Middleware(t *testing.T) {
	gate, codec := newTestGate(t)

	var reached bool
	handler := gate.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	fresh, err := codec.Encode(jwtx.NewAccessClaims("alice", false, time.Hour, time.Now()))
	require.NoError(t, err)

	t.Run("bypass path skips the token check", func(t *testing.T) {
		reached = false
		r := httptest.NewRequest(http.MethodPost, "/v1/users/login", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.True(t, reached)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no token passes through", func(t *testing.T) {
		reached = false
		r := httptest.NewRequest(http.MethodGet, "/v1/topics", nil)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.True(t, reached)
	})

	t.Run("guest sentinel passes through", func(t *testing.T) {
		reached = false
		r := httptest.NewRequest(http.MethodGet, "/v1/topics", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "guest"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.True(t, reached)
	})

	t.Run("fresh token passes through", func(t *testing.T) {
		reached = false
		r := httptest.NewRequest(http.MethodGet, "/v1/topics", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: fresh})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.True(t, reached)
	})

	t.Run("stale token redirects to refresh with both tokens", func(t *testing.T) {
		expired, err := codec.Encode(jwtx.NewAccessClaims("alice", false, -time.Hour, time.Now()))
		require.NoError(t, err)

		reached = false
		r := httptest.NewRequest(http.MethodGet, "/v1/topics?page=2", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: expired})
		r.AddCookie(&http.Cookie{Name: RefreshTokenCookie, Value: "some-refresh-token"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.False(t, reached)
		require.Equal(t, http.StatusSeeOther, w.Code)

		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "/v1/users/refresh", loc.Path)

		q := loc.Query()
		require.Equal(t, "/v1/topics?page=2", q.Get("next"))
		require.Equal(t, expired, q.Get(AccessTokenCookie))
		require.Equal(t, "some-refresh-token", q.Get(RefreshTokenCookie))
	})

	t.Run("stale token without refresh token still redirects", func(t *testing.T) {
		reached = false
		r := httptest.NewRequest(http.MethodGet, "/v1/topics", nil)
		r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: "garbage"})
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, r)

		require.False(t, reached)
		require.Equal(t, http.StatusSeeOther, w.Code)

		loc, err := url.Parse(w.Header().Get("Location"))
		require.NoError(t, err)
		require.Empty(t, loc.Query().Get(RefreshTokenCookie))
	})
}
