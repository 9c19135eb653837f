package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleyhq/parley/internal/forum/domain"
	"github.com/parleyhq/parley/internal/forum/store"
	"github.com/parleyhq/parley/internal/forum/store/drivers/sqlite"
	"github.com/parleyhq/parley/pkg/cryptox"
	"github.com/parleyhq/parley/pkg/jwtx"
)

func TestMain(m *testing.M) {
	pepperPath := filepath.Join(os.TempDir(), "parley-service-test-pepper")
	cryptox.SetPepperPath(pepperPath)

	os.Remove(pepperPath)
	defer os.Remove(pepperPath)

	os.Exit(m.Run())
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	// A file-backed database keeps every pooled connection on the same
	// schema, unlike :memory: which is per-connection.
	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "forum.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func newAuthService(t *testing.T, st store.Store, accessTTL, refreshTTL time.Duration) *AuthService {
	t.Helper()

	codec, err := jwtx.NewCodec("auth-service-test-secret", "HS256")
	require.NoError(t, err)

	return &AuthService{
		Store:      st,
		Codec:      codec,
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	}
}

// registerAlice creates a user through the registration path so the stored
// password hash is the real thing.
func registerAlice(t *testing.T, st store.Store, auth *AuthService) domain.User {
	t.Helper()

	users := &UserService{Store: st, Auth: auth}
	user, _, err := users.Register(context.Background(), "alice", "Str0ng!pass")
	require.NoError(t, err)
	return user
}

func TestAuthService_LoginAndResolve(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)
	registerAlice(t, st, auth)

	pair, err := auth.Login(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)

	user, err := auth.ResolveIdentity(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "alice", user.Username)
	require.False(t, user.IsAdmin)
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)
	registerAlice(t, st, auth)

	t.Run("wrong password", func(t *testing.T) {
		_, err := auth.Login(ctx, "alice", "Wr0ng!pass")
		require.ErrorIs(t, err, ErrBadCredentials)
	})

	t.Run("unknown username", func(t *testing.T) {
		_, err := auth.Login(ctx, "mallory", "Str0ng!pass")
		require.ErrorIs(t, err, ErrBadCredentials)
	})
}

func TestAuthService_ResolveRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)
	registerAlice(t, st, auth)

	pair, err := auth.Login(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)

	// A refresh token must never work where an access token is expected.
	_, err = auth.ResolveIdentity(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_RefreshWithExpiredAccessToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	// Negative access TTL: the pair is minted with the access token
	// already expired, which is exactly the state a client refreshes from.
	auth := newAuthService(t, st, -time.Minute, 7*24*time.Hour)
	registerAlice(t, st, auth)

	pair, err := auth.Login(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)

	_, err = auth.ResolveIdentity(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized, "expired access token must not resolve")

	fresh, err := auth.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	require.NoError(t, err, "expired access token must still refresh")
	require.NotEqual(t, pair.RefreshToken, fresh.RefreshToken)
}

func TestAuthService_RefreshBinding(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)
	registerAlice(t, st, auth)

	pair, err := auth.Login(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)

	t.Run("unrelated access token is rejected", func(t *testing.T) {
		other, err := auth.Login(ctx, "alice", "Str0ng!pass")
		require.NoError(t, err)

		// other.AccessToken is valid and names the same user, but the
		// refresh token was not issued with it.
		_, err = auth.Refresh(ctx, other.AccessToken, pair.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("single altered character breaks the binding", func(t *testing.T) {
		altered := []byte(pair.AccessToken)
		if altered[len(altered)-1] == 'A' {
			altered[len(altered)-1] = 'B'
		} else {
			altered[len(altered)-1] = 'A'
		}

		_, err := auth.Refresh(ctx, string(altered), pair.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("matching pair succeeds", func(t *testing.T) {
		fresh, err := auth.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
		require.NoError(t, err)

		// And the fresh pair is bound to itself, not to the old tokens.
		_, err = auth.Refresh(ctx, pair.AccessToken, fresh.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)

		_, err = auth.Refresh(ctx, fresh.AccessToken, fresh.RefreshToken)
		require.NoError(t, err)
	})
}

func TestAuthService_RefreshRejectsExpiredRefreshToken(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, -time.Minute)
	registerAlice(t, st, auth)

	pair, err := auth.Login(ctx, "alice", "Str0ng!pass")
	require.NoError(t, err)

	_, err = auth.Refresh(ctx, pair.AccessToken, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_IssueTokensRequiresIdentity(t *testing.T) {
	st := newTestStore(t)
	auth := newAuthService(t, st, 15*time.Minute, 7*24*time.Hour)

	_, err := auth.IssueTokens(domain.User{})
	require.ErrorIs(t, err, ErrUnauthorized)
}
