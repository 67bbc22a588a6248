package auth_test

import (
	"context"
	"testing"

	auth "github.com/goentry/go-auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autherFixture(t *testing.T) (*auth.Auther, *memoryUserStore, *recordingSink) {
	t.Helper()

	user := storedUser(t, "login@example.com", "correctHorse1!")
	store := newMemoryUserStore(user)
	provider := auth.NewUserProvider(store).WithLogger(testLogger{})
	sink := &recordingSink{}

	auther := auth.NewAuthenticator(provider, issuerConfig(t)).
		WithLogger(testLogger{}).
		WithActivitySink(sink)

	return auther, store, sink
}

func TestAutherLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials issue a pair", func(t *testing.T) {
		auther, _, sink := autherFixture(t)

		pair, err := auther.Login(ctx, "login@example.com", "correctHorse1!")
		require.NoError(t, err)
		require.NotNil(t, pair)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)

		assert.Contains(t, sink.eventTypes(), auth.ActivityEventLoginSuccess)
	})

	t.Run("wrong password records a failure event", func(t *testing.T) {
		auther, _, sink := autherFixture(t)

		_, err := auther.Login(ctx, "login@example.com", "wrongPassword")
		assert.Equal(t, auth.ErrMismatchedHashAndPassword, err)
		assert.Contains(t, sink.eventTypes(), auth.ActivityEventLoginFailure)
	})

	t.Run("unknown identifier", func(t *testing.T) {
		auther, _, _ := autherFixture(t)

		_, err := auther.Login(ctx, "nobody@example.com", "correctHorse1!")
		assert.Equal(t, auth.ErrMismatchedHashAndPassword, err)
	})
}

func TestAutherRefresh(t *testing.T) {
	ctx := context.Background()
	auther, _, sink := autherFixture(t)

	pair, err := auther.Login(ctx, "login@example.com", "correctHorse1!")
	require.NoError(t, err)

	t.Run("exchanges the refresh token", func(t *testing.T) {
		accessToken, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)
		assert.True(t, auther.Validate(accessToken))
		assert.Contains(t, sink.eventTypes(), auth.ActivityEventTokenRefreshed)
	})

	t.Run("rejects the access token", func(t *testing.T) {
		_, err := auther.Refresh(ctx, pair.AccessToken)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := auther.Refresh(ctx, "garbage")
		assert.Error(t, err)
	})
}

func TestAutherValidate(t *testing.T) {
	ctx := context.Background()
	auther, _, _ := autherFixture(t)

	pair, err := auther.Login(ctx, "login@example.com", "correctHorse1!")
	require.NoError(t, err)

	assert.True(t, auther.Validate(pair.AccessToken))
	assert.False(t, auther.Validate(pair.RefreshToken))
	assert.False(t, auther.Validate(""))
	assert.False(t, auther.Validate("garbage"))
}

func TestAutherPrincipalRoundTrip(t *testing.T) {
	ctx := context.Background()
	auther, _, _ := autherFixture(t)

	pair, err := auther.Login(ctx, "login@example.com", "correctHorse1!")
	require.NoError(t, err)

	claims, err := auther.PrincipalFromToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", claims.Email())

	identity, err := auther.IdentityFromClaims(ctx, claims)
	require.NoError(t, err)
	assert.Equal(t, "login@example.com", identity.Email())
	assert.Equal(t, "tester", identity.Username())
}
