package client_test

import (
	"testing"
	"time"

	"github.com/dom/reader/internal/auth"
	"github.com/dom/reader/internal/client"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeToken(t *testing.T, userID string, roles []string, expiresAt *time.Time) string {
	t.Helper()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID},
		Name:             userID + "@example.com",
		Roles:            roles,
	}
	if expiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*expiresAt)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return token
}

func inHour() *time.Time {
	t := time.Now().Add(time.Hour)
	return &t
}

func receive(t *testing.T, ch <-chan client.AuthState) client.AuthState {
	t.Helper()

	select {
	case state := <-ch:
		return state
	case <-time.After(time.Second):
		t.Fatal("no auth state notification")
		return client.AuthState{}
	}
}

func TestSession_SignedOut(t *testing.T) {
	session := client.NewSession(client.NewMemoryStore())

	state, err := session.State()
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	userID, err := session.UserID()
	require.NoError(t, err)
	assert.Empty(t, userID)

	ok, err := session.HasRole("Reader")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_LoginAndLogoutNotify(t *testing.T) {
	session := client.NewSession(client.NewMemoryStore())
	updates, stop := session.Subscribe()
	defer stop()

	token := makeToken(t, "user-1", []string{"Reader"}, inHour())
	require.NoError(t, session.SetToken(token))

	state := receive(t, updates)
	assert.True(t, state.Authenticated)
	assert.Equal(t, "user-1", state.Claims.UserID())

	got, err := session.Token()
	require.NoError(t, err)
	assert.Equal(t, token, got)

	userID, err := session.UserID()
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	isReader, err := session.HasRole("Reader")
	require.NoError(t, err)
	assert.True(t, isReader)

	isAdmin, err := session.HasRole("Admin")
	require.NoError(t, err)
	assert.False(t, isAdmin)

	require.NoError(t, session.Logout())
	state = receive(t, updates)
	assert.False(t, state.Authenticated)

	got, err = session.Token()
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSession_ExpiredTokenIsSignedOut(t *testing.T) {
	store := client.NewMemoryStore()
	past := time.Now().Add(-time.Second)
	require.NoError(t, store.Set(client.TokenKey, makeToken(t, "user-1", nil, &past)))

	session := client.NewSession(store)
	updates, stop := session.Subscribe()
	defer stop()

	state, err := session.State()
	require.NoError(t, err)
	assert.False(t, state.Authenticated)

	assert.False(t, receive(t, updates).Authenticated)

	stored, err := store.Get(client.TokenKey)
	require.NoError(t, err)
	assert.Empty(t, stored, "expired token is removed")
}

func TestSession_UnreadableTokens(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{name: "garbage", token: "not-a-token"},
		{name: "no expiry", token: makeToken(t, "user-1", nil, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := client.NewMemoryStore()
			require.NoError(t, store.Set(client.TokenKey, tt.token))
			session := client.NewSession(store)

			token, err := session.Token()
			require.NoError(t, err)
			assert.Empty(t, token)

			userID, err := session.UserID()
			require.NoError(t, err)
			assert.Empty(t, userID)
		})
	}
}

func TestSession_Unsubscribe(t *testing.T) {
	session := client.NewSession(client.NewMemoryStore())
	updates, stop := session.Subscribe()
	stop()
	stop()

	_, open := <-updates
	assert.False(t, open)

	require.NoError(t, session.SetToken(makeToken(t, "user-1", nil, inHour())))
}

func TestSession_SlowSubscriberGetsLatest(t *testing.T) {
	session := client.NewSession(client.NewMemoryStore())
	updates, stop := session.Subscribe()
	defer stop()

	require.NoError(t, session.SetToken(makeToken(t, "user-1", nil, inHour())))
	require.NoError(t, session.Logout())

	assert.False(t, receive(t, updates).Authenticated)
	select {
	case state := <-updates:
		t.Fatalf("unexpected extra state %+v", state)
	default:
	}
}
