package store

import (
	"path/filepath"
	"spaces-client/models"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTokenLifecycle(t *testing.T) {
	s := newTestStore(t)

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, "", s.Token())

	require.NoError(t, s.SetToken("abc"))
	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc", s.Token())

	require.NoError(t, s.SetToken("def"))
	assert.Equal(t, "def", s.Token())

	require.NoError(t, s.Clear())
	assert.False(t, s.IsAuthenticated())
}

func TestCachedUser(t *testing.T) {
	s := newTestStore(t)
	assert.Nil(t, s.CachedUser())

	require.NoError(t, s.CacheUser(&models.User{ID: 5, Nickname: "bob", AvatarURL: "/a.png"}))
	u := s.CachedUser()
	require.NotNil(t, u)
	assert.Equal(t, models.ID(5), u.ID)
	assert.Equal(t, "bob", u.Nickname)

	require.NoError(t, s.Clear())
	assert.Nil(t, s.CachedUser())
}

func TestSessionSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.db")
	s, err := New(path)
	require.NoError(t, err)
	require.NoError(t, s.SetToken("persisted"))
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "persisted", s.Token())
}

func TestClaims(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Claims()
	assert.ErrorIs(t, err, ErrNoToken)

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any-key"))
	require.NoError(t, err)
	require.NoError(t, s.SetToken(signed))

	info, err := s.Claims()
	require.NoError(t, err)
	assert.Equal(t, "alice", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(exp))
	assert.False(t, info.Expired(time.Now()))
	assert.True(t, info.Expired(exp.Add(time.Minute)))

	require.NoError(t, s.SetToken("not-a-jwt"))
	_, err = s.Claims()
	assert.Error(t, err)
}
