package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Cheap argon2id params so account creation stays fast in unit tests.
func setCheapHashing(t *testing.T) {
	t.Helper()
	t.Setenv("VIDCORE_ARGON2_MEMORY_KIB", "8192")
	t.Setenv("VIDCORE_ARGON2_ITERATIONS", "1")
}

func newTestAccount(t *testing.T, s *MemoryStore, username, email string) Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), CreateAccountInput{
		FullName:  "Test Person",
		Username:  username,
		Email:     email,
		Password:  "sufficiently-long-pass",
		AvatarURL: "https://cdn.example.com/a.png",
	})
	require.NoError(t, err)
	return a
}

func TestMemoryStore_CreateAccount_NormalizesUsername(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()

	a := newTestAccount(t, s, "Alice", "alice@x.com")
	assert.Equal(t, "alice", a.Username)
	assert.Nil(t, a.RefreshTokenHash)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, "sufficiently-long-pass", a.PasswordHash)
}

func TestMemoryStore_CreateAccount_Conflicts(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	newTestAccount(t, s, "alice", "alice@x.com")

	_, err := s.CreateAccount(context.Background(), CreateAccountInput{
		FullName:  "Other",
		Username:  "ALICE",
		Email:     "other@x.com",
		Password:  "sufficiently-long-pass",
		AvatarURL: "https://cdn.example.com/b.png",
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))

	_, err = s.CreateAccount(context.Background(), CreateAccountInput{
		FullName:  "Other",
		Username:  "bob",
		Email:     "Alice@X.com",
		Password:  "sufficiently-long-pass",
		AvatarURL: "https://cdn.example.com/b.png",
	})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestMemoryStore_GetByLogin(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")

	byName, err := s.GetByLogin(context.Background(), "ALICE")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byName.ID)

	byMail, err := s.GetByLogin(context.Background(), "Alice@X.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, byMail.ID)

	_, err = s.GetByLogin(context.Background(), "nobody")
	assert.True(t, IsNotFound(err))
}

func TestMemoryStore_RotateRefreshHash_CAS(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SetRefreshHash(ctx, now, a.ID, "h1"))

	// Swap h1 -> h2 succeeds exactly once.
	require.NoError(t, s.RotateRefreshHash(ctx, now, a.ID, "h1", "h2"))
	err := s.RotateRefreshHash(ctx, now, a.ID, "h1", "h3")
	require.Error(t, err)
	assert.True(t, IsNotActive(err))

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshTokenHash)
	assert.Equal(t, "h2", *got.RefreshTokenHash)
}

func TestMemoryStore_RotateRefreshHash_NoSession(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")

	err := s.RotateRefreshHash(context.Background(), time.Now().UTC(), a.ID, "h1", "h2")
	assert.True(t, IsNotActive(err))
}

func TestMemoryStore_ClearRefreshHash_Idempotent(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.SetRefreshHash(ctx, now, a.ID, "h1"))
	require.NoError(t, s.ClearRefreshHash(ctx, now, a.ID))
	// Clearing again is a no-op success.
	require.NoError(t, s.ClearRefreshHash(ctx, now, a.ID))

	got, err := s.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshTokenHash)
}

func TestMemoryStore_UpdateProfile(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")
	newTestAccount(t, s, "bob", "bob@x.com")

	name := "Alice Cooper"
	got, err := s.UpdateProfile(context.Background(), time.Now().UTC(), a.ID, UpdateProfileInput{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Alice Cooper", got.FullName)

	taken := "bob@x.com"
	_, err = s.UpdateProfile(context.Background(), time.Now().UTC(), a.ID, UpdateProfileInput{Email: &taken})
	assert.True(t, IsConflict(err))

	_, err = s.UpdateProfile(context.Background(), time.Now().UTC(), a.ID, UpdateProfileInput{})
	assert.True(t, IsInvalidInput(err))
}

func TestMemoryStore_UpdateImage(t *testing.T) {
	setCheapHashing(t)
	s := NewMemoryStore()
	a := newTestAccount(t, s, "alice", "alice@x.com")

	got, err := s.UpdateImage(context.Background(), time.Now().UTC(), a.ID, ImageCover, "https://cdn.example.com/c.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/c.png", got.CoverImageURL)

	_, err = s.UpdateImage(context.Background(), time.Now().UTC(), a.ID, ImageKind("banner"), "https://x")
	assert.True(t, IsInvalidInput(err))
}
