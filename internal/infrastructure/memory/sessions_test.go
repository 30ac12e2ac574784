package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admin-session-gate/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_PutGetRevoke(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &domain.AdminSession{SessionID: "s1", IsAdmin: true, Token: "tok"}))
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)

	require.NoError(t, repo.Revoke(ctx, "s1"))
	got, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, got.IsAdmin)
	assert.Empty(t, got.Token)
}

func TestSessionRepo_GetReturnsCopy(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &domain.AdminSession{SessionID: "s1", IsAdmin: true}))

	got, _ := repo.Get(ctx, "s1")
	got.IsAdmin = false

	again, _ := repo.Get(ctx, "s1")
	assert.True(t, again.IsAdmin)
}

func TestSessionRepo_ExpiredIsNotFound(t *testing.T) {
	repo := NewSessionRepo()
	base := time.Unix(1_700_000_000, 0)
	repo.now = func() time.Time { return base }
	ctx := context.Background()
	require.NoError(t, repo.Put(ctx, &domain.AdminSession{SessionID: "s1", IsAdmin: true, ExpiresAt: base.Add(time.Minute).Unix()}))

	_, err := repo.Get(ctx, "s1")
	require.NoError(t, err)

	repo.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = repo.Get(ctx, "s1")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestSessionRepo_DeleteAndRevokeMissing(t *testing.T) {
	repo := NewSessionRepo()
	ctx := context.Background()

	assert.NoError(t, repo.Revoke(ctx, "missing"))
	assert.NoError(t, repo.Delete(ctx, "missing"))
}
