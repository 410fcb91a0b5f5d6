package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepo(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	repo := NewTokenRepo(rdb)
	ctx := context.Background()

	assert.ErrorIs(t, repo.ValidateRefresh(ctx, 1, "abc"), ErrRefreshInvalid)

	require.NoError(t, repo.StoreRefresh(ctx, 1, "abc", time.Hour))
	assert.True(t, mr.Exists("refresh_token:1"))
	assert.NoError(t, repo.ValidateRefresh(ctx, 1, "abc"))
	assert.ErrorIs(t, repo.ValidateRefresh(ctx, 1, "abd"), ErrRefreshInvalid)

	// a new token replaces the old one
	require.NoError(t, repo.StoreRefresh(ctx, 1, "def", time.Hour))
	assert.ErrorIs(t, repo.ValidateRefresh(ctx, 1, "abc"), ErrRefreshInvalid)

	mr.FastForward(2 * time.Hour)
	assert.ErrorIs(t, repo.ValidateRefresh(ctx, 1, "def"), ErrRefreshInvalid)

	require.NoError(t, repo.StoreRefresh(ctx, 1, "ghi", time.Hour))
	require.NoError(t, repo.Revoke(ctx, 1))
	assert.ErrorIs(t, repo.ValidateRefresh(ctx, 1, "ghi"), ErrRefreshInvalid)
}
