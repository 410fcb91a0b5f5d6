package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRepo keeps one refresh token hash per user in Redis. Issuing a new
// token replaces the previous one, so a refresh token is single use.
type TokenRepo struct{ rdb redis.UniversalClient }

func NewTokenRepo(rdb redis.UniversalClient) *TokenRepo { return &TokenRepo{rdb: rdb} }

func refreshKey(userID uint64) string { return fmt.Sprintf("refresh_token:%d", userID) }

// StoreRefresh saves the hash of the user's current refresh token.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, ttl time.Duration) error {
	return r.rdb.Set(ctx, refreshKey(userID), tokenHash, ttl).Err()
}

// ValidateRefresh reports ErrRefreshInvalid unless tokenHash is the stored
// hash for userID.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, userID uint64, tokenHash string) error {
	stored, err := r.rdb.Get(ctx, refreshKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrRefreshInvalid
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(tokenHash)) != 1 {
		return ErrRefreshInvalid
	}
	return nil
}

// Revoke removes the user's refresh token.
func (r *TokenRepo) Revoke(ctx context.Context, userID uint64) error {
	return r.rdb.Del(ctx, refreshKey(userID)).Err()
}
