package redis

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mobilekit/auth-service/internal/core/domain"
)

// TokenStore issues opaque bearer tokens backed by Redis. Only a SHA-256
// hash of the raw token is stored, keyed to the owning user id; a leaked
// store dump cannot be replayed as credentials. TTL bounds token lifetime,
// so an expired token resolves exactly like a revoked one.
//
// Key format: token:<sha256-hex> → user id
type TokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTokenStore creates a TokenStore wrapping the given Redis client.
func NewTokenStore(client *redis.Client, ttl time.Duration) *TokenStore {
	if ttl <= 0 {
		ttl = 720 * time.Hour
	}
	return &TokenStore{client: client, ttl: ttl}
}

// Mint issues a fresh token bound to userID and returns the raw value. The
// raw token exists only in this return value and in the caller's response.
func (s *TokenStore) Mint(ctx context.Context, userID string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("mint token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	if err := s.client.Set(ctx, s.key(token), userID, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return token, nil
}

// Resolve returns the user id bound to token, or domain.ErrUnauthenticated
// when the token is unknown, revoked, or expired.
func (s *TokenStore) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := s.client.Get(ctx, s.key(token)).Result()
	if err == redis.Nil {
		return "", domain.ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("resolve token: %w", err)
	}
	return userID, nil
}

// Revoke deletes exactly this token. Deleting an absent key is a no-op, so
// revocation is idempotent.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *TokenStore) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "token:" + hex.EncodeToString(sum[:])
}
