package tokenstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Namespace for refresh token entries
	// Key layout: "refresh_token:" + hex(sha256(token)) -> user id
	refreshTokenPrefix = "refresh_token:"

	// Keys fetched per SCAN round in RevokeAll
	scanBatchSize = 100
)

// RevocationStore tracks outstanding refresh tokens in redis
// An entry exists exactly while its refresh token is usable: it is written
// with a TTL equal to the token lifetime, so token claims and store entry
// expire in lockstep, and deleting it revokes the token
type RevocationStore struct {
	redis redis.UniversalClient
}

func NewRevocationStore(client redis.UniversalClient) *RevocationStore {
	return &RevocationStore{redis: client}
}

// Register the refresh token for its whole lifetime
// Overwrites silently if the fingerprint is registered already
func (s *RevocationStore) Register(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	err := s.redis.Set(ctx, tokenKey(token), strconv.FormatInt(userID, 10), ttl).Err()
	if err != nil {
		return fmt.Errorf("tokenstore error: %w", err)
	}

	return nil
}

// IsValid reports whether the token entry still exists
// Existence alone implies not expired cause redis drops the key at TTL.
// Store communication failures read as false: a token we can't verify is
// treated as revoked
func (s *RevocationStore) IsValid(ctx context.Context, token string) bool {
	n, err := s.redis.Exists(ctx, tokenKey(token)).Result()
	if err != nil {
		return false
	}

	return n == 1
}

// Revoke deletes the token entry
// Idempotent: deleting an unknown or expired token is not an error
func (s *RevocationStore) Revoke(ctx context.Context, token string) error {
	err := s.redis.Del(ctx, tokenKey(token)).Err()
	if err != nil {
		return fmt.Errorf("tokenstore error: %w", err)
	}

	return nil
}

// RevokeAll deletes every refresh token entry owned by the user and returns
// the number deleted
// This walks the whole refresh token namespace, which is fine for a rare
// administrative action. The scan is not linearizable against concurrent
// Register calls: a token registered mid-scan may survive the sweep
func (s *RevocationStore) RevokeAll(ctx context.Context, userID int64) (int, error) {
	want := strconv.FormatInt(userID, 10)
	revoked := 0

	iter := s.redis.Scan(ctx, 0, refreshTokenPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		owner, err := s.redis.Get(ctx, key).Result()
		if err != nil {
			// Entry may have expired between SCAN and GET
			if err == redis.Nil {
				continue
			}
			return revoked, fmt.Errorf("tokenstore error: %w", err)
		}

		if owner != want {
			continue
		}

		if err := s.redis.Del(ctx, key).Err(); err != nil {
			return revoked, fmt.Errorf("tokenstore error: %w", err)
		}
		revoked++
	}

	if err := iter.Err(); err != nil {
		return revoked, fmt.Errorf("tokenstore error: %w", err)
	}

	return revoked, nil
}

// tokenKey builds the redis key from the token fingerprint
// Only the sha256 digest is stored, never the token itself
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return refreshTokenPrefix + hex.EncodeToString(sum[:])
}
