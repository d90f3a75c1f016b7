// Package redis implements the memoization capability: a keyed cache
// with per-entry expiry, storing operation results verbatim as JSON.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSnapshotTTL is how long archive lookups and capture
	// content stay cached. Captures are immutable; 90 days matches how
	// slowly the index itself changes for past dates.
	DefaultSnapshotTTL = 90 * 24 * time.Hour
	// DefaultResolutionTTL is how long resolved intents stay cached.
	// Resolutions depend on the current date, so they expire daily.
	DefaultResolutionTTL = 24 * time.Hour
)

// Store handles memoized results in redis.
type Store struct {
	client *redis.Client
}

// NewStore creates a memoization store on an existing client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

// Get loads the cached value for key into dest. Returns false on a
// miss without touching dest.
func (s *Store) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get memo entry: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal memo entry: %w", err)
	}
	return true, nil
}

// Set stores val under key with the given expiry.
func (s *Store) Set(ctx context.Context, key string, val any, ttl time.Duration) error {
	data, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal memo entry: %w", err)
	}
	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set memo entry: %w", err)
	}
	return nil
}

// Invalidate removes one memoized entry.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate memo entry: %w", err)
	}
	return nil
}

// Flush removes all memoized entries.
func (s *Store) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixMemo+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete memo key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to flush memo entries: %w", err)
	}
	return nil
}
