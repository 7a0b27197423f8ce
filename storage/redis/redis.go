// Package redis provides a Redis implementation of the fortune.Store
// interface. Records are sharded per user under individual keys, which
// removes the whole-document lost-update hazard of the file store.
package redis

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// Config holds Redis store configuration
type Config struct {
	// KeyPrefix is prepended to all Redis keys (default: "tarot:user:")
	KeyPrefix string
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{KeyPrefix: "tarot:user:"}
}

// Store implements fortune.Store using Redis
type Store struct {
	client redis.UniversalClient
	config Config
}

// New creates a new Redis store.
// The client can be *redis.Client, *redis.ClusterClient, or *redis.Ring.
func New(client redis.UniversalClient, config Config) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "tarot:user:"
	}
	return &Store{client: client, config: config}, nil
}

func (s *Store) key(userID string) string {
	return s.config.KeyPrefix + userID
}

// Get implements fortune.Store
func (s *Store) Get(ctx context.Context, userID string) (*fortune.UserRecord, error) {
	data, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	rec, err := fortune.UnmarshalRecord(data)
	if err != nil {
		// Corrupt value: treat as absent, per the fail-open contract.
		return nil, nil
	}
	return rec, nil
}

// Put implements fortune.Store
func (s *Store) Put(ctx context.Context, userID string, rec *fortune.UserRecord) error {
	data, err := fortune.MarshalRecord(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.client.Set(ctx, s.key(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements fortune.Store
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// All implements fortune.Store
func (s *Store) All(ctx context.Context) (map[string]*fortune.UserRecord, error) {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*fortune.UserRecord, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		rec, err := fortune.UnmarshalRecord([]byte(raw))
		if err != nil {
			continue
		}
		out[strings.TrimPrefix(keys[i], s.config.KeyPrefix)] = rec
	}
	return out, nil
}

// Reset implements fortune.Store
func (s *Store) Reset(ctx context.Context) error {
	keys, err := s.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.config.KeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return keys, nil
}
