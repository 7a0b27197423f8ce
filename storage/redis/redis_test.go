package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrelia/tarotbot/pkg/fortune"
)

// setupTestRedis creates a Redis client for testing.
// Requires Redis running on localhost:6379.
func setupTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // test database
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush test database: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		client  redis.UniversalClient
		wantErr bool
	}{
		{name: "nil client", client: nil, wantErr: true},
		{name: "valid client", client: redis.NewClient(&redis.Options{}), wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.client, DefaultConfig())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	store, err := New(client, DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	rec, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, rec, "missing user should yield nil")

	issued := time.Date(2024, 3, 15, 9, 0, 0, 0, fortune.ReferenceLocation())
	in := &fortune.UserRecord{
		DailyCard:     &fortune.CardState{IssuedAt: issued, Index: 2},
		Birthday:      "15.03.1990",
		OracleCredits: 1,
	}
	require.NoError(t, store.Put(ctx, "u1", in))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DailyCard.IssuedAt.Equal(issued))
	assert.Equal(t, 2, got.DailyCard.Index)
	assert.Equal(t, "15.03.1990", got.Birthday)
	assert.Equal(t, 1, got.OracleCredits)
}

func TestCorruptValueFailsOpen(t *testing.T) {
	client := setupTestRedis(t)
	store, err := New(client, DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, DefaultConfig().KeyPrefix+"u1", "{broken", 0).Err())

	rec, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, rec, "corrupt value must read as no state")
}

func TestAllDeleteReset(t *testing.T) {
	client := setupTestRedis(t)
	store, err := New(client, DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "u1", &fortune.UserRecord{OracleCredits: 1}))
	require.NoError(t, store.Put(ctx, "u2", &fortune.UserRecord{OracleCredits: 2}))

	all, err := store.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all["u1"].OracleCredits)
	assert.Equal(t, 2, all["u2"].OracleCredits)

	require.NoError(t, store.Delete(ctx, "u1"))
	rec, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	require.NoError(t, store.Reset(ctx))
	all, err = store.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
