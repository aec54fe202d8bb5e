package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a Redis client using miniredis for testing
// miniredis is an in-memory Redis mock that doesn't require a real Redis server
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to create miniredis: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		mr.Close()
		t.Fatalf("Failed to connect to miniredis: %v", err)
	}

	return client, mr
}

func cleanupTestRedis(client *redis.Client, mr *miniredis.Miniredis) {
	if client != nil {
		client.Close()
	}
	if mr != nil {
		mr.Close()
	}
}

func TestLockUser_MutualExclusion(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := NewLock(client)

	// Test 1: Lock the cart successfully
	locked, err := l.LockUser("user-123")
	require.NoError(t, err)
	assert.True(t, locked, "Should lock an uncontended cart")

	// Test 2: A second attempt on the same user fails while held
	locked, err = l.LockUser("user-123")
	require.NoError(t, err)
	assert.False(t, locked, "Should not lock an already locked cart")

	// Test 3: A different user's cart is unaffected
	locked, err = l.LockUser("user-456")
	require.NoError(t, err)
	assert.True(t, locked, "Locks are per user")

	// Test 4: Unlock then relock
	err = l.UnlockUser("user-123")
	require.NoError(t, err)

	locked, err = l.LockUser("user-123")
	require.NoError(t, err)
	assert.True(t, locked, "Should lock again after unlock")
}

func TestUnlockUser_MissingKeyIsNoOp(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := NewLock(client)

	err := l.UnlockUser("never-locked")
	assert.NoError(t, err, "Unlocking an absent key should not error")
}

func TestLockUser_ExpiresAfterTTL(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	t.Setenv("CART_LOCK_TTL_SECONDS", "1")
	l := NewLock(client)

	locked, err := l.LockUser("user-ttl")
	require.NoError(t, err)
	assert.True(t, locked)

	// miniredis only advances TTLs via FastForward
	mr.FastForward(2 * time.Second)

	locked, err = l.LockUser("user-ttl")
	require.NoError(t, err)
	assert.True(t, locked, "Lock should be acquirable after the TTL expires")
}

func TestLockUser_ConcurrentAttempts(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer cleanupTestRedis(client, mr)

	l := NewLock(client)

	const numGoroutines = 20
	var wg sync.WaitGroup
	successCount := 0
	var mu sync.Mutex

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			locked, err := l.LockUser("user-contended")
			if err == nil && locked {
				mu.Lock()
				successCount++
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)
				l.UnlockUser("user-contended")
			}
		}()
	}

	wg.Wait()

	assert.Greater(t, successCount, 0, "At least one lock attempt should succeed")
	t.Logf("Successful locks: %d out of %d attempts", successCount, numGoroutines)
}
