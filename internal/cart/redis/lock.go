// Package redis serializes cart mutations per user. Two browser tabs
// mutating the same cart contend on a short-lived SetNX lock instead of
// racing a read-modify-write.
package redis

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Lock struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		Logger: log.Default(),
	}
}

// getLockDuration returns the lock TTL from the environment or the
// default. The TTL is a safety net against a crashed holder, not the
// expected hold time.
func (l *Lock) getLockDuration() time.Duration {
	defaultDuration := 10 * time.Second

	ttlStr := os.Getenv("CART_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		l.Logger.Println("REDIS: Invalid CART_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 10 seconds")
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

// LockUser acquires the mutation lock for one user's cart.
func (l *Lock) LockUser(userID string) (bool, error) {
	key := "cart_lock:" + userID
	return l.Client.SetNX(context.Background(), key, "1", l.getLockDuration()).Result()
}

// UnlockUser releases the mutation lock. Releasing an already-expired
// lock is a no-op.
func (l *Lock) UnlockUser(userID string) error {
	key := "cart_lock:" + userID
	_, err := l.Client.Del(context.Background(), key).Result()
	if err == redis.Nil {
		return nil
	}
	return err
}
