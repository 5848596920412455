package config

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis dials Redis when REDIS_ADDRESS is set. Redis is an
// optimization layer for catalog caching and best-effort build locks;
// every caller must tolerate a nil client.
func ConnectRedis() (*redis.Client, *redislock.Client) {
	address := os.Getenv("REDIS_ADDRESS")
	if address == "" {
		log.Println("REDIS_ADDRESS not set; running without cache")
		return nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis ping failed (%v); running without cache", err)
		return nil, nil
	}
	return rdb, redislock.New(rdb)
}

const catalogCacheTTL = 15 * time.Minute

// GetRedisObject unmarshals a cached JSON value into dest.
// Returns (false, nil) on cache miss or when rdb is nil.
func GetRedisObject(ctx context.Context, rdb *redis.Client, key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	val, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}
	return true, nil
}

func SetRedisObject(ctx context.Context, rdb *redis.Client, key string, value interface{}) error {
	if rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, raw, catalogCacheTTL).Err()
}

func DeleteRedisKeys(ctx context.Context, rdb *redis.Client, keys ...string) {
	if rdb == nil || len(keys) == 0 {
		return
	}
	// Invalidation is best-effort; a stale catalog entry expires on its own.
	_ = rdb.Del(ctx, keys...).Err()
}
