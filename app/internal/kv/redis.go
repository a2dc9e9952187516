package kv

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// updateRetries bounds the optimistic-concurrency loop in Update.
const updateRetries = 8

// Redis backs the store with an external Redis instance. Update uses
// WATCH-based optimistic concurrency, so concurrent writers retry instead
// of losing updates.
type Redis struct {
	rdb *redis.Client
}

// OpenRedis connects to addr and verifies the connection.
func OpenRedis(addr string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

// Get retrieves the value stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Set stores value under key, overwriting any previous value.
func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

// Update applies fn under WATCH: if the key changes between the read and
// the write the transaction fails and is retried.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	for i := 0; i < updateRetries; i++ {
		err := r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			old, err := tx.Get(ctx, key).Bytes()
			if errors.Is(err, redis.Nil) {
				old = nil
			} else if err != nil {
				return err
			}

			updated, err := fn(old)
			if err != nil {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, updated, 0)
				return nil
			})
			return err
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("kv: update of %q exhausted %d retries", key, updateRetries)
}

// Keys scans for every key with the given prefix, sorted.
func (r *Redis) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

// Delete removes the given keys and reports how many existed.
func (r *Redis) Delete(ctx context.Context, keys ...string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	n, err := r.rdb.Del(ctx, keys...).Result()
	return int(n), err
}

// Close closes the client connection pool.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
