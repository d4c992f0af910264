package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "join_task:"

// maxTxRetries bounds optimistic-lock retries when two writers race on the
// same task key.
const maxTxRetries = 5

// RedisBackend stores each task as a JSON value under join_task:<id>, with
// the retention TTL refreshed on every transition.
type RedisBackend struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisClient connects to Redis and checks the connection.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client *redis.Client, ttl time.Duration) *RedisBackend {
	return &RedisBackend{Client: client, TTL: ttl}
}

func (r *RedisBackend) Get(ctx context.Context, taskID string) (TaskInfo, error) {
	raw, err := r.Client.Get(ctx, redisKeyPrefix+taskID).Bytes()
	if errors.Is(err, redis.Nil) {
		return TaskInfo{}, ErrUnknownTask
	}
	if err != nil {
		return TaskInfo{}, fmt.Errorf("redis get task %s: %w", taskID, err)
	}
	var info TaskInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return TaskInfo{}, fmt.Errorf("decode task %s: %w", taskID, err)
	}
	return info, nil
}

// Transition applies a state change inside a WATCH/MULTI transaction so two
// workers cannot both move the same task.
func (r *RedisBackend) Transition(ctx context.Context, info TaskInfo) error {
	key := redisKeyPrefix + info.ID

	txf := func(tx *redis.Tx) error {
		var current TaskInfo
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			if err := json.Unmarshal(raw, &current); err != nil {
				return fmt.Errorf("decode task %s: %w", info.ID, err)
			}
		}

		if err := checkTransition(current, info); err != nil {
			return err
		}
		if info.Name == "" {
			info.Name = current.Name
		}
		payload, err := json.Marshal(info)
		if err != nil {
			return fmt.Errorf("encode task %s: %w", info.ID, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, r.TTL)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := r.Client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("task %s: too much contention updating state", info.ID)
}

func (r *RedisBackend) Close() error {
	return r.Client.Close()
}
