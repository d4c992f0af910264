package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisBackend(t *testing.T, ttl time.Duration) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b := NewRedisBackend(client, ttl)
	t.Cleanup(func() { b.Close() })
	return b, mr
}

func TestRedisBackend_Transitions(t *testing.T) {
	ctx := context.Background()
	b, _ := newRedisBackend(t, time.Hour)

	if _, err := b.Get(ctx, "t1"); !errors.Is(err, ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}

	for _, info := range []TaskInfo{
		{ID: "t1", Name: "join", State: StatePending},
		{ID: "t1", State: StateRunning},
		{ID: "t1", State: StateFailed, Error: "dataset with id 3 not found"},
	} {
		if err := b.Transition(ctx, info); err != nil {
			t.Fatalf("Transition(%s): %v", info.State, err)
		}
	}

	if err := b.Transition(ctx, TaskInfo{ID: "t1", State: StateRunning}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := b.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.State != StateFailed || got.Name != "join" || got.Error != "dataset with id 3 not found" {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestRedisBackend_Retention(t *testing.T) {
	ctx := context.Background()
	b, mr := newRedisBackend(t, time.Minute)

	if err := b.Transition(ctx, TaskInfo{ID: "t2", State: StatePending}); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if ttl := mr.TTL(redisKeyPrefix + "t2"); ttl != time.Minute {
		t.Errorf("ttl = %v, want 1m", ttl)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := b.Get(ctx, "t2"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected expired task to be unknown, got %v", err)
	}
}

func TestDecodeMessage(t *testing.T) {
	if _, err := decodeMessage([]byte(`{"task_id":"a","task":"join","args":{}}`)); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}
	for _, body := range []string{`not json`, `{"task":"join"}`, `{"task_id":"a"}`} {
		if _, err := decodeMessage([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}
