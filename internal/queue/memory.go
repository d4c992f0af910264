package queue

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBrokerClosed is returned by Publish after Close.
var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker is an in-process broker backed by a buffered channel. It only
// reaches workers in the same process.
type MemoryBroker struct {
	messages  chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryBroker returns a broker that buffers up to size messages.
func NewMemoryBroker(size int) *MemoryBroker {
	if size < 1 {
		size = 1
	}
	return &MemoryBroker{
		messages: make(chan Message, size),
		done:     make(chan struct{}),
	}
}

func (b *MemoryBroker) Publish(ctx context.Context, msg Message) error {
	select {
	case <-b.done:
		return ErrBrokerClosed
	default:
	}
	select {
	case b.messages <- msg:
		return nil
	case <-b.done:
		return ErrBrokerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *MemoryBroker) Consume(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-b.done:
				return
			case msg := <-b.messages:
				d := Delivery{
					Message: msg,
					Ack:     func() error { return nil },
					Nack: func(requeue bool) error {
						if !requeue {
							return nil
						}
						go b.Publish(context.Background(), msg)
						return nil
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					// put it back for the next consumer
					go b.Publish(context.Background(), msg)
					return
				case <-b.done:
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *MemoryBroker) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	return nil
}

type memoryEntry struct {
	info    TaskInfo
	expires time.Time
}

// MemoryBackend keeps task state in a map. Entries expire ttl after their
// last transition; a zero ttl keeps them forever.
type MemoryBackend struct {
	mu    sync.Mutex
	tasks map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend(ttl time.Duration) *MemoryBackend {
	return &MemoryBackend{
		tasks: make(map[string]memoryEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (m *MemoryBackend) Get(ctx context.Context, taskID string) (TaskInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(taskID)
	if !ok {
		return TaskInfo{}, ErrUnknownTask
	}
	return e.info, nil
}

func (m *MemoryBackend) Transition(ctx context.Context, info TaskInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prune()
	current, _ := m.lookup(info.ID)
	if err := checkTransition(current.info, info); err != nil {
		return err
	}
	if info.Name == "" {
		info.Name = current.info.Name
	}

	e := memoryEntry{info: info}
	if m.ttl > 0 {
		e.expires = m.now().Add(m.ttl)
	}
	m.tasks[info.ID] = e
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// lookup must be called with mu held.
func (m *MemoryBackend) lookup(taskID string) (memoryEntry, bool) {
	e, ok := m.tasks[taskID]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.tasks, taskID)
		return memoryEntry{}, false
	}
	return e, true
}

// prune drops every expired entry. It must be called with mu held.
func (m *MemoryBackend) prune() {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	for id, e := range m.tasks {
		if !now.Before(e.expires) {
			delete(m.tasks, id)
		}
	}
}
