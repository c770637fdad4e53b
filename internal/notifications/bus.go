package notifications

import (
	"context"
	"sync"
	"time"

	"fileforge/internal/queue"
)

// JobEvent is one broadcast job state transition.
type JobEvent struct {
	Sequence     uint64       `json:"seq"`
	Timestamp    time.Time    `json:"ts"`
	JobKey       string       `json:"job_key"`
	Status       queue.Status `json:"status"`
	Progress     int          `json:"progress"`
	Message      string       `json:"message,omitempty"`
	InputFormat  string       `json:"input_format,omitempty"`
	OutputFormat string       `json:"output_format,omitempty"`
	Error        string       `json:"error,omitempty"`
}

// Bus stores recent job events and wakes waiters when new events arrive.
// Delivery is at-most-once per observed transition: events that fall out of
// the bounded buffer before a consumer reads them are gone, and consumers
// reconcile via job status polling.
type Bus struct {
	mu          sync.Mutex
	cond        *sync.Cond
	capacity    int
	buffer      []JobEvent
	nextSeq     uint64
	subscribers map[int]chan JobEvent
	nextSubID   int
}

const subscriberBuffer = 64

// NewBus constructs a bounded in-memory broadcast buffer.
func NewBus(capacity int) *Bus {
	if capacity <= 0 {
		capacity = 512
	}
	b := &Bus{capacity: capacity, subscribers: make(map[int]chan JobEvent)}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Publish appends a job event and wakes all waiters. Slow channel
// subscribers lose their oldest pending event rather than blocking the
// publisher.
func (b *Bus) Publish(evt JobEvent) {
	if b == nil {
		return
	}
	b.mu.Lock()
	b.nextSeq++
	evt.Sequence = b.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}

	if len(b.buffer) == b.capacity {
		copy(b.buffer, b.buffer[1:])
		b.buffer = b.buffer[:b.capacity-1]
	}
	b.buffer = append(b.buffer, evt)

	for _, ch := range b.subscribers {
		select {
		case ch <- evt:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- evt:
			default:
			}
		}
	}
	b.cond.Broadcast()
	b.mu.Unlock()
}

// Subscribe registers an in-process consumer. The returned cancel function
// must be called to release the subscription.
func (b *Bus) Subscribe() (<-chan JobEvent, func()) {
	ch := make(chan JobEvent, subscriberBuffer)
	b.mu.Lock()
	id := b.nextSubID
	b.nextSubID++
	b.subscribers[id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Fetch returns buffered events with sequence greater than since. When wait
// is true, Fetch blocks until at least one event is available or the context
// ends.
func (b *Bus) Fetch(ctx context.Context, since uint64, limit int, wait bool) ([]JobEvent, uint64, error) {
	if b == nil {
		return nil, since, nil
	}
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}

	cancelWait := make(chan struct{})
	if wait && ctx != nil && ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				b.cond.Broadcast()
			case <-cancelWait:
			}
		}()
	}
	defer close(cancelWait)

	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		events, next := b.snapshotLocked(since, limit)
		if len(events) > 0 || !wait {
			return events, next, contextError(ctx)
		}
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
		b.cond.Wait()
		if err := contextError(ctx); err != nil {
			return nil, next, err
		}
	}
}

// Tail returns the most recent limit events without blocking.
func (b *Bus) Tail(limit int) ([]JobEvent, uint64) {
	if b == nil {
		return nil, 0
	}
	if limit <= 0 || limit > b.capacity {
		limit = b.capacity
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.buffer) == 0 {
		return nil, b.nextSeq
	}
	start := len(b.buffer) - limit
	if start < 0 {
		start = 0
	}
	out := make([]JobEvent, len(b.buffer)-start)
	copy(out, b.buffer[start:])
	return out, b.nextSeq
}

func (b *Bus) snapshotLocked(since uint64, limit int) ([]JobEvent, uint64) {
	if len(b.buffer) == 0 {
		return nil, b.nextSeq
	}
	startIdx := -1
	for i, evt := range b.buffer {
		if evt.Sequence > since {
			startIdx = i
			break
		}
	}
	if startIdx == -1 {
		return nil, b.nextSeq
	}
	end := startIdx + limit
	if end > len(b.buffer) {
		end = len(b.buffer)
	}
	out := make([]JobEvent, end-startIdx)
	copy(out, b.buffer[startIdx:end])
	return out, b.nextSeq
}

func contextError(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
