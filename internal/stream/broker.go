package stream

import (
	"sync"

	"github.com/google/uuid"

	"neuroviz-server/internal/pkg/logger"
)

// subscriberBuffer is how many pushes a subscriber may fall behind before
// it is dropped. State snapshots are small, so a full buffer means the
// client stopped reading, not that we are bursty.
const subscriberBuffer = 16

type subscriber struct {
	id string
	ch chan []byte
}

// Broker fans pre-marshaled state snapshots out to SSE subscribers. A
// subscriber that cannot keep up is disconnected rather than allowed to
// stall the session loop.
type Broker struct {
	mu          sync.Mutex
	subscribers map[string]*subscriber
	onChange    func(count int, joined bool)
	log         logger.ILogger
}

func NewBroker(log logger.ILogger) *Broker {
	return &Broker{
		subscribers: make(map[string]*subscriber),
		log:         log,
	}
}

// OnCountChange registers a callback invoked with the subscriber count
// after every subscribe and disconnect. The broker reports the direction
// of each change itself so listeners need no state of their own; the
// callback may run on any goroutine. Must be set before serving.
func (b *Broker) OnCountChange(fn func(count int, joined bool)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// Subscribe registers a new stream. The returned channel closes when the
// subscriber is dropped; call the cancel func when the client goes away.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	sub := &subscriber{
		id: uuid.NewString(),
		ch: make(chan []byte, subscriberBuffer),
	}

	b.mu.Lock()
	b.subscribers[sub.id] = sub
	count := len(b.subscribers)
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange(count, true)
	}

	cancel := func() { b.drop(sub.id) }
	return sub.ch, cancel
}

// Publish delivers a snapshot to every subscriber. Slow subscribers are
// dropped so Publish never blocks the caller.
func (b *Broker) Publish(data []byte) {
	b.mu.Lock()
	var stalled []string
	for id, sub := range b.subscribers {
		select {
		case sub.ch <- data:
		default:
			stalled = append(stalled, id)
		}
	}
	b.mu.Unlock()

	for _, id := range stalled {
		b.log.Warn("stream", "dropping stalled subscriber", map[string]interface{}{"subscriber_id": id})
		b.drop(id)
	}
}

// Count returns the number of connected subscribers.
func (b *Broker) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Close drops every subscriber.
func (b *Broker) Close() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[string]*subscriber)
	count := 0
	onChange := b.onChange
	b.mu.Unlock()

	for _, sub := range subs {
		close(sub.ch)
	}
	if onChange != nil && len(subs) > 0 {
		onChange(count, false)
	}
}

func (b *Broker) drop(id string) {
	b.mu.Lock()
	sub, ok := b.subscribers[id]
	if ok {
		delete(b.subscribers, id)
	}
	count := len(b.subscribers)
	onChange := b.onChange
	b.mu.Unlock()

	if !ok {
		return
	}
	close(sub.ch)
	if onChange != nil {
		onChange(count, false)
	}
}
