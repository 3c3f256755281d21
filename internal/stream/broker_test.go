package stream

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func TestSubscribeReceivesPublishes(t *testing.T) {
	b := NewBroker(nopLogger{})
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Publish([]byte(`{"kind":"idle"}`))

	msg := <-ch
	assert.JSONEq(t, `{"kind":"idle"}`, string(msg))
}

func TestCountChangeCallback(t *testing.T) {
	b := NewBroker(nopLogger{})
	type change struct {
		count  int
		joined bool
	}
	var changes []change
	b.OnCountChange(func(count int, joined bool) {
		changes = append(changes, change{count, joined})
	})

	_, cancel1 := b.Subscribe()
	_, cancel2 := b.Subscribe()
	cancel1()
	cancel2()
	cancel2() // repeat cancel is a no-op

	// The broker reports which direction each change went, so listeners
	// never have to reconstruct it from count deltas.
	assert.Equal(t, []change{
		{1, true},
		{2, true},
		{1, false},
		{0, false},
	}, changes)
}

func TestCountChangeDirectionUnderConcurrentSubscribers(t *testing.T) {
	b := NewBroker(nopLogger{})

	var mu sync.Mutex
	joins, leaves := 0, 0
	b.OnCountChange(func(count int, joined bool) {
		mu.Lock()
		defer mu.Unlock()
		if joined {
			joins++
		} else {
			leaves++
		}
	})

	const n = 16
	var wg sync.WaitGroup
	cancels := make([]func(), n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, cancels[i] = b.Subscribe()
		}(i)
	}
	wg.Wait()
	for _, cancel := range cancels {
		wg.Add(1)
		go func(cancel func()) {
			defer wg.Done()
			cancel()
		}(cancel)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, n, joins)
	assert.Equal(t, n, leaves)
	assert.Equal(t, 0, b.Count())
}

func TestStalledSubscriberIsDropped(t *testing.T) {
	b := NewBroker(nopLogger{})
	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i <= subscriberBuffer; i++ {
		b.Publish([]byte(fmt.Sprintf(`{"seq":%d}`, i)))
	}

	assert.Equal(t, 0, b.Count())

	// Buffered messages stay readable, then the channel closes.
	received := 0
	for range ch {
		received++
	}
	assert.Equal(t, subscriberBuffer, received)
}

func TestCloseDropsEveryone(t *testing.T) {
	b := NewBroker(nopLogger{})
	ch1, _ := b.Subscribe()
	ch2, _ := b.Subscribe()
	require.Equal(t, 2, b.Count())

	b.Close()
	assert.Equal(t, 0, b.Count())

	_, open1 := <-ch1
	_, open2 := <-ch2
	assert.False(t, open1)
	assert.False(t, open2)
}
