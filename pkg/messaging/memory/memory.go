package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Broker is an in-process implementation of messaging.Broker backed by
// Go channels, used by tests and local runs without a Redis instance.
// Like Redis pub/sub it is fire-and-forget: messages to a subscriber
// whose buffer is full are dropped.
type Broker struct {
	mu     sync.Mutex
	subs   map[string][]chan []byte
	closed bool
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string][]chan []byte),
	}
}

func (b *Broker) Publish(_ context.Context, channel string, message interface{}) error {
	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("broker is closed")
	}

	// Non-blocking send: a subscriber that stopped draining loses
	// messages instead of wedging Publish while the lock is held.
	for _, sub := range b.subs[channel] {
		select {
		case sub <- payload:
		default:
		}
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("broker is closed")
	}

	sub := make(chan []byte, 100)
	b.subs[channel] = append(b.subs[channel], sub)

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		subs := b.subs[channel]
		for i, s := range subs {
			if s == sub {
				b.subs[channel] = append(subs[:i], subs[i+1:]...)
				close(sub)
				break
			}
		}
	}()

	return sub, nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.subs {
		for _, sub := range subs {
			close(sub)
		}
	}
	b.subs = make(map[string][]chan []byte)
	return nil
}
