package store

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannelPrefix = "jobtrail.changes."

// RedisBus is a Bus backed by Redis pub/sub, fanning change events out to
// every subscribed process. Events are JSON on channel
// "jobtrail.changes.<table>". A dropped pub/sub connection closes the
// subscriber channels and is not retried here.
type RedisBus struct {
	rdb *redis.Client

	mu     sync.Mutex
	cancel []func()
}

// NewRedisBus wraps an existing Redis client.
func NewRedisBus(rdb *redis.Client) *RedisBus {
	return &RedisBus{rdb: rdb}
}

// Publish encodes ev and publishes it on the table's channel.
func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, redisChannelPrefix+ev.Table, body).Err()
}

// Subscribe opens a pub/sub subscription on the table's channel and filters
// events by f before delivery.
func (b *RedisBus) Subscribe(table string, f Filter) (<-chan Event, func()) {
	ctx, stop := context.WithCancel(context.Background())
	ps := b.rdb.Subscribe(ctx, redisChannelPrefix+table)
	out := make(chan Event, subBufferSize)

	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("store: bad change event on %s: %v", msg.Channel, err)
				continue
			}
			if !f.Match(ev) {
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			if err := ps.Close(); err != nil {
				log.Printf("store: failed to close subscription on %s: %v", table, err)
			}
		})
	}

	b.mu.Lock()
	b.cancel = append(b.cancel, cancel)
	b.mu.Unlock()

	return out, cancel
}

// Close tears down every open subscription.
func (b *RedisBus) Close() {
	b.mu.Lock()
	cancels := b.cancel
	b.cancel = nil
	b.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}
