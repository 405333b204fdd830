package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EventNewMessage = "new_message"
	EventRead       = "read"
)

// Event travels through the relay from the instance that persisted a message
// to every instance holding a websocket of one of the recipients.
type Event struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	ConversationID int64    `json:"conversation_id"`
	Message        *Message `json:"message,omitempty"`
	UserID         int64    `json:"user_id,omitempty"`
	Recipients     []int64  `json:"recipients"`
}

// Relay fans chat events out to connected clients. Publish is best effort.
type Relay interface {
	Publish(ctx context.Context, e Event) error
	Subscribe(ctx context.Context, deliver func(Event)) error
	Close() error
}

// NewRelay returns a Redis relay when url is set and reachable, otherwise an
// in-process one.
func NewRelay(url, prefix string) Relay {
	if url == "" {
		return NewLocalRelay()
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("chat relay: invalid REDIS_URL, using local relay err=%v", err)
		return NewLocalRelay()
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("chat relay: redis unreachable, using local relay err=%v", err)
		_ = rdb.Close()
		return NewLocalRelay()
	}
	log.Printf("chat relay: redis pub/sub prefix=%s", prefix)
	return NewRedisRelay(rdb, prefix)
}

// LocalRelay delivers synchronously inside the current process.
type LocalRelay struct {
	mu       sync.RWMutex
	handlers []func(Event)
}

func NewLocalRelay() *LocalRelay {
	return &LocalRelay{}
}

func (r *LocalRelay) Publish(_ context.Context, e Event) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, h := range r.handlers {
		h(e)
	}
	return nil
}

func (r *LocalRelay) Subscribe(_ context.Context, deliver func(Event)) error {
	r.mu.Lock()
	r.handlers = append(r.handlers, deliver)
	r.mu.Unlock()
	return nil
}

func (r *LocalRelay) Close() error { return nil }

// RedisRelay publishes on <prefix>:<conversation id> and pattern-subscribes
// to <prefix>:*.
type RedisRelay struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisRelay(rdb *redis.Client, prefix string) *RedisRelay {
	return &RedisRelay{rdb: rdb, prefix: prefix}
}

func (r *RedisRelay) Channel(conversationID int64) string {
	return fmt.Sprintf("%s:%d", r.prefix, conversationID)
}

func (r *RedisRelay) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.Publish(ctx, r.Channel(e.ConversationID), data).Err()
}

// Subscribe returns once the subscription is confirmed. Delivery runs in the
// background until ctx is cancelled.
func (r *RedisRelay) Subscribe(ctx context.Context, deliver func(Event)) error {
	ps := r.rdb.PSubscribe(ctx, r.prefix+":*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer ps.Close()
		ch := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(m.Payload), &e); err != nil {
					log.Printf("chat relay: bad payload channel=%s err=%v", m.Channel, err)
					continue
				}
				deliver(e)
			}
		}
	}()
	return nil
}

func (r *RedisRelay) Close() error {
	return r.rdb.Close()
}
