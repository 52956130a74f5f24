package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"

	"farmstore/internal/models"
)

// EventNewOrder is the only push event the channel listens to.
const EventNewOrder = "newOrder"

// Feed delivers new-order events until ctx ends or the transport drops. The
// returned channel is closed when the subscription ends.
type Feed interface {
	Subscribe(ctx context.Context) (<-chan models.OrderEvent, error)
}

// Publisher announces an order on a feed this process can write to.
type Publisher interface {
	Publish(ctx context.Context, ev models.OrderEvent) error
}

// RedisFeed listens on a pub/sub channel carrying bare order event JSON.
type RedisFeed struct {
	Client  *redis.Client
	Channel string
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{Client: client, Channel: EventNewOrder}
}

func (f *RedisFeed) Subscribe(ctx context.Context) (<-chan models.OrderEvent, error) {
	sub := f.Client.Subscribe(ctx, f.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	out := make(chan models.OrderEvent)
	go func() {
		defer close(out)
		defer sub.Close()

		messages := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev models.OrderEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					log.Println("[NOTIFY] [WARN] malformed newOrder payload:", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (f *RedisFeed) Publish(ctx context.Context, ev models.OrderEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return f.Client.Publish(ctx, f.Channel, data).Err()
}

var errFeedSubscribed = errors.New("local feed already has a subscriber")

// LocalFeed passes events published inside this process to one subscriber.
type LocalFeed struct {
	mu         sync.Mutex
	events     chan models.OrderEvent
	subscribed bool
}

func NewLocalFeed(buffer int) *LocalFeed {
	return &LocalFeed{events: make(chan models.OrderEvent, buffer)}
}

func (f *LocalFeed) Subscribe(ctx context.Context) (<-chan models.OrderEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribed {
		return nil, errFeedSubscribed
	}
	f.subscribed = true

	out := make(chan models.OrderEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-f.events:
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Publish queues the event, waiting for buffer space until ctx ends.
func (f *LocalFeed) Publish(ctx context.Context, ev models.OrderEvent) error {
	select {
	case f.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
