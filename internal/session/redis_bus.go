package session

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/geocoder89/timehub/internal/queue/redisclient"
)

const DefaultChannel = "timehub:auth-events"

// RedisBus shares auth events across API replicas over Redis pub/sub.
type RedisBus struct {
	client  *redisclient.Client
	channel string
	log     *slog.Logger
}

func NewRedisBus(client *redisclient.Client, channel string, log *slog.Logger) *RedisBus {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBus{client: client, channel: channel, log: log}
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload)
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, b.channel)

	// wait for the subscription confirmation so no event is missed after return
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Event, subscriberBuffer)
	done := make(chan struct{})

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	go func() {
		defer close(out)
		msgs := sub.Channel()

		for {
			select {
			case <-ctx.Done():
				cancel()
				return
			case <-done:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					b.log.Warn("dropping malformed auth event", "err", err)
					continue
				}

				select {
				case out <- ev:
				default:
				}
			}
		}
	}()

	return out, cancel, nil
}
