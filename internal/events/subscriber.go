package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscriber consumes lifecycle events from a Redis pub/sub topic.
type Subscriber struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSubscriber creates a subscriber on the given client.
func NewSubscriber(client *redis.Client, logger *zap.Logger) *Subscriber {
	return &Subscriber{client: client, logger: logger}
}

// Run subscribes to topic and invokes handle for every decodable lifecycle
// event, in arrival order. Malformed messages and unknown event names are
// logged and skipped. Run blocks until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context, topic string, handle func(LifecycleEvent)) error {
	pubsub := s.client.Subscribe(ctx, topic)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.Info("subscribed", zap.String("topic", topic))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				s.logger.Warn("malformed envelope", zap.String("topic", topic), zap.Error(err))
				continue
			}
			event, known, err := Decode(env)
			if err != nil {
				s.logger.Warn("undecodable event", zap.String("event", env.Name), zap.Error(err))
				continue
			}
			if !known {
				s.logger.Debug("ignoring unknown event", zap.String("event", env.Name))
				continue
			}
			handle(event)
		}
	}
}
