package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher delivers a named event to a topic. Payload may be nil for
// signal-only messages.
type Publisher interface {
	Publish(ctx context.Context, topic, name string, payload any) error
}

// RedisPublisher publishes envelopes over Redis pub/sub channels.
type RedisPublisher struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisPublisher creates a publisher on the given client.
func NewRedisPublisher(client *redis.Client, logger *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger}
}

// Publish marshals and PUBLISHes the envelope. Delivery is at-least-once
// from the consumer's point of view; no ordering is guaranteed across
// topics.
func (p *RedisPublisher) Publish(ctx context.Context, topic, name string, payload any) error {
	env := Envelope{
		ID:   uuid.NewString(),
		Name: name,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		env.Data = data
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, topic, raw).Err(); err != nil {
		p.logger.Warn("publish failed", zap.String("topic", topic), zap.String("event", name), zap.Error(err))
		return err
	}
	return nil
}

// MemoryPublisher is a synchronous in-process publisher used by tests and
// by components that want to observe their own emissions.
type MemoryPublisher struct {
	mu        sync.RWMutex
	listeners map[string][]func(Envelope)
	published []PublishedMessage
}

// PublishedMessage records one Publish call for inspection.
type PublishedMessage struct {
	Topic    string
	Envelope Envelope
}

// NewMemoryPublisher creates an empty in-process publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{listeners: make(map[string][]func(Envelope))}
}

// Publish records the message and synchronously invokes topic listeners.
func (p *MemoryPublisher) Publish(_ context.Context, topic, name string, payload any) error {
	env := Envelope{ID: uuid.NewString(), Name: name}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		env.Data = data
	}

	p.mu.Lock()
	p.published = append(p.published, PublishedMessage{Topic: topic, Envelope: env})
	handlers := append([]func(Envelope){}, p.listeners[topic]...)
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(env)
	}
	return nil
}

// Subscribe registers a listener for a topic.
func (p *MemoryPublisher) Subscribe(topic string, handler func(Envelope)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners[topic] = append(p.listeners[topic], handler)
}

// Published returns a copy of everything published so far.
func (p *MemoryPublisher) Published() []PublishedMessage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]PublishedMessage{}, p.published...)
}
