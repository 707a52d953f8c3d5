package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/justsurfingit/lead-labeler/internal/models"
)

// EventPublisher announces newly labeled leads to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, record *models.Record) error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, *models.Record) error { return nil }

// RedisPublisher publishes each labeled record as JSON on a pub/sub channel.
type RedisPublisher struct {
	Client  *redis.Client
	Channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{Client: client, Channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, record *models.Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record %d: %w", record.ID, err)
	}
	if err := p.Client.Publish(ctx, p.Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", p.Channel, err)
	}
	return nil
}
