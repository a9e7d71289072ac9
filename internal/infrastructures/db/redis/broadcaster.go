package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ozzus/fan-predict/internal/domain/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultChannelPrefix = "matches:"

// Broadcaster publishes match updates to redis channels for other processes.
type Broadcaster struct {
	redis  *redis.Client
	prefix string
	now    func() time.Time
	log    *zap.Logger
}

func NewBroadcaster(redisClient *redis.Client, prefix string, log *zap.Logger) *Broadcaster {
	if strings.TrimSpace(prefix) == "" {
		prefix = defaultChannelPrefix
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Broadcaster{redis: redisClient, prefix: prefix, now: time.Now, log: log}
}

func (b *Broadcaster) Name() string {
	return "redis"
}

func (b *Broadcaster) HasSubscribers(ctx context.Context) bool {
	const op = "redis.Broadcaster.HasSubscribers"

	if b.redis == nil {
		return false
	}

	counts, err := b.redis.PubSubNumSub(ctx, b.channel(models.TopicLive), b.channel(models.TopicToday)).Result()
	if err != nil {
		b.log.Warn("pubsub numsub failed", zap.String("op", op), zap.Error(err))
		return false
	}

	for _, n := range counts {
		if n > 0 {
			return true
		}
	}
	return false
}

func (b *Broadcaster) Publish(ctx context.Context, topic string, matches []models.Match) error {
	if b.redis == nil {
		return nil
	}

	data, err := encodeUpdate(topic, matches, b.now())
	if err != nil {
		return err
	}

	if err := b.redis.Publish(ctx, b.channel(topic), data).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}

	return nil
}

func (b *Broadcaster) channel(topic string) string {
	return b.prefix + topic
}

func encodeUpdate(topic string, matches []models.Match, ts time.Time) ([]byte, error) {
	if matches == nil {
		matches = []models.Match{}
	}

	data, err := json.Marshal(models.Update{
		Type:    topic,
		Matches: matches,
		TS:      ts.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s update: %w", topic, err)
	}

	return data, nil
}
