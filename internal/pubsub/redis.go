package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/tieba/config"
)

// NewClient 建立 Redis 连接并 PING 一次
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisPublisher 把通知以 JSON 发布到 <prefix>:<user_id> 频道，在线连接层自行订阅
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "notify"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

// Channel 用户的通知频道名
func (p *RedisPublisher) Channel(userID string) string {
	return p.prefix + ":" + userID
}

func (p *RedisPublisher) Publish(ctx context.Context, userID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.client.Publish(ctx, p.Channel(userID), payload).Err()
}
