package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/tieba/config"
)

func TestPublishDeliversJSON(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()
	client, err := NewClient(ctx, config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	pub := NewRedisPublisher(client, "")
	assert.Equal(t, "notify:u1", pub.Channel("u1"))

	sub := client.Subscribe(ctx, pub.Channel("u1"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err = sub.Receive(ctx) // 订阅确认
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, "u1", map[string]string{"type": "like"}))

	select {
	case msg := <-sub.Channel():
		var got map[string]string
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "like", got["type"])
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNewClientUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err := NewClient(context.Background(), config.RedisConfig{Addr: addr})
	assert.Error(t, err)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	assert.NoError(t, NewRedisPublisher(client, "evt").Publish(context.Background(), "u2", 1))
}
