package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/placehub/anonqa-service/internal/config"
)

type Client struct {
	Cli *redis.Client
}

func NewRedis(cfg *config.Config) (*Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Client{Cli: r}, nil
}

func (c *Client) Close() error { return c.Cli.Close() }

func (c *Client) SetPresence(ctx context.Context, sessionID string, online bool) error {
	key := "anonqa:presence:" + sessionID
	if !online {
		return c.Cli.Del(ctx, key).Err()
	}
	return c.Cli.Set(ctx, key, "1", 0).Err()
}

func (c *Client) GetPresence(ctx context.Context, sessionID string) (bool, error) {
	s, err := c.Cli.Get(ctx, "anonqa:presence:"+sessionID).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return s == "1", nil
}
