package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/config"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	blacklistPrefix    = "blacklist:"
	subscriptionPrefix = "subscription:user:"

	// stored when the user has no subscription row, so repeat lookups skip the database
	noSubscription = "none"
)

// Client wraps go-redis with the session blacklist and the subscription cache.
type Client struct {
	rdb             *redis.Client
	subscriptionTTL time.Duration
}

// New connects and pings Redis.
func New(cfg *config.RedisConfig) (*Client, error) {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully")
	return NewFromClient(rdb, cfg.SubscriptionTTL), nil
}

// NewFromClient wraps an existing go-redis client.
func NewFromClient(rdb *redis.Client, subscriptionTTL time.Duration) *Client {
	if subscriptionTTL <= 0 {
		subscriptionTTL = 5 * time.Minute
	}
	return &Client{rdb: rdb, subscriptionTTL: subscriptionTTL}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	logger.Info("Closing Redis connection")
	return c.rdb.Close()
}

// BlacklistToken revokes a token ID until it would have expired anyway.
func (c *Client) BlacklistToken(ctx context.Context, tokenID string, expiry time.Duration) error {
	if expiry <= 0 {
		return nil
	}
	logger.Debug("Adding token to blacklist", map[string]interface{}{
		"expiry": expiry.String(),
	})

	if err := c.rdb.Set(ctx, blacklistPrefix+tokenID, "revoked", expiry).Err(); err != nil {
		logger.Error("Failed to blacklist token", err)
		return err
	}
	return nil
}

func (c *Client) IsTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	val, err := c.rdb.Get(ctx, blacklistPrefix+tokenID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err)
		return false, err
	}
	return val == "revoked", nil
}

// GetSubscription returns the cached latest subscription for a user.
// found is false on a cache miss; a cached "no subscription" yields (nil, true, nil).
func (c *Client) GetSubscription(ctx context.Context, userID uint) (*model.Subscription, bool, error) {
	raw, err := c.rdb.Get(ctx, subscriptionKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if raw == noSubscription {
		return nil, true, nil
	}

	var sub model.Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		// corrupt entry; drop it and report a miss
		_ = c.rdb.Del(ctx, subscriptionKey(userID)).Err()
		return nil, false, nil
	}
	return &sub, true, nil
}

// SetSubscription caches sub (nil allowed) for the configured TTL.
func (c *Client) SetSubscription(ctx context.Context, userID uint, sub *model.Subscription) error {
	value := noSubscription
	if sub != nil {
		data, err := json.Marshal(sub)
		if err != nil {
			return fmt.Errorf("marshal subscription: %w", err)
		}
		value = string(data)
	}
	return c.rdb.Set(ctx, subscriptionKey(userID), value, c.subscriptionTTL).Err()
}

func (c *Client) InvalidateSubscription(ctx context.Context, userID uint) error {
	return c.rdb.Del(ctx, subscriptionKey(userID)).Err()
}

func subscriptionKey(userID uint) string {
	return fmt.Sprintf("%s%d", subscriptionPrefix, userID)
}
