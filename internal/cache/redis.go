package cache

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	usersHashKey  = "users:auth"
	eventsListTTL = 30 * time.Second
)

type Config struct {
	Addr     string
	Password string
}

type Client struct {
	client *redis.Client
}

func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: rdb}, nil
}

// GetUserIDByAuth looks up a cached basic-auth credential pair
func (c *Client) GetUserIDByAuth(ctx context.Context, email, passwordHash string) (int64, error) {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	userIDStr, err := c.client.HGet(ctx, usersHashKey, cacheKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, fmt.Errorf("user not found in cache")
		}
		return 0, fmt.Errorf("cache lookup error: %w", err)
	}

	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user ID in cache: %w", err)
	}

	return userID, nil
}

// SetUserAuth populates the auth cache after a successful database check
func (c *Client) SetUserAuth(ctx context.Context, email, passwordHash string, userID int64) error {
	authString := fmt.Sprintf("%s:%s", email, passwordHash)
	cacheKey := base64.StdEncoding.EncodeToString([]byte(authString))

	return c.client.HSet(ctx, usersHashKey, cacheKey, strconv.FormatInt(userID, 10)).Err()
}

// GetEventsListRaw returns the cached JSON for an events page, if present
func (c *Client) GetEventsListRaw(ctx context.Context, page, pageSize int) ([]byte, error) {
	key := fmt.Sprintf("events:list:%d:%d", page, pageSize)
	return c.client.Get(ctx, key).Bytes()
}

// SetEventsList stores an events page; failures are ignored by callers
// since the cache is a read-path optimization only.
func (c *Client) SetEventsList(ctx context.Context, page, pageSize int, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("events:list:%d:%d", page, pageSize)
	return c.client.Set(ctx, key, payload, eventsListTTL).Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
