// Package session persists the logged-in account across restarts. It is a
// plain key-value collaborator, not part of the consistency layer.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Cache is the scalar string cache the session manager runs on.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Clear(ctx context.Context) error
}

const keyPrefix = "syncnote:session:"

const (
	keyUserID     = "userId"
	keyUsername   = "username"
	keyEmail      = "email"
	keyIsLoggedIn = "isLoggedIn"
)

// RedisCache implements Cache on a Redis client.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string) error {
	return c.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (c *RedisCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Manager tracks the current account: id, username and email.
type Manager struct {
	cache Cache
}

func NewManager(cache Cache) *Manager {
	return &Manager{cache: cache}
}

func (m *Manager) Login(ctx context.Context, userID, username, email string) error {
	if err := m.cache.Set(ctx, keyUserID, userID); err != nil {
		return err
	}
	if err := m.cache.Set(ctx, keyUsername, username); err != nil {
		return err
	}
	if err := m.cache.Set(ctx, keyEmail, email); err != nil {
		return err
	}
	return m.cache.Set(ctx, keyIsLoggedIn, "true")
}

func (m *Manager) Logout(ctx context.Context) error {
	return m.cache.Clear(ctx)
}

func (m *Manager) IsLoggedIn(ctx context.Context) bool {
	value, err := m.cache.Get(ctx, keyIsLoggedIn)
	return err == nil && value == "true"
}

func (m *Manager) CurrentUserID(ctx context.Context) string {
	value, _ := m.cache.Get(ctx, keyUserID)
	return value
}

func (m *Manager) CurrentUsername(ctx context.Context) string {
	value, _ := m.cache.Get(ctx, keyUsername)
	return value
}

func (m *Manager) CurrentEmail(ctx context.Context) string {
	value, _ := m.cache.Get(ctx, keyEmail)
	return value
}
