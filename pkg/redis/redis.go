package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	sessionKeyPrefix = "assistant:session:"
	feedCacheKey     = "assistant:feed:recent"
)

type IRedis interface {
	TouchSession(ctx context.Context, sessionID string, ttl time.Duration) error
	SessionAlive(ctx context.Context, sessionID string) (bool, error)
	DropSession(ctx context.Context, sessionID string) error
	CacheFeed(ctx context.Context, payload string, ttl time.Duration) error
	GetCachedFeed(ctx context.Context) (string, error)
	InvalidateFeed(ctx context.Context) error
}

type redisClient struct {
	client *redis.Client
}

func New() IRedis {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

// TouchSession marks a session live and pushes its expiry out.
func (r *redisClient) TouchSession(ctx context.Context, sessionID string, ttl time.Duration) error {
	key := sessionKeyPrefix + sessionID
	if err := r.client.Set(ctx, key, time.Now().Format(time.RFC3339), ttl).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error touching session %s: %v", sessionID, err))
		return err
	}
	return nil
}

func (r *redisClient) SessionAlive(ctx context.Context, sessionID string) (bool, error) {
	key := sessionKeyPrefix + sessionID
	_, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		logrus.Error(fmt.Sprintf("Error checking session %s: %v", sessionID, err))
		return false, err
	}
	return true, nil
}

func (r *redisClient) DropSession(ctx context.Context, sessionID string) error {
	key := sessionKeyPrefix + sessionID
	if _, err := r.client.Del(ctx, key).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Error dropping session %s: %v", sessionID, err))
		return err
	}
	return nil
}

func (r *redisClient) CacheFeed(ctx context.Context, payload string, ttl time.Duration) error {
	if err := r.client.Set(ctx, feedCacheKey, payload, ttl).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error caching feed: %v", err))
		return err
	}
	return nil
}

func (r *redisClient) GetCachedFeed(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, feedCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", err
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading feed cache: %v", err))
		return "", err
	}
	return val, nil
}

func (r *redisClient) InvalidateFeed(ctx context.Context) error {
	if _, err := r.client.Del(ctx, feedCacheKey).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Error invalidating feed cache: %v", err))
		return err
	}
	return nil
}
