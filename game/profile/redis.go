package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/wricardo/keyquest/game/engine"
)

const (
	keyPrefix = "keyquest:profile:"
	skinField = "skin"
)

// RedisStore keeps profiles in a Redis hash per user
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore connects to the given address or redis:// URL and pings it
func NewRedisStore(ctx context.Context, addr string) (*RedisStore, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.WithField("addr", opt.Addr).Info("Connected to Redis profile store")
	return &RedisStore{client: client}, nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func profileKey(userID string) string {
	return keyPrefix + userID
}

func (s *RedisStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	skin, err := s.Skin(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Profile{UserID: userID, Skin: skin}, nil
}

func (s *RedisStore) SetSkin(ctx context.Context, userID, skin string) (*Profile, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validateSkin(skin); err != nil {
		return nil, err
	}

	if err := s.client.HSet(ctx, profileKey(userID), skinField, skin).Err(); err != nil {
		log.WithError(err).WithField("user", userID).Error("Redis HSET failed")
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	log.WithFields(log.Fields{"user": userID, "skin": skin}).Debug("Skin updated")
	return &Profile{UserID: userID, Skin: skin}, nil
}

func (s *RedisStore) Skin(ctx context.Context, userID string) (string, error) {
	if err := validateUserID(userID); err != nil {
		return "", err
	}

	skin, err := s.client.HGet(ctx, profileKey(userID), skinField).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return engine.DefaultSkin, nil
		}
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	// A stale value from an older skin set falls back to the default
	if !engine.IsSkin(skin) {
		log.WithFields(log.Fields{"user": userID, "skin": skin}).Warn("Ignoring unknown stored skin")
		return engine.DefaultSkin, nil
	}
	return skin, nil
}

// Close releases the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}
