package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const sessionKeyPrefix = "storefront:session:"

type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	log    *logrus.Logger
}

// NewRedisClient connects and pings Redis before handing the client out.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger *logrus.Logger) domain.SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl, log: logger}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func (r *redisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if session == nil || session.Token == "" {
		return fmt.Errorf("%w: session token is empty", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.Token), data, r.ttl).Err(); err != nil {
		r.log.Errorf("SessionRepository: Failed to save session in redis: %v", err)
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) Get(ctx context.Context, token string) (*domain.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: session", domain.ErrNotFound)
	}
	if err != nil {
		r.log.Errorf("SessionRepository: Failed to read session from redis: %v", err)
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return decodeSession(data)
}

func (r *redisSessionRepository) Delete(ctx context.Context, token string) error {
	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		r.log.Errorf("SessionRepository: Failed to delete session from redis: %v", err)
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func decodeSession(data []byte) (*domain.Session, error) {
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if s.Cart == nil {
		s.Cart = domain.NewCartView()
	}
	return &s, nil
}
