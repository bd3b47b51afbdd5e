package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stone-realestate/leadops/internal/usecase"
	"go.uber.org/zap"
)

const (
	KeyPrefix  = "leadops:session:"
	DefaultTTL = 12 * time.Hour
)

var _ usecase.SessionStore = (*RedisStore)(nil)

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore keeps sessions as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger.With(zap.String("component", "session"))}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (s *RedisStore) Save(ctx context.Context, session usecase.Session) error {
	if session.ID == "" {
		return errors.New("session id is required")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Get returns usecase.ErrSessionNotFound for unknown or expired ids and
// extends the TTL of sessions that are found.
func (s *RedisStore) Get(ctx context.Context, id string) (usecase.Session, error) {
	raw, err := s.client.Get(ctx, key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return usecase.Session{}, usecase.ErrSessionNotFound
		}
		return usecase.Session{}, fmt.Errorf("redis get session: %w", err)
	}

	var session usecase.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		s.logger.Warn("dropping unreadable session", zap.String("session_id", id), zap.Error(err))
		_ = s.client.Del(ctx, key(id)).Err()
		return usecase.Session{}, usecase.ErrSessionNotFound
	}

	if err := s.client.Expire(ctx, key(id), s.ttl).Err(); err != nil {
		s.logger.Warn("failed to extend session", zap.String("session_id", id), zap.Error(err))
	}
	return session, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

func key(id string) string {
	return KeyPrefix + id
}
