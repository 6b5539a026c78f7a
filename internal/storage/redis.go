package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"taskboard/internal/domain"
)

// RedisStorage mirrors the collections to redis under the same key scheme
// as FileStorage. Keys are written without TTL: this is the durable mirror,
// not a cache.
type RedisStorage struct {
	rdb *redis.Client
	log *slog.Logger
}

// NewRedisStorage returns a redis-backed Storage.
func NewRedisStorage(rdb *redis.Client, logger *slog.Logger) *RedisStorage {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &RedisStorage{rdb: rdb, log: logger}
}

func (s *RedisStorage) LoadTodos(ctx context.Context, userID int64) []domain.Todo {
	var todos []domain.Todo
	if !s.loadJSON(ctx, TodosKey(userID), &todos) {
		return nil
	}
	return todos
}

func (s *RedisStorage) SaveTodos(ctx context.Context, userID int64, todos []domain.Todo) error {
	return s.saveJSON(ctx, TodosKey(userID), todos)
}

func (s *RedisStorage) LoadCurrentUser(ctx context.Context) (int64, bool) {
	raw, err := s.rdb.Get(ctx, currentUserKey).Result()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("read current-user key", "err", err)
		}
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		s.log.Warn("malformed current-user key, ignoring", "err", err)
		return 0, false
	}
	return id, true
}

func (s *RedisStorage) SaveCurrentUser(ctx context.Context, userID int64) error {
	if err := s.rdb.Set(ctx, currentUserKey, strconv.FormatInt(userID, 10), 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", currentUserKey, err)
	}
	return nil
}

func (s *RedisStorage) LoadUsers(ctx context.Context) []domain.User {
	var users []domain.User
	if !s.loadJSON(ctx, usersKey, &users) {
		return nil
	}
	return users
}

func (s *RedisStorage) SaveUsers(ctx context.Context, users []domain.User) error {
	return s.saveJSON(ctx, usersKey, users)
}

func (s *RedisStorage) loadJSON(ctx context.Context, key string, v any) bool {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("read key", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		s.log.Warn("malformed payload, treating as empty", "key", key, "err", err)
		return false
	}
	return true
}

func (s *RedisStorage) saveJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := s.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
