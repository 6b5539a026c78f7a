package auth

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	defaultTTL       = 24 * time.Hour
)

// SessionStore maps session ids to user ids.
type SessionStore interface {
	// Create stores a new session for the user and returns its id.
	Create(ctx context.Context, userID int64) (string, error)
	// GetUserID resolves a session id; false when missing or expired.
	GetUserID(ctx context.Context, id string) (int64, bool)
	// Delete removes a session by id.
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions in redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a redis-backed session store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Create(ctx context.Context, userID int64) (string, error) {
	id := uuid.NewString()
	key := sessionKeyPrefix + id
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) GetUserID(ctx context.Context, id string) (int64, bool) {
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result()
	if err != nil {
		return 0, false
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return userID, true
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err()
}

type memorySession struct {
	userID    int64
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Used when no redis is
// configured; sessions do not survive a restart.
type MemoryStore struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]memorySession
}

// NewMemoryStore returns an in-memory session store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{ttl: ttl, sessions: make(map[string]memorySession)}
}

func (s *MemoryStore) Create(_ context.Context, userID int64) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = memorySession{userID: userID, expiresAt: time.Now().Add(s.ttl)}
	return id, nil
}

func (s *MemoryStore) GetUserID(_ context.Context, id string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return 0, false
	}
	if time.Now().After(sess.expiresAt) {
		delete(s.sessions, id)
		return 0, false
	}
	return sess.userID, true
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
