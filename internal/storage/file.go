package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"taskboard/internal/domain"
)

// FileStorage keeps one file per key under a data directory: JSON arrays
// for the collections, the current-user id as plain text.
type FileStorage struct {
	dir string
	log *slog.Logger
}

// NewFileStorage creates the data directory if needed.
func NewFileStorage(dir string, logger *slog.Logger) (*FileStorage, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	return &FileStorage{dir: dir, log: logger}, nil
}

func (s *FileStorage) LoadTodos(_ context.Context, userID int64) []domain.Todo {
	var todos []domain.Todo
	if !s.loadJSON(TodosKey(userID), &todos) {
		return nil
	}
	return todos
}

func (s *FileStorage) SaveTodos(_ context.Context, userID int64, todos []domain.Todo) error {
	return s.saveJSON(TodosKey(userID), todos)
}

func (s *FileStorage) LoadCurrentUser(_ context.Context) (int64, bool) {
	b, err := os.ReadFile(filepath.Join(s.dir, currentUserKey))
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		s.log.Warn("malformed current-user key, ignoring", "err", err)
		return 0, false
	}
	return id, true
}

func (s *FileStorage) SaveCurrentUser(_ context.Context, userID int64) error {
	path := filepath.Join(s.dir, currentUserKey)
	if err := os.WriteFile(path, []byte(strconv.FormatInt(userID, 10)), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", currentUserKey, err)
	}
	return nil
}

func (s *FileStorage) LoadUsers(_ context.Context) []domain.User {
	var users []domain.User
	if !s.loadJSON(usersKey, &users) {
		return nil
	}
	return users
}

func (s *FileStorage) SaveUsers(_ context.Context, users []domain.User) error {
	return s.saveJSON(usersKey, users)
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// loadJSON reads the key into v. Reports false when the key is absent or
// the payload is malformed; callers must then discard v.
func (s *FileStorage) loadJSON(key string, v any) bool {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		s.log.Warn("malformed payload, treating as empty", "key", key, "err", err)
		return false
	}
	return true
}

func (s *FileStorage) saveJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), b, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
