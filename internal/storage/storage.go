// Package storage is the durability boundary: it mirrors the in-memory
// collections to a key-value store, one key per user. The in-memory state
// is always authoritative; a persisted payload that is missing or fails to
// parse loads as empty and is never an error to the caller.
package storage

import (
	"context"
	"strconv"

	"taskboard/internal/domain"
)

const (
	todosKeyPrefix = "todos_user_"
	currentUserKey = "currentUserId"
	usersKey       = "users"
)

// Storage persists todo collections keyed per user, the selected
// current-user id, and the user accounts.
type Storage interface {
	// LoadTodos returns the persisted collection for the user, or an
	// empty slice when the key is absent or the payload is malformed.
	LoadTodos(ctx context.Context, userID int64) []domain.Todo
	// SaveTodos overwrites the user's persisted collection.
	SaveTodos(ctx context.Context, userID int64, todos []domain.Todo) error

	// LoadCurrentUser returns the persisted current-user id, false when unset.
	LoadCurrentUser(ctx context.Context) (int64, bool)
	SaveCurrentUser(ctx context.Context, userID int64) error

	LoadUsers(ctx context.Context) []domain.User
	SaveUsers(ctx context.Context, users []domain.User) error
}

// TodosKey derives the storage key for a user's collection.
func TodosKey(userID int64) string {
	return todosKeyPrefix + strconv.FormatInt(userID, 10)
}
