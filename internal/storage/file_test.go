package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"taskboard/internal/domain"
)

func newTestFileStorage(t *testing.T) (*FileStorage, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFileStorage(dir, nil)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	return fs, dir
}

func TestTodosRoundTrip(t *testing.T) {
	fs, _ := newTestFileStorage(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Millisecond)
	todos := []domain.Todo{
		{
			ID:         1700000000000,
			Title:      "persisted",
			Status:     domain.StatusInProgress,
			Priority:   domain.PriorityHigh,
			AssignedTo: 2,
			CreatedBy:  1,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}
	if err := fs.SaveTodos(ctx, 1, todos); err != nil {
		t.Fatalf("SaveTodos failed: %v", err)
	}

	loaded := fs.LoadTodos(ctx, 1)
	if len(loaded) != 1 {
		t.Fatalf("LoadTodos: got %d todos, want 1", len(loaded))
	}
	got := loaded[0]
	if got.ID != todos[0].ID || got.Title != "persisted" || got.Status != domain.StatusInProgress {
		t.Errorf("loaded = %+v, want %+v", got, todos[0])
	}
	if !got.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, now)
	}
}

func TestLoadMissingKeyIsEmpty(t *testing.T) {
	fs, _ := newTestFileStorage(t)
	if got := fs.LoadTodos(context.Background(), 99); len(got) != 0 {
		t.Errorf("LoadTodos missing key: got %d todos, want 0", len(got))
	}
	if got := fs.LoadUsers(context.Background()); len(got) != 0 {
		t.Errorf("LoadUsers missing key: got %d users, want 0", len(got))
	}
	if _, ok := fs.LoadCurrentUser(context.Background()); ok {
		t.Error("LoadCurrentUser missing key: got ok, want false")
	}
}

func TestMalformedPayloadIsEmpty(t *testing.T) {
	fs, dir := newTestFileStorage(t)
	path := filepath.Join(dir, TodosKey(1)+".json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"`), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if got := fs.LoadTodos(context.Background(), 1); len(got) != 0 {
		t.Errorf("LoadTodos malformed payload: got %d todos, want 0", len(got))
	}
}

func TestKeyIsolation(t *testing.T) {
	fs, _ := newTestFileStorage(t)
	ctx := context.Background()

	if err := fs.SaveTodos(ctx, 1, []domain.Todo{{ID: 1, Title: "mine"}}); err != nil {
		t.Fatalf("SaveTodos failed: %v", err)
	}
	if got := fs.LoadTodos(ctx, 2); len(got) != 0 {
		t.Errorf("user 2 sees user 1's todos: %+v", got)
	}
}

func TestCurrentUserKey(t *testing.T) {
	fs, dir := newTestFileStorage(t)
	ctx := context.Background()

	if err := fs.SaveCurrentUser(ctx, 42); err != nil {
		t.Fatalf("SaveCurrentUser failed: %v", err)
	}
	id, ok := fs.LoadCurrentUser(ctx)
	if !ok || id != 42 {
		t.Errorf("LoadCurrentUser = (%d, %v), want (42, true)", id, ok)
	}

	// The id is stored as plain text.
	b, err := os.ReadFile(filepath.Join(dir, "currentUserId"))
	if err != nil {
		t.Fatalf("read current-user file: %v", err)
	}
	if string(b) != "42" {
		t.Errorf("current-user payload = %q, want %q", b, "42")
	}

	if err := os.WriteFile(filepath.Join(dir, "currentUserId"), []byte("not a number"), 0o644); err != nil {
		t.Fatalf("write garbage: %v", err)
	}
	if _, ok := fs.LoadCurrentUser(ctx); ok {
		t.Error("LoadCurrentUser malformed payload: got ok, want false")
	}
}

func TestUsersRoundTrip(t *testing.T) {
	fs, _ := newTestFileStorage(t)
	ctx := context.Background()

	users := []domain.User{
		{ID: 1, Username: "admin", Role: domain.RoleAdmin},
		{ID: 2, Username: "alice", Role: domain.RoleUser},
	}
	if err := fs.SaveUsers(ctx, users); err != nil {
		t.Fatalf("SaveUsers failed: %v", err)
	}
	loaded := fs.LoadUsers(ctx)
	if len(loaded) != 2 {
		t.Fatalf("LoadUsers: got %d users, want 2", len(loaded))
	}
	if loaded[0].Username != "admin" || loaded[0].Role != domain.RoleAdmin {
		t.Errorf("loaded[0] = %+v, want the admin account", loaded[0])
	}
}
