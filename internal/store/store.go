// Package store holds the authoritative in-memory todo collection for the
// currently selected user. Every mutation is mirrored to the storage layer
// under that user's key; derived views are recomputed from the live
// collection on every read.
package store

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"taskboard/internal/domain"
	"taskboard/internal/storage"
)

var ErrNotFound = errors.New("not found")

// Patch is a partial update: nil = leave as is, value = set.
// Identity fields (id, createdBy, createdAt) are not patchable.
type Patch struct {
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	AssignedTo  *int64
}

// Stats is the derived summary of the current collection.
type Stats struct {
	Total          int
	Completed      int
	InProgress     int
	Pending        int
	HighPriority   int
	CompletionRate float64
}

// Options configures a Store.
type Options struct {
	// Latency is slept before each collection operation, standing in for
	// the round trip of a future real backend. Zero disables it.
	Latency time.Duration
	// DefaultUserID is the scope used when storage has no current-user key.
	DefaultUserID int64
	Logger        *slog.Logger
}

// Store is the single writer of the todo collection and its persisted
// mirror. Safe for concurrent use; the mutation step of every operation is
// atomic under the lock even when the surrounding latency is not.
type Store struct {
	st      storage.Storage
	log     *slog.Logger
	latency time.Duration
	defUser int64

	sf singleflight.Group // dedupes storage loads per user key

	mu     sync.Mutex
	userID int64
	todos  []domain.Todo
	lastID int64
}

// New returns an uninitialized Store; call Init before use.
func New(st storage.Storage, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	defUser := opts.DefaultUserID
	if defUser == 0 {
		defUser = 1
	}
	return &Store{
		st:      st,
		log:     logger,
		latency: opts.Latency,
		defUser: defUser,
	}
}

// Init selects the persisted current user, or the default when no
// current-user key exists, and loads that user's collection.
func (s *Store) Init(ctx context.Context) {
	userID, ok := s.st.LoadCurrentUser(ctx)
	if !ok {
		userID = s.defUser
	}
	s.switchTo(ctx, userID, !ok)
}

// CurrentUser returns the active user scope.
func (s *Store) CurrentUser() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// SetCurrentUser switches the active user scope: persists the new id,
// discards the in-memory collection and reloads it from that user's
// persisted slice. Missing data is an empty collection; this cannot fail.
func (s *Store) SetCurrentUser(ctx context.Context, userID int64) {
	s.switchTo(ctx, userID, true)
}

func (s *Store) switchTo(ctx context.Context, userID int64, persist bool) {
	if persist {
		if err := s.st.SaveCurrentUser(ctx, userID); err != nil {
			s.log.Warn("persist current user", "userID", userID, "err", err)
		}
	}
	// Concurrent switches to the same user share one storage read.
	key := storage.TodosKey(userID)
	v, _, _ := s.sf.Do(key, func() (any, error) {
		return s.st.LoadTodos(ctx, userID), nil
	})
	todos := v.([]domain.Todo)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.userID = userID
	s.todos = todos
	for i := range todos {
		if todos[i].ID > s.lastID {
			s.lastID = todos[i].ID
		}
	}
}

// GetAll returns the full collection in insertion order.
func (s *Store) GetAll(ctx context.Context) []domain.Todo {
	s.delay()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

// GetByID returns the matching record, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id int64) (domain.Todo, error) {
	s.delay()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			return s.todos[i], nil
		}
	}
	return domain.Todo{}, ErrNotFound
}

// Create appends a new record: status always starts at todo, both
// timestamps are stamped identically, createdBy is the active user.
func (s *Store) Create(ctx context.Context, title, description string, priority domain.Priority, assignedTo int64) domain.Todo {
	s.delay()
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	t := domain.Todo{
		ID:          s.nextID(now),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      domain.StatusTodo,
		Priority:    priority,
		AssignedTo:  assignedTo,
		CreatedBy:   s.userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.todos = append(s.todos, t)
	s.mirror(ctx)
	return t
}

// Update merges the patch onto the matching record and refreshes
// updatedAt. Returns ErrNotFound when no record matches.
func (s *Store) Update(ctx context.Context, id int64, patch Patch) (domain.Todo, error) {
	s.delay()
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID != id {
			continue
		}
		t := s.todos[i]
		if patch.Title != nil {
			t.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			t.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.AssignedTo != nil {
			t.AssignedTo = *patch.AssignedTo
		}
		t.UpdatedAt = now
		s.todos[i] = t
		s.mirror(ctx)
		return t, nil
	}
	return domain.Todo{}, ErrNotFound
}

// Delete removes the matching record. Reports whether a removal happened;
// repeated deletes of the same id report false after the first.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.delay()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			s.mirror(ctx)
			return true
		}
	}
	return false
}

// ByStatus returns the subset with the given status, insertion order.
func (s *Store) ByStatus(status domain.Status) []domain.Todo {
	return s.filter(func(t domain.Todo) bool { return t.Status == status })
}

// ByPriority returns the subset with the given priority, insertion order.
func (s *Store) ByPriority(priority domain.Priority) []domain.Todo {
	return s.filter(func(t domain.Todo) bool { return t.Priority == priority })
}

// Completed returns the done subset.
func (s *Store) Completed() []domain.Todo { return s.ByStatus(domain.StatusDone) }

// Pending returns the not-yet-started subset.
func (s *Store) Pending() []domain.Todo { return s.ByStatus(domain.StatusTodo) }

// InProgress returns the in-progress subset.
func (s *Store) InProgress() []domain.Todo { return s.ByStatus(domain.StatusInProgress) }

// HighPriority returns the high-priority subset.
func (s *Store) HighPriority() []domain.Todo { return s.ByPriority(domain.PriorityHigh) }

// Stats recomputes the aggregate summary from the live collection.
// CompletionRate is completed/total as a percentage, 0 for an empty
// collection.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{Total: len(s.todos)}
	for i := range s.todos {
		switch s.todos[i].Status {
		case domain.StatusDone:
			st.Completed++
		case domain.StatusInProgress:
			st.InProgress++
		case domain.StatusTodo:
			st.Pending++
		}
		if s.todos[i].Priority == domain.PriorityHigh {
			st.HighPriority++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	}
	return st
}

func (s *Store) filter(keep func(domain.Todo) bool) []domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Todo
	for i := range s.todos {
		if keep(s.todos[i]) {
			out = append(out, s.todos[i])
		}
	}
	return out
}

// nextID assigns wall-clock millisecond ids with a monotonic guard, so
// rapid successive creations within the same millisecond cannot collide.
// Callers must hold the lock.
func (s *Store) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// mirror serializes the full collection to storage under the active user's
// key. Failures are logged and never abort the in-flight mutation: the
// in-memory state stays authoritative. Callers must hold the lock.
func (s *Store) mirror(ctx context.Context) {
	if err := s.st.SaveTodos(ctx, s.userID, s.todos); err != nil {
		s.log.Warn("persist todos", "userID", s.userID, "err", err)
	}
}

// delay simulates the round trip of a future real backend.
func (s *Store) delay() {
	if s.latency > 0 {
		time.Sleep(s.latency)
	}
}
