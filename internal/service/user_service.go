package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/domain"
	"taskboard/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

// UserService handles user accounts and auth logic. Accounts live in
// memory and are mirrored to storage on every mutation, like the todo
// collection.
type UserService struct {
	st  storage.Storage
	log *slog.Logger

	mu     sync.Mutex
	users  []domain.User
	lastID int64
}

// NewUserService returns a UserService; call Init before use.
func NewUserService(st storage.Storage, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &UserService{st: st, log: logger}
}

// Init loads the persisted accounts.
func (s *UserService) Init(ctx context.Context) {
	users := s.st.LoadUsers(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
	for i := range users {
		if users[i].ID > s.lastID {
			s.lastID = users[i].ID
		}
	}
}

// ValidateCredentials checks username and password; returns the user if valid.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	u, ok := s.byUsername(username)
	if !ok {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Register creates a new regular user with a hashed password.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.User, error) {
	return s.create(ctx, username, password, domain.RoleUser)
}

// SeedAdmin creates the admin account if no user with that name exists.
func (s *UserService) SeedAdmin(ctx context.Context, username, password string) error {
	if _, ok := s.byUsername(username); ok {
		return nil
	}
	_, err := s.create(ctx, username, password, domain.RoleAdmin)
	if errors.Is(err, ErrUsernameTaken) {
		return nil
	}
	return err
}

// GetByID returns the user with the given id, or ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			return s.users[i], nil
		}
	}
	return domain.User{}, ErrUserNotFound
}

// List returns all accounts, insertion order.
func (s *UserService) List(ctx context.Context) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out
}

func (s *UserService) create(ctx context.Context, username, password string, role domain.Role) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Username == username {
			return domain.User{}, ErrUsernameTaken
		}
	}
	s.lastID++
	u := domain.User{
		ID:           s.lastID,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	s.users = append(s.users, u)
	if err := s.st.SaveUsers(ctx, s.users); err != nil {
		s.log.Warn("persist users", "err", err)
	}
	return u, nil
}

func (s *UserService) byUsername(username string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Username == username {
			return s.users[i], true
		}
	}
	return domain.User{}, false
}
