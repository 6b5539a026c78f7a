package service

import (
	"context"
	"errors"
	"testing"

	"taskboard/internal/domain"
	"taskboard/internal/storage"
)

func newTestService(t *testing.T) (*UserService, storage.Storage) {
	t.Helper()
	fs, err := storage.NewFileStorage(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	svc := NewUserService(fs, nil)
	svc.Init(context.Background())
	return svc, fs
}

func TestRegisterAndValidate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if u.Role != domain.RoleUser {
		t.Errorf("Role = %q, want %q", u.Role, domain.RoleUser)
	}
	if u.PasswordHash == "s3cret" {
		t.Error("password stored in plain text")
	}

	got, err := svc.ValidateCredentials(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("ValidateCredentials failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("validated user ID = %d, want %d", got.ID, u.ID)
	}

	if _, err := svc.ValidateCredentials(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.ValidateCredentials(ctx, "nobody", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: got %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "bob", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "other"); !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("duplicate register: got %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterRejectsEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "  ", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("blank username: got %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Register(ctx, "carol", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestSeedAdminIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.SeedAdmin(ctx, "admin", "admin"); err != nil {
		t.Fatalf("SeedAdmin failed: %v", err)
	}
	if err := svc.SeedAdmin(ctx, "admin", "other"); err != nil {
		t.Fatalf("second SeedAdmin failed: %v", err)
	}

	users := svc.List(ctx)
	if len(users) != 1 {
		t.Fatalf("List: got %d users, want 1", len(users))
	}
	if !users[0].IsAdmin() {
		t.Errorf("seeded user role = %q, want admin", users[0].Role)
	}

	// The original password still works after the no-op reseed.
	if _, err := svc.ValidateCredentials(ctx, "admin", "admin"); err != nil {
		t.Errorf("ValidateCredentials after reseed: %v", err)
	}
}

func TestAccountsSurviveRestart(t *testing.T) {
	fs, err := storage.NewFileStorage(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewFileStorage failed: %v", err)
	}
	ctx := context.Background()

	svc := NewUserService(fs, nil)
	svc.Init(ctx)
	u, err := svc.Register(ctx, "dave", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	reopened := NewUserService(fs, nil)
	reopened.Init(ctx)
	got, err := reopened.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID after reopen: %v", err)
	}
	if got.Username != "dave" {
		t.Errorf("Username = %q, want %q", got.Username, "dave")
	}

	// New registrations must not reuse the persisted id.
	other, err := reopened.Register(ctx, "erin", "pw")
	if err != nil {
		t.Fatalf("Register after reopen: %v", err)
	}
	if other.ID <= u.ID {
		t.Errorf("new id %d not greater than persisted %d", other.ID, u.ID)
	}
}
