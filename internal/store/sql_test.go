package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yelo-o/Server-PokemonReviewAPI/internal/core"
)

func setupTestSQLStore(t *testing.T) *SQLPrincipalStore {
	t.Helper()
	ctx := context.Background()
	s, err := NewSQLPrincipalStore(ctx, DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("NewSQLPrincipalStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return s
}

func TestSQLPrincipalStore_LoadByUsername(t *testing.T) {
	s := setupTestSQLStore(t)
	ctx := context.Background()

	ash := core.Credential{
		Username:     "ash",
		PasswordHash: "$2a$10$hash",
		Authorities:  []string{"ROLE_ADMIN", "ROLE_USER"},
	}
	if err := s.Put(ctx, ash); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.LoadByUsername(ctx, "ash")
	if err != nil {
		t.Fatalf("LoadByUsername() error = %v", err)
	}
	if diff := cmp.Diff(ash, *got); diff != "" {
		t.Errorf("LoadByUsername() mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLPrincipalStore_NotFound(t *testing.T) {
	s := setupTestSQLStore(t)

	_, err := s.LoadByUsername(context.Background(), "gary")
	if !errors.Is(err, core.ErrPrincipalNotFound) {
		t.Errorf("LoadByUsername() error = %v, want %v", err, core.ErrPrincipalNotFound)
	}
}

func TestSQLPrincipalStore_PutReplaces(t *testing.T) {
	s := setupTestSQLStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, core.Credential{Username: "ash", PasswordHash: "old", Authorities: []string{"ROLE_ADMIN"}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := s.Put(ctx, core.Credential{Username: "ash", PasswordHash: "new"}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.LoadByUsername(ctx, "ash")
	if err != nil {
		t.Fatalf("LoadByUsername() error = %v", err)
	}
	if got.PasswordHash != "new" {
		t.Errorf("LoadByUsername() hash = %q, want %q", got.PasswordHash, "new")
	}
	if len(got.Authorities) != 0 {
		t.Errorf("LoadByUsername() authorities = %v, want none", got.Authorities)
	}
}

func TestSQLPrincipalStore_List(t *testing.T) {
	s := setupTestSQLStore(t)
	ctx := context.Background()

	for _, c := range []core.Credential{
		{Username: "misty", PasswordHash: "h1", Authorities: []string{"ROLE_USER"}},
		{Username: "ash", PasswordHash: "h2", Authorities: []string{"ROLE_USER", "ROLE_ADMIN"}},
	} {
		if err := s.Put(ctx, c); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	creds, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []core.Credential{
		{Username: "ash", PasswordHash: "h2", Authorities: []string{"ROLE_ADMIN", "ROLE_USER"}},
		{Username: "misty", PasswordHash: "h1", Authorities: []string{"ROLE_USER"}},
	}
	if diff := cmp.Diff(want, creds); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLPrincipalStore_CanceledContext(t *testing.T) {
	s := setupTestSQLStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.LoadByUsername(ctx, "ash")
	if err == nil {
		t.Fatal("LoadByUsername() with canceled context expected error")
	}
	if errors.Is(err, core.ErrPrincipalNotFound) {
		t.Error("LoadByUsername() with canceled context reported not found")
	}
}

func TestNewSQLPrincipalStore_UnknownDriver(t *testing.T) {
	if _, err := NewSQLPrincipalStore(context.Background(), "mysql", "dsn"); err == nil {
		t.Error("NewSQLPrincipalStore() with unknown driver expected error")
	}
}
