package identity

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Integration tests are opt-in and require VIDCORE_DATABASE_URL.

func mustOpenTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("VIDCORE_DATABASE_URL"))
	if dsn == "" {
		t.Skip("VIDCORE_DATABASE_URL not set; skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		t.Skipf("postgres unreachable: %v", err)
	}
	return pool
}

func mustCreateTestSchema(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()

	schema := fmt.Sprintf("vidcore_test_%d", rand.Int63())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE %s.accounts (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT NOT NULL,
			full_name TEXT NOT NULL,
			avatar_url TEXT NOT NULL,
			cover_image_url TEXT,
			password_hash TEXT NOT NULL,
			refresh_token_hash TEXT,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE UNIQUE INDEX accounts_username_key ON %s.accounts (username);
		CREATE UNIQUE INDEX accounts_email_key ON %s.accounts (lower(email));
	`, schema, schema, schema)
	if _, err := pool.Exec(ctx, ddl); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
	})

	return schema
}

func TestPostgresStore_CreateAccount_ConflictUsername_CaseInsensitive(t *testing.T) {
	setCheapHashing(t)

	pool := mustOpenTestPool(t)
	defer pool.Close()
	schema := mustCreateTestSchema(t, pool)

	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	_, err = s.CreateAccount(ctx, CreateAccountInput{
		FullName:  "Alice",
		Username:  "Alice",
		Email:     "alice@x.com",
		Password:  "very-strong-password-1",
		AvatarURL: "https://cdn.example.com/a.png",
	})
	if err != nil {
		t.Fatalf("create account 1: %v", err)
	}

	// Same username (case-insensitive) should conflict.
	_, err = s.CreateAccount(ctx, CreateAccountInput{
		FullName:  "Impostor",
		Username:  "aLiCe",
		Email:     "other@x.com",
		Password:  "very-strong-password-2",
		AvatarURL: "https://cdn.example.com/b.png",
	})
	if err == nil {
		t.Fatalf("expected conflict, got nil")
	}
	if !IsConflict(err) {
		t.Fatalf("expected conflict error, got: %v", err)
	}
}

func TestPostgresStore_RotateRefreshHash_SingleWinner(t *testing.T) {
	setCheapHashing(t)

	pool := mustOpenTestPool(t)
	defer pool.Close()
	schema := mustCreateTestSchema(t, pool)

	s, err := NewPostgresStore(pool, WithSchema(schema))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	now := time.Now().UTC()

	a, err := s.CreateAccount(ctx, CreateAccountInput{
		FullName:  "Alice",
		Username:  "alice",
		Email:     "alice@x.com",
		Password:  "very-strong-password-1",
		AvatarURL: "https://cdn.example.com/a.png",
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if err := s.SetRefreshHash(ctx, now, a.ID, "old-hash"); err != nil {
		t.Fatalf("set refresh hash: %v", err)
	}

	// Race N rotations of the same old hash; exactly one must win.
	const n = 8
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			errs <- s.RotateRefreshHash(ctx, now, a.ID, "old-hash", fmt.Sprintf("new-hash-%d", i))
		}(i)
	}

	wins := 0
	for i := 0; i < n; i++ {
		err := <-errs
		switch {
		case err == nil:
			wins++
		case IsNotActive(err):
		default:
			t.Fatalf("unexpected rotate error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 winning rotation, got %d", wins)
	}
}
