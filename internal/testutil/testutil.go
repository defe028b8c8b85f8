package testutil

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/formapi/formapi/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// AssertFormEqual fails the test when two forms differ in any stored field.
func AssertFormEqual(t testing.TB, want, got *model.Form) {
	t.Helper()
	if want == nil || got == nil {
		if want != got {
			t.Fatalf("form mismatch: want %+v, got %+v", want, got)
		}
		return
	}
	if want.ID != got.ID {
		t.Errorf("id: want %q, got %q", want.ID, got.ID)
	}
	for _, field := range model.RequiredFields {
		if want.Value(field) != got.Value(field) {
			t.Errorf("%s: want %q, got %q", field, want.Value(field), got.Value(field))
		}
	}
	if !want.CreatedAt.Equal(got.CreatedAt) {
		t.Errorf("createdAt: want %v, got %v", want.CreatedAt, got.CreatedAt)
	}
	if !want.UpdatedAt.Equal(got.UpdatedAt) {
		t.Errorf("updatedAt: want %v, got %v", want.UpdatedAt, got.UpdatedAt)
	}
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}
