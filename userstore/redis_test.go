package userstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/consoleauth"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s := NewRedisStore(rdb, "test")
	s.now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	return s, mr
}

func TestRedisStoreUpsertAndLookup(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	created, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", DisplayName: "Administrator", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if got, _ := mr.Get("test:n:admin"); got != created.UserID {
		t.Fatalf("username index = %q, want %q", got, created.UserID)
	}
	if got := mr.HGet("test:u:"+created.UserID, "created_at"); got != "1700000000" {
		t.Fatalf("created_at = %q", got)
	}

	byName, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("by username: %v", err)
	}
	if byName != created {
		t.Fatalf("lookup mismatch: %+v vs %+v", byName, created)
	}

	byID, err := s.GetUserByID(ctx, created.UserID)
	if err != nil {
		t.Fatalf("by id: %v", err)
	}
	if byID != created {
		t.Fatalf("lookup mismatch: %+v vs %+v", byID, created)
	}
}

func TestRedisStoreUpsertKeepsID(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", DisplayName: "A", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	mr.HSet("test:u:"+first.UserID, "created_at", "42")

	second, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", DisplayName: "B", PasswordHash: "h2"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("id changed: %q -> %q", first.UserID, second.UserID)
	}
	if got := mr.HGet("test:u:"+first.UserID, "created_at"); got != "42" {
		t.Fatalf("created_at overwritten: %q", got)
	}

	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.DisplayName != "B" || got.PasswordHash != "h2" {
		t.Fatalf("fields not updated: %+v", got)
	}

	if n := len(mr.Keys()); n != 2 {
		t.Fatalf("expected 2 keys, got %d: %v", n, mr.Keys())
	}
}

func TestRedisStoreNotFound(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if _, err := s.GetUserByUsername(ctx, "ghost"); !errors.Is(err, consoleauth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, consoleauth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "missing", "h"); !errors.Is(err, consoleauth.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRedisStoreUpdatePasswordHash(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	user, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", PasswordHash: "old"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, user.UserID, "new"); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := s.GetUserByID(ctx, user.UserID)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.PasswordHash != "new" {
		t.Fatalf("expected new hash, got %q", got.PasswordHash)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()
	ctx := context.Background()

	if _, err := s.GetUserByUsername(ctx, "admin"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if _, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin"}); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := s.UpdatePasswordHash(ctx, "id", "h"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}

func TestRedisStoreBacksEngineLogin(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := NewRedisStore(rdb, "test")
	cfg := consoleauth.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	engine, err := consoleauth.New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserProvider(store).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)

	ctx := context.Background()
	user, err := engine.ProvisionUser(ctx, "admin", "admin123456", "Administrator")
	if err != nil {
		t.Fatalf("provision: %v", err)
	}

	res, err := engine.Login(ctx, "admin", "admin123456")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.User.ID != user.UserID {
		t.Fatalf("login user id = %q, want %q", res.User.ID, user.UserID)
	}

	auth, err := engine.Authenticate(ctx, res.AccessToken)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if auth.UserID != user.UserID {
		t.Fatalf("auth user id = %q", auth.UserID)
	}
}
