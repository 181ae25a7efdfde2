package userstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/MrEthical07/consoleauth"
	"github.com/google/uuid"
)

func TestMemoryStoreUpsertAssignsStableID(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", DisplayName: "Administrator", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := uuid.Parse(first.UserID); err != nil {
		t.Fatalf("expected uuid id, got %q", first.UserID)
	}

	second, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", DisplayName: "Root", PasswordHash: "h2"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.UserID != first.UserID {
		t.Fatalf("id changed on upsert: %q -> %q", first.UserID, second.UserID)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 user, got %d", s.Len())
	}

	got, err := s.GetUserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.DisplayName != "Root" || got.PasswordHash != "h2" {
		t.Fatalf("upsert did not overwrite fields: %+v", got)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
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

func TestMemoryStoreUsernameIsCaseSensitive(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: "admin", PasswordHash: "h"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "Admin"); !errors.Is(err, consoleauth.ErrUserNotFound) {
		t.Fatalf("expected exact-match lookup, got %v", err)
	}
}

func TestMemoryStoreUpdatePasswordHash(t *testing.T) {
	s := NewMemoryStore()
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

func TestMemoryStoreConcurrentUpsert(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.UpsertUser(ctx, consoleauth.UpsertUserInput{Username: fmt.Sprintf("user-%d", i%4), PasswordHash: "h"})
		}(i)
	}
	wg.Wait()

	if s.Len() != 4 {
		t.Fatalf("expected 4 users, got %d", s.Len())
	}
}
