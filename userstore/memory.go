package userstore

import (
	"context"
	"sync"

	"github.com/MrEthical07/consoleauth"
	"github.com/google/uuid"
)

// MemoryStore is an in-memory user store safe for concurrent use.
type MemoryStore struct {
	mu         sync.RWMutex
	byID       map[string]consoleauth.UserRecord
	byUsername map[string]string
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:       make(map[string]consoleauth.UserRecord),
		byUsername: make(map[string]string),
	}
}

// GetUserByUsername returns the user stored under username, or
// [consoleauth.ErrUserNotFound].
func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (consoleauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return consoleauth.UserRecord{}, consoleauth.ErrUserNotFound
	}
	return s.byID[id], nil
}

// GetUserByID returns the user with userID, or [consoleauth.ErrUserNotFound].
func (s *MemoryStore) GetUserByID(_ context.Context, userID string) (consoleauth.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.byID[userID]
	if !ok {
		return consoleauth.UserRecord{}, consoleauth.ErrUserNotFound
	}
	return user, nil
}

// UpsertUser creates the user with a new UUID, or updates the display name
// and password hash of the existing user with that username.
func (s *MemoryStore) UpsertUser(_ context.Context, input consoleauth.UpsertUserInput) (consoleauth.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byUsername[input.Username]; ok {
		user := s.byID[id]
		user.DisplayName = input.DisplayName
		user.PasswordHash = input.PasswordHash
		s.byID[id] = user
		return user, nil
	}

	user := consoleauth.UserRecord{
		UserID:       uuid.NewString(),
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
	}
	s.byID[user.UserID] = user
	s.byUsername[user.Username] = user.UserID
	return user, nil
}

// UpdatePasswordHash replaces the stored hash for userID.
func (s *MemoryStore) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[userID]
	if !ok {
		return consoleauth.ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	s.byID[userID] = user
	return nil
}

// Len returns the number of stored users.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

var _ consoleauth.UserProvider = (*MemoryStore)(nil)
