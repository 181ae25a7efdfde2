package consoleauth

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// Generated by the previous console release for "admin123456".
const legacyAdminHash = "scrypt$00112233445566778899aabbccddeeff$62d5d8688d298621e6f9dfdb2915837ef3c9d195c5fbc6bdf05ecd8c6b404fcbf1c9f8a918ad685561e691b808046b3ec3f6e7333bd6b746249780177e7d41e0"

var testSecret = []byte("test-secret-0123456789abcdef0123")

type mockUserProvider struct {
	mu      sync.Mutex
	users   map[string]UserRecord
	byName  map[string]string
	nextID  int
	lookErr error
}

func newMockUserProvider() *mockUserProvider {
	return &mockUserProvider{
		users:  map[string]UserRecord{},
		byName: map[string]string{},
	}
}

func (m *mockUserProvider) add(user UserRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[user.UserID] = user
	m.byName[user.Username] = user.UserID
}

func (m *mockUserProvider) GetUserByUsername(_ context.Context, username string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lookErr != nil {
		return UserRecord{}, m.lookErr
	}
	id, ok := m.byName[username]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return m.users[id], nil
}

func (m *mockUserProvider) GetUserByID(_ context.Context, userID string) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return UserRecord{}, ErrUserNotFound
	}
	return user, nil
}

func (m *mockUserProvider) UpsertUser(_ context.Context, input UpsertUserInput) (UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.byName[input.Username]; ok {
		user := m.users[id]
		user.PasswordHash = input.PasswordHash
		user.DisplayName = input.DisplayName
		m.users[id] = user
		return user, nil
	}
	m.nextID++
	user := UserRecord{
		UserID:       "u" + strconv.Itoa(m.nextID),
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
	}
	m.users[user.UserID] = user
	m.byName[user.Username] = user.UserID
	return user, nil
}

func (m *mockUserProvider) UpdatePasswordHash(_ context.Context, userID, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = passwordHash
	m.users[userID] = user
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = testSecret
	cfg.Metrics.Enabled = true
	return cfg
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

// adminProvider holds the legacy admin user (admin / admin123456).
func adminProvider() *mockUserProvider {
	up := newMockUserProvider()
	up.add(UserRecord{
		UserID:       "u-admin",
		Username:     "admin",
		DisplayName:  "Administrator",
		PasswordHash: legacyAdminHash,
	})
	return up
}

func buildTestEngine(t *testing.T, cfg Config, up UserProvider, opts ...func(*Builder)) *Engine {
	t.Helper()

	b := New().WithConfig(cfg).WithUserProvider(up)
	for _, opt := range opts {
		opt(b)
	}
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func withClock(now func() time.Time) func(*Builder) {
	return func(b *Builder) { b.WithClock(now) }
}
