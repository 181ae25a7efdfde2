package userstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrEthical07/consoleauth"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps Redis command failures.
var ErrRedisUnavailable = errors.New("user store redis unavailable")

const (
	fieldID           = "id"
	fieldUsername     = "username"
	fieldDisplayName  = "display_name"
	fieldPasswordHash = "password_hash"
	fieldCreatedAt    = "created_at"
)

// KEYS[1] username index, KEYS[2] user hash for a new ID.
// The existing-user branch builds its key from ARGV, so the script touches a
// key it does not declare. That only works on a single node.
// ARGV: new id, user key prefix, username, display name, hash, created_at.
// Returns the user ID, existing or new.
const upsertUserScript = `
local id = redis.call("GET", KEYS[1])
local key = KEYS[2]
if not id then
  id = ARGV[1]
  redis.call("SET", KEYS[1], id)
  redis.call("HSET", key, "id", id, "username", ARGV[3], "created_at", ARGV[6])
else
  key = ARGV[2] .. id
end
redis.call("HSET", key, "display_name", ARGV[4], "password_hash", ARGV[5])
return id
`

var upsertUserLua = redis.NewScript(upsertUserScript)

const updatePasswordHashScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], "password_hash", ARGV[1])
return 1
`

var updatePasswordHashLua = redis.NewScript(updatePasswordHashScript)

// RedisStore is a Redis-backed user store.
//
// It requires a single Redis node or a replicated primary. Do not pass a
// *redis.ClusterClient: the upsert script writes a user hash whose key is
// derived inside the script, and the username index and user hash do not
// share a hash slot.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store under the given key prefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "consoleauth"
	}
	return &RedisStore{
		redis:  client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (s *RedisStore) userKeyPrefix() string {
	return s.prefix + ":u:"
}

func (s *RedisStore) userKey(userID string) string {
	return s.userKeyPrefix() + userID
}

func (s *RedisStore) usernameKey(username string) string {
	return s.prefix + ":n:" + username
}

// GetUserByUsername resolves the username index and loads the user hash.
// An unknown username returns [consoleauth.ErrUserNotFound].
func (s *RedisStore) GetUserByUsername(ctx context.Context, username string) (consoleauth.UserRecord, error) {
	id, err := s.redis.Get(ctx, s.usernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return consoleauth.UserRecord{}, consoleauth.ErrUserNotFound
		}
		return consoleauth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return s.GetUserByID(ctx, id)
}

// GetUserByID loads the user hash for userID.
func (s *RedisStore) GetUserByID(ctx context.Context, userID string) (consoleauth.UserRecord, error) {
	fields, err := s.redis.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return consoleauth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return consoleauth.UserRecord{}, consoleauth.ErrUserNotFound
	}

	return consoleauth.UserRecord{
		UserID:       fields[fieldID],
		Username:     fields[fieldUsername],
		DisplayName:  fields[fieldDisplayName],
		PasswordHash: fields[fieldPasswordHash],
	}, nil
}

// UpsertUser creates the user, or updates the display name and password hash
// of an existing one, in a single script. The ID and created_at of an
// existing user are kept.
func (s *RedisStore) UpsertUser(ctx context.Context, input consoleauth.UpsertUserInput) (consoleauth.UserRecord, error) {
	newID := uuid.NewString()
	id, err := upsertUserLua.Run(ctx, s.redis,
		[]string{s.usernameKey(input.Username), s.userKey(newID)},
		newID,
		s.userKeyPrefix(),
		input.Username,
		input.DisplayName,
		input.PasswordHash,
		strconv.FormatInt(s.now().Unix(), 10),
	).Text()
	if err != nil {
		return consoleauth.UserRecord{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return consoleauth.UserRecord{
		UserID:       id,
		Username:     input.Username,
		DisplayName:  input.DisplayName,
		PasswordHash: input.PasswordHash,
	}, nil
}

// UpdatePasswordHash replaces the stored hash. It returns
// [consoleauth.ErrUserNotFound] when the user hash does not exist.
func (s *RedisStore) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	updated, err := updatePasswordHashLua.Run(ctx, s.redis, []string{s.userKey(userID)}, passwordHash).Int()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if updated == 0 {
		return consoleauth.ErrUserNotFound
	}
	return nil
}

var _ consoleauth.UserProvider = (*RedisStore)(nil)
