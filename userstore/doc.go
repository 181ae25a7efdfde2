// Package userstore provides [consoleauth.UserProvider] implementations.
//
//   - [MemoryStore] keeps users in process memory. It suits tests and
//     single-process demos.
//   - [RedisStore] keeps one hash per user under <prefix>:u:<id> and a
//     username index under <prefix>:n:<username>.
//
// User IDs are random UUIDs assigned on first upsert and never change.
// Lookups of unknown users return [consoleauth.ErrUserNotFound].
package userstore
