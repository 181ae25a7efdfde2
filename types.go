package consoleauth

import (
	"context"
	"io"
	"log/slog"
	"time"

	internalaudit "github.com/MrEthical07/consoleauth/internal/audit"
	"github.com/MrEthical07/consoleauth/jwt"
)

// UserProvider is the user store the Engine reads credentials from and
// writes provisioned users and password changes to. Lookups return
// [ErrUserNotFound] (possibly wrapped) when no user matches.
//
// Username matching is exact; the Engine trims surrounding whitespace first.
type UserProvider interface {
	GetUserByUsername(ctx context.Context, username string) (UserRecord, error)
	GetUserByID(ctx context.Context, userID string) (UserRecord, error)
	UpsertUser(ctx context.Context, input UpsertUserInput) (UserRecord, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
}

// UserRecord is one stored console user.
type UserRecord struct {
	UserID       string
	Username     string
	DisplayName  string
	PasswordHash string
}

// UpsertUserInput creates the user named Username, or replaces the hash and
// display name of an existing one. The user ID never changes on update.
type UpsertUserInput struct {
	Username     string
	DisplayName  string
	PasswordHash string
}

// UserInfo is the public projection of a user returned after login.
type UserInfo struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	AccessToken string   `json:"accessToken"`
	User        UserInfo `json:"user"`
}

// AuthResult is returned by [Engine.Authenticate].
type AuthResult struct {
	UserID    string
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Claims holds every verified claim, including ones the Engine does not
	// interpret.
	Claims jwt.Claims
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that writes events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink]. A nil logger means [slog.Default].
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return internalaudit.NewSlogSink(logger)
}
