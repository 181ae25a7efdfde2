package consoleauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	internalaudit "github.com/MrEthical07/consoleauth/internal/audit"
	"github.com/MrEthical07/consoleauth/internal/rate"
	"github.com/MrEthical07/consoleauth/jwt"
	"github.com/MrEthical07/consoleauth/password"
)

// Verified against when the username is unknown so that a missing user costs
// the same KDF run as a wrong password.
const decoyHash = "scrypt$5f1d7c0e9a3b4c2d8e6f0a1b2c3d4e5f$" +
	"00000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000000"

// Engine authenticates console users and their session tokens.
// Build one with [New]; it is immutable and safe for concurrent use.
type Engine struct {
	config  Config
	users   UserProvider
	hasher  *password.Scrypt
	codec   *jwt.Codec
	limiter *rate.Limiter
	audit   *internalaudit.Dispatcher
	metrics *Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// Close flushes pending audit events and stops the dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
		if n := e.audit.Dropped(); n > 0 {
			e.logger.Warn("audit events dropped", "dropped", n, "by_type", e.audit.DroppedByType())
		}
	}
}

// AuditDropped returns how many audit events were dropped on a full buffer.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current metric values.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.hasher != nil && e.codec != nil && e.users != nil
}

// Login checks username and password and issues a session token carrying
// {sub: user ID, username}.
//
// The username is trimmed; the password is used verbatim. An empty username
// or password, an unknown user and a wrong password all return
// [ErrInvalidCredentials]. With the throttle enabled, a spent budget returns
// [ErrLoginRateLimited]. Store failures are returned wrapped.
func (e *Engine) Login(ctx context.Context, username, secret string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" || secret == "" {
		return nil, e.loginFailed(ctx, username, "", "empty_credentials")
	}

	if e.limiter != nil {
		if err := e.limiter.CheckLogin(ctx, username, clientIPFromContext(ctx)); err != nil {
			return nil, e.loginThrottled(ctx, username, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, err := e.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			e.logger.ErrorContext(ctx, "user lookup failed", "error", err)
			return nil, fmt.Errorf("consoleauth: lookup user: %w", err)
		}
		e.verifyPassword(secret, decoyHash)
		return nil, e.loginFailed(ctx, username, "", "user_not_found")
	}

	if !e.verifyPassword(secret, user.PasswordHash) {
		return nil, e.loginFailed(ctx, username, user.UserID, "password_mismatch")
	}

	token, err := e.issueToken(user)
	if err != nil {
		e.logger.ErrorContext(ctx, "token issuance failed", "user_id", user.UserID, "error", err)
		return nil, err
	}

	if e.limiter != nil {
		// A failed reset does not fail the login.
		if err := e.limiter.Reset(ctx, username, clientIPFromContext(ctx)); err != nil {
			e.logger.WarnContext(ctx, "login throttle reset failed", "error", err)
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.UserID, user.Username, nil, nil)

	return &LoginResult{
		AccessToken: token,
		User: UserInfo{
			ID:          user.UserID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
		},
	}, nil
}

func (e *Engine) loginFailed(ctx context.Context, username, userID, reason string) error {
	if e.limiter != nil && username != "" {
		if err := e.limiter.RecordFailure(ctx, username, clientIPFromContext(ctx)); err != nil {
			return e.loginThrottled(ctx, username, err)
		}
	}

	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, userID, username, ErrInvalidCredentials, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
	return ErrInvalidCredentials
}

// loginThrottled fails closed: a Redis outage refuses logins like a spent budget.
func (e *Engine) loginThrottled(ctx context.Context, username string, cause error) error {
	if errors.Is(cause, rate.ErrRedisUnavailable) {
		e.logger.WarnContext(ctx, "login throttle unavailable", "error", cause)
	}

	e.metricInc(MetricLoginRateLimited)
	e.metricInc(MetricRateLimitHit)
	e.emitAudit(ctx, auditEventLoginRateLimited, false, "", username, ErrLoginRateLimited, nil)
	return ErrLoginRateLimited
}

func (e *Engine) issueToken(user UserRecord) (string, error) {
	claims := jwt.Claims{
		"sub":      user.UserID,
		"username": user.Username,
	}
	token, err := e.codec.Issue(claims, e.config.Token.Secret, jwt.IssueOptions{
		ExpiresIn: e.config.Token.ExpiresIn,
	})
	if err != nil {
		return "", fmt.Errorf("consoleauth: issue token: %w", err)
	}
	e.metricInc(MetricTokenIssued)
	return token, nil
}

func (e *Engine) verifyPassword(secret, stored string) bool {
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricPasswordKDFLatency, time.Since(start)) }()
	}
	return e.hasher.Verify(secret, stored)
}

func (e *Engine) derivePassword(ctx context.Context, secret string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricPasswordKDFLatency, time.Since(start)) }()
	}
	return e.hasher.Derive(secret)
}

// Authenticate verifies a session token and returns the identity it carries.
// Every rejection returns [ErrUnauthorized]; the precise reason is only
// recorded in metrics and audit.
func (e *Engine) Authenticate(ctx context.Context, token string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	if e.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() { e.metrics.Observe(MetricAuthenticateLatency, time.Since(start)) }()
	}

	claims, err := e.codec.Verify(token, e.config.Token.Secret)
	if err != nil {
		e.tokenRejected(ctx, err)
		return nil, ErrUnauthorized
	}

	userID := claims.Subject()
	if userID == "" {
		e.tokenRejected(ctx, errMissingSubject)
		return nil, ErrUnauthorized
	}

	result := &AuthResult{
		UserID:   userID,
		Username: claims.String("username"),
		Claims:   claims,
	}
	result.IssuedAt, _ = claims.IssuedAt()
	result.ExpiresAt, _ = claims.ExpiresAt()

	e.metricInc(MetricAuthenticateSuccess)
	return result, nil
}

var errMissingSubject = errors.New("token has no subject")

func (e *Engine) tokenRejected(ctx context.Context, err error) {
	reason := "malformed_payload"
	switch {
	case errors.Is(err, jwt.ErrMalformedToken):
		reason = "malformed_token"
		e.metricInc(MetricTokenMalformed)
	case errors.Is(err, jwt.ErrInvalidSignature):
		reason = "invalid_signature"
		e.metricInc(MetricTokenInvalidSignature)
	case errors.Is(err, jwt.ErrExpiredToken):
		reason = "expired"
		e.metricInc(MetricTokenExpired)
	case errors.Is(err, errMissingSubject):
		reason = "missing_subject"
		e.metricInc(MetricTokenMalformedPayload)
	default:
		e.metricInc(MetricTokenMalformedPayload)
	}

	e.emitAudit(ctx, auditEventTokenRejected, false, "", "", ErrUnauthorized, func() map[string]string {
		return map[string]string{
			"reason": reason,
		}
	})
}

// HashPassword derives a stored hash for secret. It checks ctx before the
// KDF starts; the KDF itself is not interruptible.
func (e *Engine) HashPassword(ctx context.Context, secret string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	if secret == "" {
		return "", ErrPasswordPolicy
	}
	return e.derivePassword(ctx, secret)
}

// ProvisionUser creates the named user or, if it exists, replaces its
// password hash and display name. It backs the seed command.
func (e *Engine) ProvisionUser(ctx context.Context, username, secret, displayName string) (UserRecord, error) {
	if !e.ready() {
		return UserRecord{}, ErrEngineNotReady
	}

	username = strings.TrimSpace(username)
	if username == "" {
		return UserRecord{}, ErrInvalidUsername
	}

	hash, err := e.HashPassword(ctx, secret)
	if err != nil {
		return UserRecord{}, err
	}

	user, err := e.users.UpsertUser(ctx, UpsertUserInput{
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: hash,
	})
	if err != nil {
		return UserRecord{}, fmt.Errorf("consoleauth: upsert user: %w", err)
	}

	e.metricInc(MetricUserProvisioned)
	e.emitAudit(ctx, auditEventUserProvisioned, true, user.UserID, user.Username, nil, nil)
	e.logger.InfoContext(ctx, "user provisioned", "user_id", user.UserID, "username", user.Username)

	return user, nil
}

// ChangePassword replaces the password of userID after verifying the old
// one. Existing tokens stay valid until they expire.
func (e *Engine) ChangePassword(ctx context.Context, userID, oldSecret, newSecret string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if userID == "" || oldSecret == "" || newSecret == "" {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", ErrPasswordPolicy, func() map[string]string {
			return map[string]string{
				"reason": "invalid_input",
			}
		})
		return ErrPasswordPolicy
	}

	user, err := e.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, "", ErrUserNotFound, func() map[string]string {
				return map[string]string{
					"reason": "user_not_found",
				}
			})
			return ErrUserNotFound
		}
		return fmt.Errorf("consoleauth: lookup user: %w", err)
	}

	if !e.verifyPassword(oldSecret, user.PasswordHash) {
		e.metricInc(MetricPasswordChangeInvalidOld)
		e.emitAudit(ctx, auditEventPasswordChangeInvalidOld, false, userID, user.Username, ErrInvalidCredentials, nil)
		return ErrInvalidCredentials
	}

	if e.verifyPassword(newSecret, user.PasswordHash) {
		e.metricInc(MetricPasswordChangeReuseRejected)
		e.emitAudit(ctx, auditEventPasswordChangeReuse, false, userID, user.Username, ErrPasswordReuse, nil)
		return ErrPasswordReuse
	}

	newHash, err := e.derivePassword(ctx, newSecret)
	if err != nil {
		return err
	}

	if err := e.users.UpdatePasswordHash(ctx, userID, newHash); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, userID, user.Username, err, func() map[string]string {
			return map[string]string{
				"reason": "update_hash_failed",
			}
		})
		return fmt.Errorf("consoleauth: update password hash: %w", err)
	}

	if e.limiter != nil {
		// The new hash is already stored; a failed reset is only logged.
		if err := e.limiter.Reset(ctx, user.Username, clientIPFromContext(ctx)); err != nil {
			e.logger.WarnContext(ctx, "login throttle reset failed after password change", "error", err)
		}
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, userID, user.Username, nil, nil)

	return nil
}
