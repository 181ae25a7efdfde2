package consoleauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/consoleauth/jwt"
	"github.com/MrEthical07/consoleauth/password"
)

// Config is the complete engine configuration. Build copies it, so later
// changes by the caller have no effect on a running Engine.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Security SecurityConfig
	Users    UsersConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls session token issuance.
type TokenConfig struct {
	// Secret is the HMAC-SHA256 key (JWT_SECRET). Required.
	Secret []byte
	// ExpiresIn follows jwt.ParseExpiresIn (JWT_EXPIRES_IN). Empty means 7d.
	ExpiresIn string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig holds scrypt cost parameters. The stored hash format does
// not record them, so every process sharing a user store must agree.
type PasswordConfig struct {
	N          int
	R          int
	P          int
	SaltLength int
	KeyLength  int
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig controls the login throttle and production guard rails.
type SecurityConfig struct {
	// ProductionMode enforces a 256-bit minimum secret.
	ProductionMode bool

	EnableLoginThrottle   bool
	EnableIPThrottle      bool
	MaxLoginAttempts      int
	LoginCooldownDuration time.Duration
}

/*
====================================
USERS / AUDIT / METRICS
====================================
*/

// UsersConfig names the Redis keyspace shared by the user store and the
// login throttle.
type UsersConfig struct {
	RedisPrefix string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline configuration. Token.Secret is empty
// and must be set before Validate passes.
func DefaultConfig() Config {
	pw := password.DefaultConfig()
	return Config{
		Token: TokenConfig{
			ExpiresIn: "",
		},
		Password: PasswordConfig{
			N:          pw.N,
			R:          pw.R,
			P:          pw.P,
			SaltLength: pw.SaltLength,
			KeyLength:  pw.KeyLength,
		},
		Security: SecurityConfig{
			ProductionMode:        false,
			EnableLoginThrottle:   false,
			EnableIPThrottle:      false,
			MaxLoginAttempts:      5,
			LoginCooldownDuration: 15 * time.Minute,
		},
		Users: UsersConfig{
			RedisPrefix: "consoleauth",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c PasswordConfig) hasherConfig() password.Config {
	return password.Config{
		N:          c.N,
		R:          c.R,
		P:          c.P,
		SaltLength: c.SaltLength,
		KeyLength:  c.KeyLength,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem, wrapped in
// [ErrInvalidConfig]. A missing secret also matches [jwt.ErrMissingSecret]
// and a bad ExpiresIn matches [jwt.ErrInvalidTTL].
func (c *Config) Validate() error {
	// Token
	if len(c.Token.Secret) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, jwt.ErrMissingSecret)
	}
	if _, err := jwt.ParseExpiresIn(c.Token.ExpiresIn); err != nil {
		return fmt.Errorf("%w: Token ExpiresIn: %w", ErrInvalidConfig, err)
	}

	// Password
	if _, err := password.NewScrypt(c.Password.hasherConfig()); err != nil {
		return fmt.Errorf("%w: Password: %v", ErrInvalidConfig, err)
	}

	// Security
	if c.Security.EnableLoginThrottle {
		if c.Security.MaxLoginAttempts <= 0 {
			return invalid("Security MaxLoginAttempts must be > 0")
		}
		if c.Security.LoginCooldownDuration <= 0 {
			return invalid("Security LoginCooldownDuration must be > 0")
		}
	}
	if c.Security.EnableIPThrottle && !c.Security.EnableLoginThrottle {
		return invalid("Security EnableIPThrottle requires EnableLoginThrottle")
	}
	if c.Security.ProductionMode && len(c.Token.Secret) < 32 {
		return invalid("ProductionMode requires a token secret of at least 256 bits")
	}

	// Users
	if c.Users.RedisPrefix == "" {
		return invalid("Users RedisPrefix must not be empty")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.New(msg))
}
