package consoleauth

import (
	"errors"
	"testing"
	"time"

	"github.com/MrEthical07/consoleauth/jwt"
)

func TestDefaultConfigNeedsSecret(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, jwt.ErrMissingSecret) {
		t.Fatalf("Validate = %v, want ErrInvalidConfig wrapping ErrMissingSecret", err)
	}

	cfg.Token.Secret = testSecret
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate with secret: %v", err)
	}
}

func TestDefaultConfigPasswordParameters(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Password.N != 16384 || cfg.Password.R != 8 || cfg.Password.P != 1 {
		t.Fatalf("cost = %+v", cfg.Password)
	}
	if cfg.Password.SaltLength != 16 || cfg.Password.KeyLength != 64 {
		t.Fatalf("sizes = %+v", cfg.Password)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		is     error
	}{
		{"bad ttl", func(c *Config) { c.Token.ExpiresIn = "30x" }, jwt.ErrInvalidTTL},
		{"zero ttl", func(c *Config) { c.Token.ExpiresIn = "0" }, jwt.ErrInvalidTTL},
		{"blank ttl", func(c *Config) { c.Token.ExpiresIn = "  " }, jwt.ErrInvalidTTL},
		{"weak N", func(c *Config) { c.Password.N = 1024 }, nil},
		{"N not power of two", func(c *Config) { c.Password.N = 20000 }, nil},
		{"short salt", func(c *Config) { c.Password.SaltLength = 8 }, nil},
		{"short key", func(c *Config) { c.Password.KeyLength = 16 }, nil},
		{"throttle attempts", func(c *Config) {
			c.Security.EnableLoginThrottle = true
			c.Security.MaxLoginAttempts = 0
		}, nil},
		{"throttle cooldown", func(c *Config) {
			c.Security.EnableLoginThrottle = true
			c.Security.LoginCooldownDuration = 0
		}, nil},
		{"ip throttle alone", func(c *Config) { c.Security.EnableIPThrottle = true }, nil},
		{"production short secret", func(c *Config) {
			c.Security.ProductionMode = true
			c.Token.Secret = []byte("short")
		}, nil},
		{"empty prefix", func(c *Config) { c.Users.RedisPrefix = "" }, nil},
		{"audit buffer", func(c *Config) {
			c.Audit.Enabled = true
			c.Audit.BufferSize = 0
		}, nil},
		{"latency without metrics", func(c *Config) {
			c.Metrics.Enabled = false
			c.Metrics.EnableLatencyHistograms = true
		}, nil},
	}

	for _, tc := range tests {
		cfg := testConfig()
		tc.mutate(&cfg)
		err := cfg.Validate()
		if !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("%s: Validate = %v, want ErrInvalidConfig", tc.name, err)
		}
		if tc.is != nil && !errors.Is(err, tc.is) {
			t.Fatalf("%s: Validate = %v, want %v", tc.name, err, tc.is)
		}
	}
}

func TestValidateAcceptsTTLForms(t *testing.T) {
	for _, ttl := range []string{"", "3600", "30m", "12h", "7d"} {
		cfg := testConfig()
		cfg.Token.ExpiresIn = ttl
		if err := cfg.Validate(); err != nil {
			t.Fatalf("ExpiresIn %q: %v", ttl, err)
		}
	}
}

func TestValidateProductionSecret(t *testing.T) {
	cfg := testConfig()
	cfg.Security.ProductionMode = true
	cfg.Security.EnableLoginThrottle = true
	cfg.Security.LoginCooldownDuration = 10 * time.Minute
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
