package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MrEthical07/consoleauth"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyAddr             = "addr"
	keyRedisAddr        = "redis-addr"
	keyRedisPrefix      = "redis-prefix"
	keyJWTSecret        = "jwt-secret"
	keyJWTExpiresIn     = "jwt-expires-in"
	keyAdminUsername    = "admin-username"
	keyAdminPassword    = "admin-password"
	keyAdminDisplayName = "admin-display-name"
	keyProduction       = "production"
	keyLoginThrottle    = "login-throttle"
	keyIPThrottle       = "ip-throttle"
	keyLogLevel         = "log-level"
	keyLogFormat        = "log-format"
)

// envNames maps setting keys to the environment variables the service has
// always read.
var envNames = map[string]string{
	keyAddr:             "ADDR",
	keyRedisAddr:        "REDIS_ADDR",
	keyRedisPrefix:      "REDIS_PREFIX",
	keyJWTSecret:        "JWT_SECRET",
	keyJWTExpiresIn:     "JWT_EXPIRES_IN",
	keyAdminUsername:    "DEFAULT_ADMIN_USERNAME",
	keyAdminPassword:    "DEFAULT_ADMIN_PASSWORD",
	keyAdminDisplayName: "DEFAULT_ADMIN_DISPLAY_NAME",
	keyProduction:       "CONSOLEAUTH_PRODUCTION",
	keyLoginThrottle:    "CONSOLEAUTH_LOGIN_THROTTLE",
	keyIPThrottle:       "CONSOLEAUTH_IP_THROTTLE",
	keyLogLevel:         "LOG_LEVEL",
	keyLogFormat:        "LOG_FORMAT",
}

type settings struct {
	Addr             string
	RedisAddr        string
	RedisPrefix      string
	JWTSecret        string
	JWTExpiresIn     string
	AdminUsername    string
	AdminPassword    string
	AdminDisplayName string
	Production       bool
	LoginThrottle    bool
	IPThrottle       bool
	LogLevel         string
	LogFormat        string
}

func bindSettings(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String(keyAddr, ":3000", "HTTP listen address")
	flags.String(keyRedisAddr, "", "Redis address; empty runs an in-process Redis")
	flags.String(keyRedisPrefix, "consoleauth", "Redis key prefix")
	flags.String(keyJWTSecret, "", "token signing secret")
	flags.String(keyJWTExpiresIn, "", `token lifetime such as "3600", "15m" or "7d" (default 7d)`)
	flags.String(keyAdminUsername, "admin", "default admin username")
	flags.String(keyAdminPassword, "admin123456", "default admin password")
	flags.String(keyAdminDisplayName, "Administrator", "default admin display name")
	flags.Bool(keyProduction, false, "require a 256-bit signing secret")
	flags.Bool(keyLoginThrottle, true, "throttle repeated login failures per username")
	flags.Bool(keyIPThrottle, false, "also throttle login failures per client IP")
	flags.String(keyLogLevel, "info", "log level: debug, info, warn, error")
	flags.String(keyLogFormat, "text", "log format: text or json")

	for key, env := range envNames {
		_ = v.BindPFlag(key, flags.Lookup(key))
		_ = v.BindEnv(key, env)
	}
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

func loadSettings(v *viper.Viper) settings {
	return settings{
		Addr:             v.GetString(keyAddr),
		RedisAddr:        v.GetString(keyRedisAddr),
		RedisPrefix:      v.GetString(keyRedisPrefix),
		JWTSecret:        v.GetString(keyJWTSecret),
		JWTExpiresIn:     v.GetString(keyJWTExpiresIn),
		AdminUsername:    strings.TrimSpace(v.GetString(keyAdminUsername)),
		AdminPassword:    v.GetString(keyAdminPassword),
		AdminDisplayName: v.GetString(keyAdminDisplayName),
		Production:       v.GetBool(keyProduction),
		LoginThrottle:    v.GetBool(keyLoginThrottle),
		IPThrottle:       v.GetBool(keyIPThrottle),
		LogLevel:         v.GetString(keyLogLevel),
		LogFormat:        v.GetString(keyLogFormat),
	}
}

var errMissingSecret = errors.New("JWT_SECRET is not set")

// engineConfig maps settings onto an engine config.
func (s settings) engineConfig() (consoleauth.Config, error) {
	if s.JWTSecret == "" {
		return consoleauth.Config{}, errMissingSecret
	}

	cfg := consoleauth.DefaultConfig()
	cfg.Token.Secret = []byte(s.JWTSecret)
	cfg.Token.ExpiresIn = s.JWTExpiresIn
	cfg.Security.ProductionMode = s.Production
	cfg.Security.EnableLoginThrottle = s.LoginThrottle
	cfg.Security.EnableIPThrottle = s.LoginThrottle && s.IPThrottle
	cfg.Users.RedisPrefix = s.RedisPrefix
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	if err := cfg.Validate(); err != nil {
		return consoleauth.Config{}, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
