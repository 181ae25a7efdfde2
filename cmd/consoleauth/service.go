package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/MrEthical07/consoleauth"
	"github.com/MrEthical07/consoleauth/userstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// service is the engine plus the resources it holds open.
type service struct {
	engine   *consoleauth.Engine
	inMemory bool
	cleanup  func()
}

func (r *service) Close() {
	if r == nil {
		return
	}
	if r.engine != nil {
		r.engine.Close()
	}
	if r.cleanup != nil {
		r.cleanup()
	}
}

// openRedis connects to addr, or starts an in-process miniredis when addr
// is empty.
func openRedis(ctx context.Context, addr string) (redis.UniversalClient, func(), bool, error) {
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, false, fmt.Errorf("start miniredis: %w", err)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, true, nil
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, false, fmt.Errorf("connect redis %s: %w", addr, err)
	}
	return client, func() { _ = client.Close() }, false, nil
}

func openService(ctx context.Context, s settings, logger *slog.Logger) (*service, error) {
	cfg, err := s.engineConfig()
	if err != nil {
		return nil, err
	}

	client, cleanup, inMemory, err := openRedis(ctx, s.RedisAddr)
	if err != nil {
		return nil, err
	}

	users := userstore.NewRedisStore(client, cfg.Users.RedisPrefix)
	engine, err := consoleauth.New().
		WithConfig(cfg).
		WithRedis(client).
		WithUserProvider(users).
		WithAuditSink(consoleauth.NewSlogSink(logger)).
		WithLogger(logger).
		Build()
	if err != nil {
		cleanup()
		return nil, err
	}

	return &service{
		engine:   engine,
		inMemory: inMemory,
		cleanup:  cleanup,
	}, nil
}

// seedAdmin upserts the default admin account. The password is never
// logged.
func seedAdmin(ctx context.Context, engine *consoleauth.Engine, s settings, logger *slog.Logger) (consoleauth.UserRecord, error) {
	user, err := engine.ProvisionUser(ctx, s.AdminUsername, s.AdminPassword, s.AdminDisplayName)
	if err != nil {
		return consoleauth.UserRecord{}, fmt.Errorf("seed admin: %w", err)
	}
	logger.InfoContext(ctx, "default admin ensured", "username", user.Username, "user_id", user.UserID)
	return user, nil
}
