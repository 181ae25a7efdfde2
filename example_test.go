package consoleauth_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/MrEthical07/consoleauth"
	"github.com/MrEthical07/consoleauth/userstore"
)

// ExampleNew builds an engine without Redis. The login throttle stays off.
func ExampleNew() {
	cfg := consoleauth.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")
	cfg.Token.ExpiresIn = "12h"

	engine, err := consoleauth.New().
		WithConfig(cfg).
		WithUserProvider(userstore.NewMemoryStore()).
		Build()
	if err != nil {
		fmt.Println("build failed:", err)
		return
	}
	defer engine.Close()

	fmt.Println("ready")
	// Output: ready
}

// ExampleEngine_Login shows the login and authenticate round trip.
func ExampleEngine_Login() {
	cfg := consoleauth.DefaultConfig()
	cfg.Token.Secret = []byte("0123456789abcdef0123456789abcdef")

	engine, _ := consoleauth.New().
		WithConfig(cfg).
		WithUserProvider(userstore.NewMemoryStore()).
		Build()
	defer engine.Close()

	ctx := context.Background()
	_, _ = engine.ProvisionUser(ctx, "admin", "admin123456", "Administrator")

	if _, err := engine.Login(ctx, "admin", "wrong"); errors.Is(err, consoleauth.ErrInvalidCredentials) {
		fmt.Println("rejected")
	}

	res, err := engine.Login(ctx, "admin", "admin123456")
	if err != nil {
		fmt.Println("login failed:", err)
		return
	}

	auth, err := engine.Authenticate(ctx, res.AccessToken)
	if err != nil {
		fmt.Println("authenticate failed:", err)
		return
	}
	fmt.Println(auth.Username, res.User.DisplayName)
	// Output:
	// rejected
	// admin Administrator
}
