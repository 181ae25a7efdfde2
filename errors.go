package consoleauth

import "errors"

var (
	// ErrUnauthorized is returned by Authenticate for any rejected token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials covers an empty username or password, an unknown
	// user and a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is returned by a UserProvider when no user matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrLoginRateLimited is returned while the login throttle is engaged.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrPasswordPolicy is returned for empty or otherwise unusable passwords.
	ErrPasswordPolicy = errors.New("password policy violation")
	// ErrPasswordReuse is returned when a new password equals the current one.
	ErrPasswordReuse = errors.New("new password must be different from current password")
	// ErrInvalidUsername is returned by ProvisionUser for a blank username.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrEngineNotReady is returned by methods on a nil or partially built Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
)
