package auth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// LoginService authenticates credentials and issues token pairs
type LoginService interface {
	Login(ctx context.Context, identifier, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Validate(token string) bool
}

// RegistrationService creates new accounts
type RegistrationService interface {
	RegisterUser(ctx context.Context, msg RegisterUserMessage) (*User, error)
	IsEmailAvailable(ctx context.Context, email string) (bool, error)
	IsUsernameAvailable(ctx context.Context, username string) (bool, error)
}

// PasswordResetService drives the reset state machine for a single account
type PasswordResetService interface {
	InitiatePasswordReset(ctx context.Context, email string) (bool, error)
	ValidateResetToken(ctx context.Context, email, token string) (bool, error)
	ResetPassword(ctx context.Context, email, token, newPassword string) (bool, error)
}

// AuthService aggregates the three capabilities. It is a plain composite,
// callers that need a single capability should depend on that interface.
type AuthService struct {
	LoginService
	RegistrationService
	PasswordResetService
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
