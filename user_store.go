package auth

import "context"

// UserStore is the persistence boundary the credential flows depend on.
// Implementations map their storage errors onto the rich error taxonomy;
// absence is a not-found error, everything else propagates unchanged and
// the caller decides the retry policy.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
}

// UserTracker extends UserStore with login bookkeeping used by the
// identity provider.
type UserTracker interface {
	UserStore
	GetByIdentifier(ctx context.Context, identifier string) (*User, error)
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
}
