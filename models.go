package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model. PasswordHash is cleared while a reset is
// pending: the account cannot authenticate with any password until the
// reset completes or a new one is initiated.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username       string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	ResetToken     string     `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExp  *time.Time `bun:"reset_token_expires_at,nullzero" json:"-"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// HasPendingReset reports whether a reset token is currently stored,
// expired or not. Expiry is checked lazily at validation time.
func (u *User) HasPendingReset() bool {
	return u.ResetToken != "" && u.ResetTokenExp != nil
}

// ResetExpired reports whether the stored reset token has passed its
// expiry at the given instant.
func (u *User) ResetExpired(now time.Time) bool {
	if u.ResetTokenExp == nil {
		return true
	}
	return !now.Before(*u.ResetTokenExp)
}

// ClearResetState removes the reset token and expiry, returning the
// account to the active state.
func (u *User) ClearResetState() {
	u.ResetToken = ""
	u.ResetTokenExp = nil
}
