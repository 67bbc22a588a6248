package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
)

// DefaultResetWindow is how long a reset token stays valid.
const DefaultResetWindow = 3 * time.Minute

// ResetNotifier delivers the reset token to the account owner. Delivery
// transport (email, SMS) lives outside this package.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, email, token string) error
}

// ResetNotifierFunc adapts a function into a ResetNotifier.
type ResetNotifierFunc func(ctx context.Context, email, token string) error

// NotifyPasswordReset implements ResetNotifier.
func (f ResetNotifierFunc) NotifyPasswordReset(ctx context.Context, email, token string) error {
	if f == nil {
		return nil
	}
	return f(ctx, email, token)
}

// PasswordResetFlow drives the reset state machine for a single account:
// active -> reset-pending -> active, with reset-expired observed lazily at
// validation time. While a reset is pending the stored password hash is
// cleared, so the account cannot authenticate until the reset completes.
//
// The flow performs read-modify-write against the store; serializing
// concurrent resets for the same account is the store's job, not ours.
type PasswordResetFlow struct {
	store    UserStore
	notifier ResetNotifier
	activity ActivitySink
	logger   Logger
	window   time.Duration
	now      func() time.Time
}

var _ PasswordResetService = (*PasswordResetFlow)(nil)

// NewPasswordResetFlow creates a flow with sane defaults.
func NewPasswordResetFlow(store UserStore) *PasswordResetFlow {
	return &PasswordResetFlow{
		store:    store,
		notifier: ResetNotifierFunc(printResetNotification),
		activity: noopActivitySink{},
		logger:   defLogger{},
		window:   DefaultResetWindow,
		now:      time.Now,
	}
}

// WithNotifier sets the delivery hook fired after a reset is initiated.
func (f *PasswordResetFlow) WithNotifier(notifier ResetNotifier) *PasswordResetFlow {
	if notifier != nil {
		f.notifier = notifier
	}
	return f
}

// WithActivitySink sets the sink used to emit password reset events.
func (f *PasswordResetFlow) WithActivitySink(sink ActivitySink) *PasswordResetFlow {
	f.activity = normalizeActivitySink(sink)
	return f
}

// WithLogger overrides the logger used by the flow.
func (f *PasswordResetFlow) WithLogger(logger Logger) *PasswordResetFlow {
	if logger != nil {
		f.logger = logger
	}
	return f
}

// WithResetWindow overrides the token validity window.
func (f *PasswordResetFlow) WithResetWindow(window time.Duration) *PasswordResetFlow {
	if window > 0 {
		f.window = window
	}
	return f
}

// InitiatePasswordReset starts a reset for the account. It reports false
// for empty emails and unknown accounts without touching any record. On
// success the account enters reset-pending: fresh token, expiry at
// now + window, password hash cleared.
//
// The boolean is the domain outcome; a non-nil error means the store
// failed and nothing should be assumed about the account state.
func (f *PasswordResetFlow) InitiatePasswordReset(ctx context.Context, email string) (bool, error) {
	if email == "" {
		f.logger.Warn("attempted password reset with empty email")
		return false, nil
	}

	user, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			f.logger.Info("password reset attempted for non-existent email", "email", email)
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := GenerateResetSecret()
	if err != nil {
		return false, err
	}

	expiry := f.now().Add(f.window)
	user.ResetToken = token
	user.ResetTokenExp = &expiry
	user.PasswordHash = ""

	if _, err := f.store.Update(ctx, user); err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to persist password reset state")
	}

	if err := f.notifier.NotifyPasswordReset(ctx, user.Email, token); err != nil {
		f.logger.Warn("reset notification failed", "error", err)
	}

	f.recordActivity(ctx, ActivityEventPasswordResetInit, user)

	return true, nil
}

// ValidateResetToken reports whether the token matches the pending reset
// for the account and its window has not elapsed. Expiry is observed here,
// lazily; there is no background sweep.
func (f *PasswordResetFlow) ValidateResetToken(ctx context.Context, email, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	user, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for token validation")
	}

	if user.ResetToken == "" {
		return false, nil
	}

	if user.ResetExpired(f.now()) {
		f.logger.Info("reset token expired", "email", email)
		return false, nil
	}

	return user.ResetToken == token, nil
}

// ResetPassword completes the reset: the token must validate, the new
// password must satisfy the strength policy, and only then is the hash
// replaced and the reset state cleared. A policy violation returns false
// without mutating anything.
func (f *PasswordResetFlow) ResetPassword(ctx context.Context, email, token, newPassword string) (bool, error) {
	valid, err := f.ValidateResetToken(ctx, email, token)
	if err != nil || !valid {
		return false, err
	}

	user, err := f.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user for password reset")
	}

	if err := ValidatePasswordStrength(newPassword); err != nil {
		f.logger.Warn("rejected weak password during reset", "email", email)
		return false, nil
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return false, err
	}

	user.PasswordHash = hash
	user.ClearResetState()

	if _, err := f.store.Update(ctx, user); err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to persist new password")
	}

	f.recordActivity(ctx, ActivityEventPasswordResetSuccess, user)

	return true, nil
}

func (f *PasswordResetFlow) recordActivity(ctx context.Context, eventType ActivityEventType, user *User) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: eventType,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		OccurredAt: f.now(),
	}

	if err := normalizeActivitySink(f.activity).Record(ctx, event); err != nil {
		f.logger.Warn("activity sink error during password reset: %v", err)
	}
}

func printResetNotification(_ context.Context, email, token string) error {
	fmt.Println("====== SENDING EMAIL NOTIFICATION =======")
	fmt.Printf("to: %s\n", email)
	fmt.Printf("token: %s\n", token)
	return nil
}
