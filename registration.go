package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterUserMessage carries the attributes of a registration request.
type RegisterUserMessage struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserHandler creates accounts. Passwords go through the strength
// policy before hashing, and the insert runs inside a transaction so a
// partial registration never becomes visible.
type RegisterUserHandler struct {
	repo     RepositoryManager
	logger   Logger
	activity ActivitySink
}

var _ RegistrationService = (*RegisterUserHandler)(nil)

// NewRegisterUserHandler creates a handler backed by the given repositories.
func NewRegisterUserHandler(repo RepositoryManager) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		logger:   defLogger{},
		activity: noopActivitySink{},
	}
}

func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// RegisterUser validates and creates the account described by the message.
func (h *RegisterUserHandler) RegisterUser(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, errors.Wrap(
			ctx.Err(),
			errors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, msg)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	if err := ValidatePasswordStrength(msg.Password); err != nil {
		return nil, err
	}

	email := NormalizeEmail(msg.Email)
	if email == "" {
		return nil, errors.New("email is required", errors.CategoryBadInput)
	}

	if available, err := h.IsEmailAvailable(ctx, email); err != nil {
		return nil, err
	} else if !available {
		h.recordConflict(ctx, email, "email")
		return nil, errors.New("email already registered", errors.CategoryConflict)
	}

	username := getUsername(msg.Username, email)
	if available, err := h.IsUsernameAvailable(ctx, username); err != nil {
		return nil, err
	} else if !available {
		h.recordConflict(ctx, email, "username")
		return nil, errors.New("username already taken", errors.CategoryConflict)
	}

	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(msg.Password)
		if err != nil {
			var richErr *errors.Error
			if errors.As(err, &richErr) {
				return errors.Wrap(richErr, errors.CategoryValidation, "invalid password provided")
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = email
		user.Username = username
		if msg.UseHashid {
			if id, err := hashid.NewUUID(email); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			return errors.Wrap(err, errors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *errors.Error
		if errors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, errors.Wrap(err, errors.CategoryInternal, "user registration transaction failed")
	}

	h.recordRegistered(ctx, user)

	return user, nil
}

// IsEmailAvailable reports whether no account holds the given email.
func (h *RegisterUserHandler) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	_, err := h.repo.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return true, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check email availability")
	}

	return false, nil
}

// IsUsernameAvailable reports whether no account holds the given username.
func (h *RegisterUserHandler) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	_, err := h.repo.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return true, nil
		}
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check username availability")
	}

	return false, nil
}

func (h *RegisterUserHandler) recordRegistered(ctx context.Context, user *User) {
	if user == nil {
		return
	}

	event := ActivityEvent{
		EventType: ActivityEventUserRegistered,
		Actor: ActorRef{
			ID:   user.ID.String(),
			Type: "user",
		},
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}

func (h *RegisterUserHandler) recordConflict(ctx context.Context, email, field string) {
	event := ActivityEvent{
		EventType: ActivityEventRegistrationConflict,
		Actor:     ActorRef{Type: "unknown"},
		Metadata: map[string]any{
			"email": email,
			"field": field,
		},
		OccurredAt: time.Now(),
	}

	if err := normalizeActivitySink(h.activity).Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}
}

func getUsername(username, email string) string {
	if username != "" {
		return username
	}

	if strings.Contains(email, "@") {
		username = strings.Split(email, "@")[0]
	}

	return username
}
