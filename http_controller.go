package auth

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPControllerRoutes holds the paths the controller mounts.
type HTTPControllerRoutes struct {
	Login                 string
	Refresh               string
	Validate              string
	Register              string
	PasswordReset         string
	PasswordResetValidate string
	PasswordResetExecute  string
}

// HTTPController exposes the credential operations as a JSON API. It holds
// one capability interface per concern so hosts can wire a partial surface.
type HTTPController struct {
	Debug         bool
	Logger        Logger
	Login         LoginService
	Registration  RegistrationService
	PasswordReset PasswordResetService
	Routes        *HTTPControllerRoutes
}

type HTTPControllerOption func(*HTTPController) *HTTPController

// WithHTTPLogin sets the login capability.
func WithHTTPLogin(svc LoginService) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Login = svc
		return c
	}
}

// WithHTTPRegistration sets the registration capability.
func WithHTTPRegistration(svc RegistrationService) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Registration = svc
		return c
	}
}

// WithHTTPPasswordReset sets the password reset capability.
func WithHTTPPasswordReset(svc PasswordResetService) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.PasswordReset = svc
		return c
	}
}

// WithHTTPLogger sets the controller logger.
func WithHTTPLogger(logger Logger) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

// WithHTTPDebug toggles payload dumps on handled requests.
func WithHTTPDebug(debug bool) HTTPControllerOption {
	return func(c *HTTPController) *HTTPController {
		c.Debug = debug
		return c
	}
}

// NewHTTPController builds a controller. At least the login capability is
// required; registration and password reset routes mount only when their
// capability is present.
func NewHTTPController(opts ...HTTPControllerOption) *HTTPController {
	c := &HTTPController{
		Logger: defLogger{},
		Routes: &HTTPControllerRoutes{
			Login:                 "/login",
			Refresh:               "/refresh",
			Validate:              "/validate",
			Register:              "/register",
			PasswordReset:         "/password-reset",
			PasswordResetValidate: "/password-reset/validate",
			PasswordResetExecute:  "/password-reset/execute",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Login == nil {
		panic("Missing LoginService in auth controller...")
	}

	return c
}

// RegisterRoutes mounts the JSON endpoints on the given router group.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	group.Post(c.Routes.Login, c.LoginPost)
	group.Post(c.Routes.Refresh, c.RefreshPost)
	group.Post(c.Routes.Validate, c.ValidatePost)

	if c.Registration != nil {
		group.Post(c.Routes.Register, c.RegisterPost)
	}

	if c.PasswordReset != nil {
		group.Post(c.Routes.PasswordReset, c.PasswordResetPost)
		group.Post(c.Routes.PasswordResetValidate, c.PasswordResetValidatePost)
		group.Post(c.Routes.PasswordResetExecute, c.PasswordResetExecutePost)
	}
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// LoginPost exchanges credentials for an (access, refresh) token pair.
// All authentication failures collapse into a uniform 401 so callers
// cannot probe which credential was wrong.
func (c *HTTPController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("login parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if c.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	pair, err := c.Login.Login(ctx.Context(), payload.Identifier, payload.Password)
	if err != nil {
		c.Logger.Error("login failed", "error", err)
		return c.unauthorized(ctx)
	}

	return ctx.JSON(router.StatusOK, pair)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refresh_token" json:"refresh_token"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// RefreshPost exchanges a refresh token for a new access token.
func (c *HTTPController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("refresh parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	accessToken, err := c.Login.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		c.Logger.Error("refresh failed", "error", err)
		return c.unauthorized(ctx)
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"access_token": accessToken,
	})
}

// ValidateRequest payload
type ValidateRequest struct {
	Token string `form:"token" json:"token"`
}

// ValidatePost reports whether the access token verifies. The response is
// always 200; the verdict travels in the body.
func (c *HTTPController) ValidatePost(ctx router.Context) error {
	payload := new(ValidateRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("validate parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"is_valid": c.Login.Validate(payload.Token),
	})
}

// RegistrationRequest is the account creation payload
type RegistrationRequest struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Username, validation.Length(0, 100)),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.By(PasswordStrengthRule()),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// RegisterPost creates a new account.
func (c *HTTPController) RegisterPost(ctx router.Context) error {
	payload := new(RegistrationRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("register parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		c.Logger.Error("register validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if c.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("============================")
	}

	user, err := c.Registration.RegisterUser(ctx.Context(), RegisterUserMessage{
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		c.Logger.Error("register user", "error", err)
		return ctx.JSON(fiber.StatusConflict, map[string]any{
			"error": "registration failed",
		})
	}

	return ctx.JSON(fiber.StatusCreated, map[string]any{
		"id":       user.ID.String(),
		"username": user.Username,
		"email":    user.Email,
	})
}

// PasswordResetRequest payload
type PasswordResetRequest struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// PasswordResetPost starts a reset. The response never discloses whether
// the account exists.
func (c *HTTPController) PasswordResetPost(ctx router.Context) error {
	payload := new(PasswordResetRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("password reset parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	if _, err := c.PasswordReset.InitiatePasswordReset(ctx.Context(), payload.Email); err != nil {
		c.Logger.Error("password reset init", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"error": "password reset unavailable",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"accepted": true,
	})
}

// PasswordResetTokenRequest carries the email/token pair for a pending reset.
type PasswordResetTokenRequest struct {
	Email string `form:"email" json:"email"`
	Token string `form:"token" json:"token"`
}

// Validate will validate the payload
func (r PasswordResetTokenRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
	)
}

// PasswordResetValidatePost checks a reset token without consuming it.
func (c *HTTPController) PasswordResetValidatePost(ctx router.Context) error {
	payload := new(PasswordResetTokenRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("password reset validate parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	valid, err := c.PasswordReset.ValidateResetToken(ctx.Context(), payload.Email, payload.Token)
	if err != nil {
		c.Logger.Error("password reset validate", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"error": "password reset unavailable",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"is_valid": valid,
	})
}

// PasswordResetExecutePayload carries the final stage of a reset.
type PasswordResetExecutePayload struct {
	Email           string `form:"email" json:"email"`
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetExecutePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Token, validation.Required),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.By(PasswordStrengthRule()),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// PasswordResetExecutePost completes a pending reset.
func (c *HTTPController) PasswordResetExecutePost(ctx router.Context) error {
	payload := new(PasswordResetExecutePayload)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("password reset execute parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "failed to parse request body",
		})
	}

	if err := payload.Validate(); err != nil {
		c.Logger.Error("password reset execute validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "invalid payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	ok, err := c.PasswordReset.ResetPassword(ctx.Context(), payload.Email, payload.Token, payload.Password)
	if err != nil {
		c.Logger.Error("password reset execute", "error", err)
		return ctx.JSON(fiber.StatusInternalServerError, map[string]any{
			"error": "password reset unavailable",
		})
	}

	if !ok {
		return ctx.JSON(fiber.StatusUnprocessableEntity, map[string]any{
			"error": "invalid or expired reset token",
		})
	}

	return ctx.JSON(router.StatusOK, map[string]any{
		"success": true,
	})
}

func (c *HTTPController) unauthorized(ctx router.Context) error {
	return ctx.JSON(router.StatusUnauthorized, map[string]any{
		"error": "unauthorized",
	})
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map suitable for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
