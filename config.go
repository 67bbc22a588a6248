package auth

import (
	"crypto/rand"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// MinSecretLength is the minimum byte length for HMAC signing secrets.
const MinSecretLength = 32

// Default token lifetimes, matching the values the auth server ships with.
const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// SigningConfig is the immutable signing material shared by the codec and
// the token issuer. Construct it once with NewSigningConfig and pass it by
// reference, there is no package level configuration lookup.
type SigningConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	ClockSkew     time.Duration

	ValidateIssuer     bool
	ValidateAudience   bool
	ValidateLifetime   bool
	ValidateSigningKey bool
}

// SigningConfigOption mutates the config during construction only.
type SigningConfigOption func(*SigningConfig)

// WithAccessTTL overrides the access token lifetime.
func WithAccessTTL(ttl time.Duration) SigningConfigOption {
	return func(c *SigningConfig) {
		c.AccessTTL = ttl
	}
}

// WithRefreshTTL overrides the refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) SigningConfigOption {
	return func(c *SigningConfig) {
		c.RefreshTTL = ttl
	}
}

// WithClockSkew sets the expiry leniency window. Zero means exact expiry
// enforcement.
func WithClockSkew(skew time.Duration) SigningConfigOption {
	return func(c *SigningConfig) {
		c.ClockSkew = skew
	}
}

// WithValidationFlags toggles the issuer/audience/lifetime/signing-key
// checks applied during verification.
func WithValidationFlags(issuer, audience, lifetime, signingKey bool) SigningConfigOption {
	return func(c *SigningConfig) {
		c.ValidateIssuer = issuer
		c.ValidateAudience = audience
		c.ValidateLifetime = lifetime
		c.ValidateSigningKey = signingKey
	}
}

// NewSigningConfig builds the signing material for a process. Secrets
// shorter than MinSecretLength are replaced with a randomly generated
// fallback: the process stays usable but tokens signed by a previous run
// become unverifiable after restart.
func NewSigningConfig(accessSecret, refreshSecret []byte, issuer, audience string, opts ...SigningConfigOption) (*SigningConfig, error) {
	cfg := &SigningConfig{
		AccessSecret:       accessSecret,
		RefreshSecret:      refreshSecret,
		Issuer:             issuer,
		Audience:           audience,
		AccessTTL:          DefaultAccessTTL,
		RefreshTTL:         DefaultRefreshTTL,
		ClockSkew:          0,
		ValidateIssuer:     true,
		ValidateAudience:   true,
		ValidateLifetime:   true,
		ValidateSigningKey: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	logger := defLogger{}

	if len(cfg.AccessSecret) < MinSecretLength {
		secret, err := generateFallbackSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("access secret missing or too short, generated ephemeral secret; previously issued tokens are now unverifiable")
		cfg.AccessSecret = secret
	}

	if len(cfg.RefreshSecret) < MinSecretLength {
		secret, err := generateFallbackSecret()
		if err != nil {
			return nil, err
		}
		logger.Warn("refresh secret missing or too short, generated ephemeral secret; previously issued tokens are now unverifiable")
		cfg.RefreshSecret = secret
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "invalid signing configuration")
	}

	return cfg, nil
}

// Validate runs structural validation over the signing material.
func (c SigningConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.AccessSecret, validation.Required, validation.Length(MinSecretLength, 0)),
		validation.Field(&c.RefreshSecret, validation.Required, validation.Length(MinSecretLength, 0)),
		validation.Field(&c.Issuer, validation.Required),
		validation.Field(&c.Audience, validation.Required),
		validation.Field(&c.AccessTTL, validation.Required),
		validation.Field(&c.RefreshTTL, validation.Required),
	)
}

func generateFallbackSecret() ([]byte, error) {
	secret := make([]byte, MinSecretLength)
	if _, err := rand.Read(secret); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate fallback signing secret")
	}
	return secret, nil
}
