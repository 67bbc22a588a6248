package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenPair bundles an access token with its paired refresh token. The two
// are signed with different secrets so a leaked access token can never be
// replayed as a refresh token. Neither is persisted: refresh tokens are
// self verifying and revocation is out of scope.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// TokenIssuer orchestrates the codec to produce and freshen token pairs.
// It holds no mutable state beyond the immutable signing config, all
// operations are safe for unlimited concurrent callers.
type TokenIssuer struct {
	cfg             *SigningConfig
	codec           *TokenCodec
	logger          Logger
	claimsDecorator ClaimsDecorator
}

// NewTokenIssuer creates a TokenIssuer over the given signing material.
func NewTokenIssuer(cfg *SigningConfig) *TokenIssuer {
	logger := defLogger{}
	return &TokenIssuer{
		cfg:             cfg,
		codec:           NewTokenCodec(logger),
		logger:          logger,
		claimsDecorator: noopClaimsDecorator{},
	}
}

func (ti *TokenIssuer) WithLogger(logger Logger) *TokenIssuer {
	if logger != nil {
		ti.logger = logger
		ti.codec = NewTokenCodec(logger)
	}
	return ti
}

// WithClaimsDecorator configures a ClaimsDecorator for enriching access
// token claims before signing.
func (ti *TokenIssuer) WithClaimsDecorator(decorator ClaimsDecorator) *TokenIssuer {
	ti.claimsDecorator = normalizeClaimsDecorator(decorator)
	return ti
}

// Codec exposes the underlying TokenCodec.
func (ti *TokenIssuer) Codec() *TokenCodec {
	return ti.codec
}

// GenerateTokens builds an (access, refresh) pair for the identity. Access
// claims carry name/sub/email, all set to the identity email; refresh
// claims carry the email plus a fresh jti nonce.
func (ti *TokenIssuer) GenerateTokens(ctx context.Context, identity Identity) (*TokenPair, error) {
	if identity == nil {
		return nil, errors.New("identity is required", errors.CategoryBadInput)
	}

	accessToken, err := ti.issueAccessToken(ctx, identity)
	if err != nil {
		return nil, err
	}

	refreshToken, err := ti.issueRefreshToken(identity.Email())
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Freshen exchanges a valid refresh token for a new access token without
// re-authentication. The refresh token is verified twice: a lifetime
// agnostic pass extracts the email claim, then a full pass (lifetime,
// HS256 pinned, email cross-check) decides whether to trust it.
func (ti *TokenIssuer) Freshen(refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrNoEmptyToken
	}

	claims, err := ti.codec.Verify(refreshToken, ti.cfg.RefreshSecret, VerifyOptions{
		Issuer:           ti.cfg.Issuer,
		Audience:         ti.cfg.Audience,
		ValidateIssuer:   ti.cfg.ValidateIssuer,
		ValidateAudience: ti.cfg.ValidateAudience,
		ValidateLifetime: false,
	})
	if err != nil {
		ti.logger.Error("freshen could not parse refresh token", "error", err)
		return "", ErrTokenInvalid
	}

	email := claims.Email()
	if email == "" || !ti.validateRefreshToken(refreshToken, email) {
		return "", ErrTokenInvalid
	}

	return ti.issueAccessToken(context.Background(), tokenIdentity{email: email})
}

// ValidateToken reports whether an access token is fully valid. It is the
// sole boolean probe: all detail is discarded, use GetPrincipal when the
// failure reason matters.
func (ti *TokenIssuer) ValidateToken(token string) bool {
	if token == "" {
		return false
	}

	_, err := ti.GetPrincipal(token)
	return err == nil
}

// GetPrincipal verifies an access token and returns its claim set for
// downstream authorization use.
func (ti *TokenIssuer) GetPrincipal(token string) (AuthClaims, error) {
	if token == "" {
		return nil, ErrNoEmptyToken
	}

	claims, err := ti.codec.Verify(token, ti.cfg.AccessSecret, VerifyOptions{
		Issuer:           ti.cfg.Issuer,
		Audience:         ti.cfg.Audience,
		ValidateIssuer:   ti.cfg.ValidateIssuer,
		ValidateAudience: ti.cfg.ValidateAudience,
		ValidateLifetime: ti.cfg.ValidateLifetime,
		ClockSkew:        ti.cfg.ClockSkew,
	})
	if err != nil {
		return nil, err
	}

	return claims, nil
}

// validateRefreshToken re-validates the same refresh token under full
// rules before the email claim is trusted.
func (ti *TokenIssuer) validateRefreshToken(token, email string) bool {
	if token == "" || email == "" {
		return false
	}

	claims, err := ti.codec.Verify(token, ti.cfg.RefreshSecret, VerifyOptions{
		Issuer:           ti.cfg.Issuer,
		Audience:         ti.cfg.Audience,
		ValidateIssuer:   true,
		ValidateAudience: true,
		ValidateLifetime: true,
	})
	if err != nil {
		ti.logger.Error("refresh token failed full validation", "error", err)
		return false
	}

	return claims.Email() == email
}

func (ti *TokenIssuer) issueAccessToken(ctx context.Context, identity Identity) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.cfg.Issuer,
			Subject:   identity.Email(),
			Audience:  jwt.ClaimStrings{ti.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.cfg.AccessTTL)),
		},
		DisplayName: identity.Email(),
		UserEmail:   identity.Email(),
	}

	snapshot := captureImmutableClaims(claims)

	decorator := normalizeClaimsDecorator(ti.claimsDecorator)
	if err := decorator.Decorate(ctx, identity, claims); err != nil {
		ti.logger.Error("claims decorator failed", "error", err)
		return "", err
	}

	if err := snapshot.validate(claims); err != nil {
		ti.logger.Error("claims decorator mutated immutable claims", "error", err)
		return "", err
	}

	return ti.codec.Sign(claims, ti.cfg.AccessSecret)
}

func (ti *TokenIssuer) issueRefreshToken(email string) (string, error) {
	now := time.Now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ti.cfg.Issuer,
			Audience:  jwt.ClaimStrings{ti.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.cfg.RefreshTTL)),
		},
		UserEmail: email,
	}
	ensureTokenID(&claims.RegisteredClaims)

	return ti.codec.Sign(claims, ti.cfg.RefreshSecret)
}

// tokenIdentity is the minimal identity reconstructed from refresh token
// claims during freshening.
type tokenIdentity struct {
	email string
}

func (t tokenIdentity) ID() string       { return t.email }
func (t tokenIdentity) Username() string { return t.email }
func (t tokenIdentity) Email() string    { return t.email }
