package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// VerifyOptions controls a single Verify pass. The zero value performs a
// signature-and-format check only; flip the flags to layer on issuer,
// audience, and lifetime validation.
type VerifyOptions struct {
	Issuer           string
	Audience         string
	ValidateIssuer   bool
	ValidateAudience bool
	// ValidateLifetime enforces exp during the parse. When false the parse
	// is lifetime agnostic so claims can be extracted from borderline
	// expired tokens; signature and algorithm checks always apply.
	ValidateLifetime bool
	// ClockSkew is the leniency window applied to exp. Zero means exact
	// expiry enforcement.
	ClockSkew time.Duration
}

// TokenCodec encodes, decodes, signs, and verifies compact signed claim
// sets. It is purely mechanical: claim semantics belong to the caller. The
// algorithm is fixed to HMAC-SHA256 and Verify rejects anything else,
// including "none", to prevent alg-confusion attacks.
type TokenCodec struct {
	logger Logger
}

// NewTokenCodec creates a codec with the given logger.
func NewTokenCodec(logger Logger) *TokenCodec {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenCodec{logger: logger}
}

// Sign serializes the claims and signs them with HMAC-SHA256 keyed by
// secret.
func (tc *TokenCodec) Sign(claims *JWTClaims, secret []byte) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify parses and verifies a compact token string, returning structured
// claims. Failures map onto the rich token errors: ErrTokenExpired when the
// lifetime check fails, ErrTokenMalformed for undecodable input, and
// ErrTokenInvalid for everything else (bad signature, wrong algorithm,
// issuer or audience mismatch).
func (tc *TokenCodec) Verify(tokenString string, secret []byte, opts VerifyOptions) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, ErrNoEmptyToken
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}

	if opts.ValidateLifetime {
		parserOptions = append(parserOptions,
			jwt.WithLeeway(opts.ClockSkew),
			jwt.WithExpirationRequired(),
		)
		if opts.ValidateIssuer && opts.Issuer != "" {
			parserOptions = append(parserOptions, jwt.WithIssuer(opts.Issuer))
		}
		if opts.ValidateAudience && opts.Audience != "" {
			parserOptions = append(parserOptions, jwt.WithAudience(opts.Audience))
		}
	} else {
		// Lifetime agnostic pass: skip the built-in claim validation
		// entirely and re-check issuer/audience by hand below.
		parserOptions = append(parserOptions, jwt.WithoutClaimsValidation())
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			tc.logger.Error("token codec encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, parserOptions...)

	if err != nil {
		return nil, tc.mapParseError(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		tc.logger.Error("token codec could not decode claims")
		return nil, ErrTokenInvalid
	}

	if !opts.ValidateLifetime {
		if err := verifyIssuerAudience(claims, opts); err != nil {
			return nil, err
		}
	}

	return claims, nil
}

func (tc *TokenCodec) mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode)
	default:
		return errors.Wrap(err, ErrTokenInvalid.Category, ErrTokenInvalid.Message).
			WithTextCode(ErrTokenInvalid.TextCode)
	}
}

func verifyIssuerAudience(claims *JWTClaims, opts VerifyOptions) error {
	if opts.ValidateIssuer && opts.Issuer != "" {
		if claims.RegisteredClaims.Issuer != opts.Issuer {
			return ErrTokenInvalid
		}
	}

	if opts.ValidateAudience && opts.Audience != "" {
		found := false
		for _, aud := range claims.RegisteredClaims.Audience {
			if aud == opts.Audience {
				found = true
				break
			}
		}
		if !found {
			return ErrTokenInvalid
		}
	}

	return nil
}
