package auth

import (
	"context"
	"time"
)

// Auther authenticates credentials and exchanges refresh tokens. It is the
// LoginService implementation: all cryptographic work happens in the
// TokenIssuer, all identity lookups in the IdentityProvider.
type Auther struct {
	provider     IdentityProvider
	issuer       *TokenIssuer
	logger       Logger
	activitySink ActivitySink
}

// NewAuthenticator returns a new Auther
func NewAuthenticator(provider IdentityProvider, cfg *SigningConfig) *Auther {
	return &Auther{
		provider:     provider,
		issuer:       NewTokenIssuer(cfg),
		logger:       defLogger{},
		activitySink: noopActivitySink{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
		s.issuer = s.issuer.WithLogger(logger)
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// WithClaimsDecorator configures a ClaimsDecorator for enriching JWTs.
func (s *Auther) WithClaimsDecorator(decorator ClaimsDecorator) *Auther {
	s.issuer = s.issuer.WithClaimsDecorator(decorator)
	return s
}

// TokenIssuer returns the TokenIssuer instance used by this Auther
func (s *Auther) TokenIssuer() *TokenIssuer {
	return s.issuer
}

// Login verifies the credentials and issues an (access, refresh) pair.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	if identity == nil {
		s.logger.Error("Login identity is nil")
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, ActorRef{Type: "unknown"}, "", map[string]any{
			"identifier": identifier,
			"error":      ErrIdentityNotFound.Error(),
		})
		return nil, ErrIdentityNotFound
	}

	pair, err := s.issuer.GenerateTokens(ctx, identity)
	if err != nil {
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, s.actorFromIdentity(identity), identity.ID(), map[string]any{
			"identifier": identifier,
			"error":      err.Error(),
		})
		return nil, err
	}

	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, s.actorFromIdentity(identity), identity.ID(), map[string]any{
		"identifier": identifier,
	})

	return pair, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (string, error) {
	accessToken, err := s.issuer.Freshen(refreshToken)
	if err != nil {
		s.logger.Error("Refresh token exchange failed", "error", err)
		return "", err
	}

	s.emitAuthEvent(ctx, ActivityEventTokenRefreshed, ActorRef{Type: "user"}, "", nil)

	return accessToken, nil
}

// Validate is the boolean probe over access token verification.
func (s *Auther) Validate(token string) bool {
	return s.issuer.ValidateToken(token)
}

// PrincipalFromToken returns the validated claim set for a token.
func (s *Auther) PrincipalFromToken(token string) (AuthClaims, error) {
	claims, err := s.issuer.GetPrincipal(token)
	if err != nil {
		s.logger.Error("PrincipalFromToken validation failed", "error", err)
		return nil, err
	}

	return claims, nil
}

// IdentityFromClaims resolves the stored identity behind validated claims.
func (s *Auther) IdentityFromClaims(ctx context.Context, claims AuthClaims) (Identity, error) {
	identity, err := s.provider.FindIdentityByIdentifier(ctx, claims.Email())
	if err != nil {
		s.logger.Error("IdentityFromClaims find identity error", "error", err)
		return nil, err
	}

	return identity, nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, actor ActorRef, userID string, metadata map[string]any) {
	sink := normalizeActivitySink(s.activitySink)
	event := ActivityEvent{
		EventType: eventType,
		Actor:     actor,
		UserID:    userID,
		Metadata:  metadata,
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error: %v", err)
	}
}

func (s *Auther) actorFromIdentity(identity Identity) ActorRef {
	if identity == nil {
		return ActorRef{Type: "unknown"}
	}

	return ActorRef{
		ID:   identity.ID(),
		Type: "user",
	}
}

var _ LoginService = (*Auther)(nil)
