package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiaoying/sales-assistant/internal/api/metrics"
	"github.com/xiaoying/sales-assistant/internal/core/domain"
	"github.com/xiaoying/sales-assistant/internal/core/ports"
)

// AuthService issues and verifies access tokens for the single configured
// account.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	tokenTTL     time.Duration
	revoker      ports.TokenRevoker
	log          zerolog.Logger
	now          func() time.Time
}

// NewAuthService hashes password once so that logins compare against a
// bcrypt hash rather than the plaintext. revoker may be nil, which disables
// logout.
func NewAuthService(username, password, jwtSecret string, tokenTTL time.Duration, revoker ports.TokenRevoker, log zerolog.Logger) (*AuthService, error) {
	if jwtSecret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	return &AuthService{
		username:     username,
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
		tokenTTL:     tokenTTL,
		revoker:      revoker,
		log:          log.With().Str("component", "auth_service").Logger(),
		now:          time.Now,
	}, nil
}

func (s *AuthService) Login(_ context.Context, username, password string) (*domain.IssuedToken, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid_credentials").Inc()
		s.log.Warn().Str("username", username).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(username)
	if err != nil {
		return nil, err
	}
	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()
	s.log.Info().Str("username", username).Msg("login succeeded")
	return token, nil
}

// Verify checks signature, algorithm and expiry, then the revocation set.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("verify", reason(err)).Inc()
		return nil, err
	}

	if s.revoker != nil && claims.TokenID != "" {
		revoked, err := s.revoker.IsRevoked(ctx, claims.TokenID)
		if err != nil {
			s.log.Warn().Err(err).Str("jti", claims.TokenID).Msg("revocation check failed, accepting token")
		} else if revoked {
			metrics.AuthAttemptsTotal.WithLabelValues("verify", "revoked").Inc()
			return nil, domain.ErrTokenRevoked
		}
	}
	return claims, nil
}

// Logout revokes the token identified by claims until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if s.revoker == nil || claims == nil || claims.TokenID == "" {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.TokenID, claims.ExpiresAt); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("username", claims.Subject).Str("jti", claims.TokenID).Msg("token revoked")
	return nil
}

func (s *AuthService) parse(token string) (*domain.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenMissing
	}

	var rc jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &rc, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domain.ErrTokenExpired
	case err != nil || !parsed.Valid:
		return nil, domain.ErrTokenInvalid
	}

	claims := &domain.Claims{Subject: rc.Subject, TokenID: rc.ID}
	if rc.IssuedAt != nil {
		claims.IssuedAt = rc.IssuedAt.Time
	}
	if rc.ExpiresAt != nil {
		claims.ExpiresAt = rc.ExpiresAt.Time
	}
	return claims, nil
}

func (s *AuthService) generateToken(subject string) (*domain.IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.tokenTTL)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        ulid.Make().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &domain.IssuedToken{Token: signed, ExpiresAt: exp.UTC().Truncate(time.Second)}, nil
}

func reason(err error) string {
	switch {
	case errors.Is(err, domain.ErrTokenMissing):
		return "missing"
	case errors.Is(err, domain.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrTokenRevoked):
		return "revoked"
	default:
		return "invalid"
	}
}
