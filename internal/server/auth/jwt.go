package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT dates are written with nanosecond fractions; see Claims.UnmarshalJSON
// for the matching exact decode.
func init() {
	jwt.TimePrecision = time.Nanosecond
}

// TokenConfig is the immutable signing configuration shared by issuance and
// validation. Key is used as raw bytes for HMAC-SHA256.
type TokenConfig struct {
	Key      []byte
	Issuer   string
	Audience string
	Duration time.Duration
}

// TokenService issues and validates HS256 bearer tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	key      []byte
	issuer   string
	audience string
	duration time.Duration
	parser   *jwt.Parser
}

// NewTokenService checks cfg and builds a TokenService. A misconfigured
// service is an error, never a service that rejects everything at runtime.
func NewTokenService(cfg TokenConfig) (*TokenService, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("token service: signing key is empty")
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token service: issuer and audience are required")
	}
	if cfg.Duration <= 0 {
		return nil, fmt.Errorf("token service: duration must be positive, got %v", cfg.Duration)
	}

	key := make([]byte, len(cfg.Key))
	copy(key, cfg.Key)

	return &TokenService{
		key:      key,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		duration: cfg.Duration,
		// time claims are checked by Validate itself, in order, with no leeway
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}, nil
}

// Duration is the configured token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}

// Issue signs a token for username valid from now for the configured
// duration. Timestamps keep sub-second precision, so the returned expiry is
// exactly now + duration and equals the token's exp claim.
func (s *TokenService) Issue(username string, now time.Time) (string, time.Time, error) {
	issuedAt := now.Round(0).UTC()
	expiresAt := issuedAt.Add(s.duration)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate runs the checks in order and stops at the first failure:
// structure, signature, issuer, audience, then the lifetime window
// nbf <= now < exp with zero tolerance. Any failure is a *ValidationError.
func (s *TokenService) Validate(tokenString string, now time.Time) (*Claims, error) {
	if tokenString == "" {
		return nil, NewValidationError(ErrMissingToken, "token is empty", nil)
	}

	claims := &Claims{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewValidationError(ErrInvalidSignature, "signature verification failed", err)
		default:
			return nil, NewValidationError(ErrMalformed, "malformed token", err)
		}
	}
	if !token.Valid {
		return nil, NewValidationError(ErrInvalidSignature, "token is invalid", nil)
	}

	if claims.Issuer != s.issuer {
		return nil, NewValidationError(ErrInvalidIssuer, fmt.Sprintf("unexpected issuer %q", claims.Issuer), nil)
	}

	if !slices.Contains(claims.Audience, s.audience) {
		return nil, NewValidationError(ErrInvalidAudience, "audience does not include this service", nil)
	}

	if claims.ExpiresAt == nil {
		return nil, NewValidationError(ErrMalformed, "exp claim missing", nil)
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, NewValidationError(ErrExpired, fmt.Sprintf("token expired at %v", claims.ExpiresAt.Time.UTC()), nil)
	}
	if claims.NotBefore != nil && now.Before(claims.NotBefore.Time) {
		return nil, NewValidationError(ErrNotYetValid, fmt.Sprintf("token not valid until %v", claims.NotBefore.Time.UTC()), nil)
	}

	if claims.Subject == "" {
		return nil, NewValidationError(ErrMalformed, "sub claim missing", nil)
	}

	return claims, nil
}

// keyFunc only hands out the secret for HMAC tokens.
func (s *TokenService) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return s.key, nil
}
