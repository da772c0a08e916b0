// Package token signs and verifies the compact HMAC tokens handed to clients.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed payload: the principal under "data" and the expiry under "exp".
type Claims[T any] struct {
	Data T `json:"data"`
	jwt.RegisteredClaims
}

// Option configures a JwtService.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for both expiry computation and validation.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// JwtService handles JWT operations for payloads of type T.
// It holds only immutable configuration and is safe for concurrent use.
type JwtService[T any] struct {
	secretKey []byte
	method    *jwt.SigningMethodHMAC
	now       func() time.Time
	parser    *jwt.Parser
}

// NewJwtService creates a JWT service signing with the named HMAC algorithm.
// It signs a probe token so configuration mistakes surface here instead of per request.
func NewJwtService[T any](secretKey, algorithm string, opts ...Option) (*JwtService[T], error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: empty secret", ErrSigningConfiguration)
	}

	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrSigningConfiguration, algorithm)
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	s := &JwtService[T]{
		secretKey: []byte(secretKey),
		method:    method,
		now:       o.now,
	}
	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(s.now),
	)

	probe := jwt.NewWithClaims(method, jwt.RegisteredClaims{})
	if _, err := probe.SignedString(s.secretKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSigningConfiguration, err)
	}

	return s, nil
}

// Algorithm returns the JWT "alg" header value used for signing.
func (s *JwtService[T]) Algorithm() string {
	return s.method.Alg()
}

// Generate creates a token carrying data that expires expTime from now.
func (s *JwtService[T]) Generate(data T, expTime time.Duration) (string, error) {
	claims := Claims[T]{
		Data: data,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(expTime)),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigningConfiguration, err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of tokenString and returns its claims.
// Errors wrap ErrTokenMalformed, ErrTokenSignatureInvalid or ErrTokenExpired.
func (s *JwtService[T]) Decode(tokenString string) (*Claims[T], error) {
	claims := &Claims[T]{}
	token, err := s.parser.ParseWithClaims(tokenString, claims, s.getSigningKey)
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Payload decodes tokenString and returns only the data it carries.
func (s *JwtService[T]) Payload(tokenString string) (T, error) {
	claims, err := s.Decode(tokenString)
	if err != nil {
		var zero T
		return zero, err
	}
	return claims.Data, nil
}

// Valid reports whether tokenString decodes without error.
func (s *JwtService[T]) Valid(tokenString string) bool {
	_, err := s.Decode(tokenString)
	return err == nil
}

// getSigningKey returns the signing key for token validation.
func (s *JwtService[T]) getSigningKey(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return s.secretKey, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", ErrTokenSignatureInvalid, err)
	default:
		return fmt.Errorf("%w: %w", ErrTokenMalformed, err)
	}
}
