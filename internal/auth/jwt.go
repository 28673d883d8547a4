package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the JWT claims we read from host tokens.
type Claims struct {
	UserID string `json:"sub"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// DefaultTTL is the lifetime of tokens minted by GenerateAccessToken.
const DefaultTTL = 15 * time.Minute

// JWTManager signs and validates HS256 access tokens. Tokens are normally
// issued by the workspace identity service; GenerateAccessToken backs
// `bookctl token` and tests that share the secret.
type JWTManager struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type JWTOption func(*JWTManager)

// WithTTL sets the lifetime of generated tokens.
func WithTTL(ttl time.Duration) JWTOption {
	return func(m *JWTManager) { m.ttl = ttl }
}

// WithIssuer stamps generated tokens with iss and rejects tokens from any other issuer.
func WithIssuer(iss string) JWTOption {
	return func(m *JWTManager) { m.issuer = iss }
}

// NewJWTManager creates a new JWT manager.
func NewJWTManager(secret string, opts ...JWTOption) *JWTManager {
	m := &JWTManager{
		secret: []byte(secret),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GenerateAccessToken creates a signed JWT for the given owner.
func (m *JWTManager) GenerateAccessToken(userID, email string) (string, error) {
	now := time.Now().UTC()

	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign jwt: %w", err)
	}

	return signed, nil
}

// ParseAndValidate validates a JWT and returns the parsed claims.
func (m *JWTManager) ParseAndValidate(tokenStr string) (*Claims, error) {
	parserOpts := []jwt.ParserOption{jwt.WithLeeway(5 * time.Second)}
	if m.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(m.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %T", t.Method)
		}
		return m.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwt: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid jwt token")
	}
	if claims.UserID == "" {
		return nil, errors.New("jwt token has no subject")
	}

	return claims, nil
}
