package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/gatekeeper/internal/model"
)

const (
	issuer           = "gatekeeper"
	typeAccess       = "access"
	defaultAccessTTL = 15 * time.Minute
)

// Claims carries the operator username in the subject.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

var _ model.TokenManager = (*JWT)(nil)

// JWT implements TokenManager backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewJWT creates a token manager signing with secretKey. A non-positive ttl
// falls back to 15 minutes.
func NewJWT(secretKey string, ttl time.Duration) *JWT {
	if ttl <= 0 {
		ttl = defaultAccessTTL
	}
	return &JWT{
		secretKey: []byte(secretKey),
		ttl:       ttl,
		now:       time.Now,
	}
}

// GenerateAccessToken issues a short-lived token for username.
func (j *JWT) GenerateAccessToken(username string) (string, error) {
	if username == "" {
		return "", errors.New("empty subject")
	}

	now := j.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
		TokenType: typeAccess,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// ParseAccessToken validates an access token and returns its subject.
func (j *JWT) ParseAccessToken(tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}
	if !token.Valid {
		return "", fmt.Errorf("access token is invalid")
	}
	if claims.TokenType != typeAccess {
		return "", fmt.Errorf("token type mismatch: %s", claims.TokenType)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("access token has no subject")
	}

	return claims.Subject, nil
}
