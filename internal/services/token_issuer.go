package services

import (
	"errors"
	"fmt"
	"time"

	"ingreedio/internal/models"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

// MinSigningKeyLength is the shortest accepted HMAC secret, in bytes.
const MinSigningKeyLength = 32

// ErrWeakSigningKey is returned when the configured secret is missing or too short.
var ErrWeakSigningKey = errors.New("jwt signing secret must be at least 32 bytes")

// Claims carried by every issued token.
type Claims struct {
	Email string   `json:"email"`
	Roles []string `json:"roles,omitempty"`
	jwt.StandardClaims
}

// Identity converts verified claims into the caller identity.
func (c *Claims) Identity() *models.Identity {
	return &models.Identity{
		UserID: c.Subject,
		Email:  c.Email,
		Roles:  append([]string(nil), c.Roles...),
	}
}

// JWTIssuer signs and verifies HS256 tokens with a symmetric secret.
type JWTIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewJWTIssuer creates a new JWTIssuer. A weak secret is rejected.
func NewJWTIssuer(secret string) (*JWTIssuer, error) {
	if len(secret) < MinSigningKeyLength {
		return nil, ErrWeakSigningKey
	}
	return &JWTIssuer{
		secret: []byte(secret),
		now:    time.Now,
	}, nil
}

// Issue builds a signed token for the user, valid for one calendar month.
func (i *JWTIssuer) Issue(user *models.User, roles []string) (string, error) {
	now := i.now()
	claims := &Claims{
		Email: user.Email,
		Roles: roles,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.New().String(),
			Subject:   user.ID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.AddDate(0, 1, 0).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, nil
}

// Parse verifies the signature and expiry of a token and returns its claims.
func (i *JWTIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
