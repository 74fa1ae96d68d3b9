// Package auth issues and validates the bearer tokens that identify a user
// for history endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails parsing or validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims represents JWT claims with the user identity.
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// User is the identity carried through a request context.
type User struct {
	ID    string
	Email string
}

// Service provides HS256 token generation and validation.
type Service struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewService builds a Service. A non-positive expiration defaults to 24 hours.
func NewService(secret string, expiration time.Duration) (*Service, error) {
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}
	return &Service{secret: []byte(secret), expiration: expiration, now: time.Now}, nil
}

// GenerateToken signs a token for user.
func (s *Service) GenerateToken(user User) (string, error) {
	if user.ID == "" {
		return "", errors.New("user id required")
	}
	now := s.now()
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses tokenString and returns the user it identifies.
func (s *Service) ValidateToken(tokenString string) (User, error) {
	if tokenString == "" {
		return User{}, fmt.Errorf("%w: empty", ErrInvalidToken)
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return User{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return User{}, fmt.Errorf("%w: bad signature", ErrInvalidToken)
		default:
			return User{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}
	if !token.Valid || claims.UserID == "" {
		return User{}, fmt.Errorf("%w: missing user", ErrInvalidToken)
	}
	return User{ID: claims.UserID, Email: claims.Email}, nil
}
