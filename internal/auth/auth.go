package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the operator ID or password does
// not match the configured credential.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned for tokens that fail validation.
var ErrInvalidToken = errors.New("invalid token")

// Service issues and verifies HS256 bearer tokens for the helpdesk
// operator accounts that front the assistant.
type Service struct {
	secret       []byte
	operatorID   string
	operatorHash string
	tokenTTL     time.Duration
}

// NewService builds service. operatorHash is a bcrypt hash of the
// operator password.
func NewService(secret, operatorID, operatorHash string, tokenTTL time.Duration) *Service {
	return &Service{
		secret:       []byte(secret),
		operatorID:   operatorID,
		operatorHash: operatorHash,
		tokenTTL:     tokenTTL,
	}
}

// IssueToken checks the operator credential and returns a signed token.
func (s *Service) IssueToken(operatorID, password string) (string, error) {
	if operatorID != s.operatorID {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.operatorHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": operatorID,
		"iat": now.Unix(),
		"exp": now.Add(s.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify validates the token and returns its subject.
func (s *Service) Verify(tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	subject, ok := claims["sub"].(string)
	if !ok || subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}
