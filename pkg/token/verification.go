package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// VerificationClaims is the payload of an email-verification token.
// Email is embedded so that a token issued for one address cannot confirm
// another if the user changes their email before clicking the link.
type VerificationClaims struct {
	jwt.RegisteredClaims
	UserID  int64  `json:"user_id"`
	Email   string `json:"email"`
	Purpose string `json:"purpose"`
}

const purposeEmailVerify = "email_verify"

// Manager issues and verifies signed email-verification tokens
type Manager struct {
	secretKey []byte
	ttl       time.Duration
}

// NewManager creates a token manager. ttl bounds how long a
// verification link stays valid.
func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secretKey: []byte(secret), ttl: ttl}
}

// GenerateVerification returns a signed, time-boxed token for the given
// user and email address
func (m *Manager) GenerateVerification(userID int64, email string) (string, error) {
	now := time.Now()
	claims := &VerificationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID:  userID,
		Email:   email,
		Purpose: purposeEmailVerify,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyVerification validates a token and returns its claims
func (m *Manager) VerifyVerification(tokenString string) (*VerificationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secretKey, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*VerificationClaims)
	if !ok || !token.Valid || claims.Purpose != purposeEmailVerify {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
