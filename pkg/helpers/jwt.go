package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionVerifier validates the identity tokens the frontend presents and can
// mint equivalent tokens for local development.
type SessionVerifier struct {
	Secret []byte
	TTL    time.Duration
}

func NewSessionVerifier(secret string, ttl time.Duration) *SessionVerifier {
	return &SessionVerifier{Secret: []byte(secret), TTL: ttl}
}

// SessionClaims mirror the claim names used by the identity provider's ID tokens.
type SessionClaims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// UID returns user_id, falling back to the subject claim.
func (c *SessionClaims) UID() string {
	if c.UserID != "" {
		return c.UserID
	}
	return c.Subject
}

func (v *SessionVerifier) Sign(uid, email, name, picture string) (string, time.Time, error) {
	exp := time.Now().Add(v.TTL)
	claims := &SessionClaims{
		UserID:  uid,
		Email:   email,
		Name:    name,
		Picture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(v.Secret)
	return s, exp, err
}

func (v *SessionVerifier) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Email == "" {
		return nil, errors.New("token carries no email")
	}
	return claims, nil
}
