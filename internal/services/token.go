package services

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/models"
	"github.com/ahmetcoskunkizilkaya/agent-distribution/internal/principal"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenIssuer signs HS256 access tokens for both realms with one secret. The
// realm claim keeps an agent token from opening admin routes and vice versa.
type TokenIssuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

func (t *TokenIssuer) Issue(kind models.PrincipalKind, id uuid.UUID, email string) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.expiry)
	claims := jwt.MapClaims{
		"sub":   id.String(),
		"email": email,
		"realm": principal.RealmForKind(kind),
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
