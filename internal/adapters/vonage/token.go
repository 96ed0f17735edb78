package vonage

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSource supplies the bearer credential attached to each request.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a pre-obtained bearer token.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", errors.New("vonage: empty bearer token")
	}
	return string(t), nil
}

// ApplicationToken mints a short-lived RS256 application JWT for every
// request. Nothing is cached between calls.
type ApplicationToken struct {
	ApplicationID string
	PrivateKey    *rsa.PrivateKey
	TTL           time.Duration

	now func() time.Time
}

// NewApplicationToken parses a PEM encoded RSA private key.
func NewApplicationToken(applicationID string, privateKeyPEM []byte) (*ApplicationToken, error) {
	if applicationID == "" {
		return nil, errors.New("vonage: application id is required")
	}
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("vonage: parse private key: %w", err)
	}
	return &ApplicationToken{ApplicationID: applicationID, PrivateKey: key, TTL: 15 * time.Minute}, nil
}

func (a *ApplicationToken) Token() (string, error) {
	now := time.Now
	if a.now != nil {
		now = a.now
	}
	ttl := a.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	issued := now()
	claims := jwt.MapClaims{
		"application_id": a.ApplicationID,
		"iat":            issued.Unix(),
		"exp":            issued.Add(ttl).Unix(),
		"jti":            uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(a.PrivateKey)
	if err != nil {
		return "", fmt.Errorf("vonage: sign application token: %w", err)
	}
	return signed, nil
}

// SelectTokenSource prefers a pre-obtained token and falls back to minting
// application JWTs.
func SelectTokenSource(token, applicationID string, privateKeyPEM []byte) (TokenSource, error) {
	if token != "" {
		return StaticToken(token), nil
	}
	return NewApplicationToken(applicationID, privateKeyPEM)
}
