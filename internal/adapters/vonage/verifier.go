package vonage

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// SignatureVerifier checks a signed token against a shared secret.
type SignatureVerifier interface {
	VerifySignature(token, secret string) bool
}

// HS256Verifier validates HMAC-SHA256 JWTs such as the ones Vonage puts in
// the Authorization header of Messages API webhooks.
type HS256Verifier struct{}

// VerifySignature reports whether token is a well-formed HS256 JWT signed
// with secret whose registered claims (exp, nbf) are currently valid. Any
// failure, including a malformed token, is false.
func (HS256Verifier) VerifySignature(token, secret string) bool {
	token = strings.TrimSpace(token)
	if token == "" || secret == "" {
		return false
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return err == nil && parsed.Valid
}

// PayloadHashMatches compares the token's payload_hash claim, when present,
// with the SHA-256 of body. Tokens without the claim match. The signature is
// not checked here; call VerifySignature first.
func PayloadHashMatches(token string, body []byte) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return false
	}
	want, ok := claims["payload_hash"].(string)
	if !ok || want == "" {
		return true
	}
	sum := sha256.Sum256(body)
	return strings.EqualFold(want, hex.EncodeToString(sum[:]))
}
