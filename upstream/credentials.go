package upstream

import (
	"time"

	"github.com/golang-jwt/jwt"
)

// CredentialProvider supplies the bearer token attached to upstream
// requests. An empty token means the request goes out unauthenticated.
type CredentialProvider interface {
	Token() string
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// JWTCredential presents a JWT only while its exp claim is in the future,
// so expired tokens are never attached to requests.
type JWTCredential struct {
	raw       string
	expiresAt time.Time
}

// NewJWTCredential parses the token's claims without verifying the
// signature (verification is the upstream's job) to learn its expiry.
func NewJWTCredential(raw string) (*JWTCredential, error) {
	claims := jwt.MapClaims{}
	parser := &jwt.Parser{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	cred := &JWTCredential{raw: raw}
	if exp, ok := claims["exp"].(float64); ok {
		cred.expiresAt = time.Unix(int64(exp), 0)
	}
	return cred, nil
}

func (c *JWTCredential) Token() string {
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt) {
		return ""
	}
	return c.raw
}

// NewCredentialProvider picks the JWT-aware provider when the token looks
// like a JWT, and falls back to a static token otherwise.
func NewCredentialProvider(token string) CredentialProvider {
	if token == "" {
		return StaticToken("")
	}
	if cred, err := NewJWTCredential(token); err == nil {
		return cred
	}
	return StaticToken(token)
}
