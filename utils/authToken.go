package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/o1egl/paseto"
)

var (
	ErrInvalidKey   = errors.New("SYMMETRIC_KEY must be 32 bytes long")
	ErrTokenExpired = errors.New("token expired")
)

// SessionClaims is what the session cookie carries.
type SessionClaims struct {
	SID    string    `json:"sid"`
	Expiry time.Time `json:"expiry"`
}

// SessionSealer encrypts session ids into PASETO v2 local tokens so the
// cookie value cannot be forged or read by the client.
type SessionSealer struct {
	key []byte
	now func() time.Time
}

func NewSessionSealer(symmetricKey string) (*SessionSealer, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("%w: current length %d", ErrInvalidKey, len(symmetricKey))
	}
	return &SessionSealer{key: []byte(symmetricKey), now: time.Now}, nil
}

// Seal returns a token for sid valid for ttl.
func (s *SessionSealer) Seal(sid string, ttl time.Duration) (string, error) {
	claims := SessionClaims{SID: sid, Expiry: s.now().Add(ttl)}
	token, err := paseto.NewV2().Encrypt(s.key, claims, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return token, nil
}

// Open decrypts token and checks its expiry.
func (s *SessionSealer) Open(token string) (*SessionClaims, error) {
	var claims SessionClaims
	if err := paseto.NewV2().Decrypt(token, s.key, &claims, nil); err != nil {
		return nil, fmt.Errorf("failed to decrypt token: %w", err)
	}
	if claims.SID == "" {
		return nil, errors.New("token carries no session")
	}
	if !s.now().Before(claims.Expiry) {
		return nil, ErrTokenExpired
	}
	return &claims, nil
}

// Stale reports whether claims have used up more than half of ttl, after
// which an active session gets a freshly sealed cookie.
func (s *SessionSealer) Stale(claims *SessionClaims, ttl time.Duration) bool {
	return claims.Expiry.Sub(s.now()) < ttl/2
}
