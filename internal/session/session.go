// Package session is the secure-credential collaborator: it keeps one
// opaque token on disk whose presence marks the install as
// authenticated. The token is a signed JWT carrying the user id, but
// nothing here expires it; the data layer stays the source of truth
// for identity.
package session

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrNoSession reports that no token is stored.
var ErrNoSession = errors.New("no active session")

// Manager mints, verifies and clears the on-disk session token.
type Manager struct {
	tokenPath string
	secret    []byte
}

func NewManager(tokenPath string, secret string) *Manager {
	return &Manager{tokenPath: tokenPath, secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
}

// Open mints a token for userID and stores it. Overwrites any previous
// session.
func (m *Manager) Open(userID string) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  userID,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session token: %w", err)
	}
	if err := os.WriteFile(m.tokenPath, []byte(signed), 0600); err != nil {
		return fmt.Errorf("store session token: %w", err)
	}
	return nil
}

// UserID verifies the stored token and returns the user id it was
// minted for. Returns ErrNoSession when no token is stored.
func (m *Manager) UserID() (string, error) {
	raw, err := os.ReadFile(m.tokenPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("read session token: %w", err)
	}

	var c claims
	token, err := jwt.ParseWithClaims(string(raw), &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return "", ErrNoSession
	}
	return c.Subject, nil
}

// Active reports whether a verifiable token is stored.
func (m *Manager) Active() bool {
	_, err := m.UserID()
	return err == nil
}

// Close removes the stored token. Removing an absent token is a no-op.
func (m *Manager) Close() error {
	if err := os.Remove(m.tokenPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session token: %w", err)
	}
	return nil
}
