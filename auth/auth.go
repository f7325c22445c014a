// Package auth resolves request credentials to user identities. The HTTP
// layer depends only on the Authenticator interface so a hosted identity
// provider can be swapped in without touching handlers.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrUnauthenticated is returned when a credential cannot be resolved to a
// user.
var ErrUnauthenticated = errors.New("auth: invalid or missing credentials")

// Identity is the resolved caller of a request.
type Identity struct {
	UserID string
	Email  string
}

// Authenticator resolves a bearer token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// StaticAuthenticator maps fixed tokens to identities. It is the development
// implementation; production deployments plug in a real provider behind the
// same interface.
type StaticAuthenticator struct {
	mu     sync.RWMutex
	tokens map[string]Identity
}

// NewStaticAuthenticator builds an authenticator over a fixed token table.
func NewStaticAuthenticator(tokens map[string]Identity) *StaticAuthenticator {
	cp := make(map[string]Identity, len(tokens))
	for k, v := range tokens {
		cp[k] = v
	}
	return &StaticAuthenticator{tokens: cp}
}

// AddToken registers or replaces a token.
func (s *StaticAuthenticator) AddToken(token string, id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = id
}

// Authenticate implements Authenticator.
func (s *StaticAuthenticator) Authenticate(_ context.Context, token string) (Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[strings.TrimSpace(token)]
	if !ok {
		return Identity{}, ErrUnauthenticated
	}
	return id, nil
}

// BearerToken extracts the token from an Authorization header value. An empty
// return means no bearer credential was presented.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
