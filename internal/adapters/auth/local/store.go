// Package local implementa el verifier/issuer de tokens opacos en memoria.
// Es el modo default (dev y tests); en deploys con identity provider remoto
// se usa el adapter gatekeeper y este store queda sin emitir.
package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"

	"pet-adoption-market/internal/ports/auth"
)

var (
	ErrInvalidToken = errors.New("invalid token")
)

type Store struct {
	mu      sync.RWMutex
	byToken map[string]auth.Claims
}

func NewStore() *Store {
	return &Store{
		byToken: make(map[string]auth.Claims),
	}
}

// Issue genera un token opaco para claims ya autenticadas.
func (s *Store) Issue(claims auth.Claims) (string, error) {
	raw := make([]byte, 24)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[token] = claims
	return token, nil
}

func (s *Store) Verify(ctx context.Context, token string) (auth.Claims, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	claims, ok := s.byToken[token]
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// Revoke invalida un token (logout).
func (s *Store) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, token)
}
