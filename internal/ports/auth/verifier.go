package auth

import "context"

// AuthVerifier resuelve un token opaco a claims (id, role, active) o error.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenIssuer emite un token opaco para claims ya autenticadas.
// Lo implementa el adapter local; con verifier remoto el login queda deshabilitado.
type TokenIssuer interface {
	Issue(claims Claims) (string, error)
}
