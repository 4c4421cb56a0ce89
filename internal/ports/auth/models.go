package auth

// Claims representa la identidad resuelta de un request.
// Role viaja como string plano para no acoplar este port al módulo identity.
type Claims struct {
	UserID string
	Role   string // user | shelter | admin
	Active bool
}
