package identity

import "time"

// Role del usuario dentro del marketplace.
// @Enum user, shelter, admin
type Role string

const (
	RoleUser    Role = "user"    // adoptante / donante
	RoleShelter Role = "shelter" // publica y recibe mascotas
	RoleAdmin   Role = "admin"   // arbitra disputas
)

// User es la cuenta mínima que el resto del sistema necesita:
// (id, role, active) más credenciales para el login local.
type User struct {
	ID    string
	Email string
	Name  string

	Role   Role
	Active bool

	PasswordHash string
	PasswordSalt string

	CreatedAt time.Time
	UpdatedAt time.Time
}
