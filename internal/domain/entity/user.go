package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleOperator   = "operador"
)

// User representa un usuario de planta (operador o supervisor).
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, supervisor, operador
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsActive indica si el usuario puede autenticarse.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == "active"
}
