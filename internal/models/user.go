package models

import "time"

// Role define el perfil de un usuario
type Role string

const (
	RoleConsumer Role = "consumer"
	RoleSeller   Role = "seller"
	RoleAdmin    Role = "admin"
)

// UserStatus indica si el usuario puede iniciar sesión
type UserStatus string

const (
	UserActive  UserStatus = "active"
	UserBlocked UserStatus = "blocked"
)

// Valid reporta si r es un rol conocido
func (r Role) Valid() bool {
	switch r {
	case RoleConsumer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Valid reporta si s es un estado conocido
func (s UserStatus) Valid() bool {
	return s == UserActive || s == UserBlocked
}

// User representa una cuenta registrada
type User struct {
	ID           int64      `json:"id" bson:"_id"`
	Name         string     `json:"name" bson:"name"`
	Email        string     `json:"email" bson:"email"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         Role       `json:"role" bson:"role"`
	Status       UserStatus `json:"status" bson:"status"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}

// UserCandidate es el payload de registro
type UserCandidate struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=consumer seller admin"`
}

// UserUpdate cubre los cambios que hace un administrador
type UserUpdate struct {
	Role   *Role       `json:"role,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}
