package domain

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Admin gates inventory writes; clients only read.
const (
	RoleAdmin  = "admin"
	RoleClient = "cliente"
)

// User represents a platform account. Email is the login identifier.
// IsStaff and IsSuperuser are set together with the admin role at
// registration time and grant elevated platform privileges.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"nombre"`
	Surname      string    `json:"surname" db:"apellido"`
	Role         string    `json:"role" db:"rol"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser  bool      `json:"is_superuser" db:"is_superuser"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// Address belongs to exactly one user and is removed with it.
type Address struct {
	ID         int64     `json:"id" db:"id"`
	UserID     uuid.UUID `json:"user_id" db:"usuario_id"`
	City       string    `json:"city" db:"ciudad"`
	Country    string    `json:"country" db:"pais"`
	Street     string    `json:"street" db:"direccion"`
	PostalCode string    `json:"postal_code" db:"codigo_postal"`
}

// RefreshToken is the DB-backed half of the token pair issued at login.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
