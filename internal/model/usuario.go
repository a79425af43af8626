package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	RolAdmin  = "ADMIN"
	RolCajero = "CAJERO"
)

// Usuario stores system users. Rol: "ADMIN" | "CAJERO"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Rol          string    `gorm:"type:varchar(10);not null"`
	Activo       bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
