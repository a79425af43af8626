package model

import (
	"time"

	"github.com/google/uuid"
)

type Proveedor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"not null"`
	Telefono  string
	Direccion string
	Correo    string `gorm:"uniqueIndex;not null"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Proveedor) TableName() string { return "proveedores" }
