package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is a catalog item. Stock is a cached counter: it must always equal
// the sum of its ENTRADA movements minus the sum of its SALIDA movements.
type Producto struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo       int       `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"index;not null"`
	Descripcion  *string
	PrecioCompra decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PrecioVenta  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Stock        int             `gorm:"not null;default:0"`
	Activo       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
