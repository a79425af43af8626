package model

import (
	"time"

	"github.com/google/uuid"
)

// Devolucion records units of a sale line returned to stock.
type Devolucion struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        *uuid.UUID `gorm:"type:uuid;index"`
	DetalleVentaID *uuid.UUID `gorm:"type:uuid;index"`
	ProductoID     *uuid.UUID `gorm:"type:uuid"`
	ProductoNombre string     `gorm:"not null"`
	Cantidad       int        `gorm:"not null"`
	Motivo         string
	UsuarioID      *uuid.UUID `gorm:"type:uuid;index"`
	MovimientoID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Venta *Venta `gorm:"foreignKey:VentaID"`
}

func (Devolucion) TableName() string { return "devoluciones" }
