package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	OrdenPendiente = "PENDIENTE"
	OrdenRecibida  = "RECIBIDA"
	OrdenCancelada = "CANCELADA"
)

// OrdenCompra moves PENDIENTE -> RECIBIDA | CANCELADA. Stock only changes on
// reception, through the Compra it generates.
type OrdenCompra struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     *uuid.UUID      `gorm:"type:uuid"`
	ProductoNombre string          `gorm:"not null"`
	ProductoCodigo int             `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	CostoUnitario  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Estado         string          `gorm:"type:varchar(20);not null;default:'PENDIENTE'"`
	CompraID       *uuid.UUID      `gorm:"type:uuid"`
	RecibidaAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

func (OrdenCompra) TableName() string { return "ordenes_compra" }
