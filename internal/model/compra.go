package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Compra is a supplier purchase whose lines were received into stock.
type Compra struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrdenCompraID *uuid.UUID      `gorm:"type:uuid"`
	UsuarioID     *uuid.UUID      `gorm:"type:uuid"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time

	Detalles  []DetalleCompra `gorm:"foreignKey:CompraID"`
	Proveedor *Proveedor      `gorm:"foreignKey:ProveedorID"`
}

type DetalleCompra struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompraID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     *uuid.UUID      `gorm:"type:uuid;index"`
	ProductoNombre string          `gorm:"not null"`
	ProductoCodigo int             `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (DetalleCompra) TableName() string { return "detalle_compras" }
