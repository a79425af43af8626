package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MetodoEfectivo      = "EFECTIVO"
	MetodoTarjeta       = "TARJETA"
	MetodoTransferencia = "TRANSFERENCIA"
)

// Venta is a finalized sale. Total is the pre-discount subtotal; TotalFinal
// includes IVA.
type Venta struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NumeroTicket     int             `gorm:"uniqueIndex;not null"`
	UsuarioID        *uuid.UUID      `gorm:"type:uuid;index"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DescuentoGeneral decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IVAPorcentaje    decimal.Decimal `gorm:"column:iva_porcentaje;type:decimal(5,2);not null"`
	IVATotal         decimal.Decimal `gorm:"column:iva_total;type:decimal(12,2);not null"`
	TotalFinal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago       string          `gorm:"type:varchar(20);not null"`
	MontoRecibido    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Cambio           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ClienteEmail     *string
	CreatedAt        time.Time

	Detalles []DetalleVenta `gorm:"foreignKey:VentaID"`
	Usuario  *Usuario       `gorm:"foreignKey:UsuarioID"`
}

// DetalleVenta keeps a snapshot of the product so the line survives product deletion.
type DetalleVenta struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     *uuid.UUID      `gorm:"type:uuid;index"`
	ProductoNombre string          `gorm:"not null"`
	ProductoCodigo int             `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

func (DetalleVenta) TableName() string { return "detalle_ventas" }
