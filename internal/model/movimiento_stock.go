package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoEntrada = "ENTRADA"
	MovimientoSalida  = "SALIDA"
)

// MovimientoStock is one ledger entry. Cantidad is always positive; the sign
// comes from Tipo.
type MovimientoStock struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Tipo             string    `gorm:"type:varchar(10);not null"`
	Cantidad         int       `gorm:"not null"`
	StockAnterior    int       `gorm:"not null"`
	StockNuevo       int       `gorm:"not null"`
	NumeroReferencia *string   `gorm:"type:varchar(100);uniqueIndex"`
	Motivo           string
	UsuarioID        *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (MovimientoStock) TableName() string { return "movimientos_stock" }

// Delta returns the signed effect of the movement on stock.
func (m MovimientoStock) Delta() int {
	if m.Tipo == MovimientoSalida {
		return -m.Cantidad
	}
	return m.Cantidad
}
