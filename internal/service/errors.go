package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Domain errors. Services wrap them with detail via fmt.Errorf("%w: ...");
// handlers match them with errors.Is to pick the HTTP status.
var (
	ErrNoEncontrado           = errors.New("recurso no encontrado")
	ErrStockInsuficiente      = errors.New("stock insuficiente")
	ErrReferenciaDuplicada    = errors.New("numero de referencia duplicado")
	ErrReferenciaReservada    = errors.New("numero de referencia reservado para movimientos del sistema")
	ErrCantidadInvalida       = errors.New("la cantidad debe ser mayor a cero")
	ErrTipoMovimientoInvalido = errors.New("tipo de movimiento invalido")
	ErrDescuentoInvalido      = errors.New("descuento invalido")
	ErrPagoInsuficiente       = errors.New("el monto recibido es insuficiente")
	ErrTransicionInvalida     = errors.New("transicion de estado invalida")
	ErrPermisoDenegado        = errors.New("permisos insuficientes")
	ErrCodigoDuplicado        = errors.New("ya existe un producto con ese codigo")
	ErrCorreoDuplicado        = errors.New("ya existe un proveedor con ese correo")
	ErrUsuarioDuplicado       = errors.New("ya existe un usuario con ese username o email")
	ErrProductoInactivo       = errors.New("producto inactivo")
	ErrProductoRepetido       = errors.New("producto repetido en la solicitud")
	ErrSinProductos           = errors.New("no hay productos en la solicitud")
	ErrCredencialesInvalidas  = errors.New("credenciales invalidas")
	ErrPrecioInvalido         = errors.New("los precios no pueden ser negativos")
	ErrFechaInvalida          = errors.New("fecha invalida, use YYYY-MM-DD")
	ErrEstadoInvalido         = errors.New("estado desconocido")
)

// Actor is the authenticated user on whose behalf an operation runs.
type Actor struct {
	ID  uuid.UUID
	Rol string
}

func (a Actor) idPtr() *uuid.UUID {
	if a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFound maps GORM's missing-row error to ErrNoEncontrado and passes others through.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoEncontrado
	}
	return err
}

func decimalFromInt(n int) decimal.Decimal { return decimal.NewFromInt(int64(n)) }

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
