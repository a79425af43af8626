package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,gt=0"`
}

// FinalizarVentaRequest is the cart submitted at checkout.
type FinalizarVentaRequest struct {
	Items            []ItemVentaRequest `json:"items"             validate:"required,min=1,dive"`
	DescuentoGeneral decimal.Decimal    `json:"descuento_general"`
	MetodoPago       string             `json:"metodo_pago"       validate:"required,oneof=EFECTIVO TARJETA TRANSFERENCIA"`
	MontoRecibido    decimal.Decimal    `json:"monto_recibido"`
	ClienteEmail     *string            `json:"cliente_email"     validate:"omitempty,email"`
}

type VentaFilter struct {
	Desde string `form:"desde"` // YYYY-MM-DD
	Hasta string `form:"hasta"` // YYYY-MM-DD
	Page  int    `form:"page,default=1"`
	Limit int    `form:"limit,default=50"`
	// UsuarioID is set by the service for CAJERO callers, never from the query.
	UsuarioID string `form:"-"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type DetalleVentaResponse struct {
	ID             string          `json:"id"`
	ProductoID     *string         `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre"`
	ProductoCodigo int             `json:"producto_codigo"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID               string                 `json:"id"`
	NumeroTicket     int                    `json:"numero_ticket"`
	Cajero           string                 `json:"cajero,omitempty"`
	Detalles         []DetalleVentaResponse `json:"detalles"`
	Total            decimal.Decimal        `json:"total"`
	DescuentoGeneral decimal.Decimal        `json:"descuento_general"`
	IVAPorcentaje    decimal.Decimal        `json:"iva_porcentaje"`
	IVATotal         decimal.Decimal        `json:"iva_total"`
	TotalFinal       decimal.Decimal        `json:"total_final"`
	MetodoPago       string                 `json:"metodo_pago"`
	MontoRecibido    decimal.Decimal        `json:"monto_recibido"`
	Cambio           decimal.Decimal        `json:"cambio"`
	ClienteEmail     *string                `json:"cliente_email,omitempty"`
	CreatedAt        string                 `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
