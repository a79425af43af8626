package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Codigo       int             `json:"codigo"        validate:"required,min=1"`
	Nombre       string          `json:"nombre"        validate:"required,min=2,max=200"`
	Descripcion  *string         `json:"descripcion"`
	PrecioCompra decimal.Decimal `json:"precio_compra" validate:"min=0"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"  validate:"min=0"`
	// StockInicial is recorded as an ENTRADA movement, never written directly.
	StockInicial int `json:"stock_inicial" validate:"min=0"`
}

// ActualizarProductoRequest never carries stock: stock only changes through movements.
type ActualizarProductoRequest struct {
	Codigo       *int             `json:"codigo"        validate:"omitempty,min=1"`
	Nombre       *string          `json:"nombre"        validate:"omitempty,min=2,max=200"`
	Descripcion  *string          `json:"descripcion"`
	PrecioCompra *decimal.Decimal `json:"precio_compra"`
	PrecioVenta  *decimal.Decimal `json:"precio_venta"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	Q      string `form:"q"`
	Activo string `form:"activo"` // "true" (default) | "false" | "all"
	Page   int    `form:"page,default=1"`
	Limit  int    `form:"limit,default=20"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID           string          `json:"id"`
	Codigo       int             `json:"codigo"`
	Nombre       string          `json:"nombre"`
	Descripcion  *string         `json:"descripcion"`
	PrecioCompra decimal.Decimal `json:"precio_compra"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Stock        int             `json:"stock"`
	Activo       bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data       []ProductoResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// ProductoBusquedaItem is the autocomplete payload.
type ProductoBusquedaItem struct {
	ID           string          `json:"id"`
	Codigo       int             `json:"codigo"`
	Nombre       string          `json:"nombre"`
	PrecioCompra decimal.Decimal `json:"precio_compra"`
	PrecioVenta  decimal.Decimal `json:"precio_venta"`
	Stock        int             `json:"stock"`
}
