package dto

import "github.com/shopspring/decimal"

// ─── Compras ─────────────────────────────────────────────────────────────────

type ItemCompraRequest struct {
	ProductoID     string          `json:"producto_id"     validate:"required,uuid"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario" validate:"min=0"`
}

type CrearCompraRequest struct {
	ProveedorID string              `json:"proveedor_id" validate:"required,uuid"`
	Items       []ItemCompraRequest `json:"items"        validate:"required,min=1,dive"`
}

type DetalleCompraResponse struct {
	ID             string          `json:"id"`
	ProductoID     *string         `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre"`
	ProductoCodigo int             `json:"producto_codigo"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type CompraResponse struct {
	ID            string                  `json:"id"`
	ProveedorID   string                  `json:"proveedor_id"`
	Proveedor     string                  `json:"proveedor,omitempty"`
	OrdenCompraID *string                 `json:"orden_compra_id"`
	Total         decimal.Decimal         `json:"total"`
	Detalles      []DetalleCompraResponse `json:"detalles"`
	CreatedAt     string                  `json:"created_at"`
}

type CompraFilter struct {
	ProveedorID string `form:"proveedor_id"`
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=50"`
}

type CompraListResponse struct {
	Data  []CompraResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// ─── Órdenes de compra ───────────────────────────────────────────────────────

type CrearOrdenCompraRequest struct {
	ProveedorID   string          `json:"proveedor_id"   validate:"required,uuid"`
	ProductoID    string          `json:"producto_id"    validate:"required,uuid"`
	Cantidad      int             `json:"cantidad"       validate:"required,gt=0"`
	CostoUnitario decimal.Decimal `json:"costo_unitario" validate:"min=0"`
}

type OrdenCompraResponse struct {
	ID             string          `json:"id"`
	ProveedorID    string          `json:"proveedor_id"`
	Proveedor      string          `json:"proveedor,omitempty"`
	ProductoID     *string         `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre"`
	Cantidad       int             `json:"cantidad"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Estado         string          `json:"estado"`
	CompraID       *string         `json:"compra_id"`
	RecibidaAt     *string         `json:"recibida_at"`
	CreatedAt      string          `json:"created_at"`
}
