package dto

type ItemDevolucionRequest struct {
	DetalleVentaID string `json:"detalle_venta_id" validate:"required,uuid"`
	Cantidad       int    `json:"cantidad"`
}

type DevolucionRequest struct {
	Motivo string                  `json:"motivo" validate:"max=500"`
	Items  []ItemDevolucionRequest `json:"items"  validate:"required,min=1,dive"`
}

type DevolucionResponse struct {
	ID             string  `json:"id"`
	VentaID        *string `json:"venta_id"`
	NumeroTicket   int     `json:"numero_ticket,omitempty"`
	DetalleVentaID *string `json:"detalle_venta_id"`
	ProductoNombre string  `json:"producto_nombre"`
	Cantidad       int     `json:"cantidad"`
	Motivo         string  `json:"motivo"`
	CreatedAt      string  `json:"created_at"`
}

// DevolucionResultado lists the returns created and the lines that were rejected.
type DevolucionResultado struct {
	Creadas []DevolucionResponse `json:"creadas"`
	Errores []string             `json:"errores"`
}

// LineaDevolubleResponse shows how many units of a sale line can still be returned.
type LineaDevolubleResponse struct {
	DetalleVentaID string `json:"detalle_venta_id"`
	ProductoNombre string `json:"producto_nombre"`
	Vendida        int    `json:"vendida"`
	Devuelta       int    `json:"devuelta"`
	MaxDevolver    int    `json:"max_devolver"`
}
