package dto

import "github.com/shopspring/decimal"

type VentaDiaItem struct {
	Fecha         string          `json:"fecha"` // YYYY-MM-DD
	Total         decimal.Decimal `json:"total"`
	IVA           decimal.Decimal `json:"iva"`
	Descuentos    decimal.Decimal `json:"descuentos"`
	Transacciones int64           `json:"transacciones"`
}

type MovimientoDiaItem struct {
	Fecha    string `json:"fecha"`
	Entradas int64  `json:"entradas"`
	Salidas  int64  `json:"salidas"`
}

type TopProductoItem struct {
	ProductoID    *string         `json:"producto_id"`
	Nombre        string          `json:"nombre"`
	Cantidad      int64           `json:"cantidad"`
	TotalGenerado decimal.Decimal `json:"total_generado"`
	Transacciones int64           `json:"transacciones"`
}

type BajoStockItem struct {
	ProductoID string `json:"producto_id"`
	Codigo     int    `json:"codigo"`
	Nombre     string `json:"nombre"`
	Stock      int    `json:"stock"`
}

type VentaCajeroItem struct {
	UsuarioID     *string         `json:"usuario_id"`
	Cajero        string          `json:"cajero"`
	Total         decimal.Decimal `json:"total"`
	Transacciones int64           `json:"transacciones"`
	Promedio      decimal.Decimal `json:"promedio"`
}

type DashboardResponse struct {
	VentasSemana       []VentaDiaItem       `json:"ventas_semana"`
	MovimientosSemana  []MovimientoDiaItem  `json:"movimientos_semana"`
	TopProductos       []TopProductoItem    `json:"top_productos"`
	ProductoMasStock   *BajoStockItem       `json:"producto_mas_stock"`
	ProductosBajoStock int                  `json:"productos_bajo_stock"`
	UmbralBajoStock    int                  `json:"umbral_bajo_stock"`
	VentasHoy          decimal.Decimal      `json:"ventas_hoy"`
	TransaccionesHoy   int64                `json:"transacciones_hoy"`
	TotalProductos     int64                `json:"total_productos"`
	StockTotal         int64                `json:"stock_total"`
	UltimosMovimientos []MovimientoResponse `json:"ultimos_movimientos"`
}

type VentasPeriodoResponse struct {
	Desde           string          `json:"desde"`
	Hasta           string          `json:"hasta"`
	Dias            []VentaDiaItem  `json:"dias"`
	TotalVentas     decimal.Decimal `json:"total_ventas"`
	TotalIVA        decimal.Decimal `json:"total_iva"`
	TotalDescuentos decimal.Decimal `json:"total_descuentos"`
	Transacciones   int64           `json:"transacciones"`
	TicketPromedio  decimal.Decimal `json:"ticket_promedio"`
}

type TopProductosResponse struct {
	Dias      int               `json:"dias"`
	Productos []TopProductoItem `json:"productos"`
}

type BajoStockResponse struct {
	Umbral    int             `json:"umbral"`
	Productos []BajoStockItem `json:"productos"`
}

type VentasPorCajeroResponse struct {
	Desde   string            `json:"desde"`
	Hasta   string            `json:"hasta"`
	Cajeros []VentaCajeroItem `json:"cajeros"`
}

// ExportVentaFila is one CSV row: a sale line with its sale header repeated.
type ExportVentaFila struct {
	VentaID        string
	NumeroTicket   int
	Fecha          string
	Cajero         string
	Producto       string
	Cantidad       int
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
	MetodoPago     string
	IVA            decimal.Decimal
	Descuento      decimal.Decimal
	TotalFinal     decimal.Decimal
}
