package dto

// RegistrarMovimientoRequest is a manual ledger entry (stock adjustment).
type RegistrarMovimientoRequest struct {
	ProductoID       string  `json:"producto_id"       validate:"required,uuid"`
	Tipo             string  `json:"tipo"              validate:"required,oneof=ENTRADA SALIDA"`
	Cantidad         int     `json:"cantidad"          validate:"required,gt=0"`
	NumeroReferencia *string `json:"numero_referencia" validate:"omitempty,max=100"`
	Motivo           string  `json:"motivo"            validate:"max=500"`
}

type MovimientoFilter struct {
	ProductoID string `form:"producto_id"`
	Tipo       string `form:"tipo"`
	Page       int    `form:"page,default=1"`
	Limit      int    `form:"limit,default=100"`
}

type MovimientoResponse struct {
	ID               string  `json:"id"`
	ProductoID       string  `json:"producto_id"`
	ProductoNombre   string  `json:"producto_nombre,omitempty"`
	Tipo             string  `json:"tipo"`
	Cantidad         int     `json:"cantidad"`
	StockAnterior    int     `json:"stock_anterior"`
	StockNuevo       int     `json:"stock_nuevo"`
	NumeroReferencia *string `json:"numero_referencia"`
	Motivo           string  `json:"motivo"`
	CreatedAt        string  `json:"created_at"`
}

type MovimientoListResponse struct {
	Data  []MovimientoResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// ConciliacionItem reports a product whose cached stock differs from its ledger.
type ConciliacionItem struct {
	ProductoID    string `json:"producto_id"`
	Codigo        int    `json:"codigo"`
	Nombre        string `json:"nombre"`
	StockCacheado int    `json:"stock_cacheado"`
	StockLedger   int64  `json:"stock_ledger"`
	Diferencia    int64  `json:"diferencia"`
}

type ConciliacionResponse struct {
	ProductosRevisados int                `json:"productos_revisados"`
	Consistente        bool               `json:"consistente"`
	Diferencias        []ConciliacionItem `json:"diferencias"`
}
