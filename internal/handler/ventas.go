package handler

import (
	"fmt"
	"net/http"

	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type VentasHandler struct{ svc service.VentaService }

func NewVentasHandler(svc service.VentaService) *VentasHandler { return &VentasHandler{svc: svc} }

// Finalizar godoc
// @Summary      Finalizar venta
// @Description  Valida stock, calcula totales con IVA, persiste la venta y registra una SALIDA por linea en una transaccion. Si hay cliente_email encola el envio de la factura.
// @Tags         ventas
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.FinalizarVentaRequest true "Carrito y pago"
// @Success      201  {object} dto.VentaResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/ventas [post]
func (h *VentasHandler) Finalizar(c *gin.Context) {
	var req dto.FinalizarVentaRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Finalizar(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarVentas godoc
// @Summary      Listar ventas
// @Description  Un CAJERO solo ve sus propias ventas.
// @Tags         ventas
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string false "Fecha YYYY-MM-DD"
// @Param        hasta query string false "Fecha YYYY-MM-DD (inclusive)"
// @Param        page  query int    false "Pagina (default 1)"
// @Param        limit query int    false "Registros por pagina (default 50)"
// @Success      200   {object} dto.VentaListResponse
// @Failure      422   {object} apierror.APIError
// @Router       /v1/ventas [get]
func (h *VentasHandler) ListarVentas(c *gin.Context) {
	var filter dto.VentaFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarVentas(c.Request.Context(), actorFrom(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *VentasHandler) ObtenerVenta(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerVenta(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Factura godoc
// @Summary      Descargar factura PDF
// @Tags         ventas
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {file} binary
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id}/factura [get]
func (h *VentasHandler) Factura(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	pdf, ticket, err := h.svc.FacturaPDF(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"factura_%d.pdf\"", ticket))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
