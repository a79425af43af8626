package handler

import (
	"net/http"

	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type ComprasHandler struct{ svc service.CompraService }

func NewComprasHandler(svc service.CompraService) *ComprasHandler {
	return &ComprasHandler{svc: svc}
}

// CrearCompra godoc
// @Summary      Registrar compra
// @Description  Recepcion de mercaderia: crea la compra y una ENTRADA por linea en una sola transaccion.
// @Tags         compras
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearCompraRequest true "Compra"
// @Success      201  {object} dto.CompraResponse
// @Failure      404  {object} apierror.APIError
// @Failure      422  {object} apierror.APIError
// @Router       /v1/compras [post]
func (h *ComprasHandler) CrearCompra(c *gin.Context) {
	var req dto.CrearCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearCompra(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ComprasHandler) ListarCompras(c *gin.Context) {
	var filter dto.CompraFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarCompras(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) ObtenerCompra(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerCompra(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ── Ordenes de compra ────────────────────────────────────────────────────────

// CrearOrden godoc
// @Summary      Crear orden de compra
// @Description  La orden nace PENDIENTE y no mueve stock hasta ser recibida.
// @Tags         ordenes-compra
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearOrdenCompraRequest true "Orden"
// @Success      201  {object} dto.OrdenCompraResponse
// @Router       /v1/ordenes-compra [post]
func (h *ComprasHandler) CrearOrden(c *gin.Context) {
	var req dto.CrearOrdenCompraRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CrearOrden(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarOrdenes godoc
// @Summary      Listar ordenes de compra
// @Tags         ordenes-compra
// @Produce      json
// @Security     BearerAuth
// @Param        estado query string false "PENDIENTE | RECIBIDA | CANCELADA"
// @Success      200 {array} dto.OrdenCompraResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/ordenes-compra [get]
func (h *ComprasHandler) ListarOrdenes(c *gin.Context) {
	resp, err := h.svc.ListarOrdenes(c.Request.Context(), c.Query("estado"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RecibirOrden godoc
// @Summary      Recibir orden de compra
// @Description  PENDIENTE -> RECIBIDA. Genera la compra y sus ENTRADAS una sola vez.
// @Tags         ordenes-compra
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la orden"
// @Success      200 {object} dto.OrdenCompraResponse
// @Failure      409 {object} apierror.APIError
// @Router       /v1/ordenes-compra/{id}/recibir [patch]
func (h *ComprasHandler) RecibirOrden(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.RecibirOrden(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ComprasHandler) CancelarOrden(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.CancelarOrden(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
