package handler

import (
	"net/http"

	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type DevolucionesHandler struct{ svc service.DevolucionService }

func NewDevolucionesHandler(svc service.DevolucionService) *DevolucionesHandler {
	return &DevolucionesHandler{svc: svc}
}

// Devolubles godoc
// @Summary      Lineas devolvibles de una venta
// @Tags         devoluciones
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "UUID de la venta"
// @Success      200 {array} dto.LineaDevolubleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/ventas/{id}/devolubles [get]
func (h *DevolucionesHandler) Devolubles(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.Devolubles(c.Request.Context(), actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Procesar godoc
// @Summary      Procesar devolucion
// @Description  Cada linea se confirma por separado. Las lineas rechazadas se informan en errores y no deshacen las demas.
// @Tags         devoluciones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID de la venta"
// @Param        body body dto.DevolucionRequest true "Lineas a devolver"
// @Success      200  {object} dto.DevolucionResultado
// @Failure      404  {object} apierror.APIError
// @Router       /v1/ventas/{id}/devoluciones [post]
func (h *DevolucionesHandler) Procesar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.DevolucionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Procesar(c.Request.Context(), actorFrom(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DevolucionesHandler) Listar(c *gin.Context) {
	resp, err := h.svc.Listar(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
