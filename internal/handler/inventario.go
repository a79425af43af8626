package handler

import (
	"net/http"

	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type InventarioHandler struct{ svc service.InventarioService }

func NewInventarioHandler(svc service.InventarioService) *InventarioHandler {
	return &InventarioHandler{svc: svc}
}

// RegistrarMovimiento godoc
// @Summary      Registrar movimiento de stock
// @Description  Ajuste manual ENTRADA/SALIDA. Rechaza referencias duplicadas y stock negativo.
// @Tags         inventario
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegistrarMovimientoRequest true "Movimiento"
// @Success      201  {object} dto.MovimientoResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/inventario/movimientos [post]
func (h *InventarioHandler) RegistrarMovimiento(c *gin.Context) {
	var req dto.RegistrarMovimientoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RegistrarMovimiento(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListarMovimientos godoc
// @Summary      Listar movimientos
// @Tags         inventario
// @Produce      json
// @Security     BearerAuth
// @Param        producto_id query string false "UUID del producto"
// @Param        tipo        query string false "ENTRADA | SALIDA"
// @Param        page        query int    false "Pagina"
// @Param        limit       query int    false "Registros por pagina (default 100)"
// @Success      200 {object} dto.MovimientoListResponse
// @Router       /v1/inventario/movimientos [get]
func (h *InventarioHandler) ListarMovimientos(c *gin.Context) {
	var filter dto.MovimientoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListarMovimientos(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// EliminarMovimiento godoc
// @Summary      Eliminar movimiento
// @Description  Revierte el efecto del movimiento sobre el stock y lo borra.
// @Tags         inventario
// @Security     BearerAuth
// @Param        id path string true "UUID del movimiento"
// @Success      204
// @Failure      409 {object} apierror.APIError
// @Router       /v1/inventario/movimientos/{id} [delete]
func (h *InventarioHandler) EliminarMovimiento(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.EliminarMovimiento(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Conciliar compares every product's stock with the sum of its movements.
func (h *InventarioHandler) Conciliar(c *gin.Context) {
	resp, err := h.svc.Conciliar(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
