package handler

import (
	"net/http"
	"strconv"

	"stockmaster/internal/apierror"
	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
)

type ProductosHandler struct{ svc service.ProductoService }

func NewProductosHandler(svc service.ProductoService) *ProductosHandler {
	return &ProductosHandler{svc: svc}
}

// Crear godoc
// @Summary      Crear producto
// @Description  El stock inicial se registra como un movimiento ENTRADA con referencia INICIAL-<id del producto>.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CrearProductoRequest true "Producto"
// @Success      201  {object} dto.ProductoResponse
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/productos [post]
func (h *ProductosHandler) Crear(c *gin.Context) {
	var req dto.CrearProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary      Listar productos
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        q      query string false "Nombre o codigo"
// @Param        activo query string false "true | false | all"
// @Param        page   query int    false "Pagina (default 1)"
// @Param        limit  query int    false "Registros por pagina (default 20)"
// @Success      200    {object} dto.ProductoListResponse
// @Router       /v1/productos [get]
func (h *ProductosHandler) Listar(c *gin.Context) {
	var filter dto.ProductoFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Buscar godoc
// @Summary      Autocompletar productos
// @Description  Hasta 20 productos activos por nombre o prefijo de codigo.
// @Tags         productos
// @Produce      json
// @Security     BearerAuth
// @Param        q query string true "Texto a buscar"
// @Success      200 {array} dto.ProductoBusquedaItem
// @Router       /v1/productos/buscar [get]
func (h *ProductosHandler) Buscar(c *gin.Context) {
	resp, err := h.svc.Buscar(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) ObtenerPorCodigo(c *gin.Context) {
	codigo, err := strconv.Atoi(c.Param("codigo"))
	if err != nil || codigo <= 0 {
		c.JSON(http.StatusBadRequest, apierror.New("Codigo invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorCodigo(c.Request.Context(), codigo)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Actualizar godoc
// @Summary      Actualizar producto
// @Description  Modifica datos y precios. El stock solo cambia mediante movimientos.
// @Tags         productos
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string true "UUID del producto"
// @Param        body body dto.ActualizarProductoRequest true "Campos a modificar"
// @Success      200  {object} dto.ProductoResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/productos/{id} [put]
func (h *ProductosHandler) Actualizar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.ActualizarProductoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Actualizar(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ProductosHandler) Desactivar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Desactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ProductosHandler) Reactivar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Reactivar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Eliminar godoc
// @Summary      Eliminar producto definitivamente
// @Description  Borra el producto y sus movimientos. Las lineas de venta historicas quedan sin producto.
// @Tags         productos
// @Security     BearerAuth
// @Param        id path string true "UUID del producto"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/productos/{id}/definitivo [delete]
func (h *ProductosHandler) Eliminar(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Eliminar(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
