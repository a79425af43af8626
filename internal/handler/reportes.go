package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ReportesHandler struct{ svc service.ReporteService }

func NewReportesHandler(svc service.ReporteService) *ReportesHandler {
	return &ReportesHandler{svc: svc}
}

// Dashboard godoc
// @Summary      Dashboard
// @Description  Ventas y movimientos de los ultimos 7 dias, top productos, bajo stock y ultimos movimientos.
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.DashboardResponse
// @Router       /v1/reportes/dashboard [get]
func (h *ReportesHandler) Dashboard(c *gin.Context) {
	resp, err := h.svc.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VentasPeriodo godoc
// @Summary      Ventas por periodo
// @Tags         reportes
// @Produce      json
// @Security     BearerAuth
// @Param        desde query string false "YYYY-MM-DD (default: hace 30 dias)"
// @Param        hasta query string false "YYYY-MM-DD (default: hoy)"
// @Success      200 {object} dto.VentasPeriodoResponse
// @Failure      422 {object} apierror.APIError
// @Router       /v1/reportes/ventas-periodo [get]
func (h *ReportesHandler) VentasPeriodo(c *gin.Context) {
	resp, err := h.svc.VentasPorPeriodo(c.Request.Context(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) TopProductos(c *gin.Context) {
	dias, _ := strconv.Atoi(c.Query("dias"))
	resp, err := h.svc.TopProductos(c.Request.Context(), dias)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) BajoStock(c *gin.Context) {
	umbral, _ := strconv.Atoi(c.Query("umbral"))
	resp, err := h.svc.BajoStock(c.Request.Context(), umbral)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ReportesHandler) VentasPorCajero(c *gin.Context) {
	resp, err := h.svc.VentasPorCajero(c.Request.Context(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

var exportVentasHeader = []string{
	"ID Venta", "Fecha", "Cajero", "Producto", "Cantidad", "Precio Unitario",
	"Subtotal", "Método Pago", "IVA", "Descuento", "Total Final",
}

// ExportVentasCSV godoc
// @Summary      Exportar ventas a CSV
// @Description  Una fila por linea vendida, con los datos de la venta repetidos.
// @Tags         reportes
// @Produce      text/csv
// @Security     BearerAuth
// @Param        desde query string false "YYYY-MM-DD"
// @Param        hasta query string false "YYYY-MM-DD"
// @Success      200 {file} binary
// @Failure      422 {object} apierror.APIError
// @Router       /v1/reportes/export/ventas-csv [get]
func (h *ReportesHandler) ExportVentasCSV(c *gin.Context) {
	filas, err := h.svc.ExportVentas(c.Request.Context(), c.Query("desde"), c.Query("hasta"))
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("ventas_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportVentasHeader)
	for _, f := range filas {
		_ = w.Write(filaCSV(f))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Warn().Err(err).Msg("export csv: escritura interrumpida")
	}
}

func filaCSV(f dto.ExportVentaFila) []string {
	return []string{
		f.VentaID,
		f.Fecha,
		f.Cajero,
		f.Producto,
		strconv.Itoa(f.Cantidad),
		f.PrecioUnitario.StringFixed(2),
		f.Subtotal.StringFixed(2),
		f.MetodoPago,
		f.IVA.StringFixed(2),
		f.Descuento.StringFixed(2),
		f.TotalFinal.StringFixed(2),
	}
}
