package service_test

import (
	"context"
	"testing"
	"time"

	"stockmaster/internal/model"
	"stockmaster/internal/repository"
	"stockmaster/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dia(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDashboard_SemanaRellenaConCeros(t *testing.T) {
	repo := &stubReporteRepo{
		ventasDia: []repository.VentaDiaRow{
			{Dia: dia("2026-10-14"), Total: dec("100"), IVA: dec("19"), Transacciones: 2},
			{Dia: dia("2026-10-18"), Total: dec("35.70"), IVA: dec("5.70"), Transacciones: 1},
		},
		movDia: []repository.MovimientoDiaRow{
			{Dia: dia("2026-10-18"), Tipo: model.MovimientoEntrada, Cantidad: 12},
			{Dia: dia("2026-10-18"), Tipo: model.MovimientoSalida, Cantidad: 4},
		},
		top: []repository.TopProductoRow{{Nombre: "Galletas", Cantidad: 9, Total: dec("45")}},
		bajo: []model.Producto{
			{ID: uuid.New(), Nombre: "Sal", Stock: 1},
			{ID: uuid.New(), Nombre: "Azucar", Stock: 5},
			{ID: uuid.New(), Nombre: "Arroz", Stock: 50},
		},
		masStock: &model.Producto{ID: uuid.New(), Nombre: "Arroz", Stock: 50},
		resumen:  repository.ResumenInventario{TotalProductos: 3, StockTotal: 56},
		ultimos:  []model.MovimientoStock{{ID: uuid.New(), Tipo: model.MovimientoEntrada, Cantidad: 12}},
	}
	svc := service.NewReporteService(repo, 5)

	resp, err := svc.Dashboard(context.Background(), dia("2026-10-18").Add(15*time.Hour))
	require.NoError(t, err)

	require.Len(t, resp.VentasSemana, 7)
	assert.Equal(t, "2026-10-12", resp.VentasSemana[0].Fecha)
	assert.Equal(t, "2026-10-18", resp.VentasSemana[6].Fecha)
	assert.True(t, resp.VentasSemana[2].Total.Equal(dec("100")))
	assert.True(t, resp.VentasSemana[3].Total.IsZero())

	require.Len(t, resp.MovimientosSemana, 7)
	assert.Equal(t, int64(12), resp.MovimientosSemana[6].Entradas)
	assert.Equal(t, int64(4), resp.MovimientosSemana[6].Salidas)

	assert.True(t, resp.VentasHoy.Equal(dec("35.70")))
	assert.Equal(t, int64(1), resp.TransaccionesHoy)
	assert.Equal(t, 2, resp.ProductosBajoStock)
	assert.Equal(t, 5, resp.UmbralBajoStock)
	require.NotNil(t, resp.ProductoMasStock)
	assert.Equal(t, "Arroz", resp.ProductoMasStock.Nombre)
	assert.Equal(t, int64(56), resp.StockTotal)
	assert.Len(t, resp.TopProductos, 1)
	assert.Len(t, resp.UltimosMovimientos, 1)
}

func TestDashboard_CatalogoVacio(t *testing.T) {
	svc := service.NewReporteService(&stubReporteRepo{}, 5)

	resp, err := svc.Dashboard(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, resp.ProductoMasStock)
	assert.True(t, resp.VentasHoy.IsZero())
	assert.NotNil(t, resp.UltimosMovimientos)
}

func TestVentasPorPeriodo_TotalesYPromedio(t *testing.T) {
	repo := &stubReporteRepo{
		ventasDia: []repository.VentaDiaRow{
			{Dia: dia("2026-10-01"), Total: dec("100"), IVA: dec("10"), Descuentos: dec("5"), Transacciones: 3},
			{Dia: dia("2026-10-03"), Total: dec("50"), IVA: dec("5"), Transacciones: 1},
		},
	}
	svc := service.NewReporteService(repo, 5)

	resp, err := svc.VentasPorPeriodo(context.Background(), "2026-10-01", "2026-10-03")
	require.NoError(t, err)

	assert.Equal(t, dia("2026-10-01"), repo.desde)
	assert.Equal(t, dia("2026-10-04"), repo.hasta)
	assert.Equal(t, "2026-10-03", resp.Hasta)
	assert.Len(t, resp.Dias, 3)
	assert.True(t, resp.TotalVentas.Equal(dec("150")))
	assert.True(t, resp.TotalIVA.Equal(dec("15")))
	assert.True(t, resp.TotalDescuentos.Equal(dec("5")))
	assert.Equal(t, int64(4), resp.Transacciones)
	assert.True(t, resp.TicketPromedio.Equal(dec("37.5")))
}

func TestVentasPorPeriodo_RangoInvalido(t *testing.T) {
	svc := service.NewReporteService(&stubReporteRepo{}, 5)

	_, err := svc.VentasPorPeriodo(context.Background(), "2026-10-05", "2026-10-01")
	assert.ErrorIs(t, err, service.ErrFechaInvalida)

	_, err = svc.VentasPorPeriodo(context.Background(), "ayer", "")
	assert.ErrorIs(t, err, service.ErrFechaInvalida)
}

func TestBajoStock_UmbralPorDefecto(t *testing.T) {
	repo := &stubReporteRepo{bajo: []model.Producto{{ID: uuid.New(), Nombre: "Sal", Stock: 2}}}
	svc := service.NewReporteService(repo, 7)

	resp, err := svc.BajoStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Umbral)
	assert.Equal(t, 7, repo.umbralPedido)
	assert.Len(t, resp.Productos, 1)

	resp, err = svc.BajoStock(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, resp.Productos)
}

func TestVentasPorCajero_Promedio(t *testing.T) {
	uid := uuid.New()
	repo := &stubReporteRepo{cajeros: []repository.VentaCajeroRow{
		{UsuarioID: &uid, Username: "caja1", Total: dec("90"), Transacciones: 4},
		{Total: dec("10"), Transacciones: 1},
	}}
	svc := service.NewReporteService(repo, 5)

	resp, err := svc.VentasPorCajero(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, resp.Cajeros, 2)
	assert.True(t, resp.Cajeros[0].Promedio.Equal(dec("22.5")))
	assert.Equal(t, "(sin usuario)", resp.Cajeros[1].Cajero)
}

func TestExportVentas_UnaFilaPorLinea(t *testing.T) {
	repo := &stubReporteRepo{detalladas: []model.Venta{{
		ID: uuid.New(), NumeroTicket: 7, MetodoPago: model.MetodoEfectivo,
		TotalFinal: dec("20"), CreatedAt: time.Now(),
		Usuario: &model.Usuario{Username: "caja1"},
		Detalles: []model.DetalleVenta{
			{ProductoNombre: "A", Cantidad: 1, PrecioUnitario: dec("10"), Subtotal: dec("10")},
			{ProductoNombre: "B", Cantidad: 2, PrecioUnitario: dec("5"), Subtotal: dec("10")},
		},
	}}}
	svc := service.NewReporteService(repo, 5)

	filas, err := svc.ExportVentas(context.Background(), "", "")
	require.NoError(t, err)
	require.Len(t, filas, 2)
	assert.Equal(t, 7, filas[1].NumeroTicket)
	assert.Equal(t, "caja1", filas[1].Cajero)
	assert.Equal(t, "B", filas[1].Producto)
}
