package service_test

import (
	"context"
	"testing"

	"stockmaster/internal/dto"
	"stockmaster/internal/model"
	"stockmaster/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ventaDeTres sells 3 units of a 10-unit product and returns the sale.
func ventaDeTres(t *testing.T, f *fixture) (*model.Producto, *dto.VentaResponse) {
	t.Helper()
	p := seedProducto(f.productos, f.movs, 3001, "Detergente", "5", 10)
	resp, err := f.venta.Finalizar(context.Background(), cajero, ventaEfectivo(p, 3, "20"))
	require.NoError(t, err)
	require.Equal(t, 7, p.Stock)
	return p, resp
}

func TestProcesarDevolucion_RestauraStock(t *testing.T) {
	f := newFixture()
	p, venta := ventaDeTres(t, f)

	res, err := f.devolucion.Procesar(context.Background(), cajero, uuid.MustParse(venta.ID), dto.DevolucionRequest{
		Motivo: "Envase roto",
		Items:  []dto.ItemDevolucionRequest{{DetalleVentaID: venta.Detalles[0].ID, Cantidad: 1}},
	})
	require.NoError(t, err)
	require.Len(t, res.Creadas, 1)
	assert.Empty(t, res.Errores)
	assert.Equal(t, 8, p.Stock)

	dev := f.devs.devs[0]
	require.NotNil(t, dev.MovimientoID)
	mov := f.movs.porReferencia("DEV-" + dev.ID.String())
	require.NotNil(t, mov)
	assert.Equal(t, model.MovimientoEntrada, mov.Tipo)
	assert.Equal(t, *dev.MovimientoID, mov.ID)
	assertLedgerConsistente(t, f)
}

func TestProcesarDevolucion_NoSuperaLoVendido(t *testing.T) {
	f := newFixture()
	p, venta := ventaDeTres(t, f)
	ventaID := uuid.MustParse(venta.ID)
	linea := venta.Detalles[0].ID

	_, err := f.devolucion.Procesar(context.Background(), cajero, ventaID, dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{{DetalleVentaID: linea, Cantidad: 1}},
	})
	require.NoError(t, err)

	// 1 already returned, at most 2 more.
	res, err := f.devolucion.Procesar(context.Background(), cajero, ventaID, dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{{DetalleVentaID: linea, Cantidad: 3}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Creadas)
	require.Len(t, res.Errores, 1)
	assert.Contains(t, res.Errores[0], "Máximo: 2")
	assert.Equal(t, 8, p.Stock)

	devolubles, err := f.devolucion.Devolubles(context.Background(), cajero, ventaID)
	require.NoError(t, err)
	require.Len(t, devolubles, 1)
	assert.Equal(t, 3, devolubles[0].Vendida)
	assert.Equal(t, 1, devolubles[0].Devuelta)
	assert.Equal(t, 2, devolubles[0].MaxDevolver)
}

func TestProcesarDevolucion_IgnoraCantidadCeroYLineaAjena(t *testing.T) {
	f := newFixture()
	p, venta := ventaDeTres(t, f)

	res, err := f.devolucion.Procesar(context.Background(), cajero, uuid.MustParse(venta.ID), dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{
			{DetalleVentaID: venta.Detalles[0].ID, Cantidad: 0},
			{DetalleVentaID: uuid.NewString(), Cantidad: 1},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Creadas)
	assert.Len(t, res.Errores, 1)
	assert.Equal(t, 7, p.Stock)
}

func TestProcesarDevolucion_ProductoEliminado(t *testing.T) {
	f := newFixture()
	_, venta := ventaDeTres(t, f)
	for _, v := range f.ventas.ventas {
		v.Detalles[0].ProductoID = nil
	}

	res, err := f.devolucion.Procesar(context.Background(), admin, uuid.MustParse(venta.ID), dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{{DetalleVentaID: venta.Detalles[0].ID, Cantidad: 1}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.Creadas)
	require.Len(t, res.Errores, 1)
	assert.Contains(t, res.Errores[0], "ya no existe")
}

func TestProcesarDevolucion_CajeroAjeno(t *testing.T) {
	f := newFixture()
	_, venta := ventaDeTres(t, f)
	otro := service.Actor{ID: uuid.New(), Rol: model.RolCajero}

	_, err := f.devolucion.Procesar(context.Background(), otro, uuid.MustParse(venta.ID), dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{{DetalleVentaID: venta.Detalles[0].ID, Cantidad: 1}},
	})
	assert.ErrorIs(t, err, service.ErrPermisoDenegado)
}

func TestProcesarDevolucion_VentaInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.devolucion.Procesar(context.Background(), admin, uuid.New(), dto.DevolucionRequest{})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestListarDevoluciones_PorRol(t *testing.T) {
	f := newFixture()
	_, venta := ventaDeTres(t, f)
	_, err := f.devolucion.Procesar(context.Background(), cajero, uuid.MustParse(venta.ID), dto.DevolucionRequest{
		Items: []dto.ItemDevolucionRequest{{DetalleVentaID: venta.Detalles[0].ID, Cantidad: 1}},
	})
	require.NoError(t, err)

	otro := service.Actor{ID: uuid.New(), Rol: model.RolCajero}
	ajenas, err := f.devolucion.Listar(context.Background(), otro)
	require.NoError(t, err)
	assert.Empty(t, ajenas)

	todas, err := f.devolucion.Listar(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, todas, 1)
}
