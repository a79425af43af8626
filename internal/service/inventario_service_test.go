package service_test

import (
	"context"
	"testing"

	"stockmaster/internal/config"
	"stockmaster/internal/dto"
	"stockmaster/internal/model"
	"stockmaster/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture wires every service over the in-memory stubs.
type fixture struct {
	productos   *stubProductoRepo
	movs        *stubMovRepo
	ventas      *stubVentaRepo
	devs        *stubDevolucionRepo
	proveedores *stubProveedorRepo
	compras     *stubCompraRepo
	ordenes     *stubOrdenRepo
	notifier    *stubNotifier
	cache       *memCache

	inventario service.InventarioService
	venta      service.VentaService
	devolucion service.DevolucionService
	compra     service.CompraService
}

func newFixture() *fixture {
	f := &fixture{
		productos:   newStubProductoRepo(),
		ventas:      newStubVentaRepo(),
		devs:        &stubDevolucionRepo{},
		proveedores: newStubProveedorRepo(),
		compras:     newStubCompraRepo(),
		ordenes:     newStubOrdenRepo(),
		notifier:    &stubNotifier{},
		cache:       newMemCache(),
	}
	f.movs = newStubMovRepo(f.productos)
	cfg := &config.Config{IVAPorcentaje: 19, BusinessName: "Tienda Test"}

	f.inventario = service.NewInventarioService(f.productos, f.movs, f.cache)
	f.venta = service.NewVentaService(f.ventas, f.productos, f.inventario, f.notifier, cfg)
	f.devolucion = service.NewDevolucionService(f.devs, f.ventas, f.inventario)
	f.compra = service.NewCompraService(f.compras, f.ordenes, f.proveedores, f.productos, f.inventario)
	return f
}

var (
	admin  = service.Actor{ID: uuid.New(), Rol: model.RolAdmin}
	cajero = service.Actor{ID: uuid.New(), Rol: model.RolCajero}
)

func assertLedgerConsistente(t *testing.T, f *fixture) {
	t.Helper()
	res, err := f.inventario.Conciliar(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Consistente, "diferencias: %+v", res.Diferencias)
}

func ptr[T any](v T) *T { return &v }

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestRegistrarMovimiento_Entrada(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1001, "Arroz 1kg", "3.50", 10)

	resp, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoEntrada,
		Cantidad:   5,
	})
	require.NoError(t, err)

	assert.Equal(t, 10, resp.StockAnterior)
	assert.Equal(t, 15, resp.StockNuevo)
	assert.Equal(t, "Ajuste manual", resp.Motivo)
	assert.Equal(t, 15, p.Stock)
	assertLedgerConsistente(t, f)
}

func TestRegistrarMovimiento_SalidaSinStock(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1002, "Aceite 1L", "6.00", 3)

	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoSalida,
		Cantidad:   4,
	})
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Equal(t, 3, p.Stock)
	assert.Len(t, f.movs.movs, 1)
}

func TestRegistrarMovimiento_SalidaDejaStockEnCero(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1003, "Sal 500g", "1.00", 3)

	resp, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(),
		Tipo:       model.MovimientoSalida,
		Cantidad:   3,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.StockNuevo)
	assertLedgerConsistente(t, f)
}

func TestRegistrarMovimiento_ReferenciaDuplicada(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1004, "Azucar 1kg", "2.20", 10)
	req := dto.RegistrarMovimientoRequest{
		ProductoID:       p.ID.String(),
		Tipo:             model.MovimientoEntrada,
		Cantidad:         2,
		NumeroReferencia: ptr("FAC-0001"),
	}

	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, req)
	require.NoError(t, err)

	_, err = f.inventario.RegistrarMovimiento(context.Background(), admin, req)
	assert.ErrorIs(t, err, service.ErrReferenciaDuplicada)
	assert.Equal(t, 12, p.Stock)
}

func TestRegistrarMovimiento_ReferenciaReservada(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1008, "Harina 1kg", "1.30", 10)

	for _, ref := range []string{"VENTA-1-5", "venta-x", " COMPRA-abc", "DEV-1", "INICIAL-100"} {
		_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
			ProductoID:       p.ID.String(),
			Tipo:             model.MovimientoEntrada,
			Cantidad:         1,
			NumeroReferencia: ptr(ref),
		})
		assert.ErrorIs(t, err, service.ErrReferenciaReservada, ref)
	}
	assert.Equal(t, 10, p.Stock)

	// Prefixes only matter at the start of the reference.
	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID:       p.ID.String(),
		Tipo:             model.MovimientoEntrada,
		Cantidad:         1,
		NumeroReferencia: ptr("FAC-VENTA-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, 11, p.Stock)
}

func TestRegistrarMovimiento_InvalidaCacheDeBusqueda(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1009, "Sal fina", "0.80", 4)
	f.cache.data["productos:sal"] = []byte("[]")

	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, f.cache.data)

	f.cache.data["productos:sal"] = []byte("[]")
	mov := f.movs.movs[len(f.movs.movs)-1]
	require.NoError(t, f.inventario.EliminarMovimiento(context.Background(), mov.ID))
	assert.Empty(t, f.cache.data)
}

func TestRegistrarMovimiento_CantidadYTipoInvalidos(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1005, "Harina", "1.80", 10)

	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoEntrada, Cantidad: 0,
	})
	assert.ErrorIs(t, err, service.ErrCantidadInvalida)

	_, err = f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: "AJUSTE", Cantidad: 1,
	})
	assert.ErrorIs(t, err, service.ErrTipoMovimientoInvalido)
}

func TestRegistrarMovimiento_ProductoInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: uuid.NewString(), Tipo: model.MovimientoEntrada, Cantidad: 1,
	})
	assert.ErrorIs(t, err, service.ErrNoEncontrado)
}

func TestEliminarMovimiento_RevierteStock(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1006, "Fideos", "1.10", 10)

	resp, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 6, p.Stock)

	err = f.inventario.EliminarMovimiento(context.Background(), uuid.MustParse(resp.ID))
	require.NoError(t, err)
	assert.Equal(t, 10, p.Stock)
	assertLedgerConsistente(t, f)
}

func TestEliminarMovimiento_EntradaYaConsumida(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1007, "Leche", "0.90", 0)

	entrada, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoEntrada, Cantidad: 5,
	})
	require.NoError(t, err)
	_, err = f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 3,
	})
	require.NoError(t, err)

	// Removing the ENTRADA would leave stock at -3.
	err = f.inventario.EliminarMovimiento(context.Background(), uuid.MustParse(entrada.ID))
	assert.ErrorIs(t, err, service.ErrStockInsuficiente)
	assert.Equal(t, 2, p.Stock)
}

func TestListarMovimientos_FiltraPorTipo(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1008, "Cafe", "8.00", 10)
	_, err := f.inventario.RegistrarMovimiento(context.Background(), admin, dto.RegistrarMovimientoRequest{
		ProductoID: p.ID.String(), Tipo: model.MovimientoSalida, Cantidad: 1,
	})
	require.NoError(t, err)

	res, err := f.inventario.ListarMovimientos(context.Background(), dto.MovimientoFilter{Tipo: model.MovimientoSalida})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, model.MovimientoSalida, res.Data[0].Tipo)
	assert.Equal(t, 1, res.Page)
}

func TestConciliar_DetectaDiferencia(t *testing.T) {
	f := newFixture()
	p := seedProducto(f.productos, f.movs, 1009, "Te", "2.00", 10)
	p.Stock = 12

	res, err := f.inventario.Conciliar(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Consistente)
	require.Len(t, res.Diferencias, 1)
	assert.Equal(t, int64(2), res.Diferencias[0].Diferencia)
}
