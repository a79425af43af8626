package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/infra"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// ── Productos ─────────────────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
	bloqueos  []uuid.UUID // row locks taken, in order
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) CreateTx(_ *gorm.DB, p *model.Producto) error {
	for _, o := range r.productos {
		if o.Codigo == p.Codigo {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProductoRepo) FindByCodigo(_ context.Context, codigo int) (*model.Producto, error) {
	for _, p := range r.productos {
		if p.Codigo == codigo {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductoRepo) List(_ context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var result []model.Producto
	for _, p := range r.productos {
		if filter.Activo != "all" && !p.Activo {
			continue
		}
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Nombre < result[j].Nombre })
	return result, int64(len(result)), nil
}

func (r *stubProductoRepo) Buscar(_ context.Context, q string, limit int) ([]model.Producto, error) {
	var result []model.Producto
	for _, p := range r.productos {
		if p.Activo && strings.Contains(strings.ToLower(p.Nombre), q) {
			result = append(result, *p)
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	cur, ok := r.productos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stock := cur.Stock
	*cur = *p
	cur.Stock = stock
	return nil
}

func (r *stubProductoRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

func (r *stubProductoRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	if _, ok := r.productos[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.productos, id)
	return nil
}

func (r *stubProductoRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	r.bloqueos = append(r.bloqueos, id)
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) UpdateStockTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	p, ok := r.productos[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Stock += delta
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// seedProducto stores an active product. Its stock is backed by an opening
// ENTRADA in movRepo so the ledger stays consistent.
func seedProducto(productoRepo *stubProductoRepo, movRepo *stubMovRepo, codigo int, nombre string, precio string, stock int) *model.Producto {
	p := &model.Producto{
		ID:           uuid.New(),
		Codigo:       codigo,
		Nombre:       nombre,
		PrecioCompra: dec(precio).Div(decimal.NewFromInt(2)),
		PrecioVenta:  dec(precio),
		Stock:        stock,
		Activo:       true,
	}
	productoRepo.productos[p.ID] = p
	if movRepo != nil && stock > 0 {
		movRepo.movs = append(movRepo.movs, &model.MovimientoStock{
			ID: uuid.New(), ProductoID: p.ID, Tipo: model.MovimientoEntrada,
			Cantidad: stock, StockAnterior: 0, StockNuevo: stock, CreatedAt: time.Now(),
		})
	}
	return p
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type stubMovRepo struct {
	movs      []*model.MovimientoStock
	productos *stubProductoRepo
}

func newStubMovRepo(productos *stubProductoRepo) *stubMovRepo {
	return &stubMovRepo{productos: productos}
}

func (r *stubMovRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.NumeroReferencia != nil {
		for _, o := range r.movs {
			if o.NumeroReferencia != nil && *o.NumeroReferencia == *m.NumeroReferencia {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	r.movs = append(r.movs, m)
	return nil
}

func (r *stubMovRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error) {
	for _, m := range r.movs {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubMovRepo) DeleteTx(_ *gorm.DB, id uuid.UUID) error {
	for i, m := range r.movs {
		if m.ID == id {
			r.movs = append(r.movs[:i], r.movs[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubMovRepo) ExistsReferenciaTx(_ *gorm.DB, ref string) (bool, error) {
	for _, m := range r.movs {
		if m.NumeroReferencia != nil && *m.NumeroReferencia == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubMovRepo) List(_ context.Context, f repository.MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	var out []model.MovimientoStock
	for _, m := range r.movs {
		if f.ProductoID != nil && m.ProductoID != *f.ProductoID {
			continue
		}
		if f.Tipo != "" && m.Tipo != f.Tipo {
			continue
		}
		out = append(out, *m)
	}
	return out, int64(len(out)), nil
}

func (r *stubMovRepo) Saldos(_ context.Context) ([]repository.SaldoLedger, error) {
	var out []repository.SaldoLedger
	for _, p := range r.productos.productos {
		var saldo int64
		for _, m := range r.movs {
			if m.ProductoID == p.ID {
				saldo += int64(m.Delta())
			}
		}
		out = append(out, repository.SaldoLedger{
			ProductoID: p.ID, Codigo: p.Codigo, Nombre: p.Nombre,
			StockCacheado: p.Stock, Saldo: saldo,
		})
	}
	return out, nil
}

func (r *stubMovRepo) DB() *gorm.DB { return nil }

func (r *stubMovRepo) porReferencia(ref string) *model.MovimientoStock {
	for _, m := range r.movs {
		if m.NumeroReferencia != nil && *m.NumeroReferencia == ref {
			return m
		}
	}
	return nil
}

var _ repository.MovimientoStockRepository = (*stubMovRepo)(nil)

// ── Ventas ────────────────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas    map[uuid.UUID]*model.Venta
	ticketSeq int
	failNext  error
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) CreateTx(_ *gorm.DB, v *model.Venta) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	r.ventas[v.ID] = v
	return nil
}

func (r *stubVentaRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.ticketSeq++
	return r.ticketSeq, nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return v, nil
}

func (r *stubVentaRepo) List(_ context.Context, f repository.VentaListFilter) ([]model.Venta, int64, error) {
	var out []model.Venta
	for _, v := range r.ventas {
		if f.UsuarioID != nil && (v.UsuarioID == nil || *v.UsuarioID != *f.UsuarioID) {
			continue
		}
		if f.Desde != nil && v.CreatedAt.Before(*f.Desde) {
			continue
		}
		if f.Hasta != nil && !v.CreatedAt.Before(*f.Hasta) {
			continue
		}
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) FindDetalleForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	for _, v := range r.ventas {
		for i := range v.Detalles {
			if v.Detalles[i].ID == id {
				return &v.Detalles[i], nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── Devoluciones ──────────────────────────────────────────────────────────────

type stubDevolucionRepo struct {
	devs []*model.Devolucion
}

func (r *stubDevolucionRepo) CreateTx(_ *gorm.DB, d *model.Devolucion) error {
	r.devs = append(r.devs, d)
	return nil
}

func (r *stubDevolucionRepo) SumCantidadPorDetalle(_ context.Context, _ *gorm.DB, detalleID uuid.UUID) (int, error) {
	total := 0
	for _, d := range r.devs {
		if d.DetalleVentaID != nil && *d.DetalleVentaID == detalleID {
			total += d.Cantidad
		}
	}
	return total, nil
}

func (r *stubDevolucionRepo) List(_ context.Context, usuarioID *uuid.UUID) ([]model.Devolucion, error) {
	var out []model.Devolucion
	for _, d := range r.devs {
		if usuarioID != nil && (d.UsuarioID == nil || *d.UsuarioID != *usuarioID) {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

var _ repository.DevolucionRepository = (*stubDevolucionRepo)(nil)

// ── Proveedores ───────────────────────────────────────────────────────────────

type stubProveedorRepo struct {
	provs map[uuid.UUID]*model.Proveedor
}

func newStubProveedorRepo() *stubProveedorRepo {
	return &stubProveedorRepo{provs: make(map[uuid.UUID]*model.Proveedor)}
}

func (r *stubProveedorRepo) Create(_ context.Context, p *model.Proveedor) error {
	r.provs[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Proveedor, error) {
	p, ok := r.provs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *stubProveedorRepo) FindByCorreo(_ context.Context, correo string) (*model.Proveedor, error) {
	for _, p := range r.provs {
		if strings.EqualFold(p.Correo, correo) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProveedorRepo) List(_ context.Context, incluirInactivos bool) ([]model.Proveedor, error) {
	var out []model.Proveedor
	for _, p := range r.provs {
		if incluirInactivos || p.Activo {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubProveedorRepo) Update(_ context.Context, p *model.Proveedor) error {
	r.provs[p.ID] = p
	return nil
}

func (r *stubProveedorRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	p, ok := r.provs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Activo = activo
	return nil
}

var _ repository.ProveedorRepository = (*stubProveedorRepo)(nil)

func seedProveedor(repo *stubProveedorRepo, nombre, correo string) *model.Proveedor {
	p := &model.Proveedor{ID: uuid.New(), Nombre: nombre, Correo: correo, Activo: true}
	repo.provs[p.ID] = p
	return p
}

// ── Compras / órdenes ─────────────────────────────────────────────────────────

type stubCompraRepo struct {
	compras map[uuid.UUID]*model.Compra
}

func newStubCompraRepo() *stubCompraRepo {
	return &stubCompraRepo{compras: make(map[uuid.UUID]*model.Compra)}
}

func (r *stubCompraRepo) CreateTx(_ *gorm.DB, c *model.Compra) error {
	r.compras[c.ID] = c
	return nil
}

func (r *stubCompraRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Compra, error) {
	c, ok := r.compras[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCompraRepo) List(_ context.Context, f repository.CompraListFilter) ([]model.Compra, int64, error) {
	var out []model.Compra
	for _, c := range r.compras {
		if f.ProveedorID != nil && c.ProveedorID != *f.ProveedorID {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubCompraRepo) DB() *gorm.DB { return nil }

var _ repository.CompraRepository = (*stubCompraRepo)(nil)

type stubOrdenRepo struct {
	ordenes map[uuid.UUID]*model.OrdenCompra
}

func newStubOrdenRepo() *stubOrdenRepo {
	return &stubOrdenRepo{ordenes: make(map[uuid.UUID]*model.OrdenCompra)}
}

func (r *stubOrdenRepo) Create(_ context.Context, o *model.OrdenCompra) error {
	r.ordenes[o.ID] = o
	return nil
}

func (r *stubOrdenRepo) FindByID(_ context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	o, ok := r.ordenes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrdenRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubOrdenRepo) List(_ context.Context, estado string) ([]model.OrdenCompra, error) {
	var out []model.OrdenCompra
	for _, o := range r.ordenes {
		if estado == "" || o.Estado == estado {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *stubOrdenRepo) UpdateTx(_ *gorm.DB, o *model.OrdenCompra) error {
	r.ordenes[o.ID] = o
	return nil
}

func (r *stubOrdenRepo) DB() *gorm.DB { return nil }

var _ repository.OrdenCompraRepository = (*stubOrdenRepo)(nil)

// ── Usuarios ──────────────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) FindByLogin(_ context.Context, login string) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.Activo && (u.Username == login || strings.EqualFold(u.Email, login)) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) ExistsUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	for _, u := range r.users {
		if (username != "" && u.Username == username) || strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if incluirInactivos || u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── Reportes ──────────────────────────────────────────────────────────────────

// stubReporteRepo returns canned rows and records the ranges it was asked for.
type stubReporteRepo struct {
	ventasDia    []repository.VentaDiaRow
	movDia       []repository.MovimientoDiaRow
	top          []repository.TopProductoRow
	cajeros      []repository.VentaCajeroRow
	detalladas   []model.Venta
	bajo         []model.Producto
	masStock     *model.Producto
	resumen      repository.ResumenInventario
	ultimos      []model.MovimientoStock
	umbralPedido int
	desde, hasta time.Time
}

func (r *stubReporteRepo) VentasPorDia(_ context.Context, desde, hasta time.Time) ([]repository.VentaDiaRow, error) {
	r.desde, r.hasta = desde, hasta
	return r.ventasDia, nil
}

func (r *stubReporteRepo) MovimientosPorDia(_ context.Context, _, _ time.Time) ([]repository.MovimientoDiaRow, error) {
	return r.movDia, nil
}

func (r *stubReporteRepo) TopProductos(_ context.Context, _, _ time.Time, limit int) ([]repository.TopProductoRow, error) {
	if len(r.top) > limit {
		return r.top[:limit], nil
	}
	return r.top, nil
}

func (r *stubReporteRepo) VentasPorCajero(_ context.Context, _, _ time.Time) ([]repository.VentaCajeroRow, error) {
	return r.cajeros, nil
}

func (r *stubReporteRepo) VentasDetalladas(_ context.Context, _, _ time.Time) ([]model.Venta, error) {
	return r.detalladas, nil
}

func (r *stubReporteRepo) BajoStock(_ context.Context, umbral int) ([]model.Producto, error) {
	r.umbralPedido = umbral
	var out []model.Producto
	for _, p := range r.bajo {
		if p.Stock <= umbral {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *stubReporteRepo) ProductoMasStock(_ context.Context) (*model.Producto, error) {
	return r.masStock, nil
}

func (r *stubReporteRepo) ResumenInventario(_ context.Context) (repository.ResumenInventario, error) {
	return r.resumen, nil
}

func (r *stubReporteRepo) UltimosMovimientos(_ context.Context, limit int) ([]model.MovimientoStock, error) {
	if len(r.ultimos) > limit {
		return r.ultimos[:limit], nil
	}
	return r.ultimos, nil
}

var _ repository.ReporteRepository = (*stubReporteRepo)(nil)

// ── Colaboradores ─────────────────────────────────────────────────────────────

type stubNotifier struct {
	mu       sync.Mutex
	enviados map[uuid.UUID]string
	err      error
}

func (n *stubNotifier) EnqueueFacturaEmail(_ context.Context, ventaID uuid.UUID, email string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	if n.enviados == nil {
		n.enviados = make(map[uuid.UUID]string)
	}
	n.enviados[ventaID] = email
	return nil
}

// memCache is a map-backed infra.Cache that counts hits.
type memCache struct {
	data map[string][]byte
	hits int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, ns, key string) ([]byte, bool, error) {
	v, ok := c.data[ns+":"+key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, ns, key string, value []byte, _ time.Duration) error {
	c.data[ns+":"+key] = value
	return nil
}

func (c *memCache) Invalidate(_ context.Context, ns string) error {
	for k := range c.data {
		if strings.HasPrefix(k, ns+":") {
			delete(c.data, k)
		}
	}
	return nil
}

var _ infra.Cache = (*memCache)(nil)

var errBoom = errors.New("boom")
