package service

import (
	"context"
	"fmt"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompraService receives supplier merchandise into stock, directly or through
// a purchase order.
type CompraService interface {
	CrearCompra(ctx context.Context, actor Actor, req dto.CrearCompraRequest) (*dto.CompraResponse, error)
	ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error)
	ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error)

	CrearOrden(ctx context.Context, req dto.CrearOrdenCompraRequest) (*dto.OrdenCompraResponse, error)
	ListarOrdenes(ctx context.Context, estado string) ([]dto.OrdenCompraResponse, error)
	RecibirOrden(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrdenCompraResponse, error)
	CancelarOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenCompraResponse, error)
}

type compraService struct {
	repo          repository.CompraRepository
	ordenRepo     repository.OrdenCompraRepository
	proveedorRepo repository.ProveedorRepository
	productoRepo  repository.ProductoRepository
	inventario    InventarioService
}

func NewCompraService(
	repo repository.CompraRepository,
	ordenRepo repository.OrdenCompraRepository,
	proveedorRepo repository.ProveedorRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
) CompraService {
	return &compraService{
		repo:          repo,
		ordenRepo:     ordenRepo,
		proveedorRepo: proveedorRepo,
		productoRepo:  productoRepo,
		inventario:    inventario,
	}
}

type lineaCompra struct {
	producto *model.Producto
	cantidad int
	precio   decimal.Decimal
}

func (s *compraService) CrearCompra(ctx context.Context, actor Actor, req dto.CrearCompraRequest) (*dto.CompraResponse, error) {
	provID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("%w: proveedor_id invalido", ErrNoEncontrado)
	}
	prov, err := s.proveedorRepo.FindByID(ctx, provID)
	if err != nil {
		return nil, fmt.Errorf("proveedor: %w", notFound(err))
	}
	if len(req.Items) == 0 {
		return nil, ErrSinProductos
	}

	vistos := make(map[uuid.UUID]bool, len(req.Items))
	lineas := make([]lineaCompra, 0, len(req.Items))
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			return nil, ErrCantidadInvalida
		}
		if item.PrecioUnitario.IsNegative() {
			return nil, ErrPrecioInvalido
		}
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id %q invalido", ErrNoEncontrado, item.ProductoID)
		}
		if vistos[pid] {
			return nil, fmt.Errorf("%w: %s", ErrProductoRepetido, pid)
		}
		vistos[pid] = true
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", pid, notFound(err))
		}
		lineas = append(lineas, lineaCompra{producto: p, cantidad: item.Cantidad, precio: item.PrecioUnitario})
	}

	var compra *model.Compra
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		compra, err = s.registrarCompraTx(ctx, tx, actor, prov.ID, nil, lineas)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.inventario.StockActualizado(ctx)
	compra.Proveedor = prov
	return compraToResponse(compra), nil
}

// registrarCompraTx stores the purchase and records one ENTRADA per line.
func (s *compraService) registrarCompraTx(ctx context.Context, tx *gorm.DB, actor Actor, proveedorID uuid.UUID, ordenID *uuid.UUID, lineas []lineaCompra) (*model.Compra, error) {
	compra := &model.Compra{
		ID:            uuid.New(),
		ProveedorID:   proveedorID,
		OrdenCompraID: ordenID,
		UsuarioID:     actor.idPtr(),
		Total:         decimal.Zero,
		CreatedAt:     time.Now(),
	}
	for _, l := range lineas {
		pid := l.producto.ID
		sub := l.precio.Mul(decimalFromInt(l.cantidad))
		compra.Total = compra.Total.Add(sub)
		compra.Detalles = append(compra.Detalles, model.DetalleCompra{
			ID:             uuid.New(),
			CompraID:       compra.ID,
			ProductoID:     &pid,
			ProductoNombre: l.producto.Nombre,
			ProductoCodigo: l.producto.Codigo,
			Cantidad:       l.cantidad,
			PrecioUnitario: l.precio,
			Subtotal:       sub,
		})
	}
	if err := s.repo.CreateTx(tx, compra); err != nil {
		return nil, err
	}

	for _, d := range ordenBloqueo(compra.Detalles, func(d model.DetalleCompra) uuid.UUID { return *d.ProductoID }) {
		_, err := s.inventario.RegistrarMovimientoTx(ctx, tx, MovimientoInput{
			ProductoID: *d.ProductoID,
			Tipo:       model.MovimientoEntrada,
			Cantidad:   d.Cantidad,
			Referencia: refCompra(compra.ID, *d.ProductoID),
			Motivo:     "Compra a proveedor",
			UsuarioID:  compra.UsuarioID,
		})
		if err != nil {
			return nil, err
		}
	}

	log.Info().
		Str("compra_id", compra.ID.String()).
		Str("proveedor_id", proveedorID.String()).
		Str("total", compra.Total.StringFixed(2)).
		Msg("compra registrada")
	return compra, nil
}

func (s *compraService) ObtenerCompra(ctx context.Context, id uuid.UUID) (*dto.CompraResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return compraToResponse(c), nil
}

func (s *compraService) ListarCompras(ctx context.Context, filter dto.CompraFilter) (*dto.CompraListResponse, error) {
	f := repository.CompraListFilter{Page: filter.Page, Limit: filter.Limit}
	if filter.ProveedorID != "" {
		id, err := uuid.Parse(filter.ProveedorID)
		if err != nil {
			return nil, fmt.Errorf("%w: proveedor_id invalido", ErrNoEncontrado)
		}
		f.ProveedorID = &id
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	compras, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.CompraResponse, 0, len(compras))
	for i := range compras {
		data = append(data, *compraToResponse(&compras[i]))
	}
	return &dto.CompraListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// ── Órdenes de compra ────────────────────────────────────────────────────────

func (s *compraService) CrearOrden(ctx context.Context, req dto.CrearOrdenCompraRequest) (*dto.OrdenCompraResponse, error) {
	if req.Cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	if req.CostoUnitario.IsNegative() {
		return nil, ErrPrecioInvalido
	}
	provID, err := uuid.Parse(req.ProveedorID)
	if err != nil {
		return nil, fmt.Errorf("%w: proveedor_id invalido", ErrNoEncontrado)
	}
	prov, err := s.proveedorRepo.FindByID(ctx, provID)
	if err != nil {
		return nil, fmt.Errorf("proveedor: %w", notFound(err))
	}
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id invalido", ErrNoEncontrado)
	}
	p, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("producto: %w", notFound(err))
	}

	now := time.Now()
	o := &model.OrdenCompra{
		ID:             uuid.New(),
		ProveedorID:    prov.ID,
		ProductoID:     &p.ID,
		ProductoNombre: p.Nombre,
		ProductoCodigo: p.Codigo,
		Cantidad:       req.Cantidad,
		CostoUnitario:  req.CostoUnitario,
		Subtotal:       req.CostoUnitario.Mul(decimalFromInt(req.Cantidad)),
		Estado:         model.OrdenPendiente,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.ordenRepo.Create(ctx, o); err != nil {
		return nil, err
	}
	o.Proveedor = prov
	return ordenToResponse(o), nil
}

func (s *compraService) ListarOrdenes(ctx context.Context, estado string) ([]dto.OrdenCompraResponse, error) {
	switch estado {
	case "", model.OrdenPendiente, model.OrdenRecibida, model.OrdenCancelada:
	default:
		return nil, fmt.Errorf("%w: %q", ErrEstadoInvalido, estado)
	}
	ordenes, err := s.ordenRepo.List(ctx, estado)
	if err != nil {
		return nil, err
	}
	out := make([]dto.OrdenCompraResponse, 0, len(ordenes))
	for i := range ordenes {
		out = append(out, *ordenToResponse(&ordenes[i]))
	}
	return out, nil
}

// RecibirOrden moves a PENDIENTE order to RECIBIDA and books its stock
// through a generated Compra, all in one transaction.
func (s *compraService) RecibirOrden(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrdenCompraResponse, error) {
	var orden *model.OrdenCompra
	err := runTx(ctx, s.ordenRepo.DB(), func(tx *gorm.DB) error {
		o, err := s.ordenRepo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		if o.Estado != model.OrdenPendiente {
			return fmt.Errorf("%w: la orden esta %s", ErrTransicionInvalida, o.Estado)
		}
		if o.ProductoID == nil {
			return fmt.Errorf("producto %s: %w", o.ProductoNombre, ErrNoEncontrado)
		}
		p, err := s.productoRepo.FindByIDForUpdateTx(tx, *o.ProductoID)
		if err != nil {
			return fmt.Errorf("producto: %w", notFound(err))
		}

		compra, err := s.registrarCompraTx(ctx, tx, actor, o.ProveedorID, &o.ID, []lineaCompra{
			{producto: p, cantidad: o.Cantidad, precio: o.CostoUnitario},
		})
		if err != nil {
			return err
		}

		now := time.Now()
		o.Estado = model.OrdenRecibida
		o.CompraID = &compra.ID
		o.RecibidaAt = &now
		o.UpdatedAt = now
		if err := s.ordenRepo.UpdateTx(tx, o); err != nil {
			return err
		}
		orden = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.inventario.StockActualizado(ctx)
	return ordenToResponse(orden), nil
}

func (s *compraService) CancelarOrden(ctx context.Context, id uuid.UUID) (*dto.OrdenCompraResponse, error) {
	var orden *model.OrdenCompra
	err := runTx(ctx, s.ordenRepo.DB(), func(tx *gorm.DB) error {
		o, err := s.ordenRepo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		if o.Estado != model.OrdenPendiente {
			return fmt.Errorf("%w: la orden esta %s", ErrTransicionInvalida, o.Estado)
		}
		o.Estado = model.OrdenCancelada
		o.UpdatedAt = time.Now()
		if err := s.ordenRepo.UpdateTx(tx, o); err != nil {
			return err
		}
		orden = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ordenToResponse(orden), nil
}

func compraToResponse(c *model.Compra) *dto.CompraResponse {
	detalles := make([]dto.DetalleCompraResponse, 0, len(c.Detalles))
	for _, d := range c.Detalles {
		detalles = append(detalles, dto.DetalleCompraResponse{
			ID:             d.ID.String(),
			ProductoID:     uuidPtrString(d.ProductoID),
			ProductoNombre: d.ProductoNombre,
			ProductoCodigo: d.ProductoCodigo,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	resp := &dto.CompraResponse{
		ID:            c.ID.String(),
		ProveedorID:   c.ProveedorID.String(),
		OrdenCompraID: uuidPtrString(c.OrdenCompraID),
		Total:         c.Total,
		Detalles:      detalles,
		CreatedAt:     c.CreatedAt.Format(time.RFC3339),
	}
	if c.Proveedor != nil {
		resp.Proveedor = c.Proveedor.Nombre
	}
	return resp
}

func ordenToResponse(o *model.OrdenCompra) *dto.OrdenCompraResponse {
	resp := &dto.OrdenCompraResponse{
		ID:             o.ID.String(),
		ProveedorID:    o.ProveedorID.String(),
		ProductoID:     uuidPtrString(o.ProductoID),
		ProductoNombre: o.ProductoNombre,
		Cantidad:       o.Cantidad,
		CostoUnitario:  o.CostoUnitario,
		Subtotal:       o.Subtotal,
		Estado:         o.Estado,
		CompraID:       uuidPtrString(o.CompraID),
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.RecibidaAt != nil {
		r := o.RecibidaAt.Format(time.RFC3339)
		resp.RecibidaAt = &r
	}
	if o.Proveedor != nil {
		resp.Proveedor = o.Proveedor.Nombre
	}
	return resp
}
