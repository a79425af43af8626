package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockmaster/internal/config"
	"stockmaster/internal/dto"
	"stockmaster/internal/infra"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// FacturaNotifier queues the invoice email for a committed sale.
type FacturaNotifier interface {
	EnqueueFacturaEmail(ctx context.Context, ventaID uuid.UUID, email string) error
}

type VentaService interface {
	Finalizar(ctx context.Context, actor Actor, req dto.FinalizarVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, actor Actor, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	// FacturaPDF renders the invoice and returns it with its ticket number.
	FacturaPDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, int, error)
}

type ventaService struct {
	repo         repository.VentaRepository
	productoRepo repository.ProductoRepository
	inventario   InventarioService
	notifier     FacturaNotifier
	cfg          *config.Config
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	inventario InventarioService,
	notifier FacturaNotifier,
	cfg *config.Config,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		inventario:   inventario,
		notifier:     notifier,
		cfg:          cfg,
	}
}

// ── Finalizar ────────────────────────────────────────────────────────────────
//   1. Resolve products (merging repeated lines) and check stock
//   2. Price the cart: subtotal, discount, IVA, payment
//   3. BEGIN TX: ticket number, venta + detalles, one SALIDA per line
//   4. COMMIT
//   5. (async) enqueue invoice email when the customer gave one

func (s *ventaService) Finalizar(ctx context.Context, actor Actor, req dto.FinalizarVentaRequest) (*dto.VentaResponse, error) {
	if len(req.Items) == 0 {
		return nil, ErrSinProductos
	}

	var orden []uuid.UUID
	cantidades := make(map[uuid.UUID]int, len(req.Items))
	for _, item := range req.Items {
		pid, err := uuid.Parse(item.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id %q invalido", ErrNoEncontrado, item.ProductoID)
		}
		if item.Cantidad <= 0 {
			return nil, ErrCantidadInvalida
		}
		if _, ok := cantidades[pid]; !ok {
			orden = append(orden, pid)
		}
		cantidades[pid] += item.Cantidad
	}

	productos := make([]*model.Producto, 0, len(orden))
	lineas := make([]LineaTotal, 0, len(orden))
	for _, pid := range orden {
		p, err := s.productoRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", pid, notFound(err))
		}
		if !p.Activo {
			return nil, fmt.Errorf("%w: %s no puede venderse", ErrProductoInactivo, p.Nombre)
		}
		cant := cantidades[pid]
		if cant > p.Stock {
			return nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)", ErrStockInsuficiente, p.Nombre, p.Stock, cant)
		}
		productos = append(productos, p)
		lineas = append(lineas, LineaTotal{PrecioUnitario: p.PrecioVenta, Cantidad: cant})
	}

	tot, err := CalcularTotales(lineas, req.DescuentoGeneral, s.ivaPorcentaje(), req.MetodoPago, req.MontoRecibido)
	if err != nil {
		return nil, err
	}

	var email *string
	if req.ClienteEmail != nil {
		if e := strings.TrimSpace(*req.ClienteEmail); e != "" {
			email = &e
		}
	}

	venta := model.Venta{
		ID:               uuid.New(),
		UsuarioID:        actor.idPtr(),
		Total:            tot.Subtotal,
		DescuentoGeneral: tot.Descuento,
		IVAPorcentaje:    tot.IVAPorcentaje,
		IVATotal:         tot.IVA,
		TotalFinal:       tot.TotalFinal,
		MetodoPago:       req.MetodoPago,
		MontoRecibido:    tot.MontoRecibido,
		Cambio:           tot.Cambio,
		ClienteEmail:     email,
		CreatedAt:        time.Now(),
	}
	for i, p := range productos {
		pid := p.ID
		venta.Detalles = append(venta.Detalles, model.DetalleVenta{
			ID:             uuid.New(),
			VentaID:        venta.ID,
			ProductoID:     &pid,
			ProductoNombre: p.Nombre,
			ProductoCodigo: p.Codigo,
			Cantidad:       lineas[i].Cantidad,
			PrecioUnitario: p.PrecioVenta,
			Subtotal:       p.PrecioVenta.Mul(decimalFromInt(lineas[i].Cantidad)),
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		venta.NumeroTicket = ticket

		if err := s.repo.CreateTx(tx, &venta); err != nil {
			return err
		}

		// The ledger re-checks stock under a row lock, so a concurrent sale
		// that consumed the stock after step 1 aborts the whole transaction.
		// Rows are locked in product id order so two carts never wait on each other.
		for _, d := range ordenBloqueo(venta.Detalles, func(d model.DetalleVenta) uuid.UUID { return *d.ProductoID }) {
			_, err := s.inventario.RegistrarMovimientoTx(ctx, tx, MovimientoInput{
				ProductoID: *d.ProductoID,
				Tipo:       model.MovimientoSalida,
				Cantidad:   d.Cantidad,
				Referencia: refVenta(venta.ID, *d.ProductoID),
				Motivo:     fmt.Sprintf("Venta #%d", ticket),
				UsuarioID:  venta.UsuarioID,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	s.inventario.StockActualizado(ctx)

	if s.notifier != nil && email != nil {
		if err := s.notifier.EnqueueFacturaEmail(ctx, venta.ID, *email); err != nil {
			log.Warn().Err(err).
				Str("venta_id", venta.ID.String()).
				Int("ticket", venta.NumeroTicket).
				Msg("no se pudo encolar el envio de factura")
		}
	}

	log.Info().
		Str("venta_id", venta.ID.String()).
		Int("ticket", venta.NumeroTicket).
		Str("total_final", venta.TotalFinal.StringFixed(2)).
		Msg("venta finalizada")

	return ventaToResponse(&venta), nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, actor Actor, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.cargarVenta(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return ventaToResponse(v), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, actor Actor, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	f := repository.VentaListFilter{Page: filter.Page, Limit: filter.Limit}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 200 {
		f.Limit = 50
	}
	desde, hasta, err := parseRango(filter.Desde, filter.Hasta)
	if err != nil {
		return nil, err
	}
	f.Desde, f.Hasta = desde, hasta
	if actor.Rol != model.RolAdmin {
		f.UsuarioID = actor.idPtr()
	}

	ventas, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (s *ventaService) FacturaPDF(ctx context.Context, actor Actor, id uuid.UUID) ([]byte, int, error) {
	v, err := s.cargarVenta(ctx, actor, id)
	if err != nil {
		return nil, 0, err
	}
	pdf, err := infra.GenerateFacturaPDF(v, s.negocio())
	if err != nil {
		return nil, 0, err
	}
	return pdf, v.NumeroTicket, nil
}

// cargarVenta loads a sale; cashiers only see their own.
func (s *ventaService) cargarVenta(ctx context.Context, actor Actor, id uuid.UUID) (*model.Venta, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if actor.Rol != model.RolAdmin && (v.UsuarioID == nil || *v.UsuarioID != actor.ID) {
		return nil, ErrPermisoDenegado
	}
	return v, nil
}

func (s *ventaService) ivaPorcentaje() int {
	if s.cfg == nil || s.cfg.IVAPorcentaje <= 0 {
		return 19
	}
	return s.cfg.IVAPorcentaje
}

func (s *ventaService) negocio() string {
	if s.cfg == nil || s.cfg.BusinessName == "" {
		return "Stock Master"
	}
	return s.cfg.BusinessName
}

// parseRango turns optional YYYY-MM-DD bounds into [desde, hasta+1d).
func parseRango(desdeStr, hastaStr string) (*time.Time, *time.Time, error) {
	var desde, hasta *time.Time
	if desdeStr != "" {
		d, err := time.ParseInLocation("2006-01-02", desdeStr, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: desde=%q", ErrFechaInvalida, desdeStr)
		}
		desde = &d
	}
	if hastaStr != "" {
		h, err := time.ParseInLocation("2006-01-02", hastaStr, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: hasta=%q", ErrFechaInvalida, hastaStr)
		}
		h = h.AddDate(0, 0, 1)
		hasta = &h
	}
	return desde, hasta, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	detalles := make([]dto.DetalleVentaResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		detalles = append(detalles, dto.DetalleVentaResponse{
			ID:             d.ID.String(),
			ProductoID:     uuidPtrString(d.ProductoID),
			ProductoNombre: d.ProductoNombre,
			ProductoCodigo: d.ProductoCodigo,
			Cantidad:       d.Cantidad,
			PrecioUnitario: d.PrecioUnitario,
			Subtotal:       d.Subtotal,
		})
	}
	resp := &dto.VentaResponse{
		ID:               v.ID.String(),
		NumeroTicket:     v.NumeroTicket,
		Detalles:         detalles,
		Total:            v.Total,
		DescuentoGeneral: v.DescuentoGeneral,
		IVAPorcentaje:    v.IVAPorcentaje,
		IVATotal:         v.IVATotal,
		TotalFinal:       v.TotalFinal,
		MetodoPago:       v.MetodoPago,
		MontoRecibido:    v.MontoRecibido,
		Cambio:           v.Cambio,
		ClienteEmail:     v.ClienteEmail,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
	}
	if v.Usuario != nil {
		resp.Cajero = v.Usuario.Username
	}
	return resp
}

