package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/infra"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Prefixes of references the system generates. They are keyed on ids that never
// change, and manual movements may not use them.
var prefijosReservados = []string{"INICIAL-", "VENTA-", "COMPRA-", "DEV-"}

func refInicial(productoID uuid.UUID) string { return "INICIAL-" + productoID.String() }

func refVenta(ventaID, productoID uuid.UUID) string {
	return "VENTA-" + ventaID.String() + "-" + productoID.String()
}

func refCompra(compraID, productoID uuid.UUID) string {
	return "COMPRA-" + compraID.String() + "-" + productoID.String()
}

func refDevolucion(devolucionID uuid.UUID) string { return "DEV-" + devolucionID.String() }

// ordenBloqueo returns a copy of items sorted by product id. Workflows that lock
// several product rows in one transaction walk them in this order.
func ordenBloqueo[T any](items []T, productoID func(T) uuid.UUID) []T {
	out := slices.Clone(items)
	slices.SortFunc(out, func(a, b T) int {
		ida, idb := productoID(a), productoID(b)
		return bytes.Compare(ida[:], idb[:])
	})
	return out
}

func referenciaReservada(ref string) bool {
	r := strings.ToUpper(strings.TrimSpace(ref))
	for _, p := range prefijosReservados {
		if strings.HasPrefix(r, p) {
			return true
		}
	}
	return false
}

// MovimientoInput describes one ledger entry to record. Referencia is optional
// but unique across all movements when present.
type MovimientoInput struct {
	ProductoID uuid.UUID
	Tipo       string
	Cantidad   int
	Referencia string
	Motivo     string
	UsuarioID  *uuid.UUID
}

// InventarioService owns the stock ledger. Every change to Producto.Stock in
// the system goes through RegistrarMovimientoTx or EliminarMovimiento.
type InventarioService interface {
	// RegistrarMovimientoTx records a movement inside the caller's transaction.
	RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*model.MovimientoStock, error)
	// StockActualizado must be called after a transaction that recorded
	// movements commits; it drops cached search results carrying stock.
	StockActualizado(ctx context.Context)
	RegistrarMovimiento(ctx context.Context, actor Actor, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error)
	EliminarMovimiento(ctx context.Context, id uuid.UUID) error
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error)
	Conciliar(ctx context.Context) (*dto.ConciliacionResponse, error)
}

type inventarioService struct {
	productoRepo repository.ProductoRepository
	movRepo      repository.MovimientoStockRepository
	cache        infra.Cache
}

func NewInventarioService(productoRepo repository.ProductoRepository, movRepo repository.MovimientoStockRepository, cache infra.Cache) InventarioService {
	if cache == nil {
		cache = infra.NoopCache{}
	}
	return &inventarioService{productoRepo: productoRepo, movRepo: movRepo, cache: cache}
}

func (s *inventarioService) StockActualizado(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheProductos); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar la cache de productos")
	}
}

func (s *inventarioService) RegistrarMovimientoTx(ctx context.Context, tx *gorm.DB, in MovimientoInput) (*model.MovimientoStock, error) {
	if in.Cantidad <= 0 {
		return nil, ErrCantidadInvalida
	}
	var signo int
	switch in.Tipo {
	case model.MovimientoEntrada:
		signo = 1
	case model.MovimientoSalida:
		signo = -1
	default:
		return nil, fmt.Errorf("%w: %q", ErrTipoMovimientoInvalido, in.Tipo)
	}

	var ref *string
	if r := strings.TrimSpace(in.Referencia); r != "" {
		existe, err := s.movRepo.ExistsReferenciaTx(tx, r)
		if err != nil {
			return nil, err
		}
		if existe {
			return nil, fmt.Errorf("%w: %s", ErrReferenciaDuplicada, r)
		}
		ref = &r
	}

	p, err := s.productoRepo.FindByIDForUpdateTx(tx, in.ProductoID)
	if err != nil {
		return nil, notFound(err)
	}

	anterior := p.Stock
	nuevo := anterior + signo*in.Cantidad
	if nuevo < 0 {
		return nil, fmt.Errorf("%w: %s (disponible %d, solicitado %d)", ErrStockInsuficiente, p.Nombre, anterior, in.Cantidad)
	}

	if err := s.productoRepo.UpdateStockTx(tx, p.ID, signo*in.Cantidad); err != nil {
		return nil, err
	}

	mov := &model.MovimientoStock{
		ID:               uuid.New(),
		ProductoID:       p.ID,
		Tipo:             in.Tipo,
		Cantidad:         in.Cantidad,
		StockAnterior:    anterior,
		StockNuevo:       nuevo,
		NumeroReferencia: ref,
		Motivo:           in.Motivo,
		UsuarioID:        in.UsuarioID,
		CreatedAt:        time.Now(),
	}
	if err := s.movRepo.CreateTx(tx, mov); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) && ref != nil {
			return nil, fmt.Errorf("%w: %s", ErrReferenciaDuplicada, *ref)
		}
		return nil, err
	}
	mov.Producto = p
	return mov, nil
}

func (s *inventarioService) RegistrarMovimiento(ctx context.Context, actor Actor, req dto.RegistrarMovimientoRequest) (*dto.MovimientoResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, fmt.Errorf("%w: producto_id invalido", ErrNoEncontrado)
	}
	in := MovimientoInput{
		ProductoID: pid,
		Tipo:       req.Tipo,
		Cantidad:   req.Cantidad,
		Motivo:     req.Motivo,
		UsuarioID:  actor.idPtr(),
	}
	if req.NumeroReferencia != nil {
		if referenciaReservada(*req.NumeroReferencia) {
			return nil, fmt.Errorf("%w: %s", ErrReferenciaReservada, strings.TrimSpace(*req.NumeroReferencia))
		}
		in.Referencia = *req.NumeroReferencia
	}
	if in.Motivo == "" {
		in.Motivo = "Ajuste manual"
	}

	var mov *model.MovimientoStock
	err = runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		var err error
		mov, err = s.RegistrarMovimientoTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.StockActualizado(ctx)
	resp := movimientoToResponse(mov)
	return &resp, nil
}

// EliminarMovimiento deletes a movement and reverses its effect on stock.
// A reversal that would leave stock negative is rejected.
func (s *inventarioService) EliminarMovimiento(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.movRepo.DB(), func(tx *gorm.DB) error {
		mov, err := s.movRepo.FindByIDTx(tx, id)
		if err != nil {
			return notFound(err)
		}
		p, err := s.productoRepo.FindByIDForUpdateTx(tx, mov.ProductoID)
		if err != nil {
			return notFound(err)
		}
		reverso := -mov.Delta()
		if p.Stock+reverso < 0 {
			return fmt.Errorf("%w: revertir el movimiento dejaria %s con stock %d",
				ErrStockInsuficiente, p.Nombre, p.Stock+reverso)
		}
		if err := s.productoRepo.UpdateStockTx(tx, p.ID, reverso); err != nil {
			return err
		}
		return s.movRepo.DeleteTx(tx, id)
	})
	if err != nil {
		return err
	}
	s.StockActualizado(ctx)
	return nil
}

func (s *inventarioService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) (*dto.MovimientoListResponse, error) {
	f := repository.MovimientoStockFilter{Tipo: filter.Tipo, Page: filter.Page, Limit: filter.Limit}
	if filter.ProductoID != "" {
		pid, err := uuid.Parse(filter.ProductoID)
		if err != nil {
			return nil, fmt.Errorf("%w: producto_id invalido", ErrNoEncontrado)
		}
		f.ProductoID = &pid
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 500 {
		f.Limit = 100
	}

	movs, total, err := s.movRepo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	data := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		data = append(data, movimientoToResponse(&movs[i]))
	}
	return &dto.MovimientoListResponse{Data: data, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Conciliar compares every product's cached stock with its ledger balance.
func (s *inventarioService) Conciliar(ctx context.Context) (*dto.ConciliacionResponse, error) {
	saldos, err := s.movRepo.Saldos(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ConciliacionResponse{
		ProductosRevisados: len(saldos),
		Diferencias:        []dto.ConciliacionItem{},
	}
	for _, sl := range saldos {
		if int64(sl.StockCacheado) == sl.Saldo {
			continue
		}
		resp.Diferencias = append(resp.Diferencias, dto.ConciliacionItem{
			ProductoID:    sl.ProductoID.String(),
			Codigo:        sl.Codigo,
			Nombre:        sl.Nombre,
			StockCacheado: sl.StockCacheado,
			StockLedger:   sl.Saldo,
			Diferencia:    int64(sl.StockCacheado) - sl.Saldo,
		})
	}
	resp.Consistente = len(resp.Diferencias) == 0
	return resp, nil
}

func movimientoToResponse(m *model.MovimientoStock) dto.MovimientoResponse {
	r := dto.MovimientoResponse{
		ID:               m.ID.String(),
		ProductoID:       m.ProductoID.String(),
		Tipo:             m.Tipo,
		Cantidad:         m.Cantidad,
		StockAnterior:    m.StockAnterior,
		StockNuevo:       m.StockNuevo,
		NumeroReferencia: m.NumeroReferencia,
		Motivo:           m.Motivo,
		CreatedAt:        m.CreatedAt.Format(time.RFC3339),
	}
	if m.Producto != nil {
		r.ProductoNombre = m.Producto.Nombre
	}
	return r
}
