package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
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

const (
	cacheProductos = "productos"
	busquedaLimite = 20
)

// ProductoService defines the business logic contract for products.
type ProductoService interface {
	Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	ObtenerPorCodigo(ctx context.Context, codigo int) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	// Buscar is the autocomplete lookup; results may be served from cache.
	Buscar(ctx context.Context, q string) ([]dto.ProductoBusquedaItem, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type productoService struct {
	repo       repository.ProductoRepository
	inventario InventarioService
	cache      infra.Cache
	ttl        time.Duration
}

func NewProductoService(repo repository.ProductoRepository, inventario InventarioService, cache infra.Cache, ttl time.Duration) ProductoService {
	if cache == nil {
		cache = infra.NoopCache{}
	}
	return &productoService{repo: repo, inventario: inventario, cache: cache, ttl: ttl}
}

// Crear stores the product with zero stock and books StockInicial as an
// ENTRADA in the same transaction, so the ledger explains every unit.
func (s *productoService) Crear(ctx context.Context, actor Actor, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	if req.PrecioCompra.IsNegative() || req.PrecioVenta.IsNegative() {
		return nil, ErrPrecioInvalido
	}
	if req.StockInicial < 0 {
		return nil, ErrCantidadInvalida
	}
	if _, err := s.repo.FindByCodigo(ctx, req.Codigo); err == nil {
		return nil, fmt.Errorf("%w: %d", ErrCodigoDuplicado, req.Codigo)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	now := time.Now()
	p := &model.Producto{
		ID:           uuid.New(),
		Codigo:       req.Codigo,
		Nombre:       strings.TrimSpace(req.Nombre),
		Descripcion:  req.Descripcion,
		PrecioCompra: req.PrecioCompra,
		PrecioVenta:  req.PrecioVenta,
		Stock:        0,
		Activo:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %d", ErrCodigoDuplicado, req.Codigo)
			}
			return err
		}
		if req.StockInicial == 0 {
			return nil
		}
		mov, err := s.inventario.RegistrarMovimientoTx(ctx, tx, MovimientoInput{
			ProductoID: p.ID,
			Tipo:       model.MovimientoEntrada,
			Cantidad:   req.StockInicial,
			Referencia: refInicial(p.ID),
			Motivo:     "Stock inicial",
			UsuarioID:  actor.idPtr(),
		})
		if err != nil {
			return err
		}
		p.Stock = mov.StockNuevo
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidar(ctx)
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) ObtenerPorCodigo(ctx context.Context, codigo int) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByCodigo(ctx, codigo)
	if err != nil {
		return nil, notFound(err)
	}
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	filter.Q = strings.TrimSpace(filter.Q)

	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *productoService) Buscar(ctx context.Context, q string) ([]dto.ProductoBusquedaItem, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []dto.ProductoBusquedaItem{}, nil
	}

	if raw, ok, err := s.cache.Get(ctx, cacheProductos, q); err != nil {
		log.Warn().Err(err).Msg("cache de busqueda no disponible")
	} else if ok {
		var items []dto.ProductoBusquedaItem
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, nil
		}
	}

	productos, err := s.repo.Buscar(ctx, q, busquedaLimite)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductoBusquedaItem, 0, len(productos))
	for _, p := range productos {
		items = append(items, dto.ProductoBusquedaItem{
			ID:           p.ID.String(),
			Codigo:       p.Codigo,
			Nombre:       p.Nombre,
			PrecioCompra: p.PrecioCompra,
			PrecioVenta:  p.PrecioVenta,
			Stock:        p.Stock,
		})
	}

	if raw, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, cacheProductos, q, raw, s.ttl); err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar la busqueda en cache")
		}
	}
	return items, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if req.Codigo != nil && *req.Codigo != p.Codigo {
		if otro, err := s.repo.FindByCodigo(ctx, *req.Codigo); err == nil && otro.ID != p.ID {
			return nil, fmt.Errorf("%w: %d", ErrCodigoDuplicado, *req.Codigo)
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		p.Codigo = *req.Codigo
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Descripcion != nil {
		p.Descripcion = req.Descripcion
	}
	if req.PrecioCompra != nil {
		if req.PrecioCompra.IsNegative() {
			return nil, ErrPrecioInvalido
		}
		p.PrecioCompra = *req.PrecioCompra
	}
	if req.PrecioVenta != nil {
		if req.PrecioVenta.IsNegative() {
			return nil, ErrPrecioInvalido
		}
		p.PrecioVenta = *req.PrecioVenta
	}

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %d", ErrCodigoDuplicado, p.Codigo)
		}
		return nil, err
	}
	s.invalidar(ctx)
	resp := productoToResponse(p)
	return &resp, nil
}

func (s *productoService) Desactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActivo(ctx, id, false); err != nil {
		return notFound(err)
	}
	s.invalidar(ctx)
	return nil
}

func (s *productoService) Reactivar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SetActivo(ctx, id, true); err != nil {
		return notFound(err)
	}
	s.invalidar(ctx)
	return nil
}

// Eliminar hard-deletes the product together with its movements. Sale and
// purchase lines keep their name and code snapshot.
func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.DeleteTx(tx, id)
	})
	if err != nil {
		return notFound(err)
	}
	s.invalidar(ctx)
	log.Info().Str("producto_id", id.String()).Msg("producto eliminado")
	return nil
}

func (s *productoService) invalidar(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cacheProductos); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar la cache de productos")
	}
}

func productoToResponse(p *model.Producto) dto.ProductoResponse {
	return dto.ProductoResponse{
		ID:           p.ID.String(),
		Codigo:       p.Codigo,
		Nombre:       p.Nombre,
		Descripcion:  p.Descripcion,
		PrecioCompra: p.PrecioCompra,
		PrecioVenta:  p.PrecioVenta,
		Stock:        p.Stock,
		Activo:       p.Activo,
	}
}
