package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type DevolucionService interface {
	// Devolubles lists the lines of a sale with the units still returnable.
	Devolubles(ctx context.Context, actor Actor, ventaID uuid.UUID) ([]dto.LineaDevolubleResponse, error)
	// Procesar returns the requested lines. Each line commits on its own; a
	// rejected line is reported in Errores and does not undo the others.
	Procesar(ctx context.Context, actor Actor, ventaID uuid.UUID, req dto.DevolucionRequest) (*dto.DevolucionResultado, error)
	Listar(ctx context.Context, actor Actor) ([]dto.DevolucionResponse, error)
}

type devolucionService struct {
	repo       repository.DevolucionRepository
	ventaRepo  repository.VentaRepository
	inventario InventarioService
}

func NewDevolucionService(
	repo repository.DevolucionRepository,
	ventaRepo repository.VentaRepository,
	inventario InventarioService,
) DevolucionService {
	return &devolucionService{repo: repo, ventaRepo: ventaRepo, inventario: inventario}
}

func (s *devolucionService) cargarVenta(ctx context.Context, actor Actor, ventaID uuid.UUID) (*model.Venta, error) {
	v, err := s.ventaRepo.FindByID(ctx, ventaID)
	if err != nil {
		return nil, notFound(err)
	}
	if actor.Rol != model.RolAdmin && (v.UsuarioID == nil || *v.UsuarioID != actor.ID) {
		return nil, ErrPermisoDenegado
	}
	return v, nil
}

func (s *devolucionService) Devolubles(ctx context.Context, actor Actor, ventaID uuid.UUID) ([]dto.LineaDevolubleResponse, error) {
	v, err := s.cargarVenta(ctx, actor, ventaID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LineaDevolubleResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		devuelta, err := s.repo.SumCantidadPorDetalle(ctx, nil, d.ID)
		if err != nil {
			return nil, err
		}
		max := d.Cantidad - devuelta
		if max < 0 {
			max = 0
		}
		out = append(out, dto.LineaDevolubleResponse{
			DetalleVentaID: d.ID.String(),
			ProductoNombre: d.ProductoNombre,
			Vendida:        d.Cantidad,
			Devuelta:       devuelta,
			MaxDevolver:    max,
		})
	}
	return out, nil
}

func (s *devolucionService) Procesar(ctx context.Context, actor Actor, ventaID uuid.UUID, req dto.DevolucionRequest) (*dto.DevolucionResultado, error) {
	v, err := s.cargarVenta(ctx, actor, ventaID)
	if err != nil {
		return nil, err
	}

	lineas := make(map[uuid.UUID]model.DetalleVenta, len(v.Detalles))
	for _, d := range v.Detalles {
		lineas[d.ID] = d
	}

	motivo := strings.TrimSpace(req.Motivo)
	if motivo == "" {
		motivo = "Devolucion de cliente"
	}

	res := &dto.DevolucionResultado{Creadas: []dto.DevolucionResponse{}, Errores: []string{}}
	for _, item := range req.Items {
		if item.Cantidad <= 0 {
			continue
		}
		did, err := uuid.Parse(item.DetalleVentaID)
		if err != nil {
			res.Errores = append(res.Errores, fmt.Sprintf("Linea %q invalida", item.DetalleVentaID))
			continue
		}
		linea, ok := lineas[did]
		if !ok {
			res.Errores = append(res.Errores, fmt.Sprintf("La linea %s no pertenece a la venta #%d", did, v.NumeroTicket))
			continue
		}

		dev, err := s.devolverLinea(ctx, actor, v, linea, item.Cantidad, motivo)
		if err != nil {
			var rechazo *rechazoDevolucion
			if errors.As(err, &rechazo) {
				res.Errores = append(res.Errores, rechazo.msg)
				continue
			}
			return nil, err
		}
		res.Creadas = append(res.Creadas, devolucionToResponse(dev, v.NumeroTicket))
	}

	log.Info().
		Str("venta_id", v.ID.String()).
		Int("creadas", len(res.Creadas)).
		Int("rechazadas", len(res.Errores)).
		Msg("devolucion procesada")
	return res, nil
}

// rechazoDevolucion is a per-line rejection reported back to the caller
// instead of failing the whole request.
type rechazoDevolucion struct{ msg string }

func (e *rechazoDevolucion) Error() string { return e.msg }

func (s *devolucionService) devolverLinea(ctx context.Context, actor Actor, v *model.Venta, linea model.DetalleVenta, cantidad int, motivo string) (*model.Devolucion, error) {
	var dev *model.Devolucion
	err := runTx(ctx, s.ventaRepo.DB(), func(tx *gorm.DB) error {
		d, err := s.ventaRepo.FindDetalleForUpdateTx(tx, linea.ID)
		if err != nil {
			return notFound(err)
		}
		devuelta, err := s.repo.SumCantidadPorDetalle(ctx, tx, d.ID)
		if err != nil {
			return err
		}
		max := d.Cantidad - devuelta
		if cantidad > max {
			return &rechazoDevolucion{msg: fmt.Sprintf("No se puede devolver %d de %s. Máximo: %d", cantidad, d.ProductoNombre, max)}
		}
		if d.ProductoID == nil {
			return &rechazoDevolucion{msg: fmt.Sprintf("El producto %s ya no existe", d.ProductoNombre)}
		}

		ventaID, detalleID := v.ID, d.ID
		dev = &model.Devolucion{
			ID:             uuid.New(),
			VentaID:        &ventaID,
			DetalleVentaID: &detalleID,
			ProductoID:     d.ProductoID,
			ProductoNombre: d.ProductoNombre,
			Cantidad:       cantidad,
			Motivo:         motivo,
			UsuarioID:      actor.idPtr(),
			CreatedAt:      time.Now(),
		}

		mov, err := s.inventario.RegistrarMovimientoTx(ctx, tx, MovimientoInput{
			ProductoID: *d.ProductoID,
			Tipo:       model.MovimientoEntrada,
			Cantidad:   cantidad,
			Referencia: refDevolucion(dev.ID),
			Motivo:     fmt.Sprintf("Devolucion venta #%d: %s", v.NumeroTicket, motivo),
			UsuarioID:  dev.UsuarioID,
		})
		if err != nil {
			if errors.Is(err, ErrNoEncontrado) {
				return &rechazoDevolucion{msg: fmt.Sprintf("El producto %s ya no existe", d.ProductoNombre)}
			}
			return err
		}
		dev.MovimientoID = &mov.ID
		return s.repo.CreateTx(tx, dev)
	})
	if err != nil {
		return nil, err
	}
	s.inventario.StockActualizado(ctx)
	return dev, nil
}

func (s *devolucionService) Listar(ctx context.Context, actor Actor) ([]dto.DevolucionResponse, error) {
	var usuarioID *uuid.UUID
	if actor.Rol != model.RolAdmin {
		usuarioID = actor.idPtr()
	}
	devs, err := s.repo.List(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.DevolucionResponse, 0, len(devs))
	for i := range devs {
		ticket := 0
		if devs[i].Venta != nil {
			ticket = devs[i].Venta.NumeroTicket
		}
		out = append(out, devolucionToResponse(&devs[i], ticket))
	}
	return out, nil
}

func devolucionToResponse(d *model.Devolucion, ticket int) dto.DevolucionResponse {
	return dto.DevolucionResponse{
		ID:             d.ID.String(),
		VentaID:        uuidPtrString(d.VentaID),
		NumeroTicket:   ticket,
		DetalleVentaID: uuidPtrString(d.DetalleVentaID),
		ProductoNombre: d.ProductoNombre,
		Cantidad:       d.Cantidad,
		Motivo:         d.Motivo,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
}
