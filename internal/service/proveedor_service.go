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
	"gorm.io/gorm"
)

type ProveedorService interface {
	Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error)
	Listar(ctx context.Context, incluirInactivos bool) ([]dto.ProveedorResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error)
	Desactivar(ctx context.Context, id uuid.UUID) error
	Reactivar(ctx context.Context, id uuid.UUID) error
}

type proveedorService struct {
	repo repository.ProveedorRepository
}

func NewProveedorService(repo repository.ProveedorRepository) ProveedorService {
	return &proveedorService{repo: repo}
}

func (s *proveedorService) Crear(ctx context.Context, req dto.CrearProveedorRequest) (*dto.ProveedorResponse, error) {
	correo := strings.ToLower(strings.TrimSpace(req.Correo))
	if err := s.correoLibre(ctx, correo, uuid.Nil); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &model.Proveedor{
		ID:        uuid.New(),
		Nombre:    strings.TrimSpace(req.Nombre),
		Telefono:  strings.TrimSpace(req.Telefono),
		Direccion: strings.TrimSpace(req.Direccion),
		Correo:    correo,
		Activo:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrCorreoDuplicado, correo)
		}
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Listar(ctx context.Context, incluirInactivos bool) ([]dto.ProveedorResponse, error) {
	provs, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ProveedorResponse, 0, len(provs))
	for i := range provs {
		out = append(out, proveedorToResponse(&provs[i]))
	}
	return out, nil
}

func (s *proveedorService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProveedorRequest) (*dto.ProveedorResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if req.Correo != nil {
		correo := strings.ToLower(strings.TrimSpace(*req.Correo))
		if correo != p.Correo {
			if err := s.correoLibre(ctx, correo, p.ID); err != nil {
				return nil, err
			}
			p.Correo = correo
		}
	}
	if req.Nombre != nil {
		p.Nombre = strings.TrimSpace(*req.Nombre)
	}
	if req.Telefono != nil {
		p.Telefono = strings.TrimSpace(*req.Telefono)
	}
	if req.Direccion != nil {
		p.Direccion = strings.TrimSpace(*req.Direccion)
	}
	p.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %s", ErrCorreoDuplicado, p.Correo)
		}
		return nil, err
	}
	resp := proveedorToResponse(p)
	return &resp, nil
}

func (s *proveedorService) Desactivar(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.SetActivo(ctx, id, false))
}

func (s *proveedorService) Reactivar(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.SetActivo(ctx, id, true))
}

// correoLibre fails when another supplier already uses the address.
func (s *proveedorService) correoLibre(ctx context.Context, correo string, propio uuid.UUID) error {
	otro, err := s.repo.FindByCorreo(ctx, correo)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if otro.ID != propio {
		return fmt.Errorf("%w: %s", ErrCorreoDuplicado, correo)
	}
	return nil
}

func proveedorToResponse(p *model.Proveedor) dto.ProveedorResponse {
	return dto.ProveedorResponse{
		ID:        p.ID.String(),
		Nombre:    p.Nombre,
		Telefono:  p.Telefono,
		Direccion: p.Direccion,
		Correo:    p.Correo,
		Activo:    p.Activo,
	}
}
