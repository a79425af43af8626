package repository

import (
	"context"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProveedorRepository interface {
	Create(ctx context.Context, p *model.Proveedor) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error)
	FindByCorreo(ctx context.Context, correo string) (*model.Proveedor, error)
	List(ctx context.Context, incluirInactivos bool) ([]model.Proveedor, error)
	Update(ctx context.Context, p *model.Proveedor) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
}

type proveedorRepo struct{ db *gorm.DB }

func NewProveedorRepository(db *gorm.DB) ProveedorRepository { return &proveedorRepo{db: db} }

func (r *proveedorRepo) Create(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *proveedorRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) FindByCorreo(ctx context.Context, correo string) (*model.Proveedor, error) {
	var p model.Proveedor
	if err := r.db.WithContext(ctx).Where("LOWER(correo) = LOWER(?)", correo).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *proveedorRepo) List(ctx context.Context, incluirInactivos bool) ([]model.Proveedor, error) {
	q := r.db.WithContext(ctx)
	if !incluirInactivos {
		q = q.Where("activo = true")
	}
	var proveedores []model.Proveedor
	err := q.Order("nombre ASC").Find(&proveedores).Error
	return proveedores, err
}

func (r *proveedorRepo) Update(ctx context.Context, p *model.Proveedor) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *proveedorRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Proveedor{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
