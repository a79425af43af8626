package repository

import (
	"context"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DevolucionRepository interface {
	CreateTx(tx *gorm.DB, d *model.Devolucion) error
	// SumCantidadPorDetalle runs on tx when given, otherwise on the pool.
	SumCantidadPorDetalle(ctx context.Context, tx *gorm.DB, detalleID uuid.UUID) (int, error)
	// List returns every return, or only those registered by usuarioID.
	List(ctx context.Context, usuarioID *uuid.UUID) ([]model.Devolucion, error)
}

type devolucionRepo struct{ db *gorm.DB }

func NewDevolucionRepository(db *gorm.DB) DevolucionRepository { return &devolucionRepo{db: db} }

func (r *devolucionRepo) CreateTx(tx *gorm.DB, d *model.Devolucion) error {
	return tx.Omit("Venta").Create(d).Error
}

func (r *devolucionRepo) SumCantidadPorDetalle(ctx context.Context, tx *gorm.DB, detalleID uuid.UUID) (int, error) {
	db := tx
	if db == nil {
		db = r.db.WithContext(ctx)
	}
	var total int
	err := db.Model(&model.Devolucion{}).
		Where("detalle_venta_id = ?", detalleID).
		Select("COALESCE(SUM(cantidad), 0)").
		Scan(&total).Error
	return total, err
}

func (r *devolucionRepo) List(ctx context.Context, usuarioID *uuid.UUID) ([]model.Devolucion, error) {
	q := r.db.WithContext(ctx).Preload("Venta")
	if usuarioID != nil {
		q = q.Where("usuario_id = ?", *usuarioID)
	}
	var devs []model.Devolucion
	err := q.Order("created_at DESC").Find(&devs).Error
	return devs, err
}
