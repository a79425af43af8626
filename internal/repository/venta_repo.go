package repository

import (
	"context"
	"time"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VentaListFilter is the resolved form of dto.VentaFilter.
type VentaListFilter struct {
	Desde     *time.Time
	Hasta     *time.Time // exclusive
	UsuarioID *uuid.UUID
	Page      int
	Limit     int
}

type VentaRepository interface {
	// CreateTx stores the sale and its Detalles in one statement set.
	CreateTx(tx *gorm.DB, v *model.Venta) error
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	List(ctx context.Context, filter VentaListFilter) ([]model.Venta, int64, error)
	// FindDetalleForUpdateTx locks a sale line; returns serialize on it.
	FindDetalleForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error)
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) CreateTx(tx *gorm.DB, v *model.Venta) error {
	return tx.Omit("Usuario").Create(v).Error
}

func (r *ventaRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	db := tx
	if db == nil {
		db = r.db.WithContext(ctx)
	}
	var n int
	err := db.Raw("SELECT nextval('ventas_numero_ticket_seq')").Scan(&n).Error
	return n, err
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles").
		Preload("Usuario").
		First(&v, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *ventaRepo) List(ctx context.Context, filter VentaListFilter) ([]model.Venta, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if filter.Desde != nil {
		q = q.Where("created_at >= ?", *filter.Desde)
	}
	if filter.Hasta != nil {
		q = q.Where("created_at < ?", *filter.Hasta)
	}
	if filter.UsuarioID != nil {
		q = q.Where("usuario_id = ?", *filter.UsuarioID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ventas []model.Venta
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles").Preload("Usuario").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) FindDetalleForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.DetalleVenta, error) {
	var d model.DetalleVenta
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&d, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ventaRepo) DB() *gorm.DB { return r.db }
