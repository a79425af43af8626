package repository

import (
	"context"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CompraListFilter struct {
	ProveedorID *uuid.UUID
	Page        int
	Limit       int
}

type CompraRepository interface {
	CreateTx(tx *gorm.DB, c *model.Compra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error)
	List(ctx context.Context, filter CompraListFilter) ([]model.Compra, int64, error)
	DB() *gorm.DB
}

type compraRepo struct{ db *gorm.DB }

func NewCompraRepository(db *gorm.DB) CompraRepository { return &compraRepo{db: db} }

func (r *compraRepo) CreateTx(tx *gorm.DB, c *model.Compra) error {
	return tx.Omit("Proveedor").Create(c).Error
}

func (r *compraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Compra, error) {
	var c model.Compra
	err := r.db.WithContext(ctx).Preload("Detalles").Preload("Proveedor").First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *compraRepo) List(ctx context.Context, filter CompraListFilter) ([]model.Compra, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Compra{})
	if filter.ProveedorID != nil {
		q = q.Where("proveedor_id = ?", *filter.ProveedorID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var compras []model.Compra
	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Detalles").Preload("Proveedor").
		Order("created_at DESC").Offset(offset).Limit(filter.Limit).
		Find(&compras).Error
	return compras, total, err
}

func (r *compraRepo) DB() *gorm.DB { return r.db }

// ── Órdenes de compra ────────────────────────────────────────────────────────

type OrdenCompraRepository interface {
	Create(ctx context.Context, o *model.OrdenCompra) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error)
	// FindByIDForUpdateTx locks the order so it cannot be received twice.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error)
	List(ctx context.Context, estado string) ([]model.OrdenCompra, error)
	UpdateTx(tx *gorm.DB, o *model.OrdenCompra) error
	DB() *gorm.DB
}

type ordenCompraRepo struct{ db *gorm.DB }

func NewOrdenCompraRepository(db *gorm.DB) OrdenCompraRepository { return &ordenCompraRepo{db: db} }

func (r *ordenCompraRepo) Create(ctx context.Context, o *model.OrdenCompra) error {
	return r.db.WithContext(ctx).Omit("Proveedor").Create(o).Error
}

func (r *ordenCompraRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	if err := r.db.WithContext(ctx).Preload("Proveedor").First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordenCompraRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.OrdenCompra, error) {
	var o model.OrdenCompra
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *ordenCompraRepo) List(ctx context.Context, estado string) ([]model.OrdenCompra, error) {
	q := r.db.WithContext(ctx).Preload("Proveedor")
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	var ordenes []model.OrdenCompra
	err := q.Order("created_at DESC").Find(&ordenes).Error
	return ordenes, err
}

func (r *ordenCompraRepo) UpdateTx(tx *gorm.DB, o *model.OrdenCompra) error {
	return tx.Omit("Proveedor").Save(o).Error
}

func (r *ordenCompraRepo) DB() *gorm.DB { return r.db }
