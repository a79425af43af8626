package repository

import (
	"context"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovimientoStockFilter defines filters for listing stock movements.
type MovimientoStockFilter struct {
	ProductoID *uuid.UUID
	Tipo       string
	Page       int
	Limit      int
}

// SaldoLedger is the stock a product should have according to its movements.
type SaldoLedger struct {
	ProductoID    uuid.UUID
	Codigo        int
	Nombre        string
	StockCacheado int
	Saldo         int64
}

type MovimientoStockRepository interface {
	CreateTx(tx *gorm.DB, m *model.MovimientoStock) error
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error)
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
	ExistsReferenciaTx(tx *gorm.DB, referencia string) (bool, error)
	List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error)
	// Saldos returns, for every product, its cached stock and its ledger balance.
	Saldos(ctx context.Context) ([]SaldoLedger, error)
	DB() *gorm.DB
}

type movimientoStockRepo struct{ db *gorm.DB }

func NewMovimientoStockRepository(db *gorm.DB) MovimientoStockRepository {
	return &movimientoStockRepo{db: db}
}

func (r *movimientoStockRepo) CreateTx(tx *gorm.DB, m *model.MovimientoStock) error {
	return tx.Create(m).Error
}

func (r *movimientoStockRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.MovimientoStock, error) {
	var m model.MovimientoStock
	if err := tx.First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *movimientoStockRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.MovimientoStock{}, "id = ?", id).Error
}

func (r *movimientoStockRepo) ExistsReferenciaTx(tx *gorm.DB, referencia string) (bool, error) {
	var n int64
	err := tx.Model(&model.MovimientoStock{}).Where("numero_referencia = ?", referencia).Count(&n).Error
	return n > 0, err
}

func (r *movimientoStockRepo) List(ctx context.Context, filter MovimientoStockFilter) ([]model.MovimientoStock, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.MovimientoStock{})
	if filter.ProductoID != nil {
		q = q.Where("producto_id = ?", *filter.ProductoID)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	limit := filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	offset := (page - 1) * limit

	var movimientos []model.MovimientoStock
	err := q.Preload("Producto").Order("created_at DESC").Offset(offset).Limit(limit).Find(&movimientos).Error
	return movimientos, total, err
}

func (r *movimientoStockRepo) Saldos(ctx context.Context) ([]SaldoLedger, error) {
	var rows []SaldoLedger
	err := r.db.WithContext(ctx).Raw(`
		SELECT p.id AS producto_id, p.codigo, p.nombre, p.stock AS stock_cacheado,
		       COALESCE(SUM(CASE WHEN m.tipo = 'ENTRADA' THEN m.cantidad ELSE -m.cantidad END), 0) AS saldo
		FROM productos p
		LEFT JOIN movimientos_stock m ON m.producto_id = p.id
		GROUP BY p.id, p.codigo, p.nombre, p.stock
		ORDER BY p.codigo`).Scan(&rows).Error
	return rows, err
}

func (r *movimientoStockRepo) DB() *gorm.DB { return r.db }
