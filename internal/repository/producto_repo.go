package repository

import (
	"context"
	"strconv"

	"stockmaster/internal/dto"
	"stockmaster/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// so unit tests can swap in an in-memory stub.
type ProductoRepository interface {
	CreateTx(tx *gorm.DB, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByCodigo(ctx context.Context, codigo int) (*model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Buscar(ctx context.Context, q string, limit int) ([]model.Producto, error)
	// Update writes catalog fields only; stock is left untouched.
	Update(ctx context.Context, p *model.Producto) error
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error

	// FindByIDForUpdateTx locks the product row until the transaction ends.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) CreateTx(tx *gorm.DB, p *model.Producto) error {
	return tx.Create(p).Error
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) FindByCodigo(ctx context.Context, codigo int) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("codigo = ?", codigo).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})

	// "false" = inactivos, "all" = todos, anything else = activos
	switch filter.Activo {
	case "false":
		q = q.Where("activo = false")
	case "all":
	default:
		q = q.Where("activo = true")
	}
	if filter.Q != "" {
		q = q.Where("nombre ILIKE ? OR CAST(codigo AS TEXT) LIKE ?", "%"+filter.Q+"%", filter.Q+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

func (r *productoRepo) Buscar(ctx context.Context, q string, limit int) ([]model.Producto, error) {
	var productos []model.Producto
	tx := r.db.WithContext(ctx).Where("activo = true")
	if codigo, err := strconv.Atoi(q); err == nil {
		tx = tx.Where("nombre ILIKE ? OR codigo = ? OR CAST(codigo AS TEXT) LIKE ?", "%"+q+"%", codigo, q+"%")
	} else {
		tx = tx.Where("nombre ILIKE ?", "%"+q+"%")
	}
	err := tx.Order("nombre ASC").Limit(limit).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	return r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"codigo":        p.Codigo,
		"nombre":        p.Nombre,
		"descripcion":   p.Descripcion,
		"precio_compra": p.PrecioCompra,
		"precio_venta":  p.PrecioVenta,
	}).Error
}

func (r *productoRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTx removes the product. Movements cascade and line items keep their
// snapshot with producto_id set to NULL (see migrations).
func (r *productoRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	res := tx.Delete(&model.Producto{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productoRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productoRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Producto{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productoRepo) DB() *gorm.DB { return r.db }
