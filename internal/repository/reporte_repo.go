package repository

import (
	"context"
	"errors"
	"time"

	"stockmaster/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VentaDiaRow struct {
	Dia           time.Time
	Total         decimal.Decimal
	IVA           decimal.Decimal
	Descuentos    decimal.Decimal
	Transacciones int64
}

type MovimientoDiaRow struct {
	Dia      time.Time
	Tipo     string
	Cantidad int64
}

type TopProductoRow struct {
	ProductoID    *uuid.UUID
	Nombre        string
	Cantidad      int64
	Total         decimal.Decimal
	Transacciones int64
}

type VentaCajeroRow struct {
	UsuarioID     *uuid.UUID
	Username      string
	Total         decimal.Decimal
	Transacciones int64
}

type ResumenInventario struct {
	TotalProductos int64
	StockTotal     int64
}

// ReporteRepository holds the read-only aggregate queries behind the reports.
// Ranges are [desde, hasta).
type ReporteRepository interface {
	VentasPorDia(ctx context.Context, desde, hasta time.Time) ([]VentaDiaRow, error)
	MovimientosPorDia(ctx context.Context, desde, hasta time.Time) ([]MovimientoDiaRow, error)
	TopProductos(ctx context.Context, desde, hasta time.Time, limit int) ([]TopProductoRow, error)
	VentasPorCajero(ctx context.Context, desde, hasta time.Time) ([]VentaCajeroRow, error)
	VentasDetalladas(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error)
	BajoStock(ctx context.Context, umbral int) ([]model.Producto, error)
	// ProductoMasStock returns nil when the catalog is empty.
	ProductoMasStock(ctx context.Context) (*model.Producto, error)
	ResumenInventario(ctx context.Context) (ResumenInventario, error)
	UltimosMovimientos(ctx context.Context, limit int) ([]model.MovimientoStock, error)
}

type reporteRepo struct{ db *gorm.DB }

func NewReporteRepository(db *gorm.DB) ReporteRepository { return &reporteRepo{db: db} }

func (r *reporteRepo) VentasPorDia(ctx context.Context, desde, hasta time.Time) ([]VentaDiaRow, error) {
	var rows []VentaDiaRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at) AS dia,
		       SUM(total_final)       AS total,
		       SUM(iva_total)         AS iva,
		       SUM(descuento_general) AS descuentos,
		       COUNT(*)               AS transacciones
		FROM ventas
		WHERE created_at >= ? AND created_at < ?
		GROUP BY DATE(created_at)
		ORDER BY dia`, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) MovimientosPorDia(ctx context.Context, desde, hasta time.Time) ([]MovimientoDiaRow, error) {
	var rows []MovimientoDiaRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT DATE(created_at) AS dia, tipo, SUM(cantidad) AS cantidad
		FROM movimientos_stock
		WHERE created_at >= ? AND created_at < ?
		GROUP BY DATE(created_at), tipo
		ORDER BY dia`, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) TopProductos(ctx context.Context, desde, hasta time.Time, limit int) ([]TopProductoRow, error) {
	var rows []TopProductoRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT d.producto_id,
		       d.producto_nombre          AS nombre,
		       SUM(d.cantidad)            AS cantidad,
		       SUM(d.subtotal)            AS total,
		       COUNT(DISTINCT d.venta_id) AS transacciones
		FROM detalle_ventas d
		JOIN ventas v ON v.id = d.venta_id
		WHERE v.created_at >= ? AND v.created_at < ?
		GROUP BY d.producto_id, d.producto_nombre
		ORDER BY cantidad DESC
		LIMIT ?`, desde, hasta, limit).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) VentasPorCajero(ctx context.Context, desde, hasta time.Time) ([]VentaCajeroRow, error) {
	var rows []VentaCajeroRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT v.usuario_id,
		       COALESCE(u.username, '') AS username,
		       SUM(v.total_final)       AS total,
		       COUNT(*)                 AS transacciones
		FROM ventas v
		LEFT JOIN usuarios u ON u.id = v.usuario_id
		WHERE v.created_at >= ? AND v.created_at < ?
		GROUP BY v.usuario_id, u.username
		ORDER BY total DESC`, desde, hasta).Scan(&rows).Error
	return rows, err
}

func (r *reporteRepo) VentasDetalladas(ctx context.Context, desde, hasta time.Time) ([]model.Venta, error) {
	var ventas []model.Venta
	err := r.db.WithContext(ctx).
		Preload("Detalles").Preload("Usuario").
		Where("created_at >= ? AND created_at < ?", desde, hasta).
		Order("created_at ASC").
		Find(&ventas).Error
	return ventas, err
}

func (r *reporteRepo) BajoStock(ctx context.Context, umbral int) ([]model.Producto, error) {
	var productos []model.Producto
	err := r.db.WithContext(ctx).
		Where("activo = true AND stock <= ?", umbral).
		Order("stock ASC, nombre ASC").
		Find(&productos).Error
	return productos, err
}

func (r *reporteRepo) ProductoMasStock(ctx context.Context) (*model.Producto, error) {
	var p model.Producto
	err := r.db.WithContext(ctx).Where("activo = true").Order("stock DESC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *reporteRepo) ResumenInventario(ctx context.Context) (ResumenInventario, error) {
	var res ResumenInventario
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS total_productos, COALESCE(SUM(stock), 0) AS stock_total
		FROM productos WHERE activo = true`).Scan(&res).Error
	return res, err
}

func (r *reporteRepo) UltimosMovimientos(ctx context.Context, limit int) ([]model.MovimientoStock, error) {
	var movs []model.MovimientoStock
	err := r.db.WithContext(ctx).Preload("Producto").
		Order("created_at DESC").Limit(limit).
		Find(&movs).Error
	return movs, err
}
