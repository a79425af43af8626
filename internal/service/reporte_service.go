package service

import (
	"context"
	"fmt"
	"time"

	"stockmaster/internal/dto"
	"stockmaster/internal/model"
	"stockmaster/internal/repository"

	"github.com/shopspring/decimal"
)

const fechaLayout = "2006-01-02"

// ReporteService builds read-only aggregates over sales, stock and movements.
type ReporteService interface {
	// Dashboard summarizes the 7 days ending on hoy.
	Dashboard(ctx context.Context, hoy time.Time) (*dto.DashboardResponse, error)
	VentasPorPeriodo(ctx context.Context, desde, hasta string) (*dto.VentasPeriodoResponse, error)
	TopProductos(ctx context.Context, dias int) (*dto.TopProductosResponse, error)
	BajoStock(ctx context.Context, umbral int) (*dto.BajoStockResponse, error)
	VentasPorCajero(ctx context.Context, desde, hasta string) (*dto.VentasPorCajeroResponse, error)
	ExportVentas(ctx context.Context, desde, hasta string) ([]dto.ExportVentaFila, error)
}

type reporteService struct {
	repo   repository.ReporteRepository
	umbral int
}

func NewReporteService(repo repository.ReporteRepository, umbralBajoStock int) ReporteService {
	if umbralBajoStock <= 0 {
		umbralBajoStock = 5
	}
	return &reporteService{repo: repo, umbral: umbralBajoStock}
}

func inicioDia(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *reporteService) Dashboard(ctx context.Context, hoy time.Time) (*dto.DashboardResponse, error) {
	finHoy := inicioDia(hoy).AddDate(0, 0, 1)
	inicioSemana := finHoy.AddDate(0, 0, -7)

	ventasRows, err := s.repo.VentasPorDia(ctx, inicioSemana, finHoy)
	if err != nil {
		return nil, err
	}
	movRows, err := s.repo.MovimientosPorDia(ctx, inicioSemana, finHoy)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.TopProductos(ctx, finHoy.AddDate(0, 0, -30), finHoy, 10)
	if err != nil {
		return nil, err
	}
	bajo, err := s.repo.BajoStock(ctx, s.umbral)
	if err != nil {
		return nil, err
	}
	masStock, err := s.repo.ProductoMasStock(ctx)
	if err != nil {
		return nil, err
	}
	resumen, err := s.repo.ResumenInventario(ctx)
	if err != nil {
		return nil, err
	}
	ultimos, err := s.repo.UltimosMovimientos(ctx, 50)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		VentasSemana:       rellenarVentas(inicioSemana, 7, ventasRows),
		MovimientosSemana:  rellenarMovimientos(inicioSemana, 7, movRows),
		TopProductos:       topToItems(top),
		ProductosBajoStock: len(bajo),
		UmbralBajoStock:    s.umbral,
		VentasHoy:          decimal.Zero,
		TotalProductos:     resumen.TotalProductos,
		StockTotal:         resumen.StockTotal,
		UltimosMovimientos: make([]dto.MovimientoResponse, 0, len(ultimos)),
	}
	if masStock != nil {
		item := bajoStockItem(masStock)
		resp.ProductoMasStock = &item
	}
	hoyKey := hoy.Format(fechaLayout)
	for _, d := range resp.VentasSemana {
		if d.Fecha == hoyKey {
			resp.VentasHoy = d.Total
			resp.TransaccionesHoy = d.Transacciones
		}
	}
	for i := range ultimos {
		resp.UltimosMovimientos = append(resp.UltimosMovimientos, movimientoToResponse(&ultimos[i]))
	}
	return resp, nil
}

func (s *reporteService) VentasPorPeriodo(ctx context.Context, desdeStr, hastaStr string) (*dto.VentasPeriodoResponse, error) {
	desde, hasta, err := rangoReporte(desdeStr, hastaStr, time.Now())
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.VentasPorDia(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}

	dias := int(hasta.Sub(desde).Hours()/24 + 0.5)
	resp := &dto.VentasPeriodoResponse{
		Desde:           desde.Format(fechaLayout),
		Hasta:           hasta.AddDate(0, 0, -1).Format(fechaLayout),
		Dias:            rellenarVentas(desde, dias, rows),
		TotalVentas:     decimal.Zero,
		TotalIVA:        decimal.Zero,
		TotalDescuentos: decimal.Zero,
		TicketPromedio:  decimal.Zero,
	}
	for _, r := range rows {
		resp.TotalVentas = resp.TotalVentas.Add(r.Total)
		resp.TotalIVA = resp.TotalIVA.Add(r.IVA)
		resp.TotalDescuentos = resp.TotalDescuentos.Add(r.Descuentos)
		resp.Transacciones += r.Transacciones
	}
	if resp.Transacciones > 0 {
		resp.TicketPromedio = resp.TotalVentas.Div(decimal.NewFromInt(resp.Transacciones)).Round(2)
	}
	return resp, nil
}

func (s *reporteService) TopProductos(ctx context.Context, dias int) (*dto.TopProductosResponse, error) {
	if dias <= 0 {
		dias = 30
	}
	hasta := inicioDia(time.Now()).AddDate(0, 0, 1)
	rows, err := s.repo.TopProductos(ctx, hasta.AddDate(0, 0, -dias), hasta, 20)
	if err != nil {
		return nil, err
	}
	return &dto.TopProductosResponse{Dias: dias, Productos: topToItems(rows)}, nil
}

func (s *reporteService) BajoStock(ctx context.Context, umbral int) (*dto.BajoStockResponse, error) {
	if umbral <= 0 {
		umbral = s.umbral
	}
	productos, err := s.repo.BajoStock(ctx, umbral)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BajoStockItem, 0, len(productos))
	for i := range productos {
		items = append(items, bajoStockItem(&productos[i]))
	}
	return &dto.BajoStockResponse{Umbral: umbral, Productos: items}, nil
}

func (s *reporteService) VentasPorCajero(ctx context.Context, desdeStr, hastaStr string) (*dto.VentasPorCajeroResponse, error) {
	desde, hasta, err := rangoReporte(desdeStr, hastaStr, time.Now())
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.VentasPorCajero(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaCajeroItem, 0, len(rows))
	for _, r := range rows {
		item := dto.VentaCajeroItem{
			Cajero:        r.Username,
			Total:         r.Total,
			Transacciones: r.Transacciones,
			Promedio:      decimal.Zero,
		}
		if r.UsuarioID != nil {
			id := r.UsuarioID.String()
			item.UsuarioID = &id
		}
		if item.Cajero == "" {
			item.Cajero = "(sin usuario)"
		}
		if r.Transacciones > 0 {
			item.Promedio = r.Total.Div(decimal.NewFromInt(r.Transacciones)).Round(2)
		}
		items = append(items, item)
	}
	return &dto.VentasPorCajeroResponse{
		Desde:   desde.Format(fechaLayout),
		Hasta:   hasta.AddDate(0, 0, -1).Format(fechaLayout),
		Cajeros: items,
	}, nil
}

// ExportVentas flattens the sales of the period to one row per sold line.
func (s *reporteService) ExportVentas(ctx context.Context, desdeStr, hastaStr string) ([]dto.ExportVentaFila, error) {
	desde, hasta, err := rangoReporte(desdeStr, hastaStr, time.Now())
	if err != nil {
		return nil, err
	}
	ventas, err := s.repo.VentasDetalladas(ctx, desde, hasta)
	if err != nil {
		return nil, err
	}
	var filas []dto.ExportVentaFila
	for _, v := range ventas {
		cajero := ""
		if v.Usuario != nil {
			cajero = v.Usuario.Username
		}
		for _, d := range v.Detalles {
			filas = append(filas, dto.ExportVentaFila{
				VentaID:        v.ID.String(),
				NumeroTicket:   v.NumeroTicket,
				Fecha:          v.CreatedAt.Format("2006-01-02 15:04:05"),
				Cajero:         cajero,
				Producto:       d.ProductoNombre,
				Cantidad:       d.Cantidad,
				PrecioUnitario: d.PrecioUnitario,
				Subtotal:       d.Subtotal,
				MetodoPago:     v.MetodoPago,
				IVA:            v.IVATotal,
				Descuento:      v.DescuentoGeneral,
				TotalFinal:     v.TotalFinal,
			})
		}
	}
	return filas, nil
}

// rangoReporte resolves optional inclusive dates into [desde, hasta+1d).
// Missing bounds default to the 30 days ending today.
func rangoReporte(desdeStr, hastaStr string, ahora time.Time) (time.Time, time.Time, error) {
	hasta := inicioDia(ahora).AddDate(0, 0, 1)
	if hastaStr != "" {
		h, err := time.ParseInLocation(fechaLayout, hastaStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: hasta=%q", ErrFechaInvalida, hastaStr)
		}
		hasta = h.AddDate(0, 0, 1)
	}
	desde := hasta.AddDate(0, 0, -30)
	if desdeStr != "" {
		d, err := time.ParseInLocation(fechaLayout, desdeStr, time.Local)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: desde=%q", ErrFechaInvalida, desdeStr)
		}
		desde = d
	}
	if !desde.Before(hasta) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: desde posterior a hasta", ErrFechaInvalida)
	}
	return desde, hasta, nil
}

// rellenarVentas returns one entry per day starting at desde, zero-filled.
func rellenarVentas(desde time.Time, dias int, rows []repository.VentaDiaRow) []dto.VentaDiaItem {
	porDia := make(map[string]repository.VentaDiaRow, len(rows))
	for _, r := range rows {
		porDia[r.Dia.Format(fechaLayout)] = r
	}
	out := make([]dto.VentaDiaItem, 0, dias)
	for i := 0; i < dias; i++ {
		key := desde.AddDate(0, 0, i).Format(fechaLayout)
		item := dto.VentaDiaItem{Fecha: key, Total: decimal.Zero, IVA: decimal.Zero, Descuentos: decimal.Zero}
		if r, ok := porDia[key]; ok {
			item.Total = r.Total
			item.IVA = r.IVA
			item.Descuentos = r.Descuentos
			item.Transacciones = r.Transacciones
		}
		out = append(out, item)
	}
	return out
}

func rellenarMovimientos(desde time.Time, dias int, rows []repository.MovimientoDiaRow) []dto.MovimientoDiaItem {
	out := make([]dto.MovimientoDiaItem, dias)
	idx := make(map[string]int, dias)
	for i := 0; i < dias; i++ {
		key := desde.AddDate(0, 0, i).Format(fechaLayout)
		out[i].Fecha = key
		idx[key] = i
	}
	for _, r := range rows {
		i, ok := idx[r.Dia.Format(fechaLayout)]
		if !ok {
			continue
		}
		switch r.Tipo {
		case model.MovimientoEntrada:
			out[i].Entradas += r.Cantidad
		case model.MovimientoSalida:
			out[i].Salidas += r.Cantidad
		}
	}
	return out
}

func topToItems(rows []repository.TopProductoRow) []dto.TopProductoItem {
	items := make([]dto.TopProductoItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, dto.TopProductoItem{
			ProductoID:    uuidPtrString(r.ProductoID),
			Nombre:        r.Nombre,
			Cantidad:      r.Cantidad,
			TotalGenerado: r.Total,
			Transacciones: r.Transacciones,
		})
	}
	return items
}

func bajoStockItem(p *model.Producto) dto.BajoStockItem {
	return dto.BajoStockItem{
		ProductoID: p.ID.String(),
		Codigo:     p.Codigo,
		Nombre:     p.Nombre,
		Stock:      p.Stock,
	}
}
