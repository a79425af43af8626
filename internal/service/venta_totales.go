package service

import (
	"fmt"

	"stockmaster/internal/model"

	"github.com/shopspring/decimal"
)

// LineaTotal is one priced cart line.
type LineaTotal struct {
	PrecioUnitario decimal.Decimal
	Cantidad       int
}

// Totales is the money breakdown of a sale.
type Totales struct {
	Subtotal      decimal.Decimal // sum of line subtotals, before discount
	Descuento     decimal.Decimal
	Base          decimal.Decimal // Subtotal - Descuento
	IVAPorcentaje decimal.Decimal
	IVA           decimal.Decimal
	TotalFinal    decimal.Decimal
	MontoRecibido decimal.Decimal
	Cambio        decimal.Decimal
}

var cien = decimal.NewFromInt(100)

// CalcularTotales prices a cart. IVA is applied after the discount and rounded
// to cents. Cash payments must cover the final total and get change back;
// card and transfer payments are recorded as exactly the final total.
func CalcularTotales(lineas []LineaTotal, descuento decimal.Decimal, ivaPct int, metodo string, montoRecibido decimal.Decimal) (Totales, error) {
	subtotal := decimal.Zero
	for _, l := range lineas {
		subtotal = subtotal.Add(l.PrecioUnitario.Mul(decimal.NewFromInt(int64(l.Cantidad))))
	}

	if descuento.IsNegative() {
		return Totales{}, fmt.Errorf("%w: no puede ser negativo", ErrDescuentoInvalido)
	}
	base := subtotal.Sub(descuento)
	if base.IsNegative() {
		return Totales{}, fmt.Errorf("%w: no puede superar el total (%s)", ErrDescuentoInvalido, subtotal.StringFixed(2))
	}

	pct := decimal.NewFromInt(int64(ivaPct))
	iva := base.Mul(pct).Div(cien).Round(2)
	final := base.Add(iva)

	t := Totales{
		Subtotal:      subtotal,
		Descuento:     descuento,
		Base:          base,
		IVAPorcentaje: pct,
		IVA:           iva,
		TotalFinal:    final,
	}

	switch metodo {
	case model.MetodoEfectivo:
		if montoRecibido.LessThan(final) {
			return Totales{}, fmt.Errorf("%w: recibido %s, total %s",
				ErrPagoInsuficiente, montoRecibido.StringFixed(2), final.StringFixed(2))
		}
		t.MontoRecibido = montoRecibido
		t.Cambio = montoRecibido.Sub(final)
	case model.MetodoTarjeta, model.MetodoTransferencia:
		t.MontoRecibido = final
		t.Cambio = decimal.Zero
	default:
		return Totales{}, fmt.Errorf("metodo de pago invalido: %q", metodo)
	}
	return t, nil
}
