package infra

import (
	"bytes"
	"fmt"

	"stockmaster/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateFacturaPDF renders a receipt-sized invoice for a finalized sale and
// returns the PDF bytes. The page grows with the number of lines.
func GenerateFacturaPDF(venta *model.Venta, negocio string) ([]byte, error) {
	alto := 110.0 + float64(len(venta.Detalles))*5
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: alto},
	})
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(4, 4, 4)
	pdf.SetAutoPageBreak(false, 4)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	w := pageW - 8

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(w, 7, tr(negocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(w, 5, "Factura de venta", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(w, 5, tr(fmt.Sprintf("Ticket N° %d", venta.NumeroTicket)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(w, 4, venta.CreatedAt.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	if venta.Usuario != nil {
		pdf.CellFormat(w, 4, tr("Cajero: "+venta.Usuario.Username), "", 1, "L", false, 0, "")
	}
	pdf.Ln(1)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	c1, c2, c3, c4 := w*0.44, w*0.12, w*0.20, w*0.24
	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(c1, 5, "Producto", "B", 0, "L", false, 0, "")
	pdf.CellFormat(c2, 5, "Cant", "B", 0, "C", false, 0, "")
	pdf.CellFormat(c3, 5, "P. Unit", "B", 0, "R", false, 0, "")
	pdf.CellFormat(c4, 5, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	for _, d := range venta.Detalles {
		nombre := []rune(d.ProductoNombre)
		if len(nombre) > 24 {
			nombre = append(nombre[:23], '.')
		}
		pdf.CellFormat(c1, 5, tr(string(nombre)), "", 0, "L", false, 0, "")
		pdf.CellFormat(c2, 5, fmt.Sprintf("%d", d.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(c3, 5, "$"+d.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(c4, 5, "$"+d.Subtotal.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	etiqueta := w - c4
	fila := func(label, valor string) {
		pdf.CellFormat(etiqueta, 5, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(c4, 5, valor, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 7)
	fila("Subtotal:", "$"+venta.Total.StringFixed(2))
	if !venta.DescuentoGeneral.IsZero() {
		fila("Descuento:", "-$"+venta.DescuentoGeneral.StringFixed(2))
	}
	fila(fmt.Sprintf("IVA (%s%%):", venta.IVAPorcentaje.String()), "$"+venta.IVATotal.StringFixed(2))

	pdf.SetFont("Helvetica", "B", 9)
	fila("TOTAL:", "$"+venta.TotalFinal.StringFixed(2))

	pdf.SetFont("Helvetica", "", 7)
	fila("Pago ("+venta.MetodoPago+"):", "$"+venta.MontoRecibido.StringFixed(2))
	if venta.MetodoPago == model.MetodoEfectivo {
		fila("Cambio:", "$"+venta.Cambio.StringFixed(2))
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(w, 4, tr("¡Gracias por su compra!"), "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render: %w", err)
	}
	return buf.Bytes(), nil
}
