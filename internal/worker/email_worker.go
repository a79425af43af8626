package worker

// Renders the invoice PDF of a sale and mails it to the customer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stockmaster/internal/infra"
	"stockmaster/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// VentaLoader is the read side of repository.VentaRepository the worker needs.
type VentaLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
}

// FacturaMailer is satisfied by *infra.Mailer.
type FacturaMailer interface {
	SendFactura(to, subject, body, filename string, pdf []byte) error
}

// EmailWorker processes JobFacturaEmail jobs.
type EmailWorker struct {
	ventas  VentaLoader
	mailer  FacturaMailer
	cb      *infra.CircuitBreaker
	negocio string
}

// NewEmailWorker wires the worker; a nil breaker gets the default config.
func NewEmailWorker(ventas VentaLoader, mailer FacturaMailer, cb *infra.CircuitBreaker, negocio string) *EmailWorker {
	if cb == nil {
		cb = infra.NewCircuitBreaker(infra.DefaultCBConfig())
	}
	if negocio == "" {
		negocio = "Stock Master"
	}
	return &EmailWorker{ventas: ventas, mailer: mailer, cb: cb, negocio: negocio}
}

// Process loads the sale, renders its PDF and sends it. A disabled mailer
// drops the job with a warning.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload FacturaEmailPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: payload invalido: %w", err)
	}
	if payload.Email == "" {
		log.Warn().Str("venta_id", payload.VentaID).Msg("email_worker: email vacio, se omite")
		return nil
	}
	ventaID, err := uuid.Parse(payload.VentaID)
	if err != nil {
		return fmt.Errorf("email_worker: venta_id invalido %q", payload.VentaID)
	}

	venta, err := w.ventas.FindByID(ctx, ventaID)
	if err != nil {
		return fmt.Errorf("email_worker: cargar venta %s: %w", ventaID, err)
	}
	pdf, err := infra.GenerateFacturaPDF(venta, w.negocio)
	if err != nil {
		return fmt.Errorf("email_worker: generar PDF: %w", err)
	}

	subject := fmt.Sprintf("%s - Factura Ticket #%d", w.negocio, venta.NumeroTicket)
	body := fmt.Sprintf("Gracias por su compra.\nAdjuntamos la factura del ticket #%d.\nTotal: $%s",
		venta.NumeroTicket, venta.TotalFinal.StringFixed(2))
	filename := fmt.Sprintf("factura_%d.pdf", venta.NumeroTicket)

	disabled := false
	err = w.cb.Execute(func() error {
		sendErr := w.mailer.SendFactura(payload.Email, subject, body, filename, pdf)
		if errors.Is(sendErr, infra.ErrMailerDisabled) {
			disabled = true
			return nil
		}
		return sendErr
	})
	if disabled {
		log.Warn().Str("venta_id", payload.VentaID).Msg("email_worker: SMTP no configurado, factura no enviada")
		return nil
	}
	if err != nil {
		return fmt.Errorf("email_worker: enviar a %s: %w", payload.Email, err)
	}
	log.Info().Str("to", payload.Email).Int("ticket", venta.NumeroTicket).Msg("email_worker: factura enviada")
	return nil
}
