// Package apierror defines the JSON bodies of every 4xx/5xx response.
// Handlers and middleware never write raw error strings from the DB or
// infrastructure; those end up behind MensajeInterno.
package apierror

import "fmt"

// MensajeInterno is the only detail a client sees for an unexpected failure.
const MensajeInterno = "Error interno del servidor"

// APIError is the error envelope: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

func Newf(format string, args ...interface{}) *APIError {
	return &APIError{Detail: fmt.Sprintf(format, args...)}
}

// Interno is the body of every 500.
func Interno() *APIError {
	return &APIError{Detail: MensajeInterno}
}

// ValidationError is returned with 422 when the body parses but fails the
// validator; Fields maps the JSON field name to its message.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Datos invalidos", Fields: fields}
}
