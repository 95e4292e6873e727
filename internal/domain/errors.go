package domain

import (
	"errors"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrInvalidInput = errors.New("entrada inválida")
	ErrConflict     = errors.New("conflicto con el estado actual, reintente la operación")
	ErrDuplicate    = errors.New("recurso duplicado")

	// Validación previa a la transacción.
	ErrInvalidQuantity = errors.New("la cantidad debe ser un entero positivo")

	// No encontrados.
	ErrUnknownProduct   = errors.New("producto no registrado")
	ErrMovementNotFound = errors.New("movimiento no encontrado")
	ErrBalanceNotFound  = errors.New("saldo no encontrado")

	// Conflictos de negocio.
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrIdempotencyConflict = errors.New("la clave de idempotencia ya se usó con otra solicitud")

	// ErrVersionMismatch indica que otro escritor avanzó la versión del saldo entre la lectura
	// y la escritura condicional. El coordinador lo reintenta; nunca sale hacia el cliente.
	ErrVersionMismatch = errors.New("la versión del saldo cambió")

	// Almacenamiento.
	ErrTransient = errors.New("fallo transitorio de almacenamiento")
	ErrTxTimeout = errors.New("la transacción superó el tiempo máximo")
)

// ValidationError describe un campo rechazado por la validación previa.
// errors.Is(err, ErrInvalidInput) es verdadero para cualquier ValidationError;
// si Err está definido también coincide con ese error (p. ej. ErrInvalidQuantity).
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// Unwrap expone la causa específica y la categoría genérica.
func (e *ValidationError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Err, ErrInvalidInput}
	}
	return []error{ErrInvalidInput}
}

// NewValidationError construye un error de campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// ValidationErrors agrupa todos los campos inválidos de una misma solicitud.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// Unwrap permite errors.Is/As sobre cada error de campo.
func (v ValidationErrors) Unwrap() []error {
	out := make([]error, 0, len(v))
	for _, e := range v {
		out = append(out, e)
	}
	return out
}

// OrNil devuelve nil cuando no hay errores (evita el nil tipado en interfaces).
func (v ValidationErrors) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}
