package inventory

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Límites de longitud de columnas (varchar(50) en balances/movements).
const (
	MaxProductCodeLen    = 50
	MaxLotNumberLen      = 50
	MaxNoteLen           = 500
	MaxIdempotencyKeyLen = 100
)

var (
	productCodePattern = regexp.MustCompile(`^[A-Z0-9]+$`)
	lotNumberPattern   = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	upper              = cases.Upper(language.Und)
)

// NormalizeProductCode aplica NFKC (p. ej. dígitos de ancho completo) y mayúsculas.
func NormalizeProductCode(code string) string {
	return upper.String(norm.NFKC.String(strings.TrimSpace(code)))
}

// NormalizeLotNumber aplica NFKC y recorta espacios; un lote vacío se trata como ausente.
func NormalizeLotNumber(lot *string) *string {
	if lot == nil {
		return nil
	}
	s := norm.NFKC.String(strings.TrimSpace(*lot))
	if s == "" {
		return nil
	}
	return &s
}

// ValidateProductCode valida un código ya normalizado.
func ValidateProductCode(code string) *domain.ValidationError {
	switch {
	case code == "":
		return domain.NewValidationError("productCode", "es obligatorio")
	case utf8.RuneCountInString(code) > MaxProductCodeLen:
		return domain.NewValidationError("productCode", "máximo 50 caracteres")
	case !productCodePattern.MatchString(code):
		return domain.NewValidationError("productCode", "solo letras mayúsculas y dígitos (ej. ZR001)")
	}
	return nil
}

// ValidateLotNumber valida un lote ya normalizado; nil es válido.
func ValidateLotNumber(lot *string) *domain.ValidationError {
	if lot == nil {
		return nil
	}
	if utf8.RuneCountInString(*lot) > MaxLotNumberLen {
		return domain.NewValidationError("lotNumber", "máximo 50 caracteres")
	}
	if !lotNumberPattern.MatchString(*lot) {
		return domain.NewValidationError("lotNumber", "solo letras, dígitos, '.', '_' o '-'")
	}
	return nil
}

// ValidateQuantity exige un entero estrictamente positivo.
func ValidateQuantity(qty int64) *domain.ValidationError {
	if qty <= 0 {
		return &domain.ValidationError{Field: "quantity", Reason: "debe ser un entero mayor que cero", Err: domain.ErrInvalidQuantity}
	}
	return nil
}

// ValidateNote limita la longitud de la nota libre.
func ValidateNote(note *string) *domain.ValidationError {
	if note != nil && utf8.RuneCountInString(*note) > MaxNoteLen {
		return domain.NewValidationError("note", "máximo 500 caracteres")
	}
	return nil
}

// ValidateIdempotencyKey limita la longitud de la clave de idempotencia.
func ValidateIdempotencyKey(key string) *domain.ValidationError {
	if utf8.RuneCountInString(key) > MaxIdempotencyKeyLen {
		return domain.NewValidationError("idempotencyKey", "máximo 100 caracteres")
	}
	return nil
}
