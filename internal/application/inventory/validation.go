package inventory

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// MovementInputDTO entrada para registrar un movimiento.
type MovementInputDTO struct {
	ProductCode    string
	Direction      string
	Quantity       int64
	LotNumber      *string
	ExpirationDate *time.Time
	Note           *string
	CreatedBy      string
	IdempotencyKey string
}

// AdjustInputDTO entrada para un ajuste: Delta positivo suma, negativo resta.
type AdjustInputDTO struct {
	ProductCode    string
	Delta          int64
	LotNumber      *string
	ExpirationDate *time.Time
	Note           *string
	CreatedBy      string
	IdempotencyKey string
}

// PreparedMovement solicitud ya normalizada y validada, lista para el coordinador.
type PreparedMovement struct {
	Key            entity.BalanceKey
	Direction      entity.Direction
	Quantity       int64
	Note           *string
	CreatedBy      string
	IdempotencyKey string
	RequestHash    string
}

// PrepareMovement valida todos los campos de una vez y normaliza la clave.
// Nunca toca el almacén: una solicitud rechazada aquí no abre transacción.
func PrepareMovement(in MovementInputDTO) (*PreparedMovement, error) {
	var errs domain.ValidationErrors

	code := rules.NormalizeProductCode(in.ProductCode)
	if e := rules.ValidateProductCode(code); e != nil {
		errs = append(errs, e)
	}
	lot := rules.NormalizeLotNumber(in.LotNumber)
	if e := rules.ValidateLotNumber(lot); e != nil {
		errs = append(errs, e)
	}
	if e := rules.ValidateQuantity(in.Quantity); e != nil {
		errs = append(errs, e)
	}
	dir := entity.Direction(strings.ToUpper(strings.TrimSpace(in.Direction)))
	if !dir.Valid() {
		errs = append(errs, domain.NewValidationError("direction", "debe ser IN u OUT"))
	}
	note := normalizeNote(in.Note)
	if e := rules.ValidateNote(note); e != nil {
		errs = append(errs, e)
	}
	idemKey := strings.TrimSpace(in.IdempotencyKey)
	if e := rules.ValidateIdempotencyKey(idemKey); e != nil {
		errs = append(errs, e)
	}
	if err := errs.OrNil(); err != nil {
		return nil, err
	}

	p := &PreparedMovement{
		Key:            entity.NewBalanceKey(code, lot, in.ExpirationDate),
		Direction:      dir,
		Quantity:       in.Quantity,
		Note:           note,
		CreatedBy:      in.CreatedBy,
		IdempotencyKey: idemKey,
	}
	p.RequestHash = requestHash(p)
	return p, nil
}

// AdjustmentToMovement convierte un ajuste con signo en un movimiento IN u OUT.
func AdjustmentToMovement(in AdjustInputDTO) (MovementInputDTO, error) {
	if in.Delta == 0 {
		return MovementInputDTO{}, &domain.ValidationError{Field: "delta", Reason: "el ajuste no puede ser cero", Err: domain.ErrInvalidQuantity}
	}
	if in.Delta == math.MinInt64 {
		return MovementInputDTO{}, &domain.ValidationError{Field: "delta", Reason: "fuera de rango", Err: domain.ErrInvalidQuantity}
	}
	dir, qty := entity.DirectionIN, in.Delta
	if in.Delta < 0 {
		dir, qty = entity.DirectionOUT, -in.Delta
	}
	note := in.Note
	if normalizeNote(note) == nil {
		s := "ajuste de inventario: " + strconv.FormatInt(in.Delta, 10)
		if in.Delta > 0 {
			s = "ajuste de inventario: +" + strconv.FormatInt(in.Delta, 10)
		}
		note = &s
	}
	return MovementInputDTO{
		ProductCode:    in.ProductCode,
		Direction:      string(dir),
		Quantity:       qty,
		LotNumber:      in.LotNumber,
		ExpirationDate: in.ExpirationDate,
		Note:           note,
		CreatedBy:      in.CreatedBy,
		IdempotencyKey: in.IdempotencyKey,
	}, nil
}

// BuildKey normaliza y valida una clave recibida como texto (query params).
func BuildKey(productCode string, lotNumber, expirationDate *string) (entity.BalanceKey, error) {
	var errs domain.ValidationErrors
	code := rules.NormalizeProductCode(productCode)
	if e := rules.ValidateProductCode(code); e != nil {
		errs = append(errs, e)
	}
	lot := rules.NormalizeLotNumber(lotNumber)
	if e := rules.ValidateLotNumber(lot); e != nil {
		errs = append(errs, e)
	}
	exp, e := ParseOptionalDate("expirationDate", expirationDate)
	if e != nil {
		errs = append(errs, e)
	}
	if err := errs.OrNil(); err != nil {
		return entity.BalanceKey{}, err
	}
	return entity.NewBalanceKey(code, lot, exp), nil
}

// ParseOptionalDate interpreta YYYY-MM-DD; nil o vacío significa ausente.
func ParseOptionalDate(field string, s *string) (*time.Time, *domain.ValidationError) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := entity.ParseDate(strings.TrimSpace(*s))
	if err != nil {
		return nil, domain.NewValidationError(field, "formato esperado YYYY-MM-DD")
	}
	return &d, nil
}

func normalizeNote(note *string) *string {
	if note == nil {
		return nil
	}
	s := strings.TrimSpace(*note)
	if s == "" {
		return nil
	}
	return &s
}

// requestHash huella de la solicitud para detectar reutilización de una clave de idempotencia.
func requestHash(p *PreparedMovement) string {
	var b strings.Builder
	b.WriteString(p.Key.String())
	b.WriteByte('|')
	b.WriteString(string(p.Direction))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(p.Quantity, 10))
	b.WriteByte('|')
	if p.Note != nil {
		b.WriteString(*p.Note)
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
