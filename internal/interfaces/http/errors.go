package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// writeError traduce errores de dominio a status HTTP y dto.ErrorResponse.
// Los errores no clasificados se registran y se responden sin detalle interno.
func writeError(c *fiber.Ctx, log *logger.Logger, err error) error {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]dto.FieldError, 0, len(verrs))
		for _, v := range verrs {
			fields = append(fields, dto.FieldError{Field: v.Field, Reason: v.Reason})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: validationCode(err), Message: "datos inválidos", Fields: fields})
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: validationCode(err), Message: "datos inválidos",
			Fields: []dto.FieldError{{Field: verr.Field, Reason: verr.Reason}},
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		status, code = fiber.StatusBadRequest, "INVALID_QUANTITY"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrUnknownProduct):
		status, code = fiber.StatusBadRequest, "UNKNOWN_PRODUCT"
	case errors.Is(err, domain.ErrMovementNotFound):
		status, code = fiber.StatusNotFound, "MOVEMENT_NOT_FOUND"
	case errors.Is(err, domain.ErrBalanceNotFound):
		status, code = fiber.StatusNotFound, "BALANCE_NOT_FOUND"
	case errors.Is(err, domain.ErrInsufficientStock):
		status, code = fiber.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrIdempotencyConflict):
		status, code = fiber.StatusConflict, "IDEMPOTENCY_CONFLICT"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrTxTimeout):
		status, code = fiber.StatusGatewayTimeout, "TIMEOUT"
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Path()).Msg("error no controlado")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: message(err)})
}

func validationCode(err error) string {
	if errors.Is(err, domain.ErrInvalidQuantity) {
		return "INVALID_QUANTITY"
	}
	return "VALIDATION"
}

// message usa el texto del sentinel más específico, sin detalles de infraestructura.
func message(err error) string {
	for _, s := range []error{
		domain.ErrInvalidQuantity, domain.ErrUnknownProduct, domain.ErrMovementNotFound, domain.ErrBalanceNotFound,
		domain.ErrInsufficientStock, domain.ErrIdempotencyConflict, domain.ErrConflict, domain.ErrTxTimeout,
		domain.ErrInvalidInput,
	} {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return err.Error()
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
