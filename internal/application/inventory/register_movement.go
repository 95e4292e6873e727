package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
)

// RegisterMovementFromRequest adapta el request HTTP al caso de uso RegisterMovement(ctx, MovementInputDTO).
// idempotencyKey (cabecera) tiene prioridad sobre el campo del body.
func (uc *RegisterMovementUseCase) RegisterMovementFromRequest(ctx context.Context, userID, idempotencyKey string, in dto.RegisterMovementRequest) (*MovementResult, error) {
	exp, verr := ParseOptionalDate("expirationDate", in.ExpirationDate)
	if verr != nil {
		return nil, domain.ValidationErrors{verr}
	}
	if idempotencyKey == "" {
		idempotencyKey = in.IdempotencyKey
	}
	return uc.RegisterMovement(ctx, MovementInputDTO{
		ProductCode:    in.ProductCode,
		Direction:      in.Direction,
		Quantity:       in.Quantity,
		LotNumber:      in.LotNumber,
		ExpirationDate: exp,
		Note:           in.Note,
		CreatedBy:      userID,
		IdempotencyKey: idempotencyKey,
	})
}

// AdjustFromRequest adapta el request de ajuste al caso de uso Adjust.
func (uc *RegisterMovementUseCase) AdjustFromRequest(ctx context.Context, userID, idempotencyKey string, in dto.AdjustMovementRequest) (*MovementResult, error) {
	exp, verr := ParseOptionalDate("expirationDate", in.ExpirationDate)
	if verr != nil {
		return nil, domain.ValidationErrors{verr}
	}
	if idempotencyKey == "" {
		idempotencyKey = in.IdempotencyKey
	}
	return uc.Adjust(ctx, AdjustInputDTO{
		ProductCode:    in.ProductCode,
		Delta:          in.Delta,
		LotNumber:      in.LotNumber,
		ExpirationDate: exp,
		Note:           in.Note,
		CreatedBy:      userID,
		IdempotencyKey: idempotencyKey,
	})
}
