package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// RetryPolicy límites del reintento ante conflicto de versión o fallo transitorio.
type RetryPolicy struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// DefaultRetryPolicy valores usados cuando la configuración no define otros.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 5, Initial: 10 * time.Millisecond, Max: 200 * time.Millisecond}
}

// MovementResult movimiento confirmado. Replayed indica que se devolvió el resultado
// original de una clave de idempotencia ya usada, sin escribir nada nuevo.
type MovementResult struct {
	Movement *entity.Movement
	Replayed bool
}

// RegisterMovementUseCase coordina el registro de movimientos: lee el saldo, aplica la regla,
// inserta el movimiento y escribe el saldo con control de versión, todo en una transacción.
// Si otro escritor avanzó la versión, repite la unidad completa con backoff acotado.
type RegisterMovementUseCase struct {
	txRunner TxRunner
	products repository.ProductDirectory
	policy   RetryPolicy
	log      *logger.Logger
	now      func() time.Time
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	products repository.ProductDirectory,
	policy RetryPolicy,
	log *logger.Logger,
) *RegisterMovementUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &RegisterMovementUseCase{
		txRunner: txRunner,
		products: products,
		policy:   policy,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *RegisterMovementUseCase) WithClock(now func() time.Time) *RegisterMovementUseCase {
	uc.now = now
	return uc
}

// RegisterMovement valida la solicitud, verifica el producto y confirma el movimiento.
// Errores: ValidationErrors, ErrUnknownProduct, ErrInsufficientStock, ErrIdempotencyConflict,
// ErrConflict (reintentos agotados), ErrTxTimeout.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInputDTO) (*MovementResult, error) {
	p, err := PrepareMovement(input)
	if err != nil {
		return nil, err
	}
	ok, err := uc.products.Exists(ctx, p.Key.ProductCode)
	if err != nil {
		return nil, fmt.Errorf("consultar catálogo de productos: %w", err)
	}
	if !ok {
		return nil, domain.ErrUnknownProduct
	}

	var (
		result   *MovementResult
		attempts int
	)
	op := func() error {
		attempts++
		res, err := uc.attempt(ctx, p)
		if err == nil {
			result = res
			return nil
		}
		if retryable(err) {
			uc.log.Debug().Str("key", p.Key.String()).Int("attempt", attempts).Err(err).Msg("reintentando movimiento")
			return err
		}
		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(uc.newBackOff(), uint64(uc.policy.MaxRetries)), ctx)); err != nil {
		if retryable(err) {
			uc.log.Warn().Str("key", p.Key.String()).Int("attempts", attempts).Msg("reintentos agotados")
			return nil, fmt.Errorf("registrar movimiento tras %d intentos: %w", attempts, domain.ErrConflict)
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			uc.log.Info().Str("key", p.Key.String()).Int64("quantity", p.Quantity).Msg("salida rechazada por stock insuficiente")
		}
		return nil, err
	}

	m := result.Movement
	uc.log.Info().
		Str("movement_id", m.ID).
		Str("key", m.Key.String()).
		Str("direction", string(m.Direction)).
		Int64("quantity", m.Quantity).
		Int64("balance", m.BalanceAfter).
		Bool("replayed", result.Replayed).
		Int("attempts", attempts).
		Msg("movimiento confirmado")
	return result, nil
}

// Adjust registra un ajuste con signo como un movimiento IN u OUT.
func (uc *RegisterMovementUseCase) Adjust(ctx context.Context, input AdjustInputDTO) (*MovementResult, error) {
	in, err := AdjustmentToMovement(input)
	if err != nil {
		return nil, err
	}
	return uc.RegisterMovement(ctx, in)
}

// attempt ejecuta una unidad de trabajo completa dentro de una transacción.
func (uc *RegisterMovementUseCase) attempt(ctx context.Context, p *PreparedMovement) (*MovementResult, error) {
	var result *MovementResult
	err := uc.txRunner.Run(ctx, func(
		ctx context.Context,
		movRepo repository.MovementRepository,
		balanceRepo repository.BalanceRepository,
		idemRepo repository.IdempotencyRepository,
	) error {
		if p.IdempotencyKey != "" {
			replay, err := uc.replay(ctx, movRepo, idemRepo, p)
			if err != nil {
				return err
			}
			if replay != nil {
				result = replay
				return nil
			}
		}

		now := uc.now()
		current, err := balanceRepo.Get(ctx, p.Key)
		if err != nil {
			return err
		}
		if current == nil {
			current = &entity.Balance{ID: uuid.New().String(), Key: p.Key}
		}
		next, err := rules.Apply(*current, p.Direction, p.Quantity, now)
		if err != nil {
			return err
		}
		if err := balanceRepo.ConditionalWrite(ctx, &next, current.Version); err != nil {
			return err
		}

		mov := &entity.Movement{
			ID:             uuid.New().String(),
			Key:            p.Key,
			Direction:      p.Direction,
			Quantity:       p.Quantity,
			Note:           p.Note,
			CreatedBy:      p.CreatedBy,
			BalanceAfter:   next.Quantity,
			BalanceVersion: next.Version,
			CreatedAt:      now,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}

		if p.IdempotencyKey != "" {
			err := idemRepo.Create(ctx, &repository.IdempotencyRecord{
				Key:         p.IdempotencyKey,
				MovementID:  mov.ID,
				RequestHash: p.RequestHash,
				CreatedAt:   now,
			})
			if errors.Is(err, domain.ErrDuplicate) {
				// otra solicitud con la misma clave confirmó primero: el reintento la reproduce
				return domain.ErrVersionMismatch
			}
			if err != nil {
				return err
			}
		}
		result = &MovementResult{Movement: mov}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (uc *RegisterMovementUseCase) replay(
	ctx context.Context,
	movRepo repository.MovementRepository,
	idemRepo repository.IdempotencyRepository,
	p *PreparedMovement,
) (*MovementResult, error) {
	rec, err := idemRepo.Get(ctx, p.IdempotencyKey)
	if err != nil || rec == nil {
		return nil, err
	}
	if rec.RequestHash != p.RequestHash {
		return nil, domain.ErrIdempotencyConflict
	}
	mov, err := movRepo.GetByID(ctx, rec.MovementID)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, fmt.Errorf("idempotencia: movimiento %s no encontrado", rec.MovementID)
	}
	return &MovementResult{Movement: mov, Replayed: true}, nil
}

func (uc *RegisterMovementUseCase) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	if uc.policy.Initial > 0 {
		b.InitialInterval = uc.policy.Initial
	}
	if uc.policy.Max > 0 {
		b.MaxInterval = uc.policy.Max
	}
	b.MaxElapsedTime = 0 // el límite lo pone MaxRetries
	b.Reset()
	return b
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrVersionMismatch) || errors.Is(err, domain.ErrTransient)
}
