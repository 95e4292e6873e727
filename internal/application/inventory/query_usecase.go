package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	rules "github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

const day = 24 * time.Hour

// MaxExpiringDays tope de la ventana de ExpiringSoon (100 años).
const MaxExpiringDays = 36500

// BalanceQueryUseCase consultas de solo lectura sobre saldos y movimientos.
// Nunca toma bloqueos ni modifica datos.
type BalanceQueryUseCase struct {
	balances     repository.BalanceQueryRepository
	movements    repository.MovementRepository
	expiringDays int
	now          func() time.Time
}

// NewBalanceQueryUseCase construye el caso de uso. expiringDays es la ventana por defecto de ExpiringSoon.
func NewBalanceQueryUseCase(
	balances repository.BalanceQueryRepository,
	movements repository.MovementRepository,
	expiringDays int,
) *BalanceQueryUseCase {
	return &BalanceQueryUseCase{
		balances:     balances,
		movements:    movements,
		expiringDays: expiringDays,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *BalanceQueryUseCase) WithClock(now func() time.Time) *BalanceQueryUseCase {
	uc.now = now
	return uc
}

// ListBalances lista saldos filtrados y paginados; el conteo y la página se consultan en paralelo.
func (uc *BalanceQueryUseCase) ListBalances(ctx context.Context, q dto.BalanceListQuery) (*dto.BalanceListResponse, error) {
	filter, err := balanceFilter(&q)
	if err != nil {
		return nil, err
	}

	var (
		items []*entity.Balance
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = uc.balances.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.balances.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &dto.BalanceListResponse{
		Items:        make([]dto.BalanceResponse, 0, len(items)),
		PageResponse: dto.NewPageResponse(total, q.PageRequest),
	}
	for _, b := range items {
		out.Items = append(out.Items, dto.NewBalanceResponse(b))
	}
	return out, nil
}

func balanceFilter(q *dto.BalanceListQuery) (repository.BalanceFilter, error) {
	q.DefaultPage()
	var errs domain.ValidationErrors

	order := repository.OrderByUpdatedAt
	if s := strings.TrimSpace(q.OrderBy); s != "" {
		order = repository.BalanceOrder(s)
		if !order.Valid() {
			errs = append(errs, domain.NewValidationError("orderBy", "debe ser updatedAt, productCode, quantity o expirationDate"))
		}
	}
	desc := true
	switch strings.ToUpper(strings.TrimSpace(q.SortOrder)) {
	case "", "DESC":
	case "ASC":
		desc = false
	default:
		errs = append(errs, domain.NewValidationError("sortOrder", "debe ser ASC o DESC"))
	}
	from, e := ParseOptionalDate("expirationFrom", &q.ExpirationFrom)
	if e != nil {
		errs = append(errs, e)
	}
	to, e := ParseOptionalDate("expirationTo", &q.ExpirationTo)
	if e != nil {
		errs = append(errs, e)
	}
	if from != nil && to != nil && from.After(*to) {
		errs = append(errs, domain.NewValidationError("expirationFrom", "no puede ser posterior a expirationTo"))
	}
	if err := errs.OrNil(); err != nil {
		return repository.BalanceFilter{}, err
	}

	return repository.BalanceFilter{
		ProductCode:    rules.NormalizeProductCode(q.ProductCode),
		LotNumber:      strings.TrimSpace(q.LotNumber),
		ExpirationFrom: from,
		ExpirationTo:   to,
		OrderBy:        order,
		Desc:           desc,
		Limit:          q.Limit,
		Offset:         q.Offset(),
	}, nil
}

// BalancesForProduct devuelve todos los saldos de un producto (por vencimiento ascendente) y su total.
// Un producto sin saldos devuelve una lista vacía.
func (uc *BalanceQueryUseCase) BalancesForProduct(ctx context.Context, productCode string) (*dto.ProductBalancesResponse, error) {
	code := rules.NormalizeProductCode(productCode)
	if e := rules.ValidateProductCode(code); e != nil {
		return nil, domain.ValidationErrors{e}
	}
	items, err := uc.balances.ListByProduct(ctx, code)
	if err != nil {
		return nil, err
	}
	out := &dto.ProductBalancesResponse{ProductCode: code, Balances: make([]dto.BalanceResponse, 0, len(items))}
	for _, b := range items {
		out.Balances = append(out.Balances, dto.NewBalanceResponse(b))
		out.TotalQuantity += b.Quantity
	}
	return out, nil
}

// ExpiringSoon devuelve saldos con cantidad > 0 cuyo vencimiento cae entre ahora y ahora + days.
// days nil usa la ventana configurada. Los ya vencidos no se incluyen.
func (uc *BalanceQueryUseCase) ExpiringSoon(ctx context.Context, days *int) (*dto.ExpiringResponse, error) {
	window := uc.expiringDays
	if days != nil {
		window = *days
	}
	if window < 0 {
		return nil, domain.ValidationErrors{domain.NewValidationError("days", "no puede ser negativo")}
	}
	if window > MaxExpiringDays {
		return nil, domain.ValidationErrors{domain.NewValidationError("days", "máximo 36500")}
	}
	items, err := uc.ExpiringBalances(ctx, uc.now(), window)
	if err != nil {
		return nil, err
	}
	out := &dto.ExpiringResponse{Threshold: window, Items: make([]dto.ExpiringBalanceResponse, 0, len(items))}
	for i := range items {
		out.Items = append(out.Items, dto.ExpiringBalanceResponse{
			BalanceResponse:     dto.NewBalanceResponse(&items[i].Balance),
			DaysUntilExpiration: items[i].DaysUntilExpiration,
		})
	}
	return out, nil
}

// ExpiringBalances filtra con precisión los candidatos que devuelve el almacén por rango de fechas.
// window se acota a [0, MaxExpiringDays].
func (uc *BalanceQueryUseCase) ExpiringBalances(ctx context.Context, now time.Time, window int) ([]entity.ExpiringBalance, error) {
	window = min(max(window, 0), MaxExpiringDays)
	limit := time.Duration(window) * day
	candidates, err := uc.balances.ListExpiring(ctx, entity.TruncateDate(now), entity.TruncateDate(now.Add(limit)))
	if err != nil {
		return nil, err
	}
	out := make([]entity.ExpiringBalance, 0, len(candidates))
	for _, b := range candidates {
		if b.Key.ExpirationDate == nil || b.Quantity <= 0 {
			continue
		}
		remaining := b.Key.ExpirationDate.Sub(now)
		if remaining < 0 || remaining > limit {
			continue
		}
		out = append(out, entity.ExpiringBalance{Balance: *b, DaysUntilExpiration: ceilDays(remaining)})
	}
	return out, nil
}

func ceilDays(d time.Duration) int {
	n := d / day
	if d%day != 0 {
		n++
	}
	return int(n)
}

// GetBalance devuelve el saldo de una clave exacta; ErrBalanceNotFound si nunca tuvo movimientos.
func (uc *BalanceQueryUseCase) GetBalance(ctx context.Context, key entity.BalanceKey) (*dto.BalanceResponse, error) {
	b, err := uc.balances.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.ErrBalanceNotFound
	}
	out := dto.NewBalanceResponse(b)
	return &out, nil
}

// GetMovement devuelve un movimiento por ID.
func (uc *BalanceQueryUseCase) GetMovement(ctx context.Context, id string) (*dto.MovementResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ValidationErrors{domain.NewValidationError("id", "debe ser un UUID")}
	}
	m, err := uc.movements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrMovementNotFound
	}
	out := dto.NewMovementResponse(m)
	return &out, nil
}

// ListMovements lista los movimientos de una clave, más recientes primero.
func (uc *BalanceQueryUseCase) ListMovements(ctx context.Context, key entity.BalanceKey, page dto.PageRequest) (*dto.MovementListResponse, error) {
	page.DefaultPage()
	items, total, err := uc.movements.ListByKey(ctx, key, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.MovementListResponse{
		Items:        make([]dto.MovementResponse, 0, len(items)),
		PageResponse: dto.NewPageResponse(total, page),
	}
	for _, m := range items {
		out.Items = append(out.Items, dto.NewMovementResponse(m))
	}
	return out, nil
}

// Reconcile compara el saldo materializado con la agregación del libro para una clave.
// Consistent exige igual cantidad y una versión por movimiento.
func (uc *BalanceQueryUseCase) Reconcile(ctx context.Context, key entity.BalanceKey) (*dto.ReconcileResponse, error) {
	var (
		b     *entity.Balance
		total int64
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		b, err = uc.balances.Get(gctx, key)
		return err
	})
	g.Go(func() error {
		var err error
		total, count, err = uc.movements.SumByKey(gctx, key)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if b == nil {
		b = &entity.Balance{Key: key}
	}
	resp := dto.NewBalanceResponse(b)
	return &dto.ReconcileResponse{
		ProductCode:     resp.ProductCode,
		LotNumber:       resp.LotNumber,
		ExpirationDate:  resp.ExpirationDate,
		BalanceQuantity: b.Quantity,
		BalanceVersion:  b.Version,
		LedgerQuantity:  total,
		MovementCount:   count,
		Consistent:      b.Quantity == total && b.Version == int64(count),
	}, nil
}
