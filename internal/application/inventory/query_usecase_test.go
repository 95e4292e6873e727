package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

func intPtr(n int) *int { return &n }

func TestExpiringSoon_VentanaYDiasRestantes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	lot := func(s string, exp time.Time, qty int64) {
		f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: qty, LotNumber: strPtr(s), ExpirationDate: &exp})
	}
	lot("L10", f.now.AddDate(0, 0, 10), 5)
	lot("L40", f.now.AddDate(0, 0, 40), 5)
	lot("HOY", f.now, 5) // vence a medianoche de hoy: ya pasó
	lot("L05", f.now.AddDate(0, 0, 5), 2)
	f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "OUT", Quantity: 2, LotNumber: strPtr("L05"), ExpirationDate: datePtr(f.now.AddDate(0, 0, 5))})

	res, err := f.queries.ExpiringSoon(ctx, intPtr(30))
	require.NoError(t, err)
	assert.Equal(t, 30, res.Threshold)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "L10", *res.Items[0].LotNumber)
	assert.Equal(t, 10, res.Items[0].DaysUntilExpiration)

	def, err := f.queries.ExpiringSoon(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 30, def.Threshold)
	assert.Len(t, def.Items, 1)

	wide, err := f.queries.ExpiringSoon(ctx, intPtr(45))
	require.NoError(t, err)
	require.Len(t, wide.Items, 2)
	assert.Equal(t, "L10", *wide.Items[0].LotNumber)
	assert.Equal(t, "L40", *wide.Items[1].LotNumber)

	_, err = f.queries.ExpiringSoon(ctx, intPtr(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestExpiringBalances_LimitesExactos(t *testing.T) {
	f := newFixture(t)
	// a medianoche exacta: vencer hoy cuenta como 0 días y vencer en 30 días entra en la ventana de 30
	f.now = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, days := range []int{0, 30, 31} {
		exp := f.now.AddDate(0, 0, days)
		f.submit(t, inventory.MovementInputDTO{ProductCode: "AB100", Direction: "IN", Quantity: 1, ExpirationDate: &exp})
	}

	items, err := f.queries.ExpiringBalances(context.Background(), f.now, 30)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].DaysUntilExpiration)
	assert.Equal(t, 30, items[1].DaysUntilExpiration)
}

func TestListBalances_PaginaYOrdena(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i, code := range []string{"ZR001", "ZR002", "AB100"} {
		f.now = f.now.Add(time.Minute)
		f.submit(t, in(code, int64(i+1)))
	}

	page1, err := f.queries.ListBalances(ctx, dto.BalanceListQuery{PageRequest: dto.PageRequest{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, page1.Total)
	assert.Equal(t, 2, page1.TotalPages)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, "AB100", page1.Items[0].ProductCode, "más reciente primero")

	page2, err := f.queries.ListBalances(ctx, dto.BalanceListQuery{PageRequest: dto.PageRequest{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, "ZR001", page2.Items[0].ProductCode)

	filtered, err := f.queries.ListBalances(ctx, dto.BalanceListQuery{ProductCode: "zr", OrderBy: "quantity", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, 10, filtered.Limit)
	assert.Equal(t, 1, filtered.Page)
	require.Len(t, filtered.Items, 2)
	assert.Equal(t, int64(1), filtered.Items[0].Quantity)

	empty, err := f.queries.ListBalances(ctx, dto.BalanceListQuery{ProductCode: "QQ"})
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.TotalPages)
	assert.NotNil(t, empty.Items)
}

func TestListBalances_RechazaParametrosInvalidos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []dto.BalanceListQuery{
		{OrderBy: "price"},
		{SortOrder: "sideways"},
		{ExpirationFrom: "2026-13-01"},
		{ExpirationFrom: "2026-05-01", ExpirationTo: "2026-04-01"},
	}
	for _, q := range cases {
		_, err := f.queries.ListBalances(ctx, q)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "%+v", q)
	}
}

func TestBalancesForProduct_OrdenYTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late, early := f.now.AddDate(0, 2, 0), f.now.AddDate(0, 1, 0)
	f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 4})
	f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 3, LotNumber: strPtr("B"), ExpirationDate: &late})
	f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 2, LotNumber: strPtr("A"), ExpirationDate: &early})
	f.submit(t, in("ZR002", 100))

	res, err := f.queries.BalancesForProduct(ctx, "zr001")
	require.NoError(t, err)
	assert.Equal(t, "ZR001", res.ProductCode)
	assert.Equal(t, int64(9), res.TotalQuantity)
	require.Len(t, res.Balances, 3)
	assert.Equal(t, "A", *res.Balances[0].LotNumber)
	assert.Equal(t, "B", *res.Balances[1].LotNumber)
	assert.Nil(t, res.Balances[2].ExpirationDate)

	none, err := f.queries.BalancesForProduct(ctx, "AB100")
	require.NoError(t, err)
	assert.Empty(t, none.Balances)
}

func TestGetBalanceYMovimiento(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.submit(t, in("ZR001", 5))

	b, err := f.queries.GetBalance(ctx, entity.NewBalanceKey("ZR001", nil, nil))
	require.NoError(t, err)
	assert.Equal(t, int64(5), b.Quantity)

	_, err = f.queries.GetBalance(ctx, entity.NewBalanceKey("ZR001", strPtr("OTRO"), nil))
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	m, err := f.queries.GetMovement(ctx, res.Movement.ID)
	require.NoError(t, err)
	assert.Equal(t, "IN", m.Direction)
	assert.Equal(t, "user-1", m.CreatedBy)

	_, err = f.queries.GetMovement(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrMovementNotFound)

	_, err = f.queries.GetMovement(ctx, "no-es-uuid")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListMovements_MasRecientesPrimero(t *testing.T) {
	f := newFixture(t)
	key := entity.NewBalanceKey("ZR001", nil, nil)
	for i := 0; i < 3; i++ {
		f.submit(t, in("ZR001", int64(i+1)))
	}

	res, err := f.queries.ListMovements(context.Background(), key, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	require.Len(t, res.Items, 2)
	assert.Equal(t, int64(3), res.Items[0].BalanceVersion)
	assert.Equal(t, int64(6), res.Items[0].BalanceAfter)
}

func TestReconcile_ClaveSinMovimientosEsConsistente(t *testing.T) {
	f := newFixture(t)
	rec, err := f.queries.Reconcile(context.Background(), entity.NewBalanceKey("ZR001", nil, nil))
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
	assert.Zero(t, rec.LedgerQuantity)
	assert.Zero(t, rec.MovementCount)
}

func TestExpiringSoon_VentanaGrandeNoPierdeSaldos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	exp := f.now.AddDate(0, 0, 10)
	f.submit(t, inventory.MovementInputDTO{ProductCode: "ZR001", Direction: "IN", Quantity: 3, LotNumber: strPtr("L10"), ExpirationDate: &exp})

	res, err := f.queries.ExpiringSoon(ctx, intPtr(inventory.MaxExpiringDays))
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 10, res.Items[0].DaysUntilExpiration)

	for _, days := range []int{inventory.MaxExpiringDays + 1, 200000, 1 << 40} {
		_, err := f.queries.ExpiringSoon(ctx, intPtr(days))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "days=%d", days)
	}

	items, err := f.queries.ExpiringBalances(ctx, f.now, 200000)
	require.NoError(t, err)
	assert.Len(t, items, 1, "la ventana se acota al máximo")
}

func TestListBalances_PaginaEnormeDevuelvePaginaVacia(t *testing.T) {
	f := newFixture(t)
	f.submit(t, in("ZR001", 1))

	res, err := f.queries.ListBalances(context.Background(), dto.BalanceListQuery{PageRequest: dto.PageRequest{Page: 1 << 62, Limit: 100}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, dto.MaxPage, res.Page)
	assert.Empty(t, res.Items)
}

func TestListMovements_PaginaEnormeDevuelvePaginaVacia(t *testing.T) {
	f := newFixture(t)
	f.submit(t, in("ZR001", 1))
	key := entity.NewBalanceKey("ZR001", nil, nil)

	res, err := f.queries.ListMovements(context.Background(), key, dto.PageRequest{Page: 1 << 62, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Empty(t, res.Items)
}
