package inventory_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

type fixture struct {
	store   *sqlite.Store
	runner  inventory.TxRunner
	uc      *inventory.RegisterMovementUseCase
	queries *inventory.BalanceQueryUseCase
	now     time.Time
}

var testPolicy = inventory.RetryPolicy{MaxRetries: 20, Initial: time.Millisecond, Max: 20 * time.Millisecond}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	products := sqlite.NewProductRepository(store.DB())
	for _, p := range []*entity.Product{
		{Code: "ZR001", Name: "Zapato rojo", IsActive: true},
		{Code: "ZR002", Name: "Zapato azul", IsActive: true},
		{Code: "AB100", Name: "Abrigo", IsActive: true},
		{Code: "XX999", Name: "Descontinuado", IsActive: false},
	} {
		require.NoError(t, products.Upsert(ctx, p))
	}

	f := &fixture{store: store, now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	clock := func() time.Time { return f.now }
	f.runner = sqlite.NewTxRunner(store, 5*time.Second)
	f.uc = inventory.NewRegisterMovementUseCase(f.runner, products, testPolicy, logger.Nop()).WithClock(clock)
	f.queries = inventory.NewBalanceQueryUseCase(
		sqlite.NewBalanceRepository(store.DB()),
		sqlite.NewMovementRepository(store.DB()),
		30,
	).WithClock(clock)
	return f
}

func (f *fixture) submit(t *testing.T, in inventory.MovementInputDTO) *inventory.MovementResult {
	t.Helper()
	res, err := f.uc.RegisterMovement(context.Background(), in)
	require.NoError(t, err)
	return res
}

func (f *fixture) movements(t *testing.T, key entity.BalanceKey) []*entity.Movement {
	t.Helper()
	list, _, err := sqlite.NewMovementRepository(f.store.DB()).ListByKey(context.Background(), key, 1000, 0)
	require.NoError(t, err)
	return list
}

func (f *fixture) balance(t *testing.T, key entity.BalanceKey) *entity.Balance {
	t.Helper()
	b, err := sqlite.NewBalanceRepository(f.store.DB()).Get(context.Background(), key)
	require.NoError(t, err)
	return b
}

func in(code string, qty int64) inventory.MovementInputDTO {
	return inventory.MovementInputDTO{ProductCode: code, Direction: "IN", Quantity: qty, CreatedBy: "user-1"}
}

func out(code string, qty int64) inventory.MovementInputDTO {
	return inventory.MovementInputDTO{ProductCode: code, Direction: "OUT", Quantity: qty, CreatedBy: "user-1"}
}

func strPtr(s string) *string { return &s }

func datePtr(t time.Time) *time.Time {
	d := entity.TruncateDate(t)
	return &d
}
