package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/sqlite"
)

func openStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func strPtr(s string) *string { return &s }

func datePtr(s string) *time.Time {
	d, err := entity.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func newBalance(key entity.BalanceKey, qty, version int64, at time.Time) *entity.Balance {
	return &entity.Balance{ID: uuid.New().String(), Key: key, Quantity: qty, Version: version, UpdatedAt: at}
}

func TestConditionalWrite_InsertaYActualizaConVersion(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewBalanceRepository(openStore(t).DB())
	key := entity.NewBalanceKey("ZR001", strPtr("LOT001"), datePtr("2026-12-31"))
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	b := newBalance(key, 50, 1, now)
	require.NoError(t, repo.ConditionalWrite(ctx, b, 0))

	got, err := repo.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(50), got.Quantity)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.Key.Equal(key))
	assert.True(t, got.UpdatedAt.Equal(now))

	b.Quantity, b.Version = 30, 2
	require.NoError(t, repo.ConditionalWrite(ctx, b, 1))

	// escritor con versión vieja
	stale := *b
	stale.Quantity, stale.Version = 10, 2
	assert.ErrorIs(t, repo.ConditionalWrite(ctx, &stale, 1), domain.ErrVersionMismatch)

	// segunda creación de la misma clave
	assert.ErrorIs(t, repo.ConditionalWrite(ctx, newBalance(key, 1, 1, now), 0), domain.ErrVersionMismatch)

	got, err = repo.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got.Quantity)
	assert.Equal(t, int64(2), got.Version)
}

func TestGet_ClaveAusenteDevuelveNil(t *testing.T) {
	repo := sqlite.NewBalanceRepository(openStore(t).DB())
	got, err := repo.Get(context.Background(), entity.NewBalanceKey("ZR001", nil, nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBalanceKey_AusenteSoloCoincideConAusente(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewBalanceRepository(openStore(t).DB())
	now := time.Now().UTC()

	bare := entity.NewBalanceKey("ZR001", nil, nil)
	withLot := entity.NewBalanceKey("ZR001", strPtr("LOT001"), nil)
	withExp := entity.NewBalanceKey("ZR001", nil, datePtr("2026-12-31"))

	require.NoError(t, repo.ConditionalWrite(ctx, newBalance(bare, 1, 1, now), 0))
	require.NoError(t, repo.ConditionalWrite(ctx, newBalance(withLot, 2, 1, now), 0))
	require.NoError(t, repo.ConditionalWrite(ctx, newBalance(withExp, 3, 1, now), 0))
	// ausente + ausente es la misma clave
	assert.ErrorIs(t, repo.ConditionalWrite(ctx, newBalance(bare, 9, 1, now), 0), domain.ErrVersionMismatch)

	for key, want := range map[*entity.BalanceKey]int64{&bare: 1, &withLot: 2, &withExp: 3} {
		got, err := repo.Get(ctx, *key)
		require.NoError(t, err)
		require.NotNil(t, got, key.String())
		assert.Equal(t, want, got.Quantity, key.String())
	}
}

func TestMovementRepo_CreaListaYSuma(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	repo := sqlite.NewMovementRepository(store.DB())
	key := entity.NewBalanceKey("ZR001", strPtr("LOT001"), nil)
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	movs := []*entity.Movement{
		{ID: uuid.New().String(), Key: key, Direction: entity.DirectionIN, Quantity: 50, BalanceAfter: 50, BalanceVersion: 1, CreatedAt: base},
		{ID: uuid.New().String(), Key: key, Direction: entity.DirectionOUT, Quantity: 20, Note: strPtr("venta"), BalanceAfter: 30, BalanceVersion: 2, CreatedAt: base.Add(time.Minute)},
	}
	for _, m := range movs {
		require.NoError(t, repo.Create(ctx, m))
	}

	// el libro es solo inserción: repetir el id falla
	assert.ErrorIs(t, repo.Create(ctx, movs[0]), domain.ErrDuplicate)

	total, count, err := repo.SumByKey(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(30), total)
	assert.Equal(t, 2, count)

	list, n, err := repo.ListByKey(ctx, key, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, list, 2)
	assert.Equal(t, movs[1].ID, list[0].ID)
	require.NotNil(t, list[0].Note)
	assert.Equal(t, "venta", *list[0].Note)

	got, err := repo.GetByID(ctx, movs[0].ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.DirectionIN, got.Direction)
	assert.True(t, got.CreatedAt.Equal(base))

	missing, err := repo.GetByID(ctx, uuid.New().String())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBalanceRepo_ListFiltraYOrdena(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewBalanceRepository(openStore(t).DB())
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	seed := []struct {
		key entity.BalanceKey
		qty int64
	}{
		{entity.NewBalanceKey("ZR001", strPtr("LOT001"), datePtr("2026-03-01")), 10},
		{entity.NewBalanceKey("ZR001", strPtr("LOT002"), nil), 5},
		{entity.NewBalanceKey("AB100", nil, datePtr("2026-02-01")), 7},
		{entity.NewBalanceKey("ZR002", strPtr("L_1"), nil), 1},
	}
	for i, s := range seed {
		require.NoError(t, repo.ConditionalWrite(ctx, newBalance(s.key, s.qty, 1, base.Add(time.Duration(i)*time.Minute)), 0))
	}

	// por defecto: updatedAt descendente
	all, err := repo.List(ctx, repository.BalanceFilter{OrderBy: repository.OrderByUpdatedAt, Desc: true, Limit: 10})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "ZR002", all[0].Key.ProductCode)

	f := repository.BalanceFilter{ProductCode: "ZR00", OrderBy: repository.OrderByQuantity, Desc: false, Limit: 10}
	list, err := repo.List(ctx, f)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{1, 5, 10}, []int64{list[0].Quantity, list[1].Quantity, list[2].Quantity})
	n, err := repo.Count(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	// "_" es literal, no comodín
	n, err = repo.Count(ctx, repository.BalanceFilter{LotNumber: "L_"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	page, err := repo.List(ctx, repository.BalanceFilter{OrderBy: repository.OrderByProductCode, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "ZR001", page[0].Key.ProductCode)

	byProduct, err := repo.ListByProduct(ctx, "ZR001")
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.NotNil(t, byProduct[0].Key.ExpirationDate)
	assert.Nil(t, byProduct[1].Key.ExpirationDate)

	expiring, err := repo.ListExpiring(ctx, *datePtr("2026-01-15"), *datePtr("2026-02-15"))
	require.NoError(t, err)
	require.Len(t, expiring, 1)
	assert.Equal(t, "AB100", expiring[0].Key.ProductCode)
}

func TestIdempotencyRepo_DuplicadoDevuelveErrDuplicate(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	movRepo := sqlite.NewMovementRepository(store.DB())
	repo := sqlite.NewIdempotencyRepository(store.DB())

	mov := &entity.Movement{ID: uuid.New().String(), Key: entity.NewBalanceKey("ZR001", nil, nil), Direction: entity.DirectionIN,
		Quantity: 1, BalanceAfter: 1, BalanceVersion: 1, CreatedAt: time.Now()}
	require.NoError(t, movRepo.Create(ctx, mov))

	rec := &repository.IdempotencyRecord{Key: "k-1", MovementID: mov.ID, RequestHash: "abc", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, rec))
	assert.ErrorIs(t, repo.Create(ctx, rec), domain.ErrDuplicate)

	got, err := repo.Get(ctx, "k-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, mov.ID, got.MovementID)

	none, err := repo.Get(ctx, "k-2")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestProductRepo_ExistsSoloActivos(t *testing.T) {
	ctx := context.Background()
	repo := sqlite.NewProductRepository(openStore(t).DB())
	require.NoError(t, repo.Upsert(ctx, &entity.Product{Code: "ZR001", Name: "Zapato", IsActive: true}))
	require.NoError(t, repo.Upsert(ctx, &entity.Product{Code: "ZR999", Name: "Descontinuado", IsActive: false}))

	ok, err := repo.Exists(ctx, "ZR001")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, "ZR999")
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := repo.GetByCode(ctx, "ZR999")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.IsActive)
}
