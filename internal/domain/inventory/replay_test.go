package inventory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func mov(key entity.BalanceKey, dir entity.Direction, qty, after, version int64) *entity.Movement {
	return &entity.Movement{ID: key.String(), Key: key, Direction: dir, Quantity: qty, BalanceAfter: after, BalanceVersion: version}
}

func TestReplay_AgrupaPorClave(t *testing.T) {
	lot := "LOT001"
	a := entity.NewBalanceKey("ZR001", nil, nil)
	b := entity.NewBalanceKey("ZR001", &lot, nil)

	got := inventory.Replay([]*entity.Movement{
		mov(a, entity.DirectionIN, 10, 10, 1),
		mov(b, entity.DirectionIN, 3, 3, 1),
		mov(a, entity.DirectionOUT, 4, 6, 2),
	})

	assert.Equal(t, int64(6), got[a.String()])
	assert.Equal(t, int64(3), got[b.String()])
}

func TestVerifyChain_CadenaValida(t *testing.T) {
	k := entity.NewBalanceKey("ZR001", nil, nil)
	chain := []*entity.Movement{
		mov(k, entity.DirectionOUT, 4, 6, 2),
		mov(k, entity.DirectionIN, 10, 10, 1),
	}
	assert.NoError(t, inventory.VerifyChain(chain))
	assert.Equal(t, int64(6), inventory.Sum(chain))
}

func TestVerifyChain_VersionRepetida(t *testing.T) {
	k := entity.NewBalanceKey("ZR001", nil, nil)
	chain := []*entity.Movement{
		mov(k, entity.DirectionIN, 10, 10, 1),
		mov(k, entity.DirectionIN, 5, 15, 1),
	}
	assert.Error(t, inventory.VerifyChain(chain))
}

func TestVerifyChain_SaldoRegistradoInconsistente(t *testing.T) {
	k := entity.NewBalanceKey("ZR001", nil, nil)
	chain := []*entity.Movement{
		mov(k, entity.DirectionIN, 10, 10, 1),
		mov(k, entity.DirectionOUT, 4, 7, 2),
	}
	assert.Error(t, inventory.VerifyChain(chain))
}
