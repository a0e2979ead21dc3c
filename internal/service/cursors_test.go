package service

import (
	"context"
	"testing"

	"sales-notifier/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCursorStoreMonotonicAdvance(t *testing.T) {
	persister := &memoryPersister{}
	cursors := NewCursorStore(persister)
	ctx := context.Background()

	cursors.AdvanceLedgerSale(ctx, 5)
	cursors.AdvanceLedgerSale(ctx, 3)
	cursors.AdvanceLedgerSale(ctx, 5)
	cursors.AdvanceLedgerSale(ctx, 9)

	assert.Equal(t, int64(9), cursors.State().LedgerSaleID)
	// Only the two real advances persisted.
	assert.Equal(t, 2, persister.saves)
}

func TestCursorStoreIndependentTables(t *testing.T) {
	cursors := NewCursorStore(&memoryPersister{})
	ctx := context.Background()

	cursors.AdvanceLedgerSale(ctx, 10)
	cursors.AdvanceSale(ctx, 20)
	cursors.AdvancePayment(ctx, 30)

	state := cursors.State()
	assert.Equal(t, int64(10), state.LedgerSaleID)
	assert.Equal(t, int64(20), state.SaleID)
	assert.Equal(t, int64(30), state.PaymentID)
}

func TestCursorStoreLoad(t *testing.T) {
	persister := &memoryPersister{state: models.CursorState{LedgerSaleID: 7, SaleID: 8, PaymentID: 9}}
	cursors := NewCursorStore(persister)
	cursors.Load(context.Background())

	assert.Equal(t, models.CursorState{LedgerSaleID: 7, SaleID: 8, PaymentID: 9}, cursors.State())
}

func TestCursorStoreLoadFailureDefaultsToZero(t *testing.T) {
	cursors := NewCursorStore(&memoryPersister{failLoad: true})
	cursors.Load(context.Background())

	assert.Equal(t, models.CursorState{}, cursors.State())
}

func TestCursorStorePersistFailureKeepsMemoryState(t *testing.T) {
	cursors := NewCursorStore(&memoryPersister{failSave: true})
	ctx := context.Background()

	cursors.AdvancePayment(ctx, 12)
	assert.Equal(t, int64(12), cursors.State().PaymentID)
}

func TestSeedBaselineFillsOnlyZeroCursors(t *testing.T) {
	persister := &memoryPersister{}
	cursors := NewCursorStore(persister)
	ctx := context.Background()

	// The sale cursor was already advanced by live events.
	cursors.AdvanceSale(ctx, 15)

	seeded := cursors.SeedBaseline(ctx, models.CursorState{
		LedgerSaleID: 42,
		SaleID:       99,
		PaymentID:    7,
	})

	assert.Equal(t, int64(42), seeded.LedgerSaleID)
	assert.Equal(t, int64(15), seeded.SaleID)
	assert.Equal(t, int64(7), seeded.PaymentID)
	assert.Equal(t, seeded, persister.state)
}
