package service

import (
	"context"
	"sync"

	"sales-notifier/internal/models"
	"sales-notifier/internal/util"

	"go.uber.org/zap"
)

// CursorPersister stores the cursor record outside process memory.
type CursorPersister interface {
	LoadCursors(ctx context.Context) (models.CursorState, error)
	SaveCursors(ctx context.Context, state models.CursorState) error
}

// CursorStore holds the last-seen row ID per watched table. Advances
// are monotonic and persisted best-effort: a failed write keeps the
// in-memory value, so at worst a restart redoes recent work.
type CursorStore struct {
	mu        sync.Mutex
	state     models.CursorState
	persister CursorPersister
	logger    *zap.Logger
}

// NewCursorStore creates a cursor store backed by the given persister.
func NewCursorStore(persister CursorPersister) *CursorStore {
	return &CursorStore{
		persister: persister,
		logger:    util.GetLogger(),
	}
}

// Load reads the persisted record once at startup. An unreadable
// record degrades to zero cursors.
func (c *CursorStore) Load(ctx context.Context) {
	state, err := c.persister.LoadCursors(ctx)
	if err != nil {
		c.logger.Warn("Failed to load cursor state, starting from zero", zap.Error(err))
		return
	}

	c.mu.Lock()
	c.state = state
	c.mu.Unlock()

	c.logger.Info("Cursor state loaded",
		zap.Int64("ledger_sale_id", state.LedgerSaleID),
		zap.Int64("sale_id", state.SaleID),
		zap.Int64("payment_id", state.PaymentID))
}

// State returns a snapshot of the current cursors.
func (c *CursorStore) State() models.CursorState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AdvanceLedgerSale advances the ledger-sale cursor. Lower or equal
// IDs are no-ops.
func (c *CursorStore) AdvanceLedgerSale(ctx context.Context, id int64) {
	c.advance(ctx, func(s *models.CursorState) bool {
		if id <= s.LedgerSaleID {
			return false
		}
		s.LedgerSaleID = id
		return true
	})
}

// AdvanceSale advances the direct-sale cursor.
func (c *CursorStore) AdvanceSale(ctx context.Context, id int64) {
	c.advance(ctx, func(s *models.CursorState) bool {
		if id <= s.SaleID {
			return false
		}
		s.SaleID = id
		return true
	})
}

// AdvancePayment advances the payment cursor.
func (c *CursorStore) AdvancePayment(ctx context.Context, id int64) {
	c.advance(ctx, func(s *models.CursorState) bool {
		if id <= s.PaymentID {
			return false
		}
		s.PaymentID = id
		return true
	})
}

// SeedBaseline fills every still-zero cursor from the given maximum
// IDs and persists the result once. Returns the state after seeding.
func (c *CursorStore) SeedBaseline(ctx context.Context, maxes models.CursorState) models.CursorState {
	c.mu.Lock()
	if c.state.LedgerSaleID == 0 {
		c.state.LedgerSaleID = maxes.LedgerSaleID
	}
	if c.state.SaleID == 0 {
		c.state.SaleID = maxes.SaleID
	}
	if c.state.PaymentID == 0 {
		c.state.PaymentID = maxes.PaymentID
	}
	state := c.state
	c.mu.Unlock()

	c.persist(ctx, state)
	return state
}

func (c *CursorStore) advance(ctx context.Context, apply func(*models.CursorState) bool) {
	c.mu.Lock()
	changed := apply(&c.state)
	state := c.state
	c.mu.Unlock()

	if changed {
		c.persist(ctx, state)
	}
}

func (c *CursorStore) persist(ctx context.Context, state models.CursorState) {
	if err := c.persister.SaveCursors(ctx, state); err != nil {
		util.CursorPersistFailures.Inc()
		c.logger.Error("Failed to persist cursor state", zap.Error(err))
	}
}
