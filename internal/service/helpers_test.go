package service

import (
	"context"
	"errors"
	"sync"

	"sales-notifier/internal/models"
)

// fakeStore is an in-memory stand-in for the sqlx store, implementing
// the slices used by the balance, notifier and reminder services.
type fakeStore struct {
	customers map[int64]models.Customer
	sales     []models.Sale
	ledger    []models.LedgerSale
	payments  []models.Payment
	items     map[int64]float64

	failSales bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[int64]models.Customer),
		items:     make(map[int64]float64),
	}
}

func (f *fakeStore) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	c, ok := f.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (f *fakeStore) ListCustomersWithContact(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	for _, c := range f.customers {
		if c.HasContact() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetSalesByCustomer(ctx context.Context, customerID int64) ([]models.Sale, error) {
	if f.failSales {
		return nil, errors.New("sales query failed")
	}
	var out []models.Sale
	for _, s := range f.sales {
		if s.CustomerID == customerID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLedgerSalesByCustomer(ctx context.Context, customerID int64) ([]models.LedgerSale, error) {
	var out []models.LedgerSale
	for _, e := range f.ledger {
		if e.CustomerID == customerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLedgerSaleByID(ctx context.Context, id int64) (*models.LedgerSale, error) {
	for _, e := range f.ledger {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	for _, s := range f.sales {
		if s.ID == id {
			sale := s
			return &sale, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetFirstItemQuantity(ctx context.Context, saleID int64) (*float64, error) {
	q, ok := f.items[saleID]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (f *fakeStore) GetPaymentsByCustomer(ctx context.Context, customerID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.CustomerID != nil && *p.CustomerID == customerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPaymentsBySaleIDs(ctx context.Context, saleIDs []int64) ([]models.Payment, error) {
	ids := make(map[int64]struct{}, len(saleIDs))
	for _, id := range saleIDs {
		ids[id] = struct{}{}
	}
	var out []models.Payment
	for _, p := range f.payments {
		if p.SaleID == nil {
			continue
		}
		if _, ok := ids[*p.SaleID]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.SaleID != nil && *p.SaleID == saleID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeStore) GetPaymentsByLedgerSale(ctx context.Context, ledgerSaleID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.LedgerSaleID != nil && *p.LedgerSaleID == ledgerSaleID {
			out = append(out, p)
		}
	}
	return out, nil
}

type sentMessage struct {
	address string
	text    string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (f *fakeSender) Send(ctx context.Context, address, text string) error {
	if f.fail {
		return errors.New("gateway down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{address: address, text: text})
	return nil
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

// memoryPersister implements CursorPersister without Redis.
type memoryPersister struct {
	mu       sync.Mutex
	state    models.CursorState
	saves    int
	failSave bool
	failLoad bool
}

func (m *memoryPersister) LoadCursors(ctx context.Context) (models.CursorState, error) {
	if m.failLoad {
		return models.CursorState{}, errors.New("load failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *memoryPersister) SaveCursors(ctx context.Context, state models.CursorState) error {
	if m.failSave {
		return errors.New("save failed")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.saves++
	return nil
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func strPtr(v string) *string       { return &v }
