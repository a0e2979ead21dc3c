package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"sales-notifier/internal/models"
	"sales-notifier/internal/util"

	"go.uber.org/zap"
)

// BalanceStore is the slice of the store needed to compute balances.
type BalanceStore interface {
	GetSalesByCustomer(ctx context.Context, customerID int64) ([]models.Sale, error)
	GetLedgerSalesByCustomer(ctx context.Context, customerID int64) ([]models.LedgerSale, error)
	GetPaymentsByCustomer(ctx context.Context, customerID int64) ([]models.Payment, error)
	GetPaymentsBySaleIDs(ctx context.Context, saleIDs []int64) ([]models.Payment, error)
}

// Exclusion removes a specific transaction's own contribution from a
// balance computation, so callers can ask for the balance as it stood
// before that transaction. Zero fields mean no exclusion.
type Exclusion struct {
	LedgerSaleID int64
	SaleID       int64
	PaymentID    int64
}

// BalanceService computes a customer's running balance from direct
// sales, ledger entries and payments.
type BalanceService struct {
	store  BalanceStore
	logger *zap.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(store BalanceStore) *BalanceService {
	return &BalanceService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Compute aggregates the customer's sales and payments. Direct sales
// tagged as ledger mirrors are dropped (the ledger entry carries the
// amount), and payments matching both lookup filters are counted once.
// The returned balance is never negative.
func (s *BalanceService) Compute(ctx context.Context, customerID int64, exclude Exclusion) (models.BalanceSummary, error) {
	ctx, span := util.StartSpan(ctx, "BalanceService.Compute")
	defer span.End()

	start := time.Now()
	defer func() {
		util.BalanceQueryLatency.Observe(time.Since(start).Seconds())
	}()

	sales, err := s.store.GetSalesByCustomer(ctx, customerID)
	if err != nil {
		return models.BalanceSummary{}, fmt.Errorf("failed to fetch sales: %w", err)
	}

	entries, err := s.store.GetLedgerSalesByCustomer(ctx, customerID)
	if err != nil {
		return models.BalanceSummary{}, fmt.Errorf("failed to fetch ledger sales: %w", err)
	}

	var totalSales int64
	saleIDSet := make(map[int64]struct{})

	for _, sale := range sales {
		if models.IsLedgerSale(sale.SaleType) {
			continue
		}
		if exclude.SaleID != 0 && sale.ID == exclude.SaleID {
			continue
		}
		totalSales += sale.Total
		saleIDSet[sale.ID] = struct{}{}
	}

	for _, entry := range entries {
		if exclude.LedgerSaleID != 0 && entry.ID == exclude.LedgerSaleID {
			continue
		}
		totalSales += entry.Subtotal
		if entry.SaleID != nil && *entry.SaleID != 0 {
			saleIDSet[*entry.SaleID] = struct{}{}
		}
	}

	saleIDs := make([]int64, 0, len(saleIDSet))
	for id := range saleIDSet {
		saleIDs = append(saleIDs, id)
	}
	sort.Slice(saleIDs, func(i, j int) bool { return saleIDs[i] < saleIDs[j] })

	byCustomer, err := s.store.GetPaymentsByCustomer(ctx, customerID)
	if err != nil {
		return models.BalanceSummary{}, fmt.Errorf("failed to fetch payments by customer: %w", err)
	}

	bySale, err := s.store.GetPaymentsBySaleIDs(ctx, saleIDs)
	if err != nil {
		return models.BalanceSummary{}, fmt.Errorf("failed to fetch payments by sale: %w", err)
	}

	// Union by payment ID: a payment that satisfies both filters must
	// count once.
	payments := make(map[int64]models.Payment, len(byCustomer)+len(bySale))
	for _, p := range byCustomer {
		payments[p.ID] = p
	}
	for _, p := range bySale {
		payments[p.ID] = p
	}

	var totalPayments int64
	for _, p := range payments {
		if exclude.PaymentID != 0 && p.ID == exclude.PaymentID {
			continue
		}
		if exclude.SaleID != 0 && p.SaleID != nil && *p.SaleID == exclude.SaleID {
			continue
		}
		if exclude.LedgerSaleID != 0 && p.LedgerSaleID != nil && *p.LedgerSaleID == exclude.LedgerSaleID {
			continue
		}
		totalPayments += p.Amount
	}

	balance := totalSales - totalPayments
	if balance < 0 {
		balance = 0
	}

	return models.BalanceSummary{
		TotalSales:    totalSales,
		TotalPayments: totalPayments,
		Balance:       balance,
	}, nil
}
