package store

import (
	"context"
	"database/sql"
	"fmt"

	"sales-notifier/internal/models"

	"github.com/jmoiron/sqlx"
)

// GetLedgerSaleByID retrieves a single ledger entry by ID
func (s *Store) GetLedgerSaleByID(ctx context.Context, id int64) (*models.LedgerSale, error) {
	var entry models.LedgerSale
	query := fmt.Sprintf(
		"SELECT id, customer_id, quantity, subtotal, status, sale_id FROM %s WHERE id = $1",
		s.tables.LedgerSales)
	err := s.db.GetContext(ctx, &entry, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetLedgerSalesByCustomer retrieves all ledger entries for a customer
func (s *Store) GetLedgerSalesByCustomer(ctx context.Context, customerID int64) ([]models.LedgerSale, error) {
	var entries []models.LedgerSale
	query := fmt.Sprintf(
		"SELECT id, customer_id, quantity, subtotal, status, sale_id FROM %s WHERE customer_id = $1",
		s.tables.LedgerSales)
	err := s.db.SelectContext(ctx, &entries, query, customerID)
	return entries, err
}

// GetSaleByID retrieves a single direct sale by ID
func (s *Store) GetSaleByID(ctx context.Context, id int64) (*models.Sale, error) {
	var sale models.Sale
	query := fmt.Sprintf(
		"SELECT id, customer_id, total, status, sale_type FROM %s WHERE id = $1",
		s.tables.Sales)
	err := s.db.GetContext(ctx, &sale, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// GetSalesByCustomer retrieves all direct sales for a customer
func (s *Store) GetSalesByCustomer(ctx context.Context, customerID int64) ([]models.Sale, error) {
	var sales []models.Sale
	query := fmt.Sprintf(
		"SELECT id, customer_id, total, status, sale_type FROM %s WHERE customer_id = $1",
		s.tables.Sales)
	err := s.db.SelectContext(ctx, &sales, query, customerID)
	return sales, err
}

// GetFirstItemQuantity returns the quantity of the first line item of a
// sale, or nil when the sale has no items.
func (s *Store) GetFirstItemQuantity(ctx context.Context, saleID int64) (*float64, error) {
	var quantity float64
	err := s.db.GetContext(ctx, &quantity,
		"SELECT quantity FROM sale_items WHERE sale_id = $1 ORDER BY id ASC LIMIT 1", saleID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quantity, nil
}

// GetPaymentByID retrieves a single payment by ID
func (s *Store) GetPaymentByID(ctx context.Context, id int64) (*models.Payment, error) {
	var payment models.Payment
	query := fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE id = $1",
		s.tables.Payments)
	err := s.db.GetContext(ctx, &payment, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// GetPaymentsByCustomer retrieves payments attributed to a customer directly
func (s *Store) GetPaymentsByCustomer(ctx context.Context, customerID int64) ([]models.Payment, error) {
	var payments []models.Payment
	query := fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE customer_id = $1",
		s.tables.Payments)
	err := s.db.SelectContext(ctx, &payments, query, customerID)
	return payments, err
}

// GetPaymentsBySaleIDs retrieves payments linked to any of the given
// direct-sale IDs. Covers payments attributed only via sale linkage.
func (s *Store) GetPaymentsBySaleIDs(ctx context.Context, saleIDs []int64) ([]models.Payment, error) {
	if len(saleIDs) == 0 {
		return []models.Payment{}, nil
	}

	query, args, err := sqlx.In(fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE sale_id IN (?)",
		s.tables.Payments), saleIDs)
	if err != nil {
		return nil, err
	}
	query = s.db.Rebind(query)

	var payments []models.Payment
	err = s.db.SelectContext(ctx, &payments, query, args...)
	return payments, err
}

// GetPaymentsBySale retrieves payments linked to one direct sale
func (s *Store) GetPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error) {
	var payments []models.Payment
	query := fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE sale_id = $1",
		s.tables.Payments)
	err := s.db.SelectContext(ctx, &payments, query, saleID)
	return payments, err
}

// GetPaymentsByLedgerSale retrieves payments linked to one ledger entry
func (s *Store) GetPaymentsByLedgerSale(ctx context.Context, ledgerSaleID int64) ([]models.Payment, error) {
	var payments []models.Payment
	query := fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE ledger_sale_id = $1",
		s.tables.Payments)
	err := s.db.SelectContext(ctx, &payments, query, ledgerSaleID)
	return payments, err
}

// ListLedgerSalesAfter retrieves ledger entries with ID above the cursor,
// ascending, bounded to limit rows.
func (s *Store) ListLedgerSalesAfter(ctx context.Context, cursor int64, limit int) ([]models.LedgerSale, error) {
	var entries []models.LedgerSale
	query := fmt.Sprintf(
		"SELECT id, customer_id, quantity, subtotal, status, sale_id FROM %s WHERE id > $1 ORDER BY id ASC LIMIT $2",
		s.tables.LedgerSales)
	err := s.db.SelectContext(ctx, &entries, query, cursor, limit)
	return entries, err
}

// ListSalesAfter retrieves direct sales with ID above the cursor
func (s *Store) ListSalesAfter(ctx context.Context, cursor int64, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	query := fmt.Sprintf(
		"SELECT id, customer_id, total, status, sale_type FROM %s WHERE id > $1 ORDER BY id ASC LIMIT $2",
		s.tables.Sales)
	err := s.db.SelectContext(ctx, &sales, query, cursor, limit)
	return sales, err
}

// ListPaymentsAfter retrieves payments with ID above the cursor
func (s *Store) ListPaymentsAfter(ctx context.Context, cursor int64, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	query := fmt.Sprintf(
		"SELECT id, customer_id, sale_id, ledger_sale_id, amount, paid_at FROM %s WHERE id > $1 ORDER BY id ASC LIMIT $2",
		s.tables.Payments)
	err := s.db.SelectContext(ctx, &payments, query, cursor, limit)
	return payments, err
}

// MaxLedgerSaleID returns the current maximum ledger entry ID
func (s *Store) MaxLedgerSaleID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, s.tables.LedgerSales)
}

// MaxSaleID returns the current maximum direct-sale ID
func (s *Store) MaxSaleID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, s.tables.Sales)
}

// MaxPaymentID returns the current maximum payment ID
func (s *Store) MaxPaymentID(ctx context.Context) (int64, error) {
	return s.maxID(ctx, s.tables.Payments)
}

func (s *Store) maxID(ctx context.Context, table string) (int64, error) {
	var id int64
	err := s.db.GetContext(ctx, &id, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table))
	return id, err
}
