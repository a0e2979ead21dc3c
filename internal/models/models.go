package models

import (
	"strings"
	"time"
)

// Customer is read-only from this service's perspective. A customer
// without a phone number is not eligible for any notification.
type Customer struct {
	ID    int64   `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}

// HasContact reports whether the customer can receive messages.
func (c *Customer) HasContact() bool {
	return c != nil && c.Phone != nil && *c.Phone != ""
}

// LedgerSale is a sale recorded against a customer's running tab
// (table A). SaleID links back to the parent direct-sale row when the
// purchase was entered through the sales screen.
type LedgerSale struct {
	ID         int64    `db:"id" json:"id"`
	CustomerID int64    `db:"customer_id" json:"customer_id"`
	Quantity   *float64 `db:"quantity" json:"quantity,omitempty"`
	Subtotal   int64    `db:"subtotal" json:"subtotal"`
	Status     string   `db:"status" json:"status"`
	SaleID     *int64   `db:"sale_id" json:"sale_id,omitempty"`
}

// Sale is a standalone direct sale (table B). Rows tagged
// SaleTypeLedger are mirrored into ledger_sales and must be skipped
// here to avoid notifying the same purchase twice.
type Sale struct {
	ID         int64  `db:"id" json:"id"`
	CustomerID int64  `db:"customer_id" json:"customer_id"`
	Total      int64  `db:"total" json:"total"`
	Status     string `db:"status" json:"status"`
	SaleType   string `db:"sale_type" json:"sale_type"`
}

// SaleItem is a line item of a direct sale. Only the first item's
// quantity is reported in messages.
type SaleItem struct {
	ID       int64   `db:"id" json:"id"`
	SaleID   int64   `db:"sale_id" json:"sale_id"`
	Quantity float64 `db:"quantity" json:"quantity"`
}

// Payment (table C) may reference its customer directly or only
// through one of the two sale links.
type Payment struct {
	ID           int64      `db:"id" json:"id"`
	CustomerID   *int64     `db:"customer_id" json:"customer_id,omitempty"`
	SaleID       *int64     `db:"sale_id" json:"sale_id,omitempty"`
	LedgerSaleID *int64     `db:"ledger_sale_id" json:"ledger_sale_id,omitempty"`
	Amount       int64      `db:"amount" json:"amount"`
	PaidAt       *time.Time `db:"paid_at" json:"paid_at,omitempty"`
}

// Sale type tags
const (
	SaleTypeLedger = "ledger"
)

// Sale statuses. Any open-credit status produces a debt-summary
// message; everything else produces a plain receipt.
const (
	SaleStatusCredit        = "credit"
	SaleStatusCreditPending = "credit-pending"
	SaleStatusPartial       = "partial"
	SaleStatusPaid          = "paid"
)

var openCreditStatuses = map[string]struct{}{
	SaleStatusCredit:        {},
	SaleStatusCreditPending: {},
	SaleStatusPartial:       {},
}

// IsOpenCredit reports whether a status belongs to the OPEN_CREDIT
// category (case-insensitive, matching how rows arrive from the store).
func IsOpenCredit(status string) bool {
	_, ok := openCreditStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// IsLedgerSale reports whether a direct-sale row is the mirror of a
// ledger entry.
func IsLedgerSale(saleType string) bool {
	return strings.ToLower(strings.TrimSpace(saleType)) == SaleTypeLedger
}

// CursorState is the persisted resume point per watched table. A zero
// value means the table has never been scanned.
type CursorState struct {
	LedgerSaleID int64 `json:"ledger_sale_id"`
	SaleID       int64 `json:"sale_id"`
	PaymentID    int64 `json:"payment_id"`
}

// BalanceSummary is the result of a balance computation.
type BalanceSummary struct {
	TotalSales    int64 `json:"total_sales"`
	TotalPayments int64 `json:"total_payments"`
	Balance       int64 `json:"balance"`
}
