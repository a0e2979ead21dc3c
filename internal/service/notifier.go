package service

import (
	"context"
	"fmt"
	"time"

	"sales-notifier/internal/messenger"
	"sales-notifier/internal/models"
	"sales-notifier/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotifierStore is the slice of the store needed to process inserts.
type NotifierStore interface {
	GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error)
	GetLedgerSaleByID(ctx context.Context, id int64) (*models.LedgerSale, error)
	GetSaleByID(ctx context.Context, id int64) (*models.Sale, error)
	GetFirstItemQuantity(ctx context.Context, saleID int64) (*float64, error)
	GetPaymentsBySale(ctx context.Context, saleID int64) ([]models.Payment, error)
	GetPaymentsByLedgerSale(ctx context.Context, ledgerSaleID int64) ([]models.Payment, error)
}

// Balances computes customer balances with optional exclusions.
type Balances interface {
	Compute(ctx context.Context, customerID int64, exclude Exclusion) (models.BalanceSummary, error)
}

// AuditPublisher mirrors sent notifications to the event stream.
type AuditPublisher interface {
	PublishNotificationSent(ctx context.Context, event *models.NotificationSentEvent) error
}

// Notifier converts inserted rows into at most one outbound message
// each, advancing the table cursor once a row is dealt with. It is the
// single entry point for both live and polled rows.
type Notifier struct {
	store     NotifierStore
	balances  Balances
	composer  *Composer
	dedup     *DedupWindow
	cursors   *CursorStore
	sender    messenger.Sender
	publisher AuditPublisher
	logger    *zap.Logger
}

// NewNotifier creates a notifier. publisher may be nil when no audit
// stream is configured.
func NewNotifier(
	store NotifierStore,
	balances Balances,
	composer *Composer,
	dedup *DedupWindow,
	cursors *CursorStore,
	sender messenger.Sender,
	publisher AuditPublisher,
) *Notifier {
	return &Notifier{
		store:     store,
		balances:  balances,
		composer:  composer,
		dedup:     dedup,
		cursors:   cursors,
		sender:    sender,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// HandleLedgerSale processes a ledger entry insert. The cursor only
// advances once the row is processed or deliberately skipped, so a
// store failure leaves the row to be retried by the next poll cycle.
func (n *Notifier) HandleLedgerSale(ctx context.Context, entry models.LedgerSale) error {
	ctx, span := util.StartSpan(ctx, "Notifier.HandleLedgerSale")
	defer span.End()

	if err := n.processLedgerSale(ctx, entry); err != nil {
		util.EventProcessingFailures.WithLabelValues("ledger_sales").Inc()
		n.logger.Error("Failed to process ledger sale",
			zap.Int64("ledger_sale_id", entry.ID),
			zap.Error(err))
		return err
	}

	n.cursors.AdvanceLedgerSale(ctx, entry.ID)
	return nil
}

func (n *Notifier) processLedgerSale(ctx context.Context, entry models.LedgerSale) error {
	customer, err := n.store.GetCustomerByID(ctx, entry.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to fetch customer %d: %w", entry.CustomerID, err)
	}
	if !customer.HasContact() {
		util.NotificationsSkippedTotal.WithLabelValues("no_contact").Inc()
		return nil
	}

	var text string
	if models.IsOpenCredit(entry.Status) {
		linked, err := n.store.GetPaymentsByLedgerSale(ctx, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch linked payments: %w", err)
		}

		var installment int64
		for _, p := range linked {
			installment += p.Amount
		}

		prior, err := n.balances.Compute(ctx, customer.ID, Exclusion{LedgerSaleID: entry.ID})
		if err != nil {
			return fmt.Errorf("failed to compute prior balance: %w", err)
		}

		text = n.composer.CreditSale(customer.Name, CreditDetails{
			Quantity:        entry.Quantity,
			PurchaseValue:   entry.Subtotal,
			Installment:     installment,
			PurchaseBalance: entry.Subtotal,
			PriorDebt:       prior.Balance,
		})
	} else {
		text = n.composer.Receipt(customer.Name, entry.Quantity, entry.Subtotal)
	}

	if !n.send(ctx, customer, text, models.NotificationKindLedgerSale, entry.ID) {
		return nil
	}

	if entry.SaleID != nil {
		n.dedup.Mark(*entry.SaleID)
	}
	return nil
}

// HandleSale processes a direct-sale insert. The cursor advances
// before any processing, even for skipped ledger mirrors, so the
// polling fetch always makes forward progress on this table.
func (n *Notifier) HandleSale(ctx context.Context, sale models.Sale) error {
	ctx, span := util.StartSpan(ctx, "Notifier.HandleSale")
	defer span.End()

	n.cursors.AdvanceSale(ctx, sale.ID)

	if models.IsLedgerSale(sale.SaleType) {
		util.NotificationsSkippedTotal.WithLabelValues("ledger_mirror").Inc()
		return nil
	}

	if err := n.processSale(ctx, sale); err != nil {
		util.EventProcessingFailures.WithLabelValues("sales").Inc()
		n.logger.Error("Failed to process sale",
			zap.Int64("sale_id", sale.ID),
			zap.Error(err))
		return err
	}
	return nil
}

func (n *Notifier) processSale(ctx context.Context, sale models.Sale) error {
	customer, err := n.store.GetCustomerByID(ctx, sale.CustomerID)
	if err != nil {
		return fmt.Errorf("failed to fetch customer %d: %w", sale.CustomerID, err)
	}
	if !customer.HasContact() {
		util.NotificationsSkippedTotal.WithLabelValues("no_contact").Inc()
		return nil
	}

	quantity, err := n.store.GetFirstItemQuantity(ctx, sale.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch sale items: %w", err)
	}

	var text string
	if models.IsOpenCredit(sale.Status) {
		prior, err := n.balances.Compute(ctx, customer.ID, Exclusion{SaleID: sale.ID})
		if err != nil {
			return fmt.Errorf("failed to compute prior balance: %w", err)
		}

		linked, err := n.store.GetPaymentsBySale(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("failed to fetch linked payments: %w", err)
		}

		var paid int64
		for _, p := range linked {
			paid += p.Amount
		}

		remaining := sale.Total - paid
		if remaining < 0 {
			remaining = 0
		}

		text = n.composer.CreditSale(customer.Name, CreditDetails{
			Quantity:        quantity,
			PurchaseValue:   sale.Total,
			Installment:     paid,
			PurchaseBalance: remaining,
			PriorDebt:       prior.Balance,
		})
	} else {
		text = n.composer.Receipt(customer.Name, quantity, sale.Total)
	}

	if !n.send(ctx, customer, text, models.NotificationKindSale, sale.ID) {
		return nil
	}

	n.dedup.Mark(sale.ID)
	return nil
}

// HandlePayment processes a payment insert. A payment that is merely
// the settlement leg of a just-notified sale is suppressed by the
// dedup window.
func (n *Notifier) HandlePayment(ctx context.Context, payment models.Payment) error {
	ctx, span := util.StartSpan(ctx, "Notifier.HandlePayment")
	defer span.End()

	if err := n.processPayment(ctx, payment); err != nil {
		util.EventProcessingFailures.WithLabelValues("payments").Inc()
		n.logger.Error("Failed to process payment",
			zap.Int64("payment_id", payment.ID),
			zap.Error(err))
		return err
	}

	n.cursors.AdvancePayment(ctx, payment.ID)
	return nil
}

func (n *Notifier) processPayment(ctx context.Context, payment models.Payment) error {
	if payment.Amount <= 0 {
		util.NotificationsSkippedTotal.WithLabelValues("non_positive_amount").Inc()
		return nil
	}

	if payment.SaleID != nil && n.dedup.Recent(*payment.SaleID) {
		util.NotificationsSkippedTotal.WithLabelValues("recent_sale").Inc()
		return nil
	}

	customerID, err := n.resolvePaymentCustomer(ctx, payment)
	if err != nil {
		return err
	}
	if customerID == 0 {
		util.NotificationsSkippedTotal.WithLabelValues("unresolved_owner").Inc()
		return nil
	}

	customer, err := n.store.GetCustomerByID(ctx, customerID)
	if err != nil {
		return fmt.Errorf("failed to fetch customer %d: %w", customerID, err)
	}
	if !customer.HasContact() {
		util.NotificationsSkippedTotal.WithLabelValues("no_contact").Inc()
		return nil
	}

	// The payment is already persisted, so the unexcluded balance is
	// the balance after it.
	summary, err := n.balances.Compute(ctx, customer.ID, Exclusion{})
	if err != nil {
		return fmt.Errorf("failed to compute balance: %w", err)
	}

	after := summary.Balance
	before := after + payment.Amount

	if before <= 0 || before == after {
		util.NotificationsSkippedTotal.WithLabelValues("no_debt_change").Inc()
		return nil
	}

	text := n.composer.PaymentReceived(customer.Name, before, payment.Amount, after)
	n.send(ctx, customer, text, models.NotificationKindPayment, payment.ID)
	return nil
}

// resolvePaymentCustomer finds the owning customer: the direct
// reference wins, then the ledger-entry link, then the sale link.
// Returns 0 when nothing resolves.
func (n *Notifier) resolvePaymentCustomer(ctx context.Context, payment models.Payment) (int64, error) {
	if payment.CustomerID != nil && *payment.CustomerID != 0 {
		return *payment.CustomerID, nil
	}

	if payment.LedgerSaleID != nil && *payment.LedgerSaleID != 0 {
		entry, err := n.store.GetLedgerSaleByID(ctx, *payment.LedgerSaleID)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch ledger sale %d: %w", *payment.LedgerSaleID, err)
		}
		if entry != nil && entry.CustomerID != 0 {
			return entry.CustomerID, nil
		}
	}

	if payment.SaleID != nil && *payment.SaleID != 0 {
		sale, err := n.store.GetSaleByID(ctx, *payment.SaleID)
		if err != nil {
			return 0, fmt.Errorf("failed to fetch sale %d: %w", *payment.SaleID, err)
		}
		if sale != nil && sale.CustomerID != 0 {
			return sale.CustomerID, nil
		}
	}

	return 0, nil
}

// send delivers the message and mirrors it to the audit stream. A
// transport failure is logged but does not fail the row: the cursor
// still advances, trading a lost message for liveness.
func (n *Notifier) send(ctx context.Context, customer *models.Customer, text, kind string, sourceID int64) bool {
	if err := n.sender.Send(ctx, *customer.Phone, text); err != nil {
		util.NotificationSendFailures.Inc()
		n.logger.Error("Failed to send notification",
			zap.String("kind", kind),
			zap.Int64("customer_id", customer.ID),
			zap.Error(err))
		return false
	}

	util.NotificationsSentTotal.WithLabelValues(kind).Inc()
	n.logger.Info("Notification sent",
		zap.String("kind", kind),
		zap.Int64("customer_id", customer.ID),
		zap.Int64("source_id", sourceID))

	if n.publisher != nil {
		event := &models.NotificationSentEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeNotificationSent,
				Timestamp: time.Now(),
			},
			CustomerID: customer.ID,
			Kind:       kind,
			SourceID:   sourceID,
		}
		if err := n.publisher.PublishNotificationSent(ctx, event); err != nil {
			n.logger.Error("Failed to publish NotificationSent event", zap.Error(err))
		}
	}
	return true
}
