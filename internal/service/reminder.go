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

// ReminderStore lists the customers eligible for reminders.
type ReminderStore interface {
	ListCustomersWithContact(ctx context.Context) ([]models.Customer, error)
}

// ReminderBatchPublisher mirrors reminder runs to the event stream.
type ReminderBatchPublisher interface {
	AuditPublisher
	PublishReminderBatch(ctx context.Context, event *models.ReminderBatchEvent) error
}

// ReminderService sends the periodic debt reminders. Each run scans
// every customer with a contact address and messages those carrying a
// positive balance. Runs are intentionally not deduplicated; the cron
// schedule owns the cadence.
type ReminderService struct {
	store     ReminderStore
	balances  Balances
	composer  *Composer
	sender    messenger.Sender
	publisher ReminderBatchPublisher
	logger    *zap.Logger
}

// NewReminderService creates a reminder service. publisher may be nil.
func NewReminderService(
	store ReminderStore,
	balances Balances,
	composer *Composer,
	sender messenger.Sender,
	publisher ReminderBatchPublisher,
) *ReminderService {
	return &ReminderService{
		store:     store,
		balances:  balances,
		composer:  composer,
		sender:    sender,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// SendDebtReminders runs one reminder batch and returns the number of
// reminders sent. Per-customer failures are logged and skipped so one
// bad row cannot abort the batch.
func (s *ReminderService) SendDebtReminders(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "ReminderService.SendDebtReminders")
	defer span.End()

	customers, err := s.store.ListCustomersWithContact(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list customers: %w", err)
	}

	sent := 0
	for _, customer := range customers {
		summary, err := s.balances.Compute(ctx, customer.ID, Exclusion{})
		if err != nil {
			s.logger.Error("Failed to compute balance for reminder",
				zap.Int64("customer_id", customer.ID),
				zap.Error(err))
			continue
		}

		if summary.Balance <= 0 {
			continue
		}

		text := s.composer.Reminder(customer.Name, summary.Balance)
		if err := s.sender.Send(ctx, *customer.Phone, text); err != nil {
			util.NotificationSendFailures.Inc()
			s.logger.Error("Failed to send reminder",
				zap.Int64("customer_id", customer.ID),
				zap.Error(err))
			continue
		}

		util.RemindersSentTotal.Inc()
		util.NotificationsSentTotal.WithLabelValues(models.NotificationKindReminder).Inc()
		sent++
	}

	s.logger.Info("Reminder batch completed",
		zap.Int("customers", len(customers)),
		zap.Int("sent", sent))

	if s.publisher != nil {
		event := &models.ReminderBatchEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeReminderBatch,
				Timestamp: time.Now(),
			},
			CustomersScanned: len(customers),
			RemindersSent:    sent,
		}
		if err := s.publisher.PublishReminderBatch(ctx, event); err != nil {
			s.logger.Error("Failed to publish ReminderBatch event", zap.Error(err))
		}
	}

	return sent, nil
}
