package models

import "time"

// Event types mirrored to Kafka for auditing
const (
	EventTypeNotificationSent = "NOTIFICATION_SENT"
	EventTypeReminderBatch    = "REMINDER_BATCH_COMPLETED"
)

// Notification kinds
const (
	NotificationKindLedgerSale = "ledger_sale"
	NotificationKindSale       = "sale"
	NotificationKindPayment    = "payment"
	NotificationKindReminder   = "reminder"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// NotificationSentEvent is published after every outbound message.
type NotificationSentEvent struct {
	BaseEvent
	CustomerID int64  `json:"customer_id"`
	Kind       string `json:"kind"`
	SourceID   int64  `json:"source_id"`
	Balance    int64  `json:"balance"`
}

// ReminderBatchEvent is published after a reminder run completes.
type ReminderBatchEvent struct {
	BaseEvent
	CustomersScanned int `json:"customers_scanned"`
	RemindersSent    int `json:"reminders_sent"`
}
