package broker

import (
	"context"
	"fmt"

	"sales-notifier/internal/models"
)

// EventPublisher mirrors outbound notifications to Kafka for auditing.
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishNotificationSent publishes a NotificationSent event
func (ep *EventPublisher) PublishNotificationSent(ctx context.Context, event *models.NotificationSentEvent) error {
	key := fmt.Sprintf("customer-%d", event.CustomerID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishReminderBatch publishes a ReminderBatchCompleted event
func (ep *EventPublisher) PublishReminderBatch(ctx context.Context, event *models.ReminderBatchEvent) error {
	return ep.producer.PublishEvent(ctx, "reminder-batch", event)
}
