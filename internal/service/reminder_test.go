package service

import (
	"context"
	"testing"

	"sales-notifier/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDebtRemindersSkipsSettledCustomers(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = models.Customer{ID: 1, Name: "Ana", Phone: strPtr("3001234567")}
	store.customers[2] = models.Customer{ID: 2, Name: "Luis", Phone: strPtr("3107654321")}
	store.customers[3] = models.Customer{ID: 3, Name: "Sin Telefono"}

	// Ana owes, Luis is settled.
	store.sales = []models.Sale{
		{ID: 1, CustomerID: 1, Total: 45000, Status: "credit"},
		{ID: 2, CustomerID: 2, Total: 20000, Status: "paid"},
	}
	store.payments = []models.Payment{
		{ID: 1, CustomerID: int64Ptr(2), SaleID: int64Ptr(2), Amount: 20000},
	}

	sender := &fakeSender{}
	balances := NewBalanceService(store)
	reminders := NewReminderService(store, balances, NewComposer("GRANJA SAN JOSE"), sender, nil)

	sent, err := reminders.SendDebtReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	messages := sender.messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "3001234567", messages[0].address)
	assert.Contains(t, messages[0].text, "$45,000")
	assert.Contains(t, messages[0].text, "payment reminder")
}

func TestSendDebtRemindersSendFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeStore()
	store.customers[1] = models.Customer{ID: 1, Name: "Ana", Phone: strPtr("3001234567")}
	store.sales = []models.Sale{
		{ID: 1, CustomerID: 1, Total: 45000, Status: "credit"},
	}

	sender := &fakeSender{fail: true}
	balances := NewBalanceService(store)
	reminders := NewReminderService(store, balances, NewComposer("GRANJA SAN JOSE"), sender, nil)

	sent, err := reminders.SendDebtReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
