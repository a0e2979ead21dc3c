package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$0", formatCurrency(0))
	assert.Equal(t, "$999", formatCurrency(999))
	assert.Equal(t, "$1,000", formatCurrency(1000))
	assert.Equal(t, "$50,000", formatCurrency(50000))
	assert.Equal(t, "$1,234,567", formatCurrency(1234567))
	assert.Equal(t, "-$1,500", formatCurrency(-1500))
}

func TestCreditSaleMessage(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.CreditSale("Ana", CreditDetails{
		PurchaseValue:   50000,
		Installment:     0,
		PurchaseBalance: 50000,
		PriorDebt:       0,
	})

	assert.True(t, strings.HasPrefix(text, "*GRANJA SAN JOSE*"))
	assert.Contains(t, text, "Dear Ana")
	assert.Contains(t, text, "- Quantity: not specified")
	assert.Contains(t, text, "- Purchase value: $50,000")
	assert.Contains(t, text, "- Paid on this purchase: $0")
	assert.Contains(t, text, "- Balance on this purchase: $50,000")
	assert.Contains(t, text, "- Previous debt: $0")
	assert.Contains(t, text, "- New debt: $50,000")
	assert.Contains(t, text, "- Total debt: $50,000")
}

func TestCreditSaleMessageWithQuantityAndPriorDebt(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.CreditSale("Luis", CreditDetails{
		Quantity:        float64Ptr(12.5),
		PurchaseValue:   80000,
		Installment:     30000,
		PurchaseBalance: 80000,
		PriorDebt:       20000,
	})

	assert.Contains(t, text, "- Quantity: 12.5 kg")
	assert.Contains(t, text, "- Previous debt: $20,000")
	assert.Contains(t, text, "- Total debt: $100,000")
}

func TestReceiptMessage(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.Receipt("Ana", float64Ptr(3), 30000)

	assert.Contains(t, text, "paid in full")
	assert.Contains(t, text, "- Quantity: 3 kg")
	assert.Contains(t, text, "- Amount paid: $30,000")
	assert.NotContains(t, text, "debt")
}

func TestPaymentReceivedPartial(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.PaymentReceived("Ana", 30000, 20000, 10000)

	assert.Contains(t, text, "- Previous debt: $30,000")
	assert.Contains(t, text, "- Payment received: $20,000")
	assert.Contains(t, text, "- Outstanding balance: $10,000")
	assert.Contains(t, text, "keeping your payments up to date")
	assert.NotContains(t, text, "fully settled")
}

func TestPaymentReceivedSettled(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.PaymentReceived("Ana", 20000, 20000, 0)

	assert.Contains(t, text, "- Outstanding balance: $0")
	assert.Contains(t, text, "fully settled")
}

func TestReminderMessage(t *testing.T) {
	c := NewComposer("GRANJA SAN JOSE")

	text := c.Reminder("Ana", 45000)

	assert.Contains(t, text, "payment reminder")
	assert.Contains(t, text, "$45,000")
	assert.Contains(t, text, "1st and 16th of each month")
}
