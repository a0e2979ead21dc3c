package service

import (
	"fmt"
	"strconv"
	"strings"
)

// Composer builds outbound message texts. All methods are pure.
type Composer struct {
	businessName string
}

// NewComposer creates a composer with the business header used on
// every message.
func NewComposer(businessName string) *Composer {
	return &Composer{businessName: businessName}
}

// CreditDetails carries the figures of a credit-sale message.
type CreditDetails struct {
	Quantity        *float64
	PurchaseValue   int64
	Installment     int64
	PurchaseBalance int64
	PriorDebt       int64
}

// CreditSale builds the debt-summary message for an open-credit
// purchase. The total debt line is prior debt plus this purchase's
// balance, matching how the figures are computed upstream.
func (c *Composer) CreditSale(customerName string, d CreditDetails) string {
	purchaseValue := clampAmount(d.PurchaseValue)
	installment := clampAmount(d.Installment)
	purchaseBalance := clampAmount(d.PurchaseBalance)
	priorDebt := clampAmount(d.PriorDebt)
	totalDebt := priorDebt + purchaseBalance

	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", c.businessName)
	fmt.Fprintf(&b, "Dear %s, thank you for your purchase.\n\n", customerName)
	b.WriteString("We have recorded your credit purchase:\n")
	fmt.Fprintf(&b, "- Quantity: %s\n", quantityLine(d.Quantity))
	fmt.Fprintf(&b, "- Purchase value: %s\n", formatCurrency(purchaseValue))
	fmt.Fprintf(&b, "- Paid on this purchase: %s\n", formatCurrency(installment))
	fmt.Fprintf(&b, "- Balance on this purchase: %s\n\n", formatCurrency(purchaseBalance))
	b.WriteString("Account summary:\n")
	fmt.Fprintf(&b, "- Previous debt: %s\n", formatCurrency(priorDebt))
	fmt.Fprintf(&b, "- New debt: %s\n", formatCurrency(purchaseBalance))
	fmt.Fprintf(&b, "- Total debt: %s\n\n", formatCurrency(totalDebt))
	b.WriteString("Thank you for your trust.")
	return b.String()
}

// Receipt builds the simple message for a purchase paid in full.
func (c *Composer) Receipt(customerName string, quantity *float64, value int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", c.businessName)
	fmt.Fprintf(&b, "Dear %s, thank you for your purchase.\n\n", customerName)
	b.WriteString("We have recorded your purchase paid in full:\n")
	fmt.Fprintf(&b, "- Quantity: %s\n", quantityLine(quantity))
	fmt.Fprintf(&b, "- Amount paid: %s\n\n", formatCurrency(clampAmount(value)))
	b.WriteString("We appreciate your preference.")
	return b.String()
}

// PaymentReceived builds the message for a standalone payment. When
// the remaining balance reaches zero the settled wording is used.
func (c *Composer) PaymentReceived(customerName string, before, amount, after int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", c.businessName)
	if after <= 0 {
		fmt.Fprintf(&b, "Dear %s, we have recorded your payment.\n\n", customerName)
	} else {
		fmt.Fprintf(&b, "Dear %s, we have recorded your installment.\n\n", customerName)
	}
	b.WriteString("Details:\n")
	fmt.Fprintf(&b, "- Previous debt: %s\n", formatCurrency(clampAmount(before)))
	fmt.Fprintf(&b, "- Payment received: %s\n", formatCurrency(clampAmount(amount)))
	fmt.Fprintf(&b, "- Outstanding balance: %s\n\n", formatCurrency(clampAmount(after)))
	if after <= 0 {
		b.WriteString("Your debt is now fully settled. Thank you for your punctuality and trust.")
	} else {
		b.WriteString("Thank you for keeping your payments up to date.")
	}
	return b.String()
}

// Reminder builds the periodic debt reminder.
func (c *Composer) Reminder(customerName string, balance int64) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", c.businessName)
	fmt.Fprintf(&b, "Dear %s, this is a friendly payment reminder.\n\n", customerName)
	fmt.Fprintf(&b, "Your current outstanding balance is: %s\n\n", formatCurrency(clampAmount(balance)))
	b.WriteString("We appreciate your prompt attention.\n\n")
	b.WriteString("This is an automated message. While you carry an outstanding balance, " +
		"you will receive a reminder on the 1st and 16th of each month at 10:00 a.m.")
	return b.String()
}

func quantityLine(quantity *float64) string {
	if quantity == nil {
		return "not specified"
	}
	return strconv.FormatFloat(*quantity, 'f', -1, 64) + " kg"
}

// formatCurrency renders "$12,345" with comma thousands grouping.
func formatCurrency(value int64) string {
	digits := strconv.FormatInt(value, 10)
	negative := strings.HasPrefix(digits, "-")
	if negative {
		digits = digits[1:]
	}

	var b strings.Builder
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
	}
	for i := pre; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}

	if negative {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

func clampAmount(value int64) int64 {
	if value < 0 {
		return 0
	}
	return value
}
