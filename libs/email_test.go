package libs

import (
	"testing"

	"shopwave/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatINR(t *testing.T) {
	tests := map[string]string{
		"0":         "₹0.00",
		"999":       "₹999.00",
		"1582":      "₹1,582.00",
		"123456.5":  "₹1,23,456.50",
		"12345678":  "₹1,23,45,678.00",
		"-2500.256": "-₹2,500.26",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatINR(decimal.RequireFromString(in)), in)
	}
}

func TestOrderConfirmationHTML(t *testing.T) {
	order := &models.Order{
		OrderNumber: "ORD-1700000000000-ab12cd34",
		Total:       decimal.NewFromInt(1582),
		CoinsEarned: 15,
		Items: []models.OrderItem{
			{Name: "Neem <Oil>", Quantity: 2, LineTotal: decimal.NewFromInt(500)},
		},
	}

	body := OrderConfirmationHTML(order)

	assert.Contains(t, body, "ORD-1700000000000-ab12cd34")
	assert.Contains(t, body, "Neem &lt;Oil&gt;")
	assert.Contains(t, body, "₹1,582.00")
	assert.Contains(t, body, "15 ShopWave coins")
}

func TestNewMailerRequiresCredentials(t *testing.T) {
	_, err := NewMailer(SMTPConfig{Host: "smtp.example.com"})
	assert.Error(t, err)

	m, err := NewMailer(SMTPConfig{Host: "smtp.example.com", User: "u", Pass: "p"})
	assert.NoError(t, err)
	assert.Equal(t, "u", m.from)
}
