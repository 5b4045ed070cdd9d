package libs

import (
	"errors"
	"fmt"
	"html"
	"strings"

	"shopwave/models"

	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(cfg SMTPConfig) (*Mailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Pass == "" {
		return nil, errors.New("SMTP configuration missing")
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	return &Mailer{dialer: gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Pass), from: from}, nil
}

func (m *Mailer) SendOrderConfirmation(order *models.Order) error {
	if order.Email == "" {
		return errors.New("order has no email address")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", order.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s - ShopWave", order.OrderNumber))
	msg.SetBody("text/html", OrderConfirmationHTML(order))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func OrderConfirmationHTML(order *models.Order) string {
	var rows strings.Builder
	for _, it := range order.Items {
		fmt.Fprintf(&rows, `<tr><td>%s</td><td style="text-align:center">%d</td><td style="text-align:right">%s</td></tr>`,
			html.EscapeString(it.Name), it.Quantity, FormatINR(it.LineTotal))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .logo { font-size: 24px; font-weight: bold; color: #0f766e; text-align: center; }
        table { width: 100%%; border-collapse: collapse; margin: 20px 0; }
        td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo">ShopWave</div>
        <h2 style="color: #333;">Order Confirmation</h2>
        <p>Thank you for your order! Your order number is <strong>%s</strong>.</p>
        <table>%s</table>
        <p>Subtotal: %s<br>Discount: -%s<br>Shipping: %s<br>Platform fee: %s</p>
        <p><strong>Total: %s</strong></p>
        <p>You earned %d ShopWave coins with this order.</p>
        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
`,
		html.EscapeString(order.OrderNumber), rows.String(),
		FormatINR(order.Subtotal), FormatINR(order.TotalDiscount), FormatINR(order.TotalShipping),
		FormatINR(order.PlatformFee), FormatINR(order.Total), order.CoinsEarned)
}

// FormatINR renders an amount with Indian digit grouping, e.g. ₹1,23,456.50.
func FormatINR(amount decimal.Decimal) string {
	s := amount.Abs().StringFixed(2)
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	if len(intPart) > 3 {
		head, tail := intPart[:len(intPart)-3], intPart[len(intPart)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		intPart = strings.Join(groups, ",") + "," + tail
	}

	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + "₹" + intPart + frac
}
