package email

import (
	"fmt"
	"strings"

	"github.com/codr1/Courtside/internal/notify"
	"github.com/codr1/Courtside/internal/payments"
)

type Message struct {
	Subject string
	Body    string
}

var methodLabels = map[payments.Method]string{
	payments.MethodCash:         "Cash",
	payments.MethodBankTransfer: "Bank transfer",
	payments.MethodGCash:        "GCash",
	payments.MethodCoins:        "Club coins",
}

// BuildReceipt renders the receipt for a settled or recorded payment. The
// second return is false for events that do not produce a receipt.
func BuildReceipt(event notify.Event, p payments.Payment, memberName string) (Message, bool) {
	var headline string
	switch event {
	case notify.EventPaymentApproved:
		headline = "Your payment has been approved"
	case notify.EventPaymentCompleted:
		headline = "Your payment has been received"
	case notify.EventPaymentRecorded:
		headline = "Your payment has been recorded"
	default:
		return Message{}, false
	}

	name := strings.TrimSpace(memberName)
	if name == "" {
		name = "member"
	}
	method, ok := methodLabels[p.PaymentMethod]
	if !ok {
		method = string(p.PaymentMethod)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n%s.\n\n", name, headline)
	fmt.Fprintf(&b, "Reference: %s\n", p.ReferenceNumber)
	fmt.Fprintf(&b, "Amount: PHP %s\n", p.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Method: %s\n", method)
	if date := p.Metadata.CourtUsageDate; date != "" {
		fmt.Fprintf(&b, "Court date: %s\n", date)
	}
	if p.PaymentDate != nil {
		fmt.Fprintf(&b, "Paid on: %s\n", p.PaymentDate.UTC().Format("Jan 2, 2006 15:04 MST"))
	}
	if breakdown := p.Metadata.FeeBreakdown; breakdown != nil && breakdown.Formula != "" {
		fmt.Fprintf(&b, "Fee: %s\n", breakdown.Formula)
	}
	b.WriteString("\nThank you for playing with us.\n")

	return Message{
		Subject: fmt.Sprintf("Payment receipt %s", p.ReferenceNumber),
		Body:    b.String(),
	}, true
}
