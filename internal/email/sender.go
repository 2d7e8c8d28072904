package email

import "context"

// Sender provides a testable abstraction over SES delivery.
type Sender interface {
	Send(ctx context.Context, recipient string, msg Message) error
}
