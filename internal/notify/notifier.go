package notify

import "context"

// Notifier delivers the report link to the customer. Fire-and-forget: the
// pipeline logs failures but a lost notification never fails a generation.
type Notifier interface {
	SendReportLink(ctx context.Context, whatsappNumber, message string) error
}

type NoOpNotifier struct{}

func (NoOpNotifier) SendReportLink(ctx context.Context, whatsappNumber, message string) error {
	return nil
}
