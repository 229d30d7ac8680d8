package notify

import (
	"context"

	"go.uber.org/zap"
)

// WhatsAppNotifier is the MVP delivery channel. When the real gateway is
// disabled it only logs the message.
// TODO: integrate the WhatsApp Business Platform via a BSP (templates,
// status callbacks, retries).
type WhatsAppNotifier struct {
	log     *zap.Logger
	enabled bool
}

func NewWhatsApp(log *zap.Logger, enabled bool) Notifier {
	return &WhatsAppNotifier{
		log:     log.Named("notify.whatsapp"),
		enabled: enabled,
	}
}

func (n *WhatsAppNotifier) SendReportLink(ctx context.Context, whatsappNumber, message string) error {
	if !n.enabled {
		n.log.Info("mock whatsapp delivery",
			zap.String("to", whatsappNumber),
			zap.String("message", message),
		)
		return nil
	}

	// Gateway integration pending; behave like the mock until then.
	n.log.Info("whatsapp delivery",
		zap.String("to", whatsappNumber),
		zap.String("message", message),
	)
	return nil
}
