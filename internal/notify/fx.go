package notify

import (
	"github.com/landriskai/landrisk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("notify",
	fx.Provide(func(log *zap.Logger, cfg config.Config) Notifier {
		return NewWhatsApp(log, cfg.Notify.WhatsAppEnabled)
	}),
)
