package reference

import (
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("reference.allocator",
	fx.Provide(func(log *zap.Logger, clk clock.Clock, cfg config.Config) Allocator {
		return NewAllocator(log, clk, cfg.ReferenceRegion)
	}),
)
