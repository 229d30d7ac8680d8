package ratelimit

import (
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.limit",
	fx.Provide(func(cfg config.Config, clk clock.Clock) *Limiter {
		return New(cfg.Security.MaxRequestsPerMinute, clk)
	}),
)
