package order

import (
	"github.com/landriskai/landrisk/internal/order/repository"
	"github.com/landriskai/landrisk/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
