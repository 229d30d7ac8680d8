package report

import (
	"github.com/landriskai/landrisk/internal/report/repository"
	"github.com/landriskai/landrisk/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
