package searchcache

import (
	"github.com/landriskai/landrisk/internal/searchcache/repository"
	"github.com/landriskai/landrisk/internal/searchcache/service"
	"go.uber.org/fx"
)

var Module = fx.Module("searchcache.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
