package migration

import (
	"github.com/landriskai/landrisk/internal/config"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			// Versioned migrations are written for postgres; other
			// dialects (local sqlite runs) take the gorm schema.
			return conn.AutoMigrate(
				&orderdomain.Order{},
				&reportdomain.Report{},
				&searchcachedomain.Entry{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
