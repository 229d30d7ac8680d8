package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	orderrepository "github.com/landriskai/landrisk/internal/order/repository"
	"github.com/landriskai/landrisk/internal/risk"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	searchcacherepository "github.com/landriskai/landrisk/internal/searchcache/repository"
	searchcacheservice "github.com/landriskai/landrisk/internal/searchcache/service"
	pkgdb "github.com/landriskai/landrisk/pkg/db"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupScheduler(t *testing.T) (*Scheduler, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	dbConn, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(&orderdomain.Order{}, &searchcachedomain.Entry{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	cfg := config.Config{
		Cache:     config.CacheConfig{TTLDays: 7},
		Retention: config.RetentionConfig{DataRetentionDays: 90, SweepIntervalMin: 60},
	}

	cache := searchcacheservice.New(searchcacheservice.Params{
		DB: dbConn, Log: zap.NewNop(), Cfg: cfg, Clock: clk, GenID: node,
		Repo: searchcacherepository.Provide(),
	})

	s := New(Params{
		DB:        dbConn,
		Log:       zap.NewNop(),
		Cfg:       cfg,
		Clock:     clk,
		Cache:     cache,
		OrderRepo: orderrepository.Provide(),
	})
	return s, dbConn, clk
}

func TestRunOncePurgesIdentifyingFieldsPastRetention(t *testing.T) {
	s, dbConn, clk := setupScheduler(t)
	ctx := context.Background()

	old := orderdomain.Order{
		ID:             snowflake.ID(1),
		District:       "Patna",
		Circle:         "Sadar",
		Village:        "Rampur",
		Khata:          "123",
		Khesra:         "45",
		OwnerName:      "Ramesh Kumar",
		EmailAddress:   "ramesh@example.com",
		WhatsappNumber: "+919800000001",
		AmountPaise:    2500,
		Status:         orderdomain.StatusDelivered,
		CreatedAt:      clk.Now().AddDate(0, 0, -120),
		UpdatedAt:      clk.Now().AddDate(0, 0, -120),
	}
	recent := old
	recent.ID = snowflake.ID(2)
	recent.CreatedAt = clk.Now().AddDate(0, 0, -10)
	recent.UpdatedAt = recent.CreatedAt
	require.NoError(t, dbConn.Create(&old).Error)
	require.NoError(t, dbConn.Create(&recent).Error)

	s.RunOnce(ctx)

	var purged orderdomain.Order
	require.NoError(t, dbConn.Take(&purged, "id = ?", old.ID).Error)
	require.Empty(t, purged.OwnerName)
	require.Empty(t, purged.EmailAddress)
	require.Empty(t, purged.WhatsappNumber)
	// The parcel itself is retained for audit.
	require.Equal(t, "123", purged.Khata)

	var kept orderdomain.Order
	require.NoError(t, dbConn.Take(&kept, "id = ?", recent.ID).Error)
	require.Equal(t, "Ramesh Kumar", kept.OwnerName)
}

func TestRunOnceSweepsExpiredCacheEntries(t *testing.T) {
	s, dbConn, clk := setupScheduler(t)

	expired := searchcachedomain.Entry{
		ID:         snowflake.ID(1),
		District:   "Patna",
		Circle:     "Sadar",
		Village:    "Rampur",
		Khata:      "123",
		Khesra:     "45",
		SearchHash: searchcacheservice.KeyHash("Patna", "123", "45"),
		RiskBand:   string(risk.BandGreen),
		RiskScore:  15,
		ExpiresAt:  clk.Now().Add(-time.Hour),
	}
	live := searchcachedomain.Entry{
		ID:         snowflake.ID(2),
		District:   "Patna",
		Circle:     "Sadar",
		Village:    "Rampur",
		Khata:      "123",
		Khesra:     "46",
		SearchHash: searchcacheservice.KeyHash("Patna", "123", "46"),
		RiskBand:   string(risk.BandGreen),
		RiskScore:  15,
		ExpiresAt:  clk.Now().Add(time.Hour),
	}
	require.NoError(t, dbConn.Create(&expired).Error)
	require.NoError(t, dbConn.Create(&live).Error)

	s.RunOnce(context.Background())

	var count int64
	require.NoError(t, dbConn.Model(&searchcachedomain.Entry{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var remaining searchcachedomain.Entry
	require.NoError(t, dbConn.Take(&remaining).Error)
	require.Equal(t, live.ID, remaining.ID)
}
