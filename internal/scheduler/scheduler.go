package scheduler

import (
	"context"
	"time"

	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jobTimeout = 2 * time.Minute

// Scheduler runs the housekeeping jobs: reclaiming expired search-cache rows
// and blanking personally identifying order fields past the retention
// horizon. Neither job is needed for correctness, lookups already ignore
// expired entries.
type Scheduler struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	clock     clock.Clock
	cache     searchcachedomain.Service
	orderRepo orderdomain.Repository

	stop chan struct{}
	done chan struct{}
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	Cache     searchcachedomain.Service
	OrderRepo orderdomain.Repository
}

func New(p Params) *Scheduler {
	return &Scheduler{
		db:        p.DB,
		log:       p.Log.Named("scheduler"),
		cfg:       p.Cfg,
		clock:     p.Clock,
		cache:     p.Cache,
		orderRepo: p.OrderRepo,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	go s.loop()
}

func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) loop() {
	defer close(s.done)

	interval := time.Duration(s.cfg.Retention.SweepIntervalMin) * time.Minute
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce executes every housekeeping job a single time.
func (s *Scheduler) RunOnce(parent context.Context) {
	s.runJob(parent, "cache_sweep", func(ctx context.Context) error {
		_, err := s.cache.SweepExpired(ctx)
		return err
	})
	s.runJob(parent, "retention_purge", func(ctx context.Context) error {
		cutoff := s.clock.Now().AddDate(0, 0, -s.cfg.Retention.DataRetentionDays)
		purged, err := s.orderRepo.PurgeIdentifying(ctx, s.db, cutoff)
		if err != nil {
			return err
		}
		if purged > 0 {
			s.log.Info("identifying fields purged", zap.Int64("orders", purged))
		}
		return nil
	})
}

func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(parent, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := fn(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	s.log.Debug("job finished",
		zap.String("job", name),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
}
