package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/landriskai/landrisk/internal/config"
	"github.com/landriskai/landrisk/internal/notify"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/internal/providers/pdf"
	"github.com/landriskai/landrisk/internal/ratelimit"
	"github.com/landriskai/landrisk/internal/reference"
	"github.com/landriskai/landrisk/internal/report"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
	"github.com/landriskai/landrisk/internal/risk"
	"github.com/landriskai/landrisk/internal/searchcache"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/landriskai/landrisk/internal/order"
)

var Module = fx.Module("http.server",
	risk.Module,
	reference.Module,
	order.Module,
	report.Module,
	searchcache.Module,
	ratelimit.Module,
	notify.Module,
	pdf.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

type Server struct {
	engine  *gin.Engine
	log     *zap.Logger
	cfg     config.Config
	orders  orderdomain.Service
	reports reportdomain.Service
	cache   searchcachedomain.Service
	limiter *ratelimit.Limiter
	metrics *HTTPMetrics
}

type Params struct {
	fx.In

	Engine  *gin.Engine
	Log     *zap.Logger
	Cfg     config.Config
	Orders  orderdomain.Service
	Reports reportdomain.Service
	Cache   searchcachedomain.Service
	Limiter *ratelimit.Limiter
	Metrics *HTTPMetrics
}

func NewEngine(log *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func NewServer(p Params) *Server {
	s := &Server{
		engine:  p.Engine,
		log:     p.Log.Named("http.server"),
		cfg:     p.Cfg,
		orders:  p.Orders,
		reports: p.Reports,
		cache:   p.Cache,
		limiter: p.Limiter,
		metrics: p.Metrics,
	}
	s.RegisterAPIRoutes()
	return s
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")
	api.Use(s.RateLimit())

	orders := api.Group("/orders")
	orders.POST("", s.createOrder)
	orders.POST("/:orderId/mock-pay", s.mockPay)

	api.GET("/cache/check", s.checkCache)

	// :ref accepts the numeric report id or the LR-... reference number.
	reports := api.Group("/reports")
	reports.GET("/:ref", s.getReportSummary)
	reports.GET("/:ref/download", s.downloadReport)
	reports.GET("/:ref/verify", s.verifyReport)
	reports.POST("/:ref/rating", s.rateReport)
}

func run(lc fx.Lifecycle, s *Server, log *zap.Logger, cfg config.Config) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
