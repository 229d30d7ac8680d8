package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"github.com/landriskai/landrisk/internal/notify"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	orderrepository "github.com/landriskai/landrisk/internal/order/repository"
	orderservice "github.com/landriskai/landrisk/internal/order/service"
	"github.com/landriskai/landrisk/internal/providers/pdf"
	"github.com/landriskai/landrisk/internal/ratelimit"
	"github.com/landriskai/landrisk/internal/reference"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
	reportrepository "github.com/landriskai/landrisk/internal/report/repository"
	reportservice "github.com/landriskai/landrisk/internal/report/service"
	"github.com/landriskai/landrisk/internal/risk"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	searchcacherepository "github.com/landriskai/landrisk/internal/searchcache/repository"
	searchcacheservice "github.com/landriskai/landrisk/internal/searchcache/service"
	pkgdb "github.com/landriskai/landrisk/pkg/db"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubRenderer struct{}

func (stubRenderer) GenerateReport(ctx context.Context, data pdf.ReportData) (io.Reader, error) {
	return bytes.NewReader([]byte("%PDF-1.4 stub " + data.ReportID)), nil
}

func newAPITestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := pkgdb.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&orderdomain.Order{},
		&reportdomain.Report{},
		&searchcachedomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()
	cfg := config.Config{
		BaseURL:         "http://localhost:8080",
		ReferenceRegion: "BR",
		Pricing:         config.PricingConfig{FullPricePaise: 2500, DiscountedPricePaise: 500},
		Payment:         config.PaymentConfig{ExpiryMinutes: 15},
		Cache:           config.CacheConfig{TTLDays: 7},
		Artifact:        config.ArtifactConfig{Dir: t.TempDir(), TTLDays: 7},
	}

	orders := orderservice.New(orderservice.Params{
		DB: dbConn, Log: log, Cfg: cfg, Clock: clk, GenID: node,
		Repo: orderrepository.Provide(),
	})
	cache := searchcacheservice.New(searchcacheservice.Params{
		DB: dbConn, Log: log, Cfg: cfg, Clock: clk, GenID: node,
		Repo: searchcacherepository.Provide(),
	})
	reports := reportservice.New(reportservice.Params{
		DB:        dbConn,
		Log:       log,
		Cfg:       cfg,
		Clock:     clk,
		GenID:     node,
		Repo:      reportrepository.Provide(),
		Orders:    orders,
		Scorer:    risk.NewEngine(),
		Allocator: reference.NewAllocator(log, clk, cfg.ReferenceRegion),
		Cache:     cache,
		Notifier:  notify.NoOpNotifier{},
		PDF:       stubRenderer{},
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{
		engine:  engine,
		log:     log,
		cfg:     cfg,
		orders:  orders,
		reports: reports,
		cache:   cache,
		limiter: ratelimit.New(0, clk),
		metrics: &HTTPMetrics{
			RateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{Name: "api_test_rejections"}),
		},
	}
	srv.RegisterAPIRoutes()
	return engine
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	parsed := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &parsed))
	}
	return rec, parsed
}

func createTestOrder(t *testing.T, r *gin.Engine) string {
	t.Helper()

	rec, body := postJSON(t, r, "/api/orders", map[string]any{
		"district":       "Patna",
		"circle":         "Sadar",
		"village":        "Rampur",
		"khata":          "123",
		"khesra":         "45A",
		"ownerName":      "Ramesh Kumar",
		"plotArea":       "2 acres",
		"emailAddress":   "ramesh@example.com",
		"whatsappNumber": "+919800000001",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	orderID, _ := body["orderId"].(string)
	require.NotEmpty(t, orderID)
	return orderID
}

func TestMockPayDeliversReport(t *testing.T) {
	r := newAPITestServer(t)
	orderID := createTestOrder(t, r)

	rec, body := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", map[string]any{
		"paymentRef": "TXN_HAPPY",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DELIVERED", body["status"])
	require.NotEmpty(t, body["reportId"])
	require.Regexp(t, `^LR-BR-`, body["referenceNo"])
	require.Contains(t, body["downloadUrl"], "/download")
}

func TestMockPayRetryReturnsSameReport(t *testing.T) {
	r := newAPITestServer(t)
	orderID := createTestOrder(t, r)

	rec, first := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", map[string]any{
		"paymentRef": "TXN_RETRY",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// A gateway retry replays the same callback after delivery.
	rec, second := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", map[string]any{
		"paymentRef": "TXN_RETRY",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "DELIVERED", second["status"])
	require.Equal(t, first["reportId"], second["reportId"])
	require.Equal(t, first["referenceNo"], second["referenceNo"])

	// A retry without a body is just as idempotent.
	rec, third := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, first["reportId"], third["reportId"])
}

func TestMockPayRejectsConflictingReferenceAfterDelivery(t *testing.T) {
	r := newAPITestServer(t)
	orderID := createTestOrder(t, r)

	rec, _ := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", map[string]any{
		"paymentRef": "TXN_ORIGINAL",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body := postJSON(t, r, "/api/orders/"+orderID+"/mock-pay", map[string]any{
		"paymentRef": "TXN_SOMETHING_ELSE",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "invalid_order_transition", body["error"])
}
