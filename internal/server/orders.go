package server

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	"github.com/oklog/ulid/v2"
)

var identifierPattern = regexp.MustCompile(`^[0-9A-Za-z\-/]+$`)

type createOrderRequest struct {
	District       string `json:"district" binding:"required"`
	Circle         string `json:"circle" binding:"required"`
	Village        string `json:"village" binding:"required"`
	Khata          string `json:"khata" binding:"required"`
	Khesra         string `json:"khesra" binding:"required"`
	OwnerName      string `json:"ownerName"`
	PlotArea       string `json:"plotArea"`
	EmailAddress   string `json:"emailAddress"`
	WhatsappNumber string `json:"whatsappNumber" binding:"required"`
}

type createOrderResponse struct {
	OrderID          string `json:"orderId"`
	Status           string `json:"status"`
	AmountPaise      int    `json:"amountPaise"`
	PaymentExpiresAt string `json:"paymentExpiresAt"`
	NextAction       string `json:"nextAction"`
}

func (s *Server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "district, circle, village, khata, khesra and whatsappNumber are required")
		return
	}
	if !identifierPattern.MatchString(strings.TrimSpace(req.Khata)) ||
		!identifierPattern.MatchString(strings.TrimSpace(req.Khesra)) {
		badRequest(c, "khata and khesra may only contain letters, digits, hyphen and slash")
		return
	}

	order, err := s.orders.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		District:       req.District,
		Circle:         req.Circle,
		Village:        req.Village,
		Khata:          req.Khata,
		Khesra:         req.Khesra,
		OwnerName:      req.OwnerName,
		PlotArea:       req.PlotArea,
		EmailAddress:   req.EmailAddress,
		WhatsappNumber: req.WhatsappNumber,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, createOrderResponse{
		OrderID:          order.ID.String(),
		Status:           string(order.Status),
		AmountPaise:      order.AmountPaise,
		PaymentExpiresAt: order.PaymentExpiresAt.UTC().Format(time.RFC3339),
		NextAction:       fmt.Sprintf("POST /api/orders/%s/mock-pay", order.ID),
	})
}

type mockPayRequest struct {
	PaymentRef string `json:"paymentRef"`
}

type mockPayResponse struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	ReportID    string `json:"reportId"`
	ReferenceNo string `json:"referenceNo"`
	DownloadURL string `json:"downloadUrl"`
	VerifyURL   string `json:"verifyUrl"`
}

// mockPay stands in for a payment-gateway webhook: it records the payment and
// drives the order all the way to a delivered report in one call.
func (s *Server) mockPay(c *gin.Context) {
	orderID, ok := parseSnowflake(c, c.Param("orderId"))
	if !ok {
		return
	}

	var req mockPayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "malformed request body")
			return
		}
	}
	presentedRef := strings.TrimSpace(req.PaymentRef)
	paymentRef := presentedRef
	if paymentRef == "" {
		paymentRef = fmt.Sprintf("MOCK_UPI_TXN_%s", ulid.Make())
	}

	order, err := s.orders.MarkPaid(c.Request.Context(), orderID, paymentRef)
	if errors.Is(err, orderdomain.ErrInvalidTransition) {
		// Payment callbacks get retried. Once the order has moved past PAID
		// the retry falls through to the idempotent generation path instead
		// of failing, as long as it does not present a conflicting gateway
		// reference.
		existing, getErr := s.orders.GetByID(c.Request.Context(), orderID)
		if getErr != nil {
			c.Error(getErr)
			return
		}
		pastPayment := existing.Status == orderdomain.StatusGenerating ||
			existing.Status == orderdomain.StatusDelivered
		sameRef := presentedRef == "" ||
			(existing.PaymentRef != nil && *existing.PaymentRef == presentedRef)
		if !pastPayment || !sameRef {
			c.Error(err)
			return
		}
		order = existing
	} else if err != nil {
		c.Error(err)
		return
	}

	report, err := s.reports.GenerateAndDeliver(c.Request.Context(), order.ID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, mockPayResponse{
		OrderID:     order.ID.String(),
		Status:      string(orderdomain.StatusDelivered),
		ReportID:    report.ID.String(),
		ReferenceNo: report.ReferenceNo,
		DownloadURL: reportdomain.DownloadURL(s.cfg.BaseURL, report.ID),
		VerifyURL:   reportdomain.VerifyURL(s.cfg.BaseURL, report.ID, report.VerificationCode),
	})
}

// checkCache answers the pre-payment question "has this parcel been searched
// recently, and does this requester qualify for the repeat price".
func (s *Server) checkCache(c *gin.Context) {
	district := strings.TrimSpace(c.Query("district"))
	khata := strings.TrimSpace(c.Query("khata"))
	khesra := strings.TrimSpace(c.Query("khesra"))
	if district == "" || khata == "" || khesra == "" {
		badRequest(c, "district, khata and khesra query parameters are required")
		return
	}

	result, err := s.cache.CheckEligibility(c.Request.Context(), searchcachedomain.EligibilityRequest{
		District: district,
		Circle:   strings.TrimSpace(c.Query("circle")),
		Khata:    khata,
		Khesra:   khesra,
		Email:    strings.TrimSpace(c.Query("email")),
		Whatsapp: strings.TrimSpace(c.Query("whatsapp")),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseSnowflake(c *gin.Context, raw string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(raw)
	if err != nil {
		badRequest(c, "malformed id")
		return 0, false
	}
	return id, true
}
