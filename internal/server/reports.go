package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	reportdomain "github.com/landriskai/landrisk/internal/report/domain"
)

type reportResponse struct {
	ReportID          string          `json:"reportId"`
	OrderID           string          `json:"orderId"`
	ReferenceNo       string          `json:"referenceNo"`
	RiskBand          string          `json:"riskBand"`
	RiskScore         int             `json:"riskScore"`
	DeliveryStatus    string          `json:"deliveryStatus"`
	Rating            *int            `json:"rating,omitempty"`
	GeneratedAt       string          `json:"generatedAt"`
	ArtifactExpiresAt string          `json:"artifactExpiresAt"`
	DownloadURL       string          `json:"downloadUrl"`
	Summary           json.RawMessage `json:"summary"`
}

func (s *Server) reportResponse(rep reportdomain.Report) reportResponse {
	return reportResponse{
		ReportID:          rep.ID.String(),
		OrderID:           rep.OrderID.String(),
		ReferenceNo:       rep.ReferenceNo,
		RiskBand:          rep.RiskBand,
		RiskScore:         rep.RiskScore,
		DeliveryStatus:    string(rep.DeliveryStatus),
		Rating:            rep.Rating,
		GeneratedAt:       rep.GeneratedAt.UTC().Format(time.RFC3339),
		ArtifactExpiresAt: rep.ArtifactExpiresAt.UTC().Format(time.RFC3339),
		DownloadURL:       reportdomain.DownloadURL(s.cfg.BaseURL, rep.ID),
		Summary:           json.RawMessage(rep.SummaryJSON),
	}
}

// resolveReport loads a report from the :ref path segment, which carries
// either the numeric report id or the human-shareable reference number.
func (s *Server) resolveReport(c *gin.Context) (reportdomain.Report, bool) {
	ref := strings.TrimSpace(c.Param("ref"))
	if id, err := snowflake.ParseString(ref); err == nil {
		rep, err := s.reports.GetByID(c.Request.Context(), id)
		if err != nil {
			c.Error(err)
			return reportdomain.Report{}, false
		}
		return rep, true
	}

	rep, err := s.reports.GetByReferenceNo(c.Request.Context(), ref)
	if err != nil {
		c.Error(err)
		return reportdomain.Report{}, false
	}
	return rep, true
}

func (s *Server) getReportSummary(c *gin.Context) {
	rep, ok := s.resolveReport(c)
	if !ok {
		return
	}

	ensured, err := s.reports.EnsureArtifacts(c.Request.Context(), rep.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s.reportResponse(ensured))
}

func (s *Server) downloadReport(c *gin.Context) {
	rep, ok := s.resolveReport(c)
	if !ok {
		return
	}

	path, err := s.reports.ArtifactFile(c.Request.Context(), rep.ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.FileAttachment(path, fmt.Sprintf("LandRiskAI_Report_%s.pdf", rep.ID))
}

type verifyResponse struct {
	Valid       bool            `json:"valid"`
	ReferenceNo string          `json:"referenceNo"`
	RiskBand    string          `json:"riskBand"`
	RiskScore   int             `json:"riskScore"`
	GeneratedAt string          `json:"generatedAt"`
	Summary     json.RawMessage `json:"summary"`
}

// verifyReport is the public authenticity check behind the code printed on
// the report. A wrong code gets the same 404 as a missing report.
func (s *Server) verifyReport(c *gin.Context) {
	rep, ok := s.resolveReport(c)
	if !ok {
		return
	}
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		badRequest(c, "code query parameter is required")
		return
	}

	verified, err := s.reports.Verify(c.Request.Context(), rep.ID, code)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Valid:       true,
		ReferenceNo: verified.ReferenceNo,
		RiskBand:    verified.RiskBand,
		RiskScore:   verified.RiskScore,
		GeneratedAt: verified.GeneratedAt.UTC().Format(time.RFC3339),
		Summary:     json.RawMessage(verified.SummaryJSON),
	})
}

type rateReportRequest struct {
	Rating   int    `json:"rating" binding:"required"`
	Feedback string `json:"feedback"`
}

func (s *Server) rateReport(c *gin.Context) {
	rep, ok := s.resolveReport(c)
	if !ok {
		return
	}

	var req rateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "rating is required")
		return
	}

	rated, err := s.reports.Rate(c.Request.Context(), rep.ID, req.Rating, req.Feedback)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reportId": rated.ID.String(),
		"rating":   rated.Rating,
	})
}
