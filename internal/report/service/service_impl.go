package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"github.com/landriskai/landrisk/internal/notify"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/internal/providers/pdf"
	"github.com/landriskai/landrisk/internal/reference"
	"github.com/landriskai/landrisk/internal/report/domain"
	"github.com/landriskai/landrisk/internal/risk"
	searchcachedomain "github.com/landriskai/landrisk/internal/searchcache/domain"
	pkgdb "github.com/landriskai/landrisk/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// errLostGenerationRace aborts an allocation attempt when the duplicate-key
// failure came from the order uniqueness, not a code collision: another
// caller already created the report for this order.
var errLostGenerationRace = errors.New("lost generation race")

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	GenID     *snowflake.Node
	Repo      domain.Repository
	Orders    orderdomain.Service
	Scorer    risk.Scorer
	Allocator reference.Allocator
	Cache     searchcachedomain.Service
	Notifier  notify.Notifier
	PDF       pdf.Provider
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	cfg       config.Config
	clock     clock.Clock
	genID     *snowflake.Node
	repo      domain.Repository
	orders    orderdomain.Service
	scorer    risk.Scorer
	allocator reference.Allocator
	cache     searchcachedomain.Service
	notifier  notify.Notifier
	pdf       pdf.Provider
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("report.service"),
		cfg:       p.Cfg,
		clock:     p.Clock,
		genID:     p.GenID,
		repo:      p.Repo,
		orders:    p.Orders,
		scorer:    p.Scorer,
		allocator: p.Allocator,
		cache:     p.Cache,
		notifier:  p.Notifier,
		pdf:       p.PDF,
	}
}

func (s *Service) GenerateAndDeliver(ctx context.Context, orderID snowflake.ID) (domain.Report, error) {
	existing, err := s.repo.FindByOrderID(ctx, s.db, orderID)
	if err != nil {
		return domain.Report{}, err
	}
	if existing != nil {
		repaired, err := s.ensureArtifacts(ctx, existing)
		if err != nil {
			return domain.Report{}, err
		}
		// A crash between insert and delivery leaves the order in
		// GENERATING; finishing the repair completes the transition.
		if _, err := s.orders.Transition(ctx, orderID, orderdomain.StatusDelivered); err != nil &&
			!errors.Is(err, orderdomain.ErrInvalidTransition) {
			return domain.Report{}, err
		}
		return repaired, nil
	}
	return s.generateAndDeliver(ctx, orderID)
}

func (s *Service) generateAndDeliver(ctx context.Context, orderID snowflake.ID) (domain.Report, error) {
	order, err := s.orders.Transition(ctx, orderID, orderdomain.StatusGenerating)
	if errors.Is(err, orderdomain.ErrInvalidTransition) {
		// Another caller may have finished the whole pipeline between our
		// existence check and this transition.
		if existing, findErr := s.repo.FindByOrderID(ctx, s.db, orderID); findErr == nil && existing != nil {
			return s.ensureArtifacts(ctx, existing)
		}
		return domain.Report{}, err
	}
	if err != nil {
		return domain.Report{}, err
	}

	result := s.scorer.Assess(parcelOf(order))
	now := s.clock.Now()

	// The row is inserted inside the allocation loop so the store's unique
	// constraints decide both code uniqueness and the one-report-per-order
	// rule in a single write.
	var report *domain.Report
	var winner *domain.Report
	_, err = s.allocator.Allocate(ctx, func(ctx context.Context, codes reference.Codes) error {
		candidate := &domain.Report{
			ID:                s.genID.Generate(),
			OrderID:           order.ID,
			RiskBand:          string(result.Band),
			RiskScore:         result.Score,
			ReferenceNo:       codes.ReferenceNo,
			VerificationCode:  codes.VerificationCode,
			ArtifactPath:      "",
			DeliveryStatus:    domain.DeliveryPending,
			SummaryJSON:       "{}",
			GeneratedAt:       now,
			ArtifactExpiresAt: now.Add(s.artifactTTL()),
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		insertErr := s.repo.Insert(ctx, s.db, candidate)
		if insertErr == nil {
			report = candidate
			return nil
		}
		if pkgdb.IsDuplicateKeyErr(insertErr) {
			other, findErr := s.repo.FindByOrderID(ctx, s.db, order.ID)
			if findErr == nil && other != nil {
				winner = other
				return errLostGenerationRace
			}
		}
		return insertErr
	})
	if errors.Is(err, errLostGenerationRace) {
		return s.ensureArtifacts(ctx, winner)
	}
	if err != nil {
		return domain.Report{}, err
	}

	artifactPath, err := s.renderArtifact(ctx, report, order, result)
	if err != nil {
		return domain.Report{}, err
	}

	report.ArtifactPath = artifactPath
	report.SummaryJSON = s.buildSummary(report, order, result)
	report.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, report); err != nil {
		return domain.Report{}, err
	}

	if err := s.cache.RecordGeneration(ctx, order, result, artifactPath); err != nil {
		return domain.Report{}, err
	}

	s.deliver(ctx, report, order)

	if _, err := s.orders.Transition(ctx, order.ID, orderdomain.StatusDelivered); err != nil {
		return domain.Report{}, err
	}

	s.log.Info("report generated",
		zap.String("report_id", report.ID.String()),
		zap.String("order_id", order.ID.String()),
		zap.String("reference_no", report.ReferenceNo),
		zap.String("risk_band", report.RiskBand),
	)
	return *report, nil
}

// deliver is fire-and-forget: a failed notification is recorded on the
// report but never fails the generation.
func (s *Service) deliver(ctx context.Context, report *domain.Report, order orderdomain.Order) {
	downloadURL := domain.DownloadURL(s.cfg.BaseURL, report.ID)
	verifyURL := domain.VerifyURL(s.cfg.BaseURL, report.ID, report.VerificationCode)
	message := fmt.Sprintf(
		"LandRiskAI report is ready. Ref: %s. Risk: %s. Khata/Khesra: %s / %s. Download: %s | Verify: %s",
		report.ReferenceNo,
		report.RiskBand,
		displayIdentifier(order.Khata),
		displayIdentifier(order.Khesra),
		downloadURL,
		verifyURL,
	)

	status := domain.DeliverySent
	if err := s.notifier.SendReportLink(ctx, order.WhatsappNumber, message); err != nil {
		s.log.Warn("report notification failed",
			zap.String("report_id", report.ID.String()),
			zap.Error(err),
		)
		status = domain.DeliveryFailed
	}

	report.DeliveryStatus = status
	report.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, report); err != nil {
		s.log.Warn("failed to record delivery status", zap.Error(err))
	}
}

func (s *Service) EnsureArtifacts(ctx context.Context, reportID snowflake.ID) (domain.Report, error) {
	report, err := s.repo.FindByID(ctx, s.db, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	if report == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	return s.ensureArtifacts(ctx, report)
}

// ensureArtifacts is the repair path: backfill a placeholder reference and
// re-render a missing or empty artifact from a fresh score of the original
// order. The stored band/score are left untouched so the customer-facing
// summary stays what they paid for.
func (s *Service) ensureArtifacts(ctx context.Context, report *domain.Report) (domain.Report, error) {
	referenceWasMissing := reference.IsPlaceholder(report.ReferenceNo)
	if referenceWasMissing {
		_, err := s.allocator.Allocate(ctx, func(ctx context.Context, codes reference.Codes) error {
			report.ReferenceNo = codes.ReferenceNo
			if report.VerificationCode == "" {
				report.VerificationCode = codes.VerificationCode
			}
			report.UpdatedAt = s.clock.Now()
			return s.repo.Update(ctx, s.db, report)
		})
		if err != nil {
			return domain.Report{}, err
		}
	}

	if referenceWasMissing || s.needsArtifactRefresh(report) {
		order, err := s.orders.GetByID(ctx, report.OrderID)
		if err != nil {
			return domain.Report{}, err
		}

		result := s.scorer.Assess(parcelOf(order))
		artifactPath, err := s.renderArtifact(ctx, report, order, result)
		if err != nil {
			return domain.Report{}, err
		}

		report.ArtifactPath = artifactPath
		report.SummaryJSON = s.buildSummary(report, order, result)
		report.UpdatedAt = s.clock.Now()
		if err := s.repo.Update(ctx, s.db, report); err != nil {
			return domain.Report{}, err
		}
	}

	return *report, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Report, error) {
	report, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Report{}, err
	}
	if report == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	return *report, nil
}

func (s *Service) GetByReferenceNo(ctx context.Context, referenceNo string) (domain.Report, error) {
	normalized := strings.ToUpper(strings.TrimSpace(referenceNo))
	if normalized == "" {
		return domain.Report{}, domain.ErrNotFound
	}
	report, err := s.repo.FindByReferenceNo(ctx, s.db, normalized)
	if err != nil {
		return domain.Report{}, err
	}
	if report == nil {
		return domain.Report{}, domain.ErrNotFound
	}
	return *report, nil
}

func (s *Service) Verify(ctx context.Context, reportID snowflake.ID, code string) (domain.Report, error) {
	report, err := s.GetByID(ctx, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	if code == "" || report.VerificationCode != code {
		return domain.Report{}, domain.ErrVerificationMismatch
	}
	return report, nil
}

func (s *Service) ArtifactFile(ctx context.Context, reportID snowflake.ID) (string, error) {
	report, err := s.EnsureArtifacts(ctx, reportID)
	if err != nil {
		return "", err
	}
	if s.clock.Now().After(report.ArtifactExpiresAt) {
		return "", domain.ErrArtifactExpired
	}
	return report.ArtifactPath, nil
}

func (s *Service) Rate(ctx context.Context, reportID snowflake.ID, rating int, feedback string) (domain.Report, error) {
	if rating < 1 || rating > 5 {
		return domain.Report{}, domain.ErrInvalidRating
	}

	report, err := s.repo.FindByID(ctx, s.db, reportID)
	if err != nil {
		return domain.Report{}, err
	}
	if report == nil {
		return domain.Report{}, domain.ErrNotFound
	}

	report.Rating = &rating
	report.Feedback = strings.TrimSpace(feedback)
	report.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, report); err != nil {
		return domain.Report{}, err
	}
	return *report, nil
}

func (s *Service) renderArtifact(ctx context.Context, report *domain.Report, order orderdomain.Order, result risk.Result) (string, error) {
	reader, err := s.pdf.GenerateReport(ctx, pdf.ReportData{
		ReportID:         report.ID.String(),
		ReferenceNo:      report.ReferenceNo,
		VerificationCode: report.VerificationCode,
		GeneratedAt:      report.GeneratedAt.Format(time.RFC3339),
		District:         order.District,
		Circle:           order.Circle,
		Village:          order.Village,
		Khata:            order.Khata,
		Khesra:           order.Khesra,
		OwnerName:        order.OwnerName,
		PlotArea:         order.PlotArea,
		Score:            result.Score,
		Band:             string(result.Band),
		Findings:         result.Findings,
	})
	if err != nil {
		return "", fmt.Errorf("render artifact: %w", err)
	}
	if reader == nil {
		return "", errors.New("render artifact: empty document")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("render artifact: %w", err)
	}
	if len(content) == 0 {
		return "", errors.New("render artifact: empty document")
	}

	if err := os.MkdirAll(s.cfg.Artifact.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create artifact dir: %w", err)
	}
	path := filepath.Join(s.cfg.Artifact.Dir, fmt.Sprintf("LandRiskAI_Report_%s.pdf", report.ID))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return path, nil
}

func (s *Service) needsArtifactRefresh(report *domain.Report) bool {
	if report.ArtifactPath == "" {
		return true
	}
	info, err := os.Stat(report.ArtifactPath)
	return err != nil || info.Size() == 0
}

// summary is the payload handed out by the summary and verify endpoints.
// A struct keeps field order stable across serializations.
type summary struct {
	ReportID       string `json:"reportId"`
	ReferenceNo    string `json:"referenceNo"`
	GeneratedAt    string `json:"generatedAt"`
	RiskBand       string `json:"riskBand"`
	RiskScore      int    `json:"riskScore"`
	District       string `json:"district"`
	Circle         string `json:"circle"`
	Village        string `json:"village"`
	Khata          string `json:"khata"`
	Khesra         string `json:"khesra"`
	OwnerName      string `json:"ownerName"`
	PlotArea       string `json:"plotArea"`
	WhatsappNumber string `json:"whatsappNumber"`
	EmailAddress   string `json:"emailAddress"`
	FindingsCount  int    `json:"findingsCount"`
}

func (s *Service) buildSummary(report *domain.Report, order orderdomain.Order, result risk.Result) string {
	payload, err := json.Marshal(summary{
		ReportID:       report.ID.String(),
		ReferenceNo:    report.ReferenceNo,
		GeneratedAt:    report.GeneratedAt.Format(time.RFC3339),
		RiskBand:       report.RiskBand,
		RiskScore:      report.RiskScore,
		District:       order.District,
		Circle:         order.Circle,
		Village:        order.Village,
		Khata:          order.Khata,
		Khesra:         order.Khesra,
		OwnerName:      order.OwnerName,
		PlotArea:       order.PlotArea,
		WhatsappNumber: order.WhatsappNumber,
		EmailAddress:   order.EmailAddress,
		FindingsCount:  len(result.Findings),
	})
	if err != nil {
		return "{}"
	}
	return string(payload)
}

func (s *Service) artifactTTL() time.Duration {
	return time.Duration(s.cfg.Artifact.TTLDays) * 24 * time.Hour
}

func parcelOf(order orderdomain.Order) risk.Parcel {
	return risk.Parcel{
		District:  order.District,
		Circle:    order.Circle,
		Village:   order.Village,
		Khata:     order.Khata,
		Khesra:    order.Khesra,
		OwnerName: order.OwnerName,
		PlotArea:  order.PlotArea,
	}
}

func displayIdentifier(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Not provided"
	}
	return value
}
