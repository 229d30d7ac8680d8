package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/internal/risk"
	"github.com/landriskai/landrisk/internal/searchcache/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cfg   config.Config
	Clock clock.Clock
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cfg   config.Config
	clock clock.Clock
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("searchcache.service"),
		cfg:   p.Cfg,
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Lookup(ctx context.Context, district, khata, khesra string) (domain.Entry, error) {
	entry, err := s.repo.FindValidByKey(ctx, s.db, district, khata, khesra, s.clock.Now())
	if err != nil {
		return domain.Entry{}, err
	}
	if entry == nil {
		return domain.Entry{}, domain.ErrNotFound
	}
	return *entry, nil
}

func (s *Service) LookupWithCircle(ctx context.Context, district, circle, khata, khesra string) (domain.Entry, error) {
	entry, err := s.repo.FindValidByKeyWithCircle(ctx, s.db, district, circle, khata, khesra, s.clock.Now())
	if err != nil {
		return domain.Entry{}, err
	}
	if entry == nil {
		return domain.Entry{}, domain.ErrNotFound
	}
	return *entry, nil
}

// CheckEligibility grants the discounted price only to the entry's most
// recent generator: both email and whatsapp must match exactly. Anyone else
// pays full price for the same parcel even though a cached artifact exists.
// A circle narrows the key when provided; districts reuse khata/khesra
// numbering across circles.
func (s *Service) CheckEligibility(ctx context.Context, req domain.EligibilityRequest) (domain.EligibilityResult, error) {
	var entry domain.Entry
	var err error
	if req.Circle != "" {
		entry, err = s.LookupWithCircle(ctx, req.District, req.Circle, req.Khata, req.Khesra)
	} else {
		entry, err = s.Lookup(ctx, req.District, req.Khata, req.Khesra)
	}
	if err != nil {
		return domain.EligibilityResult{}, err
	}

	sameUser := req.Email != "" && req.Whatsapp != "" &&
		req.Email == entry.LastUserEmail &&
		req.Whatsapp == entry.LastUserWhatsapp

	price := s.cfg.Pricing.FullPricePaise
	if sameUser {
		price = s.cfg.Pricing.DiscountedPricePaise
	}

	return domain.EligibilityResult{
		CacheID:          entry.ID.String(),
		RiskBand:         entry.RiskBand,
		RiskScore:        entry.RiskScore,
		ReuseCount:       entry.ReuseCount,
		DiscountEligible: sameUser,
		PricePaise:       price,
		ArtifactPath:     entry.ArtifactPath,
	}, nil
}

// RecordGeneration creates or refreshes the key's entry. A refresh overwrites
// the snapshot and the last-user identity, bumps the reuse counter and the
// reuse revenue, and resets the expiry. An expired row is recycled in place
// (the key hash is unique) with its counters restarted.
func (s *Service) RecordGeneration(ctx context.Context, order orderdomain.Order, result risk.Result, artifactPath string) error {
	now := s.clock.Now()
	hash := KeyHash(order.District, order.Khata, order.Khesra)

	findingsJSON, err := json.Marshal(result.Findings)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByHash(ctx, s.db, hash)
	if err != nil {
		return err
	}

	if existing == nil {
		entry := domain.Entry{
			ID:               s.genID.Generate(),
			District:         order.District,
			Circle:           order.Circle,
			Village:          order.Village,
			Khata:            order.Khata,
			Khesra:           order.Khesra,
			OwnerName:        order.OwnerName,
			PlotArea:         order.PlotArea,
			SearchHash:       hash,
			RiskBand:         string(result.Band),
			RiskScore:        result.Score,
			FindingsJSON:     string(findingsJSON),
			ArtifactPath:     artifactPath,
			ExpiresAt:        now.Add(s.ttl()),
			LastUserEmail:    order.EmailAddress,
			LastUserWhatsapp: order.WhatsappNumber,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		return s.repo.Insert(ctx, s.db, &entry)
	}

	wasValid := existing.Valid(now)
	existing.OwnerName = order.OwnerName
	existing.PlotArea = order.PlotArea
	existing.RiskBand = string(result.Band)
	existing.RiskScore = result.Score
	existing.FindingsJSON = string(findingsJSON)
	existing.ArtifactPath = artifactPath
	existing.LastUserEmail = order.EmailAddress
	existing.LastUserWhatsapp = order.WhatsappNumber
	existing.ExpiresAt = now.Add(s.ttl())
	existing.UpdatedAt = now
	if wasValid {
		existing.ReuseCount++
		existing.LastReuseAt = &now
		existing.ReuseRevenuePaise += int64(order.AmountPaise)
	} else {
		existing.ReuseCount = 0
		existing.LastReuseAt = nil
		existing.ReuseRevenuePaise = 0
		existing.CreatedAt = now
	}
	return s.repo.Update(ctx, s.db, existing)
}

func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, s.db, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.log.Info("expired cache entries reclaimed", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

func (s *Service) ttl() time.Duration {
	return time.Duration(s.cfg.Cache.TTLDays) * 24 * time.Hour
}

// KeyHash derives the unique storage key for a parcel identity.
func KeyHash(district, khata, khesra string) string {
	sum := sha256.Sum256([]byte(khata + "|" + khesra + "|" + district))
	return hex.EncodeToString(sum[:])
}
