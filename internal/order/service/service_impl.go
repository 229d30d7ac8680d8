package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/clock"
	"github.com/landriskai/landrisk/internal/config"
	"github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/pkg/db"
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
		log:   p.Log.Named("order.service"),
		cfg:   p.Cfg,
		clock: p.Clock,
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Create normalizes the parcel identifiers, prices the order from the fixed
// table and opens the payment window. Field-level validation happens at the
// API boundary; blank required fields are still rejected here.
func (s *Service) Create(ctx context.Context, req domain.CreateOrderRequest) (domain.Order, error) {
	district := strings.TrimSpace(req.District)
	circle := strings.TrimSpace(req.Circle)
	village := strings.TrimSpace(req.Village)
	khata := strings.TrimSpace(req.Khata)
	khesra := strings.TrimSpace(req.Khesra)
	whatsapp := strings.TrimSpace(req.WhatsappNumber)

	if district == "" || circle == "" || village == "" || khata == "" || khesra == "" || whatsapp == "" {
		return domain.Order{}, domain.ErrInvalidRequest
	}

	now := s.clock.Now()
	order := domain.Order{
		ID:               s.genID.Generate(),
		District:         district,
		Circle:           circle,
		Village:          village,
		Khata:            khata,
		Khesra:           khesra,
		OwnerName:        strings.TrimSpace(req.OwnerName),
		PlotArea:         strings.TrimSpace(req.PlotArea),
		EmailAddress:     strings.TrimSpace(req.EmailAddress),
		WhatsappNumber:   whatsapp,
		AmountPaise:      s.cfg.Pricing.FullPricePaise,
		Status:           domain.StatusCreated,
		PaymentExpiresAt: now.Add(time.Duration(s.cfg.Payment.ExpiryMinutes) * time.Minute),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Insert(ctx, s.db, &order); err != nil {
		return domain.Order{}, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("district", order.District),
	)
	return order, nil
}

// MarkPaid records the payment reference and moves the order to PAID. The
// reference is unique across all orders; a second order presenting the same
// reference surfaces as a conflict.
func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID, paymentRef string) (domain.Order, error) {
	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		return domain.Order{}, domain.ErrInvalidRequest
	}

	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	if !order.Status.CanTransitionTo(domain.StatusPaid) {
		return domain.Order{}, domain.ErrInvalidTransition
	}

	order.PaymentRef = &paymentRef
	order.Status = domain.StatusPaid
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Order{}, domain.ErrPaymentRefConflict
		}
		return domain.Order{}, err
	}

	s.log.Info("order paid",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_ref", paymentRef),
	)
	return *order, nil
}

// Transition is a read-modify-write guarded by the transition table.
func (s *Service) Transition(ctx context.Context, id snowflake.ID, to domain.Status) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	if !order.Status.CanTransitionTo(to) {
		return domain.Order{}, domain.ErrInvalidTransition
	}
	if order.Status == to {
		return *order, nil
	}

	order.Status = to
	order.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, order); err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Order{}, err
	}
	if order == nil {
		return domain.Order{}, domain.ErrNotFound
	}
	return *order, nil
}
