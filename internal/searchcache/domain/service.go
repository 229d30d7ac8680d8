package domain

import (
	"context"
	"errors"

	orderdomain "github.com/landriskai/landrisk/internal/order/domain"
	"github.com/landriskai/landrisk/internal/risk"
)

type EligibilityRequest struct {
	District string
	// Circle optionally narrows the parcel key to one revenue circle.
	Circle   string
	Khata    string
	Khesra   string
	Email    string
	Whatsapp string
}

type EligibilityResult struct {
	CacheID          string `json:"cacheId"`
	RiskBand         string `json:"riskBand"`
	RiskScore        int    `json:"riskScore"`
	ReuseCount       int    `json:"reuseCount"`
	DiscountEligible bool   `json:"discountEligible"`
	PricePaise       int    `json:"pricePaise"`
	ArtifactPath     string `json:"artifactPath"`
}

type Service interface {
	// Lookup returns the valid entry for the key, or ErrNotFound when the
	// key was never searched or its entry has expired.
	Lookup(ctx context.Context, district, khata, khesra string) (Entry, error)
	LookupWithCircle(ctx context.Context, district, circle, khata, khesra string) (Entry, error)
	// CheckEligibility applies the repeat-customer policy: the discounted
	// price is offered only when the requester's email and whatsapp both
	// match the entry's last generator exactly.
	CheckEligibility(ctx context.Context, req EligibilityRequest) (EligibilityResult, error)
	// RecordGeneration creates or refreshes the entry for the order's
	// parcel key after a successful report generation.
	RecordGeneration(ctx context.Context, order orderdomain.Order, result risk.Result, artifactPath string) error
	// SweepExpired reclaims expired rows. Housekeeping only; lookups
	// already ignore expired entries.
	SweepExpired(ctx context.Context) (int64, error)
}

var ErrNotFound = errors.New("cache_entry_not_found")
