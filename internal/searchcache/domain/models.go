package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entry caches the most recent generation result for a parcel key
// (district, khata, khesra). At most one entry exists per key: the key hash
// is unique and refreshes overwrite in place. Expiry is evaluated lazily at
// lookup time; only generation events extend it, reads never do.
type Entry struct {
	ID       snowflake.ID `gorm:"primaryKey" json:"id"`
	District string       `gorm:"not null" json:"district"`
	Circle   string       `gorm:"not null" json:"circle"`
	Village  string       `gorm:"not null" json:"village"`
	Khata    string       `gorm:"not null" json:"khata"`
	Khesra   string       `gorm:"not null" json:"khesra"`

	OwnerName string `json:"owner_name,omitempty"`
	PlotArea  string `json:"plot_area,omitempty"`

	SearchHash string `gorm:"not null;uniqueIndex" json:"-"`

	RiskBand     string `gorm:"not null" json:"risk_band"`
	RiskScore    int    `gorm:"not null" json:"risk_score"`
	FindingsJSON string `gorm:"not null" json:"-"`

	ArtifactPath string    `gorm:"not null" json:"artifact_path"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`

	ReuseCount        int        `gorm:"not null;default:0" json:"reuse_count"`
	LastReuseAt       *time.Time `json:"last_reuse_at,omitempty"`
	ReuseRevenuePaise int64      `gorm:"not null;default:0" json:"reuse_revenue_paise"`

	// Identity of the most recent generator. Discount eligibility is always
	// relative to this pair, not to whoever created the entry first.
	LastUserEmail    string `gorm:"not null" json:"-"`
	LastUserWhatsapp string `gorm:"not null" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Entry) TableName() string { return "lr_search_cache" }

// Valid reports whether the entry is still inside its TTL.
func (e Entry) Valid(now time.Time) bool {
	return now.Before(e.ExpiresAt)
}
