package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type DeliveryStatus string

const (
	DeliveryPending DeliveryStatus = "PENDING"
	DeliverySent    DeliveryStatus = "SENT"
	DeliveryFailed  DeliveryStatus = "FAILED"
)

// Report is the one-and-only generated document for an order. The unique
// index on OrderID is what makes concurrent generation safe: the loser of a
// race fails its insert and picks up the winner's row.
type Report struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	OrderID snowflake.ID `gorm:"not null;uniqueIndex" json:"order_id"`

	RiskBand  string `gorm:"not null" json:"risk_band"`
	RiskScore int    `gorm:"not null" json:"risk_score"`

	ReferenceNo      string `gorm:"not null;uniqueIndex" json:"reference_no"`
	VerificationCode string `gorm:"not null;uniqueIndex" json:"-"`

	ArtifactPath   string         `gorm:"not null" json:"-"`
	DeliveryStatus DeliveryStatus `gorm:"not null" json:"delivery_status"`
	SummaryJSON    string         `gorm:"not null" json:"-"`

	Rating   *int   `json:"rating,omitempty"`
	Feedback string `json:"feedback,omitempty"`

	GeneratedAt       time.Time `gorm:"not null" json:"generated_at"`
	ArtifactExpiresAt time.Time `gorm:"not null" json:"artifact_expires_at"`
	CreatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Report) TableName() string { return "lr_reports" }
