package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusCreated    Status = "CREATED"
	StatusPaid       Status = "PAID"
	StatusGenerating Status = "GENERATING"
	StatusDelivered  Status = "DELIVERED"
	StatusFailed     Status = "FAILED"
)

// transitions is the explicit state machine. Terminal states have no exits;
// FAILED is reachable from every non-terminal state.
var transitions = map[Status][]Status{
	StatusCreated:    {StatusPaid, StatusFailed},
	StatusPaid:       {StatusGenerating, StatusFailed},
	StatusGenerating: {StatusDelivered, StatusFailed},
}

// CanTransitionTo reports whether from→to is a legal step. Same-state writes
// are accepted so retried callbacks stay idempotent.
func (s Status) CanTransitionTo(to Status) bool {
	if s == to {
		return true
	}
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

type Order struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	District         string       `gorm:"not null" json:"district"`
	Circle           string       `gorm:"not null" json:"circle"`
	Village          string       `gorm:"not null" json:"village"`
	Khata            string       `gorm:"not null" json:"khata"`
	Khesra           string       `gorm:"not null" json:"khesra"`
	OwnerName        string       `json:"owner_name,omitempty"`
	PlotArea         string       `json:"plot_area,omitempty"`
	EmailAddress     string       `json:"email_address,omitempty"`
	WhatsappNumber   string       `gorm:"not null" json:"whatsapp_number"`
	AmountPaise      int          `gorm:"not null" json:"amount_paise"`
	Status           Status       `gorm:"not null;index" json:"status"`
	PaymentRef       *string      `gorm:"uniqueIndex" json:"payment_ref,omitempty"`
	PaymentExpiresAt time.Time    `gorm:"not null" json:"payment_expires_at"`
	CreatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Order) TableName() string { return "lr_orders" }
