package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateOrderRequest struct {
	District       string
	Circle         string
	Village        string
	Khata          string
	Khesra         string
	OwnerName      string
	PlotArea       string
	EmailAddress   string
	WhatsappNumber string
}

type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (Order, error)
	MarkPaid(ctx context.Context, id snowflake.ID, paymentRef string) (Order, error)
	Transition(ctx context.Context, id snowflake.ID, to Status) (Order, error)
	GetByID(ctx context.Context, id snowflake.ID) (Order, error)
}

var (
	ErrNotFound           = errors.New("order_not_found")
	ErrInvalidTransition  = errors.New("invalid_order_transition")
	ErrPaymentRefConflict = errors.New("payment_ref_conflict")
	ErrInvalidRequest     = errors.New("invalid_order_request")
)
