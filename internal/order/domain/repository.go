package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	// PurgeIdentifying blanks personally identifying fields on orders older
	// than the cutoff. The rows themselves are retained for audit.
	PurgeIdentifying(ctx context.Context, db *gorm.DB, before time.Time) (int64, error)
}
