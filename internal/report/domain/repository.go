package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, report *Report) error
	Update(ctx context.Context, db *gorm.DB, report *Report) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Report, error)
	FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*Report, error)
	FindByReferenceNo(ctx context.Context, db *gorm.DB, referenceNo string) (*Report, error)
}
