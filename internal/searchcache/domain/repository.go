package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	Update(ctx context.Context, db *gorm.DB, entry *Entry) error
	// FindByHash returns the entry for a key hash regardless of validity.
	FindByHash(ctx context.Context, db *gorm.DB, hash string) (*Entry, error)
	FindValidByKey(ctx context.Context, db *gorm.DB, district, khata, khesra string, now time.Time) (*Entry, error)
	FindValidByKeyWithCircle(ctx context.Context, db *gorm.DB, district, circle, khata, khesra string, now time.Time) (*Entry, error)
	DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error)
}
