package repository

import (
	"context"
	"errors"
	"time"

	"github.com/landriskai/landrisk/internal/searchcache/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Create(entry).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Save(entry).Error
}

func (r *repo) FindByHash(ctx context.Context, db *gorm.DB, hash string) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).
		Where("search_hash = ?", hash).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) FindValidByKey(ctx context.Context, db *gorm.DB, district, khata, khesra string, now time.Time) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).
		Where("district = ? AND khata = ? AND khesra = ?", district, khata, khesra).
		Where("expires_at > ?", now).
		Order("expires_at desc").
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) FindValidByKeyWithCircle(ctx context.Context, db *gorm.DB, district, circle, khata, khesra string, now time.Time) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).
		Where("district = ? AND circle = ? AND khata = ? AND khesra = ?", district, circle, khata, khesra).
		Where("expires_at > ?", now).
		Order("expires_at desc").
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repo) DeleteExpired(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	result := db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&domain.Entry{})
	return result.RowsAffected, result.Error
}
