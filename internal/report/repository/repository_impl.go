package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/landriskai/landrisk/internal/report/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Create(report).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, report *domain.Report) error {
	return db.WithContext(ctx).Save(report).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Report, error) {
	return r.findOne(ctx, db, "id = ?", id)
}

func (r *repo) FindByOrderID(ctx context.Context, db *gorm.DB, orderID snowflake.ID) (*domain.Report, error) {
	return r.findOne(ctx, db, "order_id = ?", orderID)
}

func (r *repo) FindByReferenceNo(ctx context.Context, db *gorm.DB, referenceNo string) (*domain.Report, error) {
	return r.findOne(ctx, db, "reference_no = ?", referenceNo)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg any) (*domain.Report, error) {
	var report domain.Report
	err := db.WithContext(ctx).Where(query, arg).Take(&report).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
