package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
)

type logRepository struct {
	db *gorm.DB
}

func NewLogRepository(db *gorm.DB) interfaces.LogRepository {
	return &logRepository{
		db: db,
	}
}

func (r *logRepository) Create(ctx context.Context, log *models.ProcessingLog) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "logRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	err := r.db.WithContext(ctx).Create(log).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *logRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "logRepository.DeleteOlderThan")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ProcessingLog{})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
