package repository

import (
	"context"
	"errors"

	"github.com/opentracing/opentracing-go"
	"gorm.io/gorm"

	"github.com/testlify/tenderstack/interfaces"
	"github.com/testlify/tenderstack/internal/enum"
	"github.com/testlify/tenderstack/internal/models"
	"github.com/testlify/tenderstack/internal/tracing"
)

type emailRepository struct {
	db *gorm.DB
}

func NewEmailRepository(db *gorm.DB) interfaces.EmailRepository {
	return &emailRepository{
		db: db,
	}
}

func (r *emailRepository) Create(ctx context.Context, email *models.TenderEmail) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	// Postmark retries deliveries it could not acknowledge, so the same message id
	// can arrive more than once. Check before creating.
	existing := &models.TenderEmail{}
	err := r.db.WithContext(ctx).
		Where("message_id = ?", email.MessageID).
		First(existing).Error

	if err == nil {
		span.SetTag("duplicate", true)
		email.ID = existing.ID
		return false, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		tracing.TraceErr(span, err)
		return false, err
	}

	result := r.db.WithContext(ctx).Create(email)
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return false, result.Error
	}

	return true, nil
}

// GetByID retrieves a record by its ID
func (r *emailRepository) GetByID(ctx context.Context, id string) (*models.TenderEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.TenderEmail
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

// GetByMessageID retrieves a record by its Postmark MessageID
func (r *emailRepository) GetByMessageID(ctx context.Context, messageID string) (*models.TenderEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.GetByMessageID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var email models.TenderEmail
	if err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, err)
		return nil, err
	}
	return &email, nil
}

// ListAll retrieves the newest records first, bounded by limit.
func (r *emailRepository) ListAll(ctx context.Context, limit int) ([]*models.TenderEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListAll")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var emails []*models.TenderEmail
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return emails, nil
}

// ListTenders retrieves detected tender records only, newest first.
func (r *emailRepository) ListTenders(ctx context.Context, limit int) ([]*models.TenderEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListTenders")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var emails []*models.TenderEmail
	if err := r.db.WithContext(ctx).
		Where("is_tender = ?", true).
		Order("created_at DESC").
		Limit(limit).
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return emails, nil
}

// ListUnfiltered retrieves every record not yet consumed by a filter cycle.
func (r *emailRepository) ListUnfiltered(ctx context.Context) ([]*models.TenderEmail, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.ListUnfiltered")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var emails []*models.TenderEmail
	if err := r.db.WithContext(ctx).
		Where("is_filtered IS NOT TRUE").
		Order("created_at ASC").
		Find(&emails).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return emails, nil
}

func (r *emailRepository) MarkFiltered(ctx context.Context, ids []string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.MarkFiltered")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("count", len(ids))

	if len(ids) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.TenderEmail{}).
		Where("id IN ?", ids).
		Update("is_filtered", true).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}

func (r *emailRepository) UpdateScore(ctx context.Context, id string, score int, tier enum.ClassificationTier, reasoning string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailRepository.UpdateScore")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, id)

	err := r.db.WithContext(ctx).
		Model(&models.TenderEmail{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"relevance_score": score,
			"classification":  tier,
			"match_reasoning": reasoning,
		}).Error
	if err != nil {
		tracing.TraceErr(span, err)
	}
	return err
}
