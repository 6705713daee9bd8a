package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/lead"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	model := mappers.LeadToModel(l)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	l.SetID(model.ID)
	return nil
}

func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	model := mappers.LeadToModel(l)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LeadModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"stage":           model.Stage,
			"source":          model.Source,
			"product_id":      model.ProductID,
			"estimated_value": model.EstimatedValue,
			"currency":        model.Currency,
			"notes":           model.Notes,
			"lost_reason":     model.LostReason,
			"closed_at":       model.ClosedAt,
			"updated_at":      model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.LeadModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete lead: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("lead not found")
	}
	return nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id uint) (*lead.Lead, error) {
	var model models.LeadModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("lead not found")
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return mappers.LeadToDomain(&model)
}

func (r *LeadRepository) List(ctx context.Context, filter lead.Filter) ([]*lead.Lead, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.LeadModel{})
	if filter.Stage != "" {
		query = query.Where("stage = ?", filter.Stage)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	var list []models.LeadModel
	if err := query.Order("created_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	leads := make([]*lead.Lead, 0, len(list))
	for i := range list {
		l, err := mappers.LeadToDomain(&list[i])
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, l)
	}
	return leads, total, nil
}
