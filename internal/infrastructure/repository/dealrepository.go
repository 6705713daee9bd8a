package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, d *deal.Deal) error {
	model := mappers.DealToModel(d)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}
	d.SetID(model.ID)
	return nil
}

func (r *DealRepository) Update(ctx context.Context, d *deal.Deal) error {
	model := mappers.DealToModel(d)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.DealModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"title":               model.Title,
			"amount":              model.Amount,
			"discount":            model.Discount,
			"currency":            model.Currency,
			"status":              model.Status,
			"expected_close_date": model.ExpectedCloseDate,
			"closed_at":           model.ClosedAt,
			"notes":               model.Notes,
			"updated_at":          model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update deal: %w", err)
	}
	return nil
}

func (r *DealRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.DealModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete deal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("deal not found")
	}
	return nil
}

func (r *DealRepository) GetByID(ctx context.Context, id uint) (*deal.Deal, error) {
	var model models.DealModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("deal not found")
		}
		return nil, fmt.Errorf("failed to get deal: %w", err)
	}
	return mappers.DealToDomain(&model)
}

func (r *DealRepository) List(ctx context.Context, filter deal.Filter) ([]*deal.Deal, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.DealModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count deals: %w", err)
	}

	var list []models.DealModel
	if err := query.Order("created_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list deals: %w", err)
	}

	deals := make([]*deal.Deal, 0, len(list))
	for i := range list {
		d, err := mappers.DealToDomain(&list[i])
		if err != nil {
			return nil, 0, err
		}
		deals = append(deals, d)
	}
	return deals, total, nil
}
