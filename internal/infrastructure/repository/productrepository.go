package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/product"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	model := mappers.ProductToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("a product with this slug already exists")
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.SetID(model.ID)
	return nil
}

func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	model := mappers.ProductToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ProductModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":        model.Name,
			"slug":        model.Slug,
			"description": model.Description,
			"type":        model.Type,
			"price":       model.Price,
			"currency":    model.Currency,
			"active":      model.Active,
			"sort_order":  model.SortOrder,
			"updated_at":  model.UpdatedAt,
		}).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("a product with this slug already exists")
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.ProductModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("product not found")
	}
	return nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id uint) (*product.Product, error) {
	var model models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return mappers.ProductToDomain(&model)
}

func (r *ProductRepository) GetBySlug(ctx context.Context, slug string) (*product.Product, error) {
	var model models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).Where("slug = ?", slug).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("product not found")
		}
		return nil, fmt.Errorf("failed to get product by slug: %w", err)
	}
	return mappers.ProductToDomain(&model)
}

func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]*product.Product, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ProductModel{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.ActiveOnly {
		query = query.Where("active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var list []models.ProductModel
	if err := query.Order("sort_order ASC, name ASC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	products := make([]*product.Product, 0, len(list))
	for i := range list {
		p, err := mappers.ProductToDomain(&list[i])
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, nil
}
