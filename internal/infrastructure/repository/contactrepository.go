package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(ctx context.Context, c *contact.Contact) error {
	model := mappers.ContactToModel(c)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("a contact with this email already exists")
		}
		return fmt.Errorf("failed to create contact: %w", err)
	}

	c.SetID(model.ID)
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, c *contact.Contact) error {
	model := mappers.ContactToModel(c)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ContactModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"first_name": model.FirstName,
			"last_name":  model.LastName,
			"email":      model.Email,
			"phone":      model.Phone,
			"source":     model.Source,
			"status":     model.Status,
			"tags":       model.Tags,
			"notes":      model.Notes,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		if apperrors.IsDuplicateError(result.Error) {
			return apperrors.NewConflictError("a contact with this email already exists")
		}
		return fmt.Errorf("failed to update contact: %w", result.Error)
	}
	return nil
}

// Delete soft-deletes the contact and releases its email so a new contact can
// use it. Payments and deals keep pointing at the archived row.
func (r *ContactRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ContactModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"email":      nil,
			"deleted_at": biztime.NowUTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to delete contact: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("contact not found")
	}
	return nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id uint) (*contact.Contact, error) {
	var model models.ContactModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("contact not found")
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return mappers.ContactToDomain(&model)
}

func (r *ContactRepository) GetByEmail(ctx context.Context, email string) (*contact.Contact, error) {
	return r.findOne(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

func (r *ContactRepository) GetByPhone(ctx context.Context, phone string) (*contact.Contact, error) {
	return r.findOne(ctx, "phone = ?", contact.NormalizePhone(phone))
}

func (r *ContactRepository) findOne(ctx context.Context, query string, arg string) (*contact.Contact, error) {
	if arg == "" {
		return nil, nil
	}
	var model models.ContactModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	return mappers.ContactToDomain(&model)
}

func (r *ContactRepository) List(ctx context.Context, filter contact.Filter) ([]*contact.Contact, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ContactModel{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(strings.TrimSpace(filter.Search)) + "%"
		query = query.Where(
			"LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR email LIKE ? OR phone LIKE ?",
			like, like, like, like,
		)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if filter.Tag != "" {
		// Tags are a JSON array of strings; match the quoted element.
		query = query.Where("tags LIKE ?", "%\""+filter.Tag+"\"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}

	var list []models.ContactModel
	if err := query.Order("created_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list contacts: %w", err)
	}

	contacts, err := mappers.ContactsToDomain(list)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}
