package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/invoice"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create returns a conflict error when the number or the payment is already invoiced.
func (r *InvoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	model := mappers.InvoiceToModel(inv)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("invoice already exists", inv.Number())
		}
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	inv.SetID(model.ID)
	return nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	model := mappers.InvoiceToModel(inv)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":       model.Status,
			"cancelled_at": model.CancelledAt,
			"updated_at":   model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uint) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("invoice not found")
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return mappers.InvoiceToDomain(&model)
}

func (r *InvoiceRepository) GetByPaymentID(ctx context.Context, paymentID uint) (*invoice.Invoice, error) {
	var model models.InvoiceModel
	if err := db.GetTxFromContext(ctx, r.db).Where("payment_id = ?", paymentID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invoice by payment: %w", err)
	}
	return mappers.InvoiceToDomain(&model)
}

func (r *InvoiceRepository) List(ctx context.Context, filter invoice.Filter) ([]*invoice.Invoice, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.InvoiceModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if filter.Year != 0 {
		query = query.Where("year = ?", filter.Year)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invoices: %w", err)
	}

	var list []models.InvoiceModel
	if err := query.Order("issued_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	invoices := make([]*invoice.Invoice, 0, len(list))
	for i := range list {
		inv, err := mappers.InvoiceToDomain(&list[i])
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, nil
}

func (r *InvoiceRepository) NextSequence(ctx context.Context, year int) (int, error) {
	var row struct {
		Last int
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.InvoiceModel{}).
		Select("COALESCE(MAX(sequence), 0) AS last").
		Where("year = ?", year).
		Scan(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to read invoice sequence: %w", err)
	}
	return row.Last + 1, nil
}
