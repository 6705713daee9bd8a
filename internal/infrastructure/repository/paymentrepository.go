package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	p.SetID(model.ID)
	p.MarkPersisted()
	return nil
}

// Update writes the payment only if the stored version is the one it was loaded at.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := mappers.PaymentToModel(p)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Where("id = ? AND version = ?", model.ID, p.PersistedVersion()).
		Updates(map[string]interface{}{
			"status":          model.Status,
			"transaction_id":  model.TransactionID,
			"redirect_url":    model.RedirectURL,
			"refunded_amount": model.RefundedAmount,
			"failure_reason":  model.FailureReason,
			"metadata":        model.Metadata,
			"paid_at":         model.PaidAt,
			"refunded_at":     model.RefundedAt,
			"version":         model.Version,
			"updated_at":      model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("payment was modified concurrently", p.Reference())
	}
	p.MarkPersisted()
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id uint) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("reference = ?", reference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment by reference: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, gateway, transactionID string) (*payment.Payment, error) {
	var model models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("gateway = ? AND transaction_id = ?", gateway, transactionID).
		Order("id DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment not found")
		}
		return nil, fmt.Errorf("failed to get payment by transaction id: %w", err)
	}
	return mappers.PaymentToDomain(&model)
}

func (r *PaymentRepository) List(ctx context.Context, filter payment.Filter) ([]*payment.Payment, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PaymentModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if filter.DealID != 0 {
		query = query.Where("deal_id = ?", filter.DealID)
	}
	if filter.Gateway != "" {
		query = query.Where("gateway = ?", filter.Gateway)
	}
	query = query.Scopes(db.CreatedBetween("created_at", filter.From, filter.To))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	var list []models.PaymentModel
	if err := query.Order("created_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	payments, err := paymentsToDomain(list)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

func (r *PaymentRepository) ListPendingBefore(ctx context.Context, before time.Time, limit int) ([]*payment.Payment, error) {
	var list []models.PaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND created_at < ?", vo.PaymentStatusPending, before).
		Order("created_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list stale pending payments: %w", err)
	}
	return paymentsToDomain(list)
}

func (r *PaymentRepository) SumSettledByDeal(ctx context.Context, dealID uint, currency string) (money.Money, error) {
	var row struct {
		Total int64
	}
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.PaymentModel{}).
		Select("COALESCE(SUM(amount - refunded_amount), 0) AS total").
		Where("deal_id = ? AND currency = ? AND status IN ?", dealID, currency, []string{
			vo.PaymentStatusCompleted.String(),
			vo.PaymentStatusPartiallyRefunded.String(),
		}).
		Scan(&row).Error; err != nil {
		return money.Money{}, fmt.Errorf("failed to sum deal payments: %w", err)
	}
	return money.New(row.Total, currency), nil
}

func paymentsToDomain(list []models.PaymentModel) ([]*payment.Payment, error) {
	payments := make([]*payment.Payment, 0, len(list))
	for i := range list {
		p, err := mappers.PaymentToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Record(ctx context.Context, event *payment.WebhookEvent) (bool, error) {
	model := mappers.WebhookEventToModel(event)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	return true, nil
}
