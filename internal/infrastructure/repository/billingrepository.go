package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type PaymentPlanRepository struct {
	db *gorm.DB
}

func NewPaymentPlanRepository(db *gorm.DB) *PaymentPlanRepository {
	return &PaymentPlanRepository{db: db}
}

func (r *PaymentPlanRepository) Create(ctx context.Context, plan *billing.PaymentPlan) error {
	planModel, installments := mappers.PaymentPlanToModel(plan)

	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(planModel).Error; err != nil {
			return fmt.Errorf("failed to create payment plan: %w", err)
		}
		plan.SetID(planModel.ID)

		for i := range installments {
			installments[i].PlanID = planModel.ID
		}
		if len(installments) > 0 {
			if err := tx.Create(&installments).Error; err != nil {
				return fmt.Errorf("failed to create plan installments: %w", err)
			}
		}
		for i, inst := range plan.Installments() {
			inst.ID = installments[i].ID
		}
		return nil
	})
}

func (r *PaymentPlanRepository) Update(ctx context.Context, plan *billing.PaymentPlan) error {
	planModel, installments := mappers.PaymentPlanToModel(plan)

	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PaymentPlanModel{}).
			Where("id = ?", planModel.ID).
			Updates(map[string]interface{}{
				"status":     planModel.Status,
				"updated_at": planModel.UpdatedAt,
			}).Error; err != nil {
			return fmt.Errorf("failed to update payment plan: %w", err)
		}
		for _, inst := range installments {
			if err := tx.Model(&models.PlanInstallmentModel{}).
				Where("id = ?", inst.ID).
				Updates(map[string]interface{}{
					"status":     inst.Status,
					"payment_id": inst.PaymentID,
					"paid_at":    inst.PaidAt,
					"updated_at": inst.UpdatedAt,
				}).Error; err != nil {
				return fmt.Errorf("failed to update installment %d: %w", inst.Number, err)
			}
		}
		return nil
	})
}

func (r *PaymentPlanRepository) GetByID(ctx context.Context, id uint) (*billing.PaymentPlan, error) {
	var model models.PaymentPlanModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("payment plan not found")
		}
		return nil, fmt.Errorf("failed to get payment plan: %w", err)
	}
	return r.load(ctx, &model)
}

func (r *PaymentPlanRepository) GetByInstallmentID(ctx context.Context, installmentID uint) (*billing.PaymentPlan, error) {
	var inst models.PlanInstallmentModel
	if err := db.GetTxFromContext(ctx, r.db).First(&inst, installmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("installment not found")
		}
		return nil, fmt.Errorf("failed to get installment: %w", err)
	}
	return r.GetByID(ctx, inst.PlanID)
}

func (r *PaymentPlanRepository) List(ctx context.Context, filter billing.PlanFilter) ([]*billing.PaymentPlan, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.PaymentPlanModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payment plans: %w", err)
	}

	var list []models.PaymentPlanModel
	if err := query.Order("created_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payment plans: %w", err)
	}

	plans := make([]*billing.PaymentPlan, 0, len(list))
	for i := range list {
		plan, err := r.load(ctx, &list[i])
		if err != nil {
			return nil, 0, err
		}
		plans = append(plans, plan)
	}
	return plans, total, nil
}

func (r *PaymentPlanRepository) load(ctx context.Context, model *models.PaymentPlanModel) (*billing.PaymentPlan, error) {
	var installments []models.PlanInstallmentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("plan_id = ?", model.ID).
		Order("number ASC").
		Find(&installments).Error; err != nil {
		return nil, fmt.Errorf("failed to load plan installments: %w", err)
	}
	return mappers.PaymentPlanToDomain(model, installments)
}

type RecurringPaymentRepository struct {
	db *gorm.DB
}

func NewRecurringPaymentRepository(db *gorm.DB) *RecurringPaymentRepository {
	return &RecurringPaymentRepository{db: db}
}

func (r *RecurringPaymentRepository) Create(ctx context.Context, rp *billing.RecurringPayment) error {
	model := mappers.RecurringPaymentToModel(rp)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create recurring payment: %w", err)
	}
	rp.SetID(model.ID)
	rp.MarkPersisted()
	return nil
}

// Update writes the schedule only if the stored version is the one it was loaded at.
func (r *RecurringPaymentRepository) Update(ctx context.Context, rp *billing.RecurringPayment) error {
	model := mappers.RecurringPaymentToModel(rp)
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.RecurringPaymentModel{}).
		Where("id = ? AND version = ?", model.ID, rp.PersistedVersion()).
		Updates(map[string]interface{}{
			"description":         model.Description,
			"amount":              model.Amount,
			"currency":            model.Currency,
			"next_charge_date":    model.NextChargeDate,
			"retry_at":            model.RetryAt,
			"charge_count":        model.ChargeCount,
			"failed_attempts":     model.FailedAttempts,
			"last_charged_at":     model.LastChargedAt,
			"last_failure_reason": model.LastFailureReason,
			"card_token":          model.CardToken,
			"card_expiry":         model.CardExpiry,
			"status":              model.Status,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update recurring payment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewConflictError("recurring payment was modified concurrently")
	}
	rp.MarkPersisted()
	return nil
}

func (r *RecurringPaymentRepository) GetByID(ctx context.Context, id uint) (*billing.RecurringPayment, error) {
	var model models.RecurringPaymentModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("recurring payment not found")
		}
		return nil, fmt.Errorf("failed to get recurring payment: %w", err)
	}
	return mappers.RecurringPaymentToDomain(&model)
}

func (r *RecurringPaymentRepository) List(ctx context.Context, filter billing.RecurringFilter) ([]*billing.RecurringPayment, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.RecurringPaymentModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count recurring payments: %w", err)
	}

	var list []models.RecurringPaymentModel
	if err := query.Order("next_charge_date ASC, id ASC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list recurring payments: %w", err)
	}

	result, err := recurringToDomain(list)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *RecurringPaymentRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*billing.RecurringPayment, error) {
	var list []models.RecurringPaymentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", billing.RecurringStatusActive).
		Where("(retry_at IS NULL AND next_charge_date <= ?) OR (retry_at IS NOT NULL AND retry_at <= ?)", now, now).
		Order("next_charge_date ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list due recurring payments: %w", err)
	}
	return recurringToDomain(list)
}

func recurringToDomain(list []models.RecurringPaymentModel) ([]*billing.RecurringPayment, error) {
	result := make([]*billing.RecurringPayment, 0, len(list))
	for i := range list {
		rp, err := mappers.RecurringPaymentToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, rp)
	}
	return result, nil
}

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, rem *billing.Reminder) error {
	model := mappers.ReminderToModel(rem)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	rem.SetID(model.ID)
	return nil
}

func (r *ReminderRepository) CreateBatch(ctx context.Context, reminders []*billing.Reminder) error {
	if len(reminders) == 0 {
		return nil
	}
	list := make([]*models.ReminderModel, len(reminders))
	for i, rem := range reminders {
		list[i] = mappers.ReminderToModel(rem)
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(&list).Error; err != nil {
		return fmt.Errorf("failed to create reminders: %w", err)
	}
	for i, rem := range reminders {
		rem.SetID(list[i].ID)
	}
	return nil
}

func (r *ReminderRepository) Update(ctx context.Context, rem *billing.Reminder) error {
	model := mappers.ReminderToModel(rem)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReminderModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"status":     model.Status,
			"attempts":   model.Attempts,
			"last_error": model.LastError,
			"sent_at":    model.SentAt,
			"updated_at": model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	return nil
}

func (r *ReminderRepository) GetByID(ctx context.Context, id uint) (*billing.Reminder, error) {
	var model models.ReminderModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("reminder not found")
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return mappers.ReminderToDomain(&model)
}

func (r *ReminderRepository) List(ctx context.Context, filter billing.ReminderFilter) ([]*billing.Reminder, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.ReminderModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reminders: %w", err)
	}

	var list []models.ReminderModel
	if err := query.Order("remind_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reminders: %w", err)
	}

	result, err := remindersToDomain(list)
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}

func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*billing.Reminder, error) {
	var list []models.ReminderModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND remind_at <= ?", billing.ReminderStatusPending, now).
		Order("remind_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list due reminders: %w", err)
	}
	return remindersToDomain(list)
}

func (r *ReminderRepository) CancelPendingForInstallment(ctx context.Context, installmentID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ReminderModel{}).
		Where("installment_id = ? AND status = ?", installmentID, billing.ReminderStatusPending).
		Updates(map[string]interface{}{
			"status":     billing.ReminderStatusCancelled,
			"updated_at": time.Now().UTC(),
		}).Error; err != nil {
		return fmt.Errorf("failed to cancel installment reminders: %w", err)
	}
	return nil
}

func remindersToDomain(list []models.ReminderModel) ([]*billing.Reminder, error) {
	result := make([]*billing.Reminder, 0, len(list))
	for i := range list {
		rem, err := mappers.ReminderToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, rem)
	}
	return result, nil
}
