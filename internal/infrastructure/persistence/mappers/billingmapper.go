package mappers

import (
	"fmt"

	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func PaymentPlanToModel(pp *billing.PaymentPlan) (*models.PaymentPlanModel, []models.PlanInstallmentModel) {
	plan := &models.PaymentPlanModel{
		ID:               pp.ID(),
		ContactID:        pp.ContactID(),
		DealID:           pp.DealID(),
		Description:      pp.Description(),
		Total:            pp.Total().Amount(),
		Currency:         pp.Total().Currency(),
		InstallmentCount: pp.InstallmentCount(),
		Frequency:        pp.Frequency().String(),
		StartDate:        pp.StartDate(),
		Status:           string(pp.Status()),
		CreatedAt:        pp.CreatedAt(),
		UpdatedAt:        pp.UpdatedAt(),
	}

	installments := make([]models.PlanInstallmentModel, 0, len(pp.Installments()))
	for _, inst := range pp.Installments() {
		installments = append(installments, models.PlanInstallmentModel{
			ID:        inst.ID,
			PlanID:    pp.ID(),
			Number:    inst.Number,
			DueDate:   inst.DueDate,
			Amount:    inst.Amount.Amount(),
			Currency:  inst.Amount.Currency(),
			Status:    string(inst.Status),
			PaymentID: inst.PaymentID,
			PaidAt:    inst.PaidAt,
			UpdatedAt: pp.UpdatedAt(),
		})
	}
	return plan, installments
}

func PaymentPlanToDomain(model *models.PaymentPlanModel, installments []models.PlanInstallmentModel) (*billing.PaymentPlan, error) {
	freq := billing.Frequency(model.Frequency)
	if !freq.IsValid() {
		return nil, fmt.Errorf("invalid plan frequency: %s", model.Frequency)
	}

	items := make([]*billing.Installment, 0, len(installments))
	for _, m := range installments {
		items = append(items, &billing.Installment{
			ID:        m.ID,
			PlanID:    m.PlanID,
			Number:    m.Number,
			DueDate:   m.DueDate,
			Amount:    money.New(m.Amount, m.Currency),
			Status:    billing.InstallmentStatus(m.Status),
			PaymentID: m.PaymentID,
			PaidAt:    m.PaidAt,
		})
	}

	return billing.ReconstructPaymentPlan(billing.PaymentPlanParams{
		ID:               model.ID,
		ContactID:        model.ContactID,
		DealID:           model.DealID,
		Description:      model.Description,
		Total:            money.New(model.Total, model.Currency),
		InstallmentCount: model.InstallmentCount,
		Frequency:        freq,
		StartDate:        model.StartDate,
		Status:           billing.PlanStatus(model.Status),
		Installments:     items,
		CreatedAt:        model.CreatedAt,
		UpdatedAt:        model.UpdatedAt,
	}), nil
}

func RecurringPaymentToModel(r *billing.RecurringPayment) *models.RecurringPaymentModel {
	return &models.RecurringPaymentModel{
		ID:                r.ID(),
		ContactID:         r.ContactID(),
		ProductID:         r.ProductID(),
		Description:       r.Description(),
		Amount:            r.Amount().Amount(),
		Currency:          r.Amount().Currency(),
		Frequency:         r.Frequency().String(),
		AnchorDay:         r.AnchorDay(),
		StartDate:         r.StartDate(),
		NextChargeDate:    r.NextChargeDate(),
		RetryAt:           r.RetryAt(),
		EndDate:           r.EndDate(),
		MaxCharges:        r.MaxCharges(),
		ChargeCount:       r.ChargeCount(),
		FailedAttempts:    r.FailedAttempts(),
		LastChargedAt:     r.LastChargedAt(),
		LastFailureReason: r.LastFailureReason(),
		Gateway:           r.Gateway(),
		CardToken:         r.CardToken(),
		CardExpiry:        r.CardExpiry(),
		Status:            string(r.Status()),
		Version:           r.Version(),
		CreatedAt:         r.CreatedAt(),
		UpdatedAt:         r.UpdatedAt(),
	}
}

func RecurringPaymentToDomain(model *models.RecurringPaymentModel) (*billing.RecurringPayment, error) {
	freq := billing.Frequency(model.Frequency)
	if !freq.IsValid() {
		return nil, fmt.Errorf("invalid recurring frequency: %s", model.Frequency)
	}
	status := billing.RecurringStatus(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid recurring status: %s", model.Status)
	}
	return billing.ReconstructRecurringPayment(billing.RecurringPaymentParams{
		ID:                model.ID,
		ContactID:         model.ContactID,
		ProductID:         model.ProductID,
		Description:       model.Description,
		Amount:            money.New(model.Amount, model.Currency),
		Frequency:         freq,
		AnchorDay:         model.AnchorDay,
		StartDate:         model.StartDate,
		NextChargeDate:    model.NextChargeDate,
		RetryAt:           model.RetryAt,
		EndDate:           model.EndDate,
		MaxCharges:        model.MaxCharges,
		ChargeCount:       model.ChargeCount,
		FailedAttempts:    model.FailedAttempts,
		LastChargedAt:     model.LastChargedAt,
		LastFailureReason: model.LastFailureReason,
		Gateway:           model.Gateway,
		CardToken:         model.CardToken,
		CardExpiry:        model.CardExpiry,
		Status:            status,
		Version:           model.Version,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}

func ReminderToModel(r *billing.Reminder) *models.ReminderModel {
	return &models.ReminderModel{
		ID:                 r.ID(),
		ContactID:          r.ContactID(),
		Kind:               string(r.Kind()),
		PlanID:             r.PlanID(),
		InstallmentID:      r.InstallmentID(),
		RecurringPaymentID: r.RecurringPaymentID(),
		PaymentID:          r.PaymentID(),
		Amount:             r.Amount().Amount(),
		Currency:           r.Amount().Currency(),
		DueDate:            r.DueDate(),
		RemindAt:           r.RemindAt(),
		Channel:            r.Channel(),
		Status:             string(r.Status()),
		Attempts:           r.Attempts(),
		LastError:          r.LastError(),
		SentAt:             r.SentAt(),
		CreatedAt:          r.CreatedAt(),
		UpdatedAt:          r.UpdatedAt(),
	}
}

func ReminderToDomain(model *models.ReminderModel) (*billing.Reminder, error) {
	kind := billing.ReminderKind(model.Kind)
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid reminder kind: %s", model.Kind)
	}
	return billing.ReconstructReminder(billing.ReminderParams{
		ID:                 model.ID,
		ContactID:          model.ContactID,
		Kind:               kind,
		PlanID:             model.PlanID,
		InstallmentID:      model.InstallmentID,
		RecurringPaymentID: model.RecurringPaymentID,
		PaymentID:          model.PaymentID,
		Amount:             money.New(model.Amount, model.Currency),
		DueDate:            model.DueDate,
		RemindAt:           model.RemindAt,
		Channel:            model.Channel,
		Status:             billing.ReminderStatus(model.Status),
		Attempts:           model.Attempts,
		LastError:          model.LastError,
		SentAt:             model.SentAt,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
	}), nil
}
