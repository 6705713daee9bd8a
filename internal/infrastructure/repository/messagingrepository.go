package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/mappers"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/db"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type MessageTemplateRepository struct {
	db *gorm.DB
}

func NewMessageTemplateRepository(db *gorm.DB) *MessageTemplateRepository {
	return &MessageTemplateRepository{db: db}
}

func (r *MessageTemplateRepository) Create(ctx context.Context, t *messaging.MessageTemplate) error {
	model := mappers.MessageTemplateToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("a template with this name already exists", t.Name())
		}
		return fmt.Errorf("failed to create message template: %w", err)
	}
	t.SetID(model.ID)
	return nil
}

func (r *MessageTemplateRepository) Update(ctx context.Context, t *messaging.MessageTemplate) error {
	model := mappers.MessageTemplateToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.MessageTemplateModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"channel":    model.Channel,
			"subject":    model.Subject,
			"body":       model.Body,
			"updated_at": model.UpdatedAt,
		}).Error; err != nil {
		if apperrors.IsDuplicateError(err) {
			return apperrors.NewConflictError("a template with this name already exists", t.Name())
		}
		return fmt.Errorf("failed to update message template: %w", err)
	}
	return nil
}

func (r *MessageTemplateRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.MessageTemplateModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete message template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("message template not found")
	}
	return nil
}

func (r *MessageTemplateRepository) GetByID(ctx context.Context, id uint) (*messaging.MessageTemplate, error) {
	var model models.MessageTemplateModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("message template not found")
		}
		return nil, fmt.Errorf("failed to get message template: %w", err)
	}
	return mappers.MessageTemplateToDomain(&model), nil
}

func (r *MessageTemplateRepository) GetByName(ctx context.Context, name string) (*messaging.MessageTemplate, error) {
	var model models.MessageTemplateModel
	if err := db.GetTxFromContext(ctx, r.db).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message template by name: %w", err)
	}
	return mappers.MessageTemplateToDomain(&model), nil
}

func (r *MessageTemplateRepository) List(ctx context.Context, channel messaging.Channel) ([]*messaging.MessageTemplate, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.MessageTemplateModel{})
	if channel != "" {
		query = query.Where("channel = ?", channel)
	}
	var list []models.MessageTemplateModel
	if err := query.Order("name ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list message templates: %w", err)
	}
	result := make([]*messaging.MessageTemplate, 0, len(list))
	for i := range list {
		result = append(result, mappers.MessageTemplateToDomain(&list[i]))
	}
	return result, nil
}

type EmailSequenceRepository struct {
	db *gorm.DB
}

func NewEmailSequenceRepository(db *gorm.DB) *EmailSequenceRepository {
	return &EmailSequenceRepository{db: db}
}

func (r *EmailSequenceRepository) Create(ctx context.Context, s *messaging.EmailSequence) error {
	model := mappers.EmailSequenceToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create email sequence: %w", err)
	}
	s.SetID(model.ID)
	return nil
}

func (r *EmailSequenceRepository) Update(ctx context.Context, s *messaging.EmailSequence) error {
	model := mappers.EmailSequenceToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.EmailSequenceModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"description":   model.Description,
			"trigger_event": model.Trigger,
			"active":        model.Active,
			"steps":         model.Steps,
			"updated_at":    model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update email sequence: %w", err)
	}
	return nil
}

func (r *EmailSequenceRepository) Delete(ctx context.Context, id uint) error {
	result := db.GetTxFromContext(ctx, r.db).Delete(&models.EmailSequenceModel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete email sequence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFoundError("email sequence not found")
	}
	return nil
}

func (r *EmailSequenceRepository) GetByID(ctx context.Context, id uint) (*messaging.EmailSequence, error) {
	var model models.EmailSequenceModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("email sequence not found")
		}
		return nil, fmt.Errorf("failed to get email sequence: %w", err)
	}
	return mappers.EmailSequenceToDomain(&model)
}

func (r *EmailSequenceRepository) List(ctx context.Context) ([]*messaging.EmailSequence, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).Order("name ASC"))
}

func (r *EmailSequenceRepository) ListActiveByTrigger(ctx context.Context, trigger messaging.Trigger) ([]*messaging.EmailSequence, error) {
	return r.find(db.GetTxFromContext(ctx, r.db).
		Where("trigger_event = ? AND active = ?", trigger, true).
		Order("id ASC"))
}

func (r *EmailSequenceRepository) find(query *gorm.DB) ([]*messaging.EmailSequence, error) {
	var list []models.EmailSequenceModel
	if err := query.Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list email sequences: %w", err)
	}
	result := make([]*messaging.EmailSequence, 0, len(list))
	for i := range list {
		s, err := mappers.EmailSequenceToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) Create(ctx context.Context, e *messaging.Enrollment) error {
	model := mappers.EnrollmentToModel(e)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	e.SetID(model.ID)
	return nil
}

func (r *EnrollmentRepository) Update(ctx context.Context, e *messaging.Enrollment) error {
	model := mappers.EnrollmentToModel(e)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SequenceEnrollmentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"current_step": model.CurrentStep,
			"next_send_at": model.NextSendAt,
			"status":       model.Status,
			"completed_at": model.CompletedAt,
			"updated_at":   model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id uint) (*messaging.Enrollment, error) {
	var model models.SequenceEnrollmentModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("enrollment not found")
		}
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	return mappers.EnrollmentToDomain(&model), nil
}

func (r *EnrollmentRepository) GetActive(ctx context.Context, sequenceID, contactID uint) (*messaging.Enrollment, error) {
	var model models.SequenceEnrollmentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("sequence_id = ? AND contact_id = ? AND status = ?", sequenceID, contactID, messaging.EnrollmentActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active enrollment: %w", err)
	}
	return mappers.EnrollmentToDomain(&model), nil
}

func (r *EnrollmentRepository) List(ctx context.Context, filter messaging.EnrollmentFilter) ([]*messaging.Enrollment, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SequenceEnrollmentModel{})
	if filter.SequenceID != 0 {
		query = query.Where("sequence_id = ?", filter.SequenceID)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count enrollments: %w", err)
	}

	var list []models.SequenceEnrollmentModel
	if err := query.Order("enrolled_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list enrollments: %w", err)
	}

	result := make([]*messaging.Enrollment, 0, len(list))
	for i := range list {
		result = append(result, mappers.EnrollmentToDomain(&list[i]))
	}
	return result, total, nil
}

func (r *EnrollmentRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]*messaging.Enrollment, error) {
	var list []models.SequenceEnrollmentModel
	if err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND next_send_at IS NOT NULL AND next_send_at <= ?", messaging.EnrollmentActive, now).
		Order("next_send_at ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list due enrollments: %w", err)
	}
	result := make([]*messaging.Enrollment, 0, len(list))
	for i := range list {
		result = append(result, mappers.EnrollmentToDomain(&list[i]))
	}
	return result, nil
}

type SocialMessageRepository struct {
	db *gorm.DB
}

func NewSocialMessageRepository(db *gorm.DB) *SocialMessageRepository {
	return &SocialMessageRepository{db: db}
}

func (r *SocialMessageRepository) Create(ctx context.Context, m *messaging.SocialMessage) error {
	model := mappers.SocialMessageToModel(m)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("failed to create social message: %w", err)
	}
	m.SetID(model.ID)
	return nil
}

func (r *SocialMessageRepository) Update(ctx context.Context, m *messaging.SocialMessage) error {
	model := mappers.SocialMessageToModel(m)
	if err := db.GetTxFromContext(ctx, r.db).
		Model(&models.SocialMessageModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"contact_id": model.ContactID,
			"status":     model.Status,
			"updated_at": model.UpdatedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to update social message: %w", err)
	}
	return nil
}

func (r *SocialMessageRepository) GetByID(ctx context.Context, id uint) (*messaging.SocialMessage, error) {
	var model models.SocialMessageModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("social message not found")
		}
		return nil, fmt.Errorf("failed to get social message: %w", err)
	}
	return mappers.SocialMessageToDomain(&model), nil
}

func (r *SocialMessageRepository) List(ctx context.Context, filter messaging.SocialFilter) ([]*messaging.SocialMessage, int64, error) {
	query := db.GetTxFromContext(ctx, r.db).Model(&models.SocialMessageModel{})
	if filter.Platform != "" {
		query = query.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.ContactID != 0 {
		query = query.Where("contact_id = ?", filter.ContactID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count social messages: %w", err)
	}

	var list []models.SocialMessageModel
	if err := query.Order("received_at DESC, id DESC").
		Scopes(db.Paginate(filter.Page, filter.PageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list social messages: %w", err)
	}

	result := make([]*messaging.SocialMessage, 0, len(list))
	for i := range list {
		result = append(result, mappers.SocialMessageToDomain(&list[i]))
	}
	return result, total, nil
}
