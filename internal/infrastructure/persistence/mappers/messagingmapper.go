package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func MessageTemplateToModel(t *messaging.MessageTemplate) *models.MessageTemplateModel {
	return &models.MessageTemplateModel{
		ID:        t.ID(),
		Name:      t.Name(),
		Channel:   t.Channel().String(),
		Subject:   t.Subject(),
		Body:      t.Body(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

func MessageTemplateToDomain(model *models.MessageTemplateModel) *messaging.MessageTemplate {
	return messaging.ReconstructMessageTemplate(model.ID, model.Name, messaging.Channel(model.Channel),
		model.Subject, model.Body, model.CreatedAt, model.UpdatedAt)
}

func EmailSequenceToModel(s *messaging.EmailSequence) *models.EmailSequenceModel {
	return &models.EmailSequenceModel{
		ID:          s.ID(),
		Name:        s.Name(),
		Description: s.Description(),
		Trigger:     string(s.Trigger()),
		Active:      s.IsActive(),
		Steps:       toJSON(s.Steps()),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

func EmailSequenceToDomain(model *models.EmailSequenceModel) (*messaging.EmailSequence, error) {
	var steps []messaging.SequenceStep
	if len(model.Steps) > 0 {
		if err := json.Unmarshal(model.Steps, &steps); err != nil {
			return nil, fmt.Errorf("failed to decode sequence steps: %w", err)
		}
	}
	return messaging.ReconstructEmailSequence(model.ID, model.Name, model.Description,
		messaging.Trigger(model.Trigger), model.Active, steps, model.CreatedAt, model.UpdatedAt), nil
}

func EnrollmentToModel(e *messaging.Enrollment) *models.SequenceEnrollmentModel {
	return &models.SequenceEnrollmentModel{
		ID:          e.ID(),
		SequenceID:  e.SequenceID(),
		ContactID:   e.ContactID(),
		CurrentStep: e.CurrentStep(),
		NextSendAt:  e.NextSendAt(),
		Status:      string(e.Status()),
		EnrolledAt:  e.EnrolledAt(),
		CompletedAt: e.CompletedAt(),
		UpdatedAt:   e.UpdatedAt(),
	}
}

func EnrollmentToDomain(model *models.SequenceEnrollmentModel) *messaging.Enrollment {
	return messaging.ReconstructEnrollment(messaging.EnrollmentParams{
		ID:          model.ID,
		SequenceID:  model.SequenceID,
		ContactID:   model.ContactID,
		CurrentStep: model.CurrentStep,
		NextSendAt:  model.NextSendAt,
		Status:      messaging.EnrollmentStatus(model.Status),
		EnrolledAt:  model.EnrolledAt,
		CompletedAt: model.CompletedAt,
		UpdatedAt:   model.UpdatedAt,
	})
}

func SocialMessageToModel(m *messaging.SocialMessage) *models.SocialMessageModel {
	return &models.SocialMessageModel{
		ID:           m.ID(),
		Platform:     string(m.Platform()),
		Direction:    string(m.Direction()),
		ExternalID:   m.ExternalID(),
		SenderHandle: m.SenderHandle(),
		ContactID:    m.ContactID(),
		ReplyToID:    m.ReplyToID(),
		Content:      m.Content(),
		Status:       string(m.Status()),
		ReceivedAt:   m.ReceivedAt(),
		CreatedAt:    m.CreatedAt(),
		UpdatedAt:    m.UpdatedAt(),
	}
}

func SocialMessageToDomain(model *models.SocialMessageModel) *messaging.SocialMessage {
	return messaging.ReconstructSocialMessage(messaging.SocialMessageParams{
		ID:           model.ID,
		Platform:     messaging.Platform(model.Platform),
		Direction:    messaging.Direction(model.Direction),
		ExternalID:   model.ExternalID,
		SenderHandle: model.SenderHandle,
		ContactID:    model.ContactID,
		ReplyToID:    model.ReplyToID,
		Content:      model.Content,
		Status:       messaging.SocialStatus(model.Status),
		ReceivedAt:   model.ReceivedAt,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}
