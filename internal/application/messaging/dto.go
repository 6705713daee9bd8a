package messaging

import (
	"time"

	"github.com/kesher-io/kesher/internal/domain/messaging"
)

type TemplateDTO struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Channel   string    `json:"channel"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToTemplateDTO(t *messaging.MessageTemplate) *TemplateDTO {
	return &TemplateDTO{
		ID:        t.ID(),
		Name:      t.Name(),
		Channel:   t.Channel().String(),
		Subject:   t.Subject(),
		Body:      t.Body(),
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

type PreviewDTO struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	HTMLBody string `json:"html_body,omitempty"`
}

type SequenceDTO struct {
	ID          uint                     `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Trigger     string                   `json:"trigger"`
	Active      bool                     `json:"active"`
	Steps       []messaging.SequenceStep `json:"steps"`
	CreatedAt   time.Time                `json:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
}

func ToSequenceDTO(s *messaging.EmailSequence) *SequenceDTO {
	return &SequenceDTO{
		ID:          s.ID(),
		Name:        s.Name(),
		Description: s.Description(),
		Trigger:     string(s.Trigger()),
		Active:      s.IsActive(),
		Steps:       s.Steps(),
		CreatedAt:   s.CreatedAt(),
		UpdatedAt:   s.UpdatedAt(),
	}
}

type EnrollmentDTO struct {
	ID          uint       `json:"id"`
	SequenceID  uint       `json:"sequence_id"`
	ContactID   uint       `json:"contact_id"`
	CurrentStep int        `json:"current_step"`
	NextSendAt  *time.Time `json:"next_send_at,omitempty"`
	Status      string     `json:"status"`
	EnrolledAt  time.Time  `json:"enrolled_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func ToEnrollmentDTO(e *messaging.Enrollment) *EnrollmentDTO {
	return &EnrollmentDTO{
		ID:          e.ID(),
		SequenceID:  e.SequenceID(),
		ContactID:   e.ContactID(),
		CurrentStep: e.CurrentStep(),
		NextSendAt:  e.NextSendAt(),
		Status:      string(e.Status()),
		EnrolledAt:  e.EnrolledAt(),
		CompletedAt: e.CompletedAt(),
	}
}

type SocialMessageDTO struct {
	ID           uint      `json:"id"`
	Platform     string    `json:"platform"`
	Direction    string    `json:"direction"`
	ExternalID   string    `json:"external_id,omitempty"`
	SenderHandle string    `json:"sender_handle"`
	ContactID    *uint     `json:"contact_id,omitempty"`
	ReplyToID    *uint     `json:"reply_to_id,omitempty"`
	Content      string    `json:"content"`
	Status       string    `json:"status"`
	ReceivedAt   time.Time `json:"received_at"`
}

func ToSocialMessageDTO(m *messaging.SocialMessage) *SocialMessageDTO {
	return &SocialMessageDTO{
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
	}
}
