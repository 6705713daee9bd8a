package messaging

import (
	"context"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

type TemplateCommand struct {
	Name    string
	Channel string
	Subject string
	Body    string
}

type TemplateService struct {
	repo   messaging.TemplateRepository
	html   HTMLRenderer
	logger logger.Interface
}

func NewTemplateService(repo messaging.TemplateRepository, html HTMLRenderer, logger logger.Interface) *TemplateService {
	return &TemplateService{repo: repo, html: html, logger: logger}
}

func (s *TemplateService) Create(ctx context.Context, cmd TemplateCommand) (*TemplateDTO, error) {
	existing, err := s.repo.GetByName(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("a template with this name already exists", cmd.Name)
	}
	t, err := messaging.NewMessageTemplate(cmd.Name, messaging.Channel(cmd.Channel), cmd.Subject, cmd.Body)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Infow("message template created", "template_id", t.ID(), "name", t.Name())
	return ToTemplateDTO(t), nil
}

func (s *TemplateService) Get(ctx context.Context, id uint) (*TemplateDTO, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToTemplateDTO(t), nil
}

func (s *TemplateService) List(ctx context.Context, channel string) ([]*TemplateDTO, error) {
	ch := messaging.Channel(channel)
	if channel != "" && !ch.IsValid() {
		return nil, apperrors.NewValidationError("invalid channel", channel)
	}
	list, err := s.repo.List(ctx, ch)
	if err != nil {
		return nil, err
	}
	out := make([]*TemplateDTO, 0, len(list))
	for _, t := range list {
		out = append(out, ToTemplateDTO(t))
	}
	return out, nil
}

func (s *TemplateService) Update(ctx context.Context, id uint, cmd TemplateCommand) (*TemplateDTO, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Name != t.Name() {
		other, err := s.repo.GetByName(ctx, cmd.Name)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperrors.NewConflictError("a template with this name already exists", cmd.Name)
		}
	}
	if err := t.Update(cmd.Name, messaging.Channel(cmd.Channel), cmd.Subject, cmd.Body); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return ToTemplateDTO(t), nil
}

func (s *TemplateService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("message template deleted", "template_id", id)
	return nil
}

// Preview renders the template with sample values without sending it.
func (s *TemplateService) Preview(ctx context.Context, id uint, vars map[string]string) (*PreviewDTO, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	subject, body, err := t.Render(vars)
	if err != nil {
		return nil, apperrors.NewValidationError("failed to render template", err.Error())
	}
	preview := &PreviewDTO{Subject: subject, Body: body}
	if t.Channel() == messaging.ChannelEmail {
		html, err := s.html.Render(body)
		if err != nil {
			return nil, err
		}
		preview.HTMLBody = string(html)
	}
	return preview, nil
}
