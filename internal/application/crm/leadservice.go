package crm

import (
	"context"
	"strings"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/application/crm/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/lead"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

// SequenceTrigger enrolls a contact in every active sequence started by trigger.
type SequenceTrigger interface {
	Fire(ctx context.Context, trigger messaging.Trigger, contactID uint) error
}

type LeadService struct {
	repo     lead.Repository
	contacts *ContactService
	trigger  SequenceTrigger
	currency string
	logger   logger.Interface
}

func NewLeadService(
	repo lead.Repository,
	contacts *ContactService,
	trigger SequenceTrigger,
	currency string,
	logger logger.Interface,
) *LeadService {
	return &LeadService{
		repo:     repo,
		contacts: contacts,
		trigger:  trigger,
		currency: currency,
		logger:   logger,
	}
}

type LeadCommand struct {
	ContactID      uint
	Source         string
	ProductID      *uint
	EstimatedValue string
	Notes          string
}

type ListLeadsQuery struct {
	Stage     string
	ContactID uint
	Source    string
	Page      int
	PageSize  int
}

func (s *LeadService) Create(ctx context.Context, cmd LeadCommand) (*dto.LeadDTO, error) {
	if _, err := s.contacts.repo.GetByID(ctx, cmd.ContactID); err != nil {
		return nil, err
	}
	value, err := common.ParseAmount(cmd.EstimatedValue, s.currency, "estimated value")
	if err != nil {
		return nil, err
	}
	l, err := lead.NewLead(cmd.ContactID, cmd.Source, cmd.ProductID, value, cmd.Notes)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.Errorw("failed to create lead", "error", err, "contact_id", cmd.ContactID)
		return nil, err
	}

	s.logger.Infow("lead created", "lead_id", l.ID(), "contact_id", l.ContactID(), "source", l.Source())
	s.fireLeadCreated(ctx, l.ContactID())
	return dto.ToLeadDTO(l), nil
}

func (s *LeadService) fireLeadCreated(ctx context.Context, contactID uint) {
	if s.trigger == nil {
		return
	}
	if err := s.trigger.Fire(ctx, messaging.TriggerLeadCreated, contactID); err != nil {
		s.logger.Warnw("failed to start lead sequences", "error", err, "contact_id", contactID)
	}
}

func (s *LeadService) Get(ctx context.Context, id uint) (*dto.LeadDTO, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToLeadDTO(l), nil
}

func (s *LeadService) List(ctx context.Context, q ListLeadsQuery) (*commondto.ListResult[*dto.LeadDTO], error) {
	p := utils.NormalizePagination(q.Page, q.PageSize)
	stage := lead.Stage(q.Stage)
	if q.Stage != "" && !stage.IsValid() {
		return nil, apperrors.NewValidationError("invalid lead stage", q.Stage)
	}
	leads, total, err := s.repo.List(ctx, lead.Filter{
		Stage:     stage,
		ContactID: q.ContactID,
		Source:    strings.TrimSpace(q.Source),
		Page:      p.Page,
		PageSize:  p.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return &commondto.ListResult[*dto.LeadDTO]{Items: dto.ToLeadDTOs(leads), Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

func (s *LeadService) Update(ctx context.Context, id uint, cmd LeadCommand) (*dto.LeadDTO, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	value, err := common.ParseAmount(cmd.EstimatedValue, s.currency, "estimated value")
	if err != nil {
		return nil, err
	}
	if err := l.UpdateDetails(cmd.Source, cmd.ProductID, value, cmd.Notes); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return dto.ToLeadDTO(l), nil
}

// MoveStage moves the lead through the funnel. Winning a lead turns its contact into a customer.
func (s *LeadService) MoveStage(ctx context.Context, id uint, stage, reason string) (*dto.LeadDTO, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := l.Stage()
	if err := l.MoveTo(lead.Stage(stage), reason); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}

	if l.Stage() == lead.StageWon && previous != lead.StageWon {
		if err := s.contacts.MarkCustomer(ctx, l.ContactID()); err != nil {
			s.logger.Warnw("lead won but contact was not updated", "error", err, "lead_id", l.ID())
		}
	}
	s.logger.Infow("lead stage changed", "lead_id", l.ID(), "from", previous, "to", l.Stage())
	return dto.ToLeadDTO(l), nil
}

func (s *LeadService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// CaptureCommand is a contact form submission from the public site.
type CaptureCommand struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Message   string
	ProductID *uint
	Source    string
}

// Capture reuses the contact matched by email or phone, or creates one, and opens a new lead.
func (s *LeadService) Capture(ctx context.Context, cmd CaptureCommand) (*dto.LeadDTO, error) {
	source := cmd.Source
	if source == "" {
		source = "website"
	}

	c, err := s.contacts.FindExisting(ctx, cmd.Email, cmd.Phone)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c, err = contact.NewContact(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone, source)
		if err != nil {
			return nil, common.ValidationError(err)
		}
		if err := s.contacts.repo.Create(ctx, c); err != nil {
			return nil, err
		}
	}

	l, err := lead.NewLead(c.ID(), source, cmd.ProductID, money.Zero(s.currency), cmd.Message)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Infow("lead captured from website", "lead_id", l.ID(), "contact_id", c.ID())
	s.fireLeadCreated(ctx, c.ID())
	return dto.ToLeadDTO(l), nil
}
