// Package crm holds the contact, lead and deal use cases.
package crm

import (
	"context"
	"fmt"
	"strings"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/application/crm/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type ContactService struct {
	repo   contact.Repository
	logger logger.Interface
}

func NewContactService(repo contact.Repository, logger logger.Interface) *ContactService {
	return &ContactService{repo: repo, logger: logger}
}

type ContactCommand struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Source    string
	Notes     string
	Tags      []string
}

type ListContactsQuery struct {
	Search   string
	Status   string
	Source   string
	Tag      string
	Page     int
	PageSize int
}

func (s *ContactService) Create(ctx context.Context, cmd ContactCommand) (*dto.ContactDTO, error) {
	c, err := contact.NewContact(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone, cmd.Source)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	c.SetNotes(cmd.Notes)
	if err := c.SetTags(cmd.Tags); err != nil {
		return nil, common.ValidationError(err)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Warnw("failed to create contact", "error", err, "email", utils.MaskEmail(c.Email()))
		return nil, err
	}

	s.logger.Infow("contact created", "contact_id", c.ID(), "source", c.Source())
	return dto.ToContactDTO(c), nil
}

func (s *ContactService) Get(ctx context.Context, id uint) (*dto.ContactDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToContactDTO(c), nil
}

func (s *ContactService) List(ctx context.Context, q ListContactsQuery) (*commondto.ListResult[*dto.ContactDTO], error) {
	p := utils.NormalizePagination(q.Page, q.PageSize)
	status := contact.Status(q.Status)
	if q.Status != "" && !status.IsValid() {
		return nil, apperrors.NewValidationError("invalid contact status", q.Status)
	}

	contacts, total, err := s.repo.List(ctx, contact.Filter{
		Search:   strings.TrimSpace(q.Search),
		Status:   status,
		Source:   strings.TrimSpace(q.Source),
		Tag:      strings.TrimSpace(q.Tag),
		Page:     p.Page,
		PageSize: p.PageSize,
	})
	if err != nil {
		s.logger.Errorw("failed to list contacts", "error", err)
		return nil, err
	}
	return &commondto.ListResult[*dto.ContactDTO]{
		Items:    dto.ToContactDTOs(contacts),
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	}, nil
}

func (s *ContactService) Update(ctx context.Context, id uint, cmd ContactCommand) (*dto.ContactDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateDetails(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := c.SetTags(cmd.Tags); err != nil {
		return nil, common.ValidationError(err)
	}
	c.SetNotes(cmd.Notes)
	if cmd.Source != "" {
		c.SetSource(cmd.Source)
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return dto.ToContactDTO(c), nil
}

func (s *ContactService) ChangeStatus(ctx context.Context, id uint, status string) (*dto.ContactDTO, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ChangeStatus(contact.Status(status)); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return dto.ToContactDTO(c), nil
}

func (s *ContactService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("contact deleted", "contact_id", id)
	return nil
}

// MarkCustomer promotes the contact to customer. It is a no-op for existing customers.
func (s *ContactService) MarkCustomer(ctx context.Context, id uint) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.MarkCustomer() {
		return nil
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return fmt.Errorf("failed to mark contact %d as customer: %w", id, err)
	}
	s.logger.Infow("contact became a customer", "contact_id", id)
	return nil
}

// FindExisting looks a contact up by email first, then by phone. It returns nil, nil when neither matches.
func (s *ContactService) FindExisting(ctx context.Context, email, phone string) (*contact.Contact, error) {
	normEmail, err := contact.NormalizeEmail(email)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if normEmail != "" {
		c, err := s.repo.GetByEmail(ctx, normEmail)
		if err != nil || c != nil {
			return c, err
		}
	}
	if normPhone := contact.NormalizePhone(phone); normPhone != "" {
		return s.repo.GetByPhone(ctx, normPhone)
	}
	return nil, nil
}

type UpsertOutcome string

const (
	UpsertCreated UpsertOutcome = "created"
	UpsertUpdated UpsertOutcome = "updated"
)

// Upsert creates the contact or fills the matched one with the non-empty fields of cmd.
// With dryRun nothing is written.
func (s *ContactService) Upsert(ctx context.Context, cmd ContactCommand, dryRun bool) (*contact.Contact, UpsertOutcome, error) {
	existing, err := s.FindExisting(ctx, cmd.Email, cmd.Phone)
	if err != nil {
		return nil, "", err
	}

	if existing == nil {
		c, err := contact.NewContact(cmd.FirstName, cmd.LastName, cmd.Email, cmd.Phone, cmd.Source)
		if err != nil {
			return nil, "", common.ValidationError(err)
		}
		c.SetNotes(cmd.Notes)
		if err := c.SetTags(cmd.Tags); err != nil {
			return nil, "", common.ValidationError(err)
		}
		if !dryRun {
			if err := s.repo.Create(ctx, c); err != nil {
				return nil, "", err
			}
		}
		return c, UpsertCreated, nil
	}

	err = existing.UpdateDetails(
		firstNonEmpty(cmd.FirstName, existing.FirstName()),
		firstNonEmpty(cmd.LastName, existing.LastName()),
		firstNonEmpty(cmd.Email, existing.Email()),
		firstNonEmpty(cmd.Phone, existing.Phone()),
	)
	if err != nil {
		return nil, "", common.ValidationError(err)
	}
	if cmd.Notes != "" {
		existing.SetNotes(cmd.Notes)
	}
	if len(cmd.Tags) > 0 {
		if err := existing.SetTags(append(existing.Tags(), cmd.Tags...)); err != nil {
			return nil, "", common.ValidationError(err)
		}
	}
	if !dryRun {
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, "", err
		}
	}
	return existing, UpsertUpdated, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
