package messaging

import (
	"context"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type SequenceCommand struct {
	Name        string
	Description string
	Trigger     string
	Steps       []messaging.SequenceStep
}

type ListEnrollmentsQuery struct {
	SequenceID uint
	ContactID  uint
	Status     string
	Page       int
	PageSize   int
}

type SequenceService struct {
	repo        messaging.SequenceRepository
	enrollments messaging.EnrollmentRepository
	templates   messaging.TemplateRepository
	contacts    contact.Repository
	logger      logger.Interface
}

func NewSequenceService(
	repo messaging.SequenceRepository,
	enrollments messaging.EnrollmentRepository,
	templates messaging.TemplateRepository,
	contacts contact.Repository,
	logger logger.Interface,
) *SequenceService {
	return &SequenceService{
		repo:        repo,
		enrollments: enrollments,
		templates:   templates,
		contacts:    contacts,
		logger:      logger,
	}
}

func (s *SequenceService) checkTemplates(ctx context.Context, steps []messaging.SequenceStep) error {
	for _, st := range steps {
		t, err := s.templates.GetByName(ctx, st.TemplateName)
		if err != nil {
			return err
		}
		if t == nil {
			return apperrors.NewValidationError("unknown template in sequence step", st.TemplateName)
		}
		if t.Channel() != messaging.ChannelEmail {
			return apperrors.NewValidationError("sequence steps must use email templates", st.TemplateName)
		}
	}
	return nil
}

func (s *SequenceService) Create(ctx context.Context, cmd SequenceCommand) (*SequenceDTO, error) {
	seq, err := messaging.NewEmailSequence(cmd.Name, cmd.Description, messaging.Trigger(cmd.Trigger), cmd.Steps)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.checkTemplates(ctx, seq.Steps()); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, seq); err != nil {
		return nil, err
	}
	s.logger.Infow("email sequence created", "sequence_id", seq.ID(), "trigger", seq.Trigger(), "steps", len(seq.Steps()))
	return ToSequenceDTO(seq), nil
}

func (s *SequenceService) Get(ctx context.Context, id uint) (*SequenceDTO, error) {
	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSequenceDTO(seq), nil
}

func (s *SequenceService) List(ctx context.Context) ([]*SequenceDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*SequenceDTO, 0, len(list))
	for _, seq := range list {
		out = append(out, ToSequenceDTO(seq))
	}
	return out, nil
}

func (s *SequenceService) Update(ctx context.Context, id uint, cmd SequenceCommand) (*SequenceDTO, error) {
	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := seq.Update(cmd.Name, cmd.Description, messaging.Trigger(cmd.Trigger), cmd.Steps); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.checkTemplates(ctx, seq.Steps()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, seq); err != nil {
		return nil, err
	}
	return ToSequenceDTO(seq), nil
}

func (s *SequenceService) SetActive(ctx context.Context, id uint, active bool) (*SequenceDTO, error) {
	seq, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	seq.SetActive(active)
	if err := s.repo.Update(ctx, seq); err != nil {
		return nil, err
	}
	s.logger.Infow("email sequence toggled", "sequence_id", id, "active", active)
	return ToSequenceDTO(seq), nil
}

func (s *SequenceService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// Enroll puts the contact into the sequence. A contact already active in it
// gets the existing enrollment back.
func (s *SequenceService) Enroll(ctx context.Context, sequenceID, contactID uint) (*EnrollmentDTO, error) {
	seq, err := s.repo.GetByID(ctx, sequenceID)
	if err != nil {
		return nil, err
	}
	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		return nil, err
	}
	e, err := s.enroll(ctx, seq, contactID)
	if err != nil {
		return nil, err
	}
	return ToEnrollmentDTO(e), nil
}

func (s *SequenceService) enroll(ctx context.Context, seq *messaging.EmailSequence, contactID uint) (*messaging.Enrollment, error) {
	existing, err := s.enrollments.GetActive(ctx, seq.ID(), contactID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	e, err := messaging.NewEnrollment(seq, contactID, biztime.NowUTC())
	if err != nil {
		return nil, apperrors.NewConflictError(err.Error())
	}
	if err := s.enrollments.Create(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Infow("contact enrolled", "sequence_id", seq.ID(), "contact_id", contactID, "enrollment_id", e.ID())
	return e, nil
}

func (s *SequenceService) Unenroll(ctx context.Context, enrollmentID uint) (*EnrollmentDTO, error) {
	e, err := s.enrollments.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	e.Cancel()
	if err := s.enrollments.Update(ctx, e); err != nil {
		return nil, err
	}
	s.logger.Infow("contact unenrolled", "enrollment_id", e.ID(), "sequence_id", e.SequenceID())
	return ToEnrollmentDTO(e), nil
}

func (s *SequenceService) ListEnrollments(ctx context.Context, q ListEnrollmentsQuery) (*commondto.ListResult[*EnrollmentDTO], error) {
	filter := messaging.EnrollmentFilter{
		SequenceID: q.SequenceID,
		ContactID:  q.ContactID,
		Status:     messaging.EnrollmentStatus(q.Status),
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize
	list, total, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*EnrollmentDTO, 0, len(list))
	for _, e := range list {
		items = append(items, ToEnrollmentDTO(e))
	}
	return &commondto.ListResult[*EnrollmentDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

// Fire enrolls the contact into every active sequence started by trigger.
func (s *SequenceService) Fire(ctx context.Context, trigger messaging.Trigger, contactID uint) error {
	sequences, err := s.repo.ListActiveByTrigger(ctx, trigger)
	if err != nil {
		return err
	}
	for _, seq := range sequences {
		if _, err := s.enroll(ctx, seq, contactID); err != nil {
			s.logger.Warnw("failed to enroll contact",
				"sequence_id", seq.ID(),
				"contact_id", contactID,
				"trigger", trigger,
				"error", err,
			)
		}
	}
	return nil
}
