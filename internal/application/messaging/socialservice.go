package messaging

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type InboundCommand struct {
	Platform     string
	ExternalID   string
	SenderHandle string
	Content      string
	ReceivedAt   time.Time
}

type ListSocialQuery struct {
	Platform  string
	Status    string
	Direction string
	ContactID uint
	Page      int
	PageSize  int
}

type SocialService struct {
	repo     messaging.SocialMessageRepository
	contacts contact.Repository
	logger   logger.Interface
}

func NewSocialService(repo messaging.SocialMessageRepository, contacts contact.Repository, logger logger.Interface) *SocialService {
	return &SocialService{repo: repo, contacts: contacts, logger: logger}
}

// CreateInbound stores a received message. WhatsApp senders are matched to
// contacts by phone number.
func (s *SocialService) CreateInbound(ctx context.Context, cmd InboundCommand) (*SocialMessageDTO, error) {
	m, err := messaging.NewInboundMessage(messaging.Platform(cmd.Platform), cmd.ExternalID, cmd.SenderHandle, cmd.Content, cmd.ReceivedAt)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if m.Platform() == messaging.PlatformWhatsApp {
		if phone := contact.NormalizePhone(m.SenderHandle()); phone != "" {
			c, err := s.contacts.GetByPhone(ctx, phone)
			if err != nil {
				return nil, err
			}
			if c != nil {
				_ = m.LinkContact(c.ID())
			}
		}
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Infow("social message received",
		"message_id", m.ID(),
		"platform", m.Platform(),
		"linked", m.ContactID() != nil,
	)
	return ToSocialMessageDTO(m), nil
}

func (s *SocialService) Get(ctx context.Context, id uint) (*SocialMessageDTO, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToSocialMessageDTO(m), nil
}

func (s *SocialService) List(ctx context.Context, q ListSocialQuery) (*commondto.ListResult[*SocialMessageDTO], error) {
	filter := messaging.SocialFilter{
		Platform:  messaging.Platform(q.Platform),
		Status:    messaging.SocialStatus(q.Status),
		Direction: messaging.Direction(q.Direction),
		ContactID: q.ContactID,
	}
	if q.Platform != "" && !filter.Platform.IsValid() {
		return nil, apperrors.NewValidationError("invalid platform", q.Platform)
	}
	if q.Status != "" && !filter.Status.IsValid() {
		return nil, apperrors.NewValidationError("invalid status", q.Status)
	}
	pg := utils.NormalizePagination(q.Page, q.PageSize)
	filter.Page, filter.PageSize = pg.Page, pg.PageSize

	list, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]*SocialMessageDTO, 0, len(list))
	for _, m := range list {
		items = append(items, ToSocialMessageDTO(m))
	}
	return &commondto.ListResult[*SocialMessageDTO]{Items: items, Total: total, Page: filter.Page, PageSize: filter.PageSize}, nil
}

func (s *SocialService) ChangeStatus(ctx context.Context, id uint, status string) (*SocialMessageDTO, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.ChangeStatus(messaging.SocialStatus(status)); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return ToSocialMessageDTO(m), nil
}

// Reply records the outbound answer; delivery to the platform happens outside Kesher.
func (s *SocialService) Reply(ctx context.Context, id uint, content string) (*SocialMessageDTO, error) {
	original, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reply, err := original.Reply(content)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Create(ctx, reply); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, original); err != nil {
		return nil, err
	}
	s.logger.Infow("social message replied", "message_id", original.ID(), "reply_id", reply.ID())
	return ToSocialMessageDTO(reply), nil
}

func (s *SocialService) LinkContact(ctx context.Context, id, contactID uint) (*SocialMessageDTO, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.contacts.GetByID(ctx, contactID); err != nil {
		return nil, err
	}
	if err := m.LinkContact(contactID); err != nil {
		return nil, common.ValidationError(err)
	}
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	return ToSocialMessageDTO(m), nil
}
