package messaging

import (
	"context"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	appmessaging "github.com/kesher-io/kesher/internal/application/messaging"
)

type templateService interface {
	Create(ctx context.Context, cmd appmessaging.TemplateCommand) (*appmessaging.TemplateDTO, error)
	Get(ctx context.Context, id uint) (*appmessaging.TemplateDTO, error)
	List(ctx context.Context, channel string) ([]*appmessaging.TemplateDTO, error)
	Update(ctx context.Context, id uint, cmd appmessaging.TemplateCommand) (*appmessaging.TemplateDTO, error)
	Delete(ctx context.Context, id uint) error
	Preview(ctx context.Context, id uint, vars map[string]string) (*appmessaging.PreviewDTO, error)
}

type sequenceService interface {
	Create(ctx context.Context, cmd appmessaging.SequenceCommand) (*appmessaging.SequenceDTO, error)
	Get(ctx context.Context, id uint) (*appmessaging.SequenceDTO, error)
	List(ctx context.Context) ([]*appmessaging.SequenceDTO, error)
	Update(ctx context.Context, id uint, cmd appmessaging.SequenceCommand) (*appmessaging.SequenceDTO, error)
	SetActive(ctx context.Context, id uint, active bool) (*appmessaging.SequenceDTO, error)
	Delete(ctx context.Context, id uint) error
	Enroll(ctx context.Context, sequenceID, contactID uint) (*appmessaging.EnrollmentDTO, error)
	Unenroll(ctx context.Context, enrollmentID uint) (*appmessaging.EnrollmentDTO, error)
	ListEnrollments(ctx context.Context, q appmessaging.ListEnrollmentsQuery) (*commondto.ListResult[*appmessaging.EnrollmentDTO], error)
}

type processSequencesUseCase interface {
	Execute(ctx context.Context) (*appmessaging.ProcessSequencesResult, error)
}

type socialService interface {
	CreateInbound(ctx context.Context, cmd appmessaging.InboundCommand) (*appmessaging.SocialMessageDTO, error)
	Get(ctx context.Context, id uint) (*appmessaging.SocialMessageDTO, error)
	List(ctx context.Context, q appmessaging.ListSocialQuery) (*commondto.ListResult[*appmessaging.SocialMessageDTO], error)
	ChangeStatus(ctx context.Context, id uint, status string) (*appmessaging.SocialMessageDTO, error)
	Reply(ctx context.Context, id uint, content string) (*appmessaging.SocialMessageDTO, error)
	LinkContact(ctx context.Context, id, contactID uint) (*appmessaging.SocialMessageDTO, error)
}
