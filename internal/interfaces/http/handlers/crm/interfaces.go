package crm

import (
	"context"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	"github.com/kesher-io/kesher/internal/application/crm/dto"
)

type contactService interface {
	Create(ctx context.Context, cmd appcrm.ContactCommand) (*dto.ContactDTO, error)
	Get(ctx context.Context, id uint) (*dto.ContactDTO, error)
	List(ctx context.Context, q appcrm.ListContactsQuery) (*commondto.ListResult[*dto.ContactDTO], error)
	Update(ctx context.Context, id uint, cmd appcrm.ContactCommand) (*dto.ContactDTO, error)
	ChangeStatus(ctx context.Context, id uint, status string) (*dto.ContactDTO, error)
	Delete(ctx context.Context, id uint) error
}

type leadService interface {
	Create(ctx context.Context, cmd appcrm.LeadCommand) (*dto.LeadDTO, error)
	Get(ctx context.Context, id uint) (*dto.LeadDTO, error)
	List(ctx context.Context, q appcrm.ListLeadsQuery) (*commondto.ListResult[*dto.LeadDTO], error)
	Update(ctx context.Context, id uint, cmd appcrm.LeadCommand) (*dto.LeadDTO, error)
	MoveStage(ctx context.Context, id uint, stage, reason string) (*dto.LeadDTO, error)
	Delete(ctx context.Context, id uint) error
}

type dealService interface {
	Create(ctx context.Context, cmd appcrm.DealCommand) (*dto.DealDTO, error)
	Get(ctx context.Context, id uint) (*dto.DealDTO, error)
	List(ctx context.Context, q appcrm.ListDealsQuery) (*commondto.ListResult[*dto.DealDTO], error)
	Update(ctx context.Context, id uint, cmd appcrm.DealCommand) (*dto.DealDTO, error)
	ChangeStatus(ctx context.Context, id uint, status string) (*dto.DealDTO, error)
	Delete(ctx context.Context, id uint) error
}
