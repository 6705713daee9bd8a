package handlers

import (
	"context"

	"github.com/kesher-io/kesher/internal/application/auth"
	"github.com/kesher-io/kesher/internal/application/catalog"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	crmdto "github.com/kesher-io/kesher/internal/application/crm/dto"
	"github.com/kesher-io/kesher/internal/application/stats"
)

// Service interfaces for the root handlers - enables unit testing with mocks.

type loginUseCase interface {
	Execute(ctx context.Context, cmd auth.LoginCommand) (*auth.LoginResult, error)
}

type productService interface {
	Create(ctx context.Context, cmd catalog.ProductCommand) (*catalog.ProductDTO, error)
	Get(ctx context.Context, id uint) (*catalog.ProductDTO, error)
	List(ctx context.Context, q catalog.ListProductsQuery) (*commondto.ListResult[*catalog.ProductDTO], error)
	Update(ctx context.Context, id uint, cmd catalog.ProductCommand) (*catalog.ProductDTO, error)
	Delete(ctx context.Context, id uint) error
}

type statsService interface {
	Overview(ctx context.Context) (*stats.Overview, error)
	CRM(ctx context.Context) (*stats.CRMStats, error)
	Funnel(ctx context.Context) (*stats.FunnelStats, error)
	Payments(ctx context.Context) (*stats.PaymentStats, error)
	Messaging(ctx context.Context) (*stats.MessagingStats, error)
}

type leadCapturer interface {
	Capture(ctx context.Context, cmd appcrm.CaptureCommand) (*crmdto.LeadDTO, error)
}

// DatabasePinger reports whether the database answers.
type DatabasePinger interface {
	PingContext(ctx context.Context) error
}
