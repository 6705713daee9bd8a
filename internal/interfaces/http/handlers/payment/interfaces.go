package payment

import (
	"context"

	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/application/invoice"
	"github.com/kesher-io/kesher/internal/application/payment/usecases"
)

type createPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreatePaymentCommand) (*usecases.PaymentDTO, error)
}

type getPaymentUseCase interface {
	Execute(ctx context.Context, id uint) (*usecases.PaymentDTO, error)
	ByReference(ctx context.Context, reference string) (*usecases.PaymentDTO, error)
}

type listPaymentsUseCase interface {
	Execute(ctx context.Context, q usecases.ListPaymentsQuery) (*commondto.ListResult[*usecases.PaymentDTO], error)
}

type refundPaymentUseCase interface {
	Execute(ctx context.Context, cmd usecases.RefundPaymentCommand) (*usecases.PaymentDTO, error)
}

type cancelPaymentUseCase interface {
	Execute(ctx context.Context, id uint, reason string) (*usecases.PaymentDTO, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd usecases.WebhookCommand) (*usecases.WebhookResult, error)
}

type invoiceService interface {
	GenerateForPayment(ctx context.Context, paymentID uint) (*invoice.InvoiceDTO, error)
	Get(ctx context.Context, id uint) (*invoice.InvoiceDTO, error)
	List(ctx context.Context, q invoice.ListQuery) (*commondto.ListResult[*invoice.InvoiceDTO], error)
	Cancel(ctx context.Context, id uint) (*invoice.InvoiceDTO, error)
	Send(ctx context.Context, id uint) error
}
