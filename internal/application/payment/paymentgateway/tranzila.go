package paymentgateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const (
	TranzilaGatewayName = "tranzila"

	tranzilaApproved     = "000"
	tranzilaCurrencyILS  = "1"
	tranzilaIframeBase   = "https://direct.tranzila.com"
	tranzilaSigField     = "ksig"
	tranzilaRefField     = "myref"
	tranzilaMaxBodyBytes = 64 << 10
)

// TranzilaGateway talks to the Tranzila CGI endpoint with form-encoded requests.
// Token charges go straight to the endpoint; everything else goes through the hosted iframe.
type TranzilaGateway struct {
	cfg        config.TranzilaConfig
	httpClient *http.Client
	logger     logger.Interface
}

func NewTranzilaGateway(cfg config.TranzilaConfig, httpClient *http.Client, log logger.Interface) *TranzilaGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &TranzilaGateway{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log.Named("gateway.tranzila"),
	}
}

func (g *TranzilaGateway) Name() string { return TranzilaGatewayName }

func (g *TranzilaGateway) ProcessPayment(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if req.CardToken == "" {
		return &ChargeResult{Status: ChargePending, RedirectURL: g.iframeURL(req)}, nil
	}

	form := g.baseForm(req.Amount)
	form.Set("TranzilaTK", req.CardToken)
	form.Set("expdate", req.CardExpiry)
	form.Set(tranzilaRefField, req.Reference)
	form.Set("pdesc", req.Description)
	if req.Installments > 1 {
		first, rest := installmentParts(req.Amount, req.Installments)
		form.Set("cred_type", "8")
		form.Set("npay", strconv.Itoa(req.Installments-1))
		form.Set("fpay", first.Decimal().StringFixed(2))
		form.Set("spay", rest.Decimal().StringFixed(2))
	} else {
		form.Set("cred_type", "1")
	}

	values, err := g.post(ctx, g.cfg.Endpoint, form)
	if err != nil {
		return nil, err
	}

	code := values.Get("Response")
	if code != tranzilaApproved {
		g.logger.Warnw("tranzila declined charge", "reference", req.Reference, "response", code)
		return &ChargeResult{
			Status:  ChargeDeclined,
			Message: fmt.Sprintf("tranzila response %s", code),
		}, nil
	}
	return &ChargeResult{
		Status:        ChargeApproved,
		TransactionID: values.Get("index"),
		CardToken:     req.CardToken,
	}, nil
}

func (g *TranzilaGateway) RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("tranzila refund needs the original transaction index")
	}
	form := g.baseForm(req.Amount)
	form.Set("tranmode", "C"+req.TransactionID)
	form.Set("CreditPass", g.cfg.Password)
	form.Set(tranzilaRefField, req.Reference)

	values, err := g.post(ctx, g.cfg.Endpoint, form)
	if err != nil {
		return nil, err
	}
	code := values.Get("Response")
	if code != tranzilaApproved {
		return &RefundResult{Approved: false, Message: fmt.Sprintf("tranzila response %s", code)}, nil
	}
	return &RefundResult{RefundID: values.Get("index"), Approved: true}, nil
}

// VerifyWebhook checks the per-payment signature echoed back in the notify body.
// The signature only binds reference and amount; the payer can see it, so a paid
// notify must still pass ConfirmWebhook.
func (g *TranzilaGateway) VerifyWebhook(_ http.Header, body []byte) error {
	if g.cfg.NotifyToken == "" {
		return fmt.Errorf("tranzila notify token is not configured")
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return ErrInvalidSignature
	}
	amount, err := money.ParseMajor(values.Get("sum"), currencyFromTranzila(values.Get("currency")))
	if err != nil {
		return ErrInvalidSignature
	}
	want := g.signature(values.Get(tranzilaRefField), amount)
	got, err := hex.DecodeString(values.Get(tranzilaSigField))
	if err != nil || !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}

// ConfirmWebhook looks the transaction index up on Tranzila and checks that it was
// approved for the same reference and amount.
func (g *TranzilaGateway) ConfirmWebhook(ctx context.Context, event *WebhookEvent) error {
	if event.Status != EventPaid {
		return nil
	}
	if event.TransactionID == "" {
		return fmt.Errorf("%w: notification has no transaction index", ErrNotConfirmed)
	}
	if g.cfg.QueryEndpoint == "" {
		return fmt.Errorf("tranzila query endpoint is not configured")
	}

	form := url.Values{}
	form.Set("supplier", g.cfg.Terminal)
	form.Set("TranzilaPW", g.cfg.Password)
	form.Set("index", event.TransactionID)
	values, err := g.post(ctx, g.cfg.QueryEndpoint, form)
	if err != nil {
		return err
	}

	if code := values.Get("Response"); code != tranzilaApproved {
		return fmt.Errorf("%w: index %s has response %s", ErrNotConfirmed, event.TransactionID, code)
	}
	if values.Get(tranzilaRefField) != event.Reference {
		return fmt.Errorf("%w: index %s belongs to another reference", ErrNotConfirmed, event.TransactionID)
	}
	amount, err := money.ParseMajor(values.Get("sum"), currencyFromTranzila(values.Get("currency")))
	if err != nil || !amount.Equals(event.Amount) {
		return fmt.Errorf("%w: index %s amount differs", ErrNotConfirmed, event.TransactionID)
	}
	return nil
}

func (g *TranzilaGateway) ParseWebhook(_ http.Header, body []byte) (*WebhookEvent, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tranzila notification: %w", err)
	}

	reference := values.Get(tranzilaRefField)
	if reference == "" {
		return nil, fmt.Errorf("tranzila notification has no %s", tranzilaRefField)
	}
	amount, err := money.ParseMajor(values.Get("sum"), currencyFromTranzila(values.Get("currency")))
	if err != nil {
		return nil, fmt.Errorf("tranzila notification amount: %w", err)
	}

	event := &WebhookEvent{
		EventType:     "notify",
		Reference:     reference,
		TransactionID: values.Get("index"),
		Amount:        amount,
		OccurredAt:    biztime.NowUTC(),
	}
	if code := values.Get("Response"); code == tranzilaApproved {
		event.Status = EventPaid
	} else {
		event.Status = EventFailed
		event.Reason = fmt.Sprintf("tranzila response %s", code)
	}

	if event.TransactionID != "" {
		event.EventID = event.TransactionID + ":" + values.Get("Response")
	} else {
		event.EventID = uuid.NewSHA1(uuid.NameSpaceURL, body).String()
	}
	return event, nil
}

func (g *TranzilaGateway) baseForm(amount money.Money) url.Values {
	form := url.Values{}
	form.Set("supplier", g.cfg.Terminal)
	form.Set("TranzilaPW", g.cfg.Password)
	form.Set("sum", amount.Decimal().StringFixed(2))
	form.Set("currency", currencyToTranzila(amount.Currency()))
	return form
}

func (g *TranzilaGateway) post(ctx context.Context, endpoint string, form url.Values) (url.Values, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build tranzila request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Errorw("tranzila request failed", "error", err)
		return nil, fmt.Errorf("tranzila request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, tranzilaMaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read tranzila response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tranzila returned HTTP %d", resp.StatusCode)
	}
	values, err := url.ParseQuery(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tranzila response: %w", err)
	}
	return values, nil
}

func (g *TranzilaGateway) iframeURL(req ChargeRequest) string {
	q := url.Values{}
	q.Set("sum", req.Amount.Decimal().StringFixed(2))
	q.Set("currency", currencyToTranzila(req.Amount.Currency()))
	q.Set("pdesc", req.Description)
	q.Set(tranzilaRefField, req.Reference)
	q.Set(tranzilaSigField, hex.EncodeToString(g.signature(req.Reference, req.Amount)))
	q.Set("contact", req.Customer.Name)
	q.Set("email", req.Customer.Email)
	q.Set("phone", req.Customer.Phone)
	if req.NotifyURL != "" {
		q.Set("notify_url_address", req.NotifyURL)
	}
	if req.SuccessURL != "" {
		q.Set("success_url_address", req.SuccessURL)
	}
	if req.FailureURL != "" {
		q.Set("fail_url_address", req.FailureURL)
	}
	if req.Installments > 1 {
		q.Set("cred_type", "8")
		q.Set("maxpay", strconv.Itoa(req.Installments))
	}
	return fmt.Sprintf("%s/%s/iframenew.php?%s", tranzilaIframeBase, url.PathEscape(g.cfg.Terminal), q.Encode())
}

func (g *TranzilaGateway) signature(reference string, amount money.Money) []byte {
	mac := hmac.New(sha256.New, []byte(g.cfg.NotifyToken))
	mac.Write([]byte(reference + "|" + amount.Decimal().StringFixed(2) + "|" + currencyToTranzila(amount.Currency())))
	return mac.Sum(nil)
}

// installmentParts returns the first payment and the equal follow-up payments.
func installmentParts(total money.Money, n int) (first, rest money.Money) {
	each := total.Amount() / int64(n)
	firstAmount := total.Amount() - each*int64(n-1)
	return money.New(firstAmount, total.Currency()), money.New(each, total.Currency())
}

func currencyToTranzila(currency string) string {
	switch currency {
	case "USD":
		return "2"
	case "EUR":
		return "978"
	default:
		return tranzilaCurrencyILS
	}
}

func currencyFromTranzila(code string) string {
	switch code {
	case "2":
		return "USD"
	case "978":
		return "EUR"
	default:
		return money.DefaultCurrency
	}
}
