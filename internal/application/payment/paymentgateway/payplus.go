package paymentgateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

const (
	PayPlusGatewayName = "payplus"

	payplusApproved      = "000"
	payplusHashHeader    = "hash"
	payplusMaxBodyBytes  = 256 << 10
	payplusStatusSuccess = "success"
)

// PayPlusGateway wraps the PayPlus REST API.
type PayPlusGateway struct {
	cfg        config.PayPlusConfig
	httpClient *http.Client
	logger     logger.Interface
}

func NewPayPlusGateway(cfg config.PayPlusConfig, httpClient *http.Client, log logger.Interface) *PayPlusGateway {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &PayPlusGateway{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log.Named("gateway.payplus"),
	}
}

func (g *PayPlusGateway) Name() string { return PayPlusGatewayName }

type payplusResults struct {
	Status      string `json:"status"`
	Code        int    `json:"code"`
	Description string `json:"description"`
}

type payplusCustomer struct {
	CustomerName string `json:"customer_name,omitempty"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type payplusLinkRequest struct {
	PaymentPageUID  string          `json:"payment_page_uid"`
	Amount          float64         `json:"amount"`
	CurrencyCode    string          `json:"currency_code"`
	MoreInfo        string          `json:"more_info"`
	MaxPayments     int             `json:"payments,omitempty"`
	Customer        payplusCustomer `json:"customer"`
	CallbackURL     string          `json:"refURL_callback,omitempty"`
	SuccessURL      string          `json:"refURL_success,omitempty"`
	FailureURL      string          `json:"refURL_failure,omitempty"`
	CreateToken     bool            `json:"create_token"`
	SendEmailAprove bool            `json:"sendEmailApproval"`
}

type payplusLinkResponse struct {
	Results payplusResults `json:"results"`
	Data    struct {
		PaymentPageLink string `json:"payment_page_link"`
		PageRequestUID  string `json:"page_request_uid"`
	} `json:"data"`
}

type payplusChargeRequest struct {
	TerminalUID  string          `json:"terminal_uid"`
	Amount       float64         `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
	UseToken     bool            `json:"use_token"`
	Token        string          `json:"token"`
	MoreInfo     string          `json:"more_info"`
	Payments     int             `json:"payments,omitempty"`
	Customer     payplusCustomer `json:"customer"`
}

type payplusTransaction struct {
	UID        string          `json:"uid"`
	StatusCode string          `json:"status_code"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency"`
	MoreInfo   string          `json:"more_info"`
	Date       string          `json:"date"`
}

type payplusTransactionResponse struct {
	Results payplusResults `json:"results"`
	Data    struct {
		Transaction payplusTransaction `json:"transaction"`
		CardInfo    struct {
			Token string `json:"token"`
		} `json:"card_information"`
	} `json:"data"`
}

type payplusRefundRequest struct {
	TransactionUID string  `json:"transaction_uid"`
	Amount         float64 `json:"amount"`
	MoreInfo       string  `json:"more_info"`
}

type payplusWebhook struct {
	TransactionType string             `json:"transaction_type"`
	Transaction     payplusTransaction `json:"transaction"`
	Data            struct {
		CardInfo struct {
			Token string `json:"token"`
		} `json:"card_information"`
	} `json:"data"`
}

func (g *PayPlusGateway) ProcessPayment(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	customer := payplusCustomer{
		CustomerName: req.Customer.Name,
		Email:        req.Customer.Email,
		Phone:        req.Customer.Phone,
	}

	if req.CardToken == "" {
		body := payplusLinkRequest{
			PaymentPageUID: g.cfg.PaymentPageID,
			Amount:         req.Amount.Decimal().InexactFloat64(),
			CurrencyCode:   req.Amount.Currency(),
			MoreInfo:       req.Reference,
			Customer:       customer,
			CallbackURL:    req.NotifyURL,
			SuccessURL:     req.SuccessURL,
			FailureURL:     req.FailureURL,
			CreateToken:    true,
		}
		if req.Installments > 1 {
			body.MaxPayments = req.Installments
		}
		var resp payplusLinkResponse
		if err := g.call(ctx, "/PaymentPages/generateLink", body, &resp); err != nil {
			return nil, err
		}
		if resp.Results.Status != payplusStatusSuccess || resp.Data.PaymentPageLink == "" {
			return nil, fmt.Errorf("payplus could not create a payment page: %s", resp.Results.Description)
		}
		return &ChargeResult{
			Status:        ChargePending,
			RedirectURL:   resp.Data.PaymentPageLink,
			TransactionID: resp.Data.PageRequestUID,
		}, nil
	}

	body := payplusChargeRequest{
		TerminalUID:  g.cfg.TerminalUID,
		Amount:       req.Amount.Decimal().InexactFloat64(),
		CurrencyCode: req.Amount.Currency(),
		UseToken:     true,
		Token:        req.CardToken,
		MoreInfo:     req.Reference,
		Customer:     customer,
	}
	if req.Installments > 1 {
		body.Payments = req.Installments
	}
	var resp payplusTransactionResponse
	if err := g.call(ctx, "/Transactions/Charge", body, &resp); err != nil {
		return nil, err
	}

	tx := resp.Data.Transaction
	if resp.Results.Status != payplusStatusSuccess || tx.StatusCode != payplusApproved {
		g.logger.Warnw("payplus declined charge",
			"reference", req.Reference,
			"status_code", tx.StatusCode,
			"description", resp.Results.Description,
		)
		return &ChargeResult{
			Status:        ChargeDeclined,
			TransactionID: tx.UID,
			Message:       declineMessage(resp.Results.Description, tx.StatusCode),
		}, nil
	}
	token := resp.Data.CardInfo.Token
	if token == "" {
		token = req.CardToken
	}
	return &ChargeResult{Status: ChargeApproved, TransactionID: tx.UID, CardToken: token}, nil
}

func (g *PayPlusGateway) RefundPayment(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	if req.TransactionID == "" {
		return nil, fmt.Errorf("payplus refund needs the transaction uid")
	}
	body := payplusRefundRequest{
		TransactionUID: req.TransactionID,
		Amount:         req.Amount.Decimal().InexactFloat64(),
		MoreInfo:       req.Reference,
	}
	var resp payplusTransactionResponse
	if err := g.call(ctx, "/Transactions/RefundByTransactionUID", body, &resp); err != nil {
		return nil, err
	}
	tx := resp.Data.Transaction
	if resp.Results.Status != payplusStatusSuccess || tx.StatusCode != payplusApproved {
		return &RefundResult{Approved: false, Message: declineMessage(resp.Results.Description, tx.StatusCode)}, nil
	}
	return &RefundResult{RefundID: tx.UID, Approved: true}, nil
}

// VerifyWebhook checks the base64 HMAC-SHA256 of the raw body sent in the hash header.
func (g *PayPlusGateway) VerifyWebhook(header http.Header, body []byte) error {
	got := header.Get(payplusHashHeader)
	if got == "" {
		return ErrInvalidSignature
	}
	if !hmac.Equal([]byte(got), []byte(g.sign(body))) {
		return ErrInvalidSignature
	}
	return nil
}

func (g *PayPlusGateway) ParseWebhook(_ http.Header, body []byte) (*WebhookEvent, error) {
	var hook payplusWebhook
	if err := json.Unmarshal(body, &hook); err != nil {
		return nil, fmt.Errorf("failed to decode payplus webhook: %w", err)
	}
	tx := hook.Transaction
	if tx.UID == "" || tx.MoreInfo == "" {
		return nil, fmt.Errorf("payplus webhook is missing the transaction uid or reference")
	}

	eventType := strings.ToLower(hook.TransactionType)
	if eventType == "" {
		eventType = "charge"
	}
	event := &WebhookEvent{
		EventID:       tx.UID + ":" + eventType,
		EventType:     eventType,
		Reference:     tx.MoreInfo,
		TransactionID: tx.UID,
		Amount:        money.FromDecimal(tx.Amount, tx.Currency),
		OccurredAt:    parsePayPlusDate(tx.Date),
	}
	switch {
	case eventType == "refund":
		event.Status = EventRefunded
	case tx.StatusCode == payplusApproved:
		event.Status = EventPaid
	default:
		event.Status = EventFailed
		event.Reason = fmt.Sprintf("payplus status %s", tx.StatusCode)
	}
	return event, nil
}

func (g *PayPlusGateway) sign(body []byte) string {
	mac := hmac.New(sha256.New, []byte(g.cfg.SecretKey))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (g *PayPlusGateway) call(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode payplus request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build payplus request: %w", err)
	}
	auth, err := json.Marshal(map[string]string{"api_key": g.cfg.APIKey, "secret_key": g.cfg.SecretKey})
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", string(auth))

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		g.logger.Errorw("payplus request failed", "path", path, "error", err)
		return fmt.Errorf("payplus request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, payplusMaxBodyBytes))
	if err != nil {
		return fmt.Errorf("failed to read payplus response: %w", err)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("payplus returned HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode payplus response (HTTP %d): %w", resp.StatusCode, err)
	}
	return nil
}

func declineMessage(description, code string) string {
	if description != "" {
		return description
	}
	return fmt.Sprintf("payplus status %s", code)
}

func parsePayPlusDate(s string) time.Time {
	if s != "" {
		if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, biztime.Location()); err == nil {
			return t.UTC()
		}
	}
	return biztime.NowUTC()
}
