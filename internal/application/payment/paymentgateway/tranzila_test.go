package paymentgateway

import (
	"context"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/config"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

func newTestTranzila(endpoint string) *TranzilaGateway {
	return NewTranzilaGateway(config.TranzilaConfig{
		Enabled:     true,
		Terminal:    "kesher",
		Password:    "pw",
		Endpoint:    endpoint,
		NotifyToken: "notify-secret",
	}, nil, logger.NewNopLogger())
}

func TestTranzila_TokenChargeApproved(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		_, _ = io.WriteString(w, "Response=000&index=778899&ConfirmationCode=0123456")
	}))
	defer srv.Close()

	g := newTestTranzila(srv.URL)
	res, err := g.ProcessPayment(context.Background(), ChargeRequest{
		Reference:  "PAY-ABC",
		Amount:     money.New(123450, "ILS"),
		CardToken:  "tok-1",
		CardExpiry: "1228",
	})
	require.NoError(t, err)
	assert.Equal(t, ChargeApproved, res.Status)
	assert.Equal(t, "778899", res.TransactionID)

	assert.Equal(t, "kesher", got.Get("supplier"))
	assert.Equal(t, "1234.50", got.Get("sum"))
	assert.Equal(t, "1", got.Get("currency"))
	assert.Equal(t, "tok-1", got.Get("TranzilaTK"))
	assert.Equal(t, "1", got.Get("cred_type"))
	assert.Equal(t, "PAY-ABC", got.Get("myref"))
}

func TestTranzila_InstallmentCharge(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		_, _ = io.WriteString(w, "Response=000&index=1")
	}))
	defer srv.Close()

	g := newTestTranzila(srv.URL)
	_, err := g.ProcessPayment(context.Background(), ChargeRequest{
		Reference:    "PAY-INST",
		Amount:       money.New(100000, "ILS"),
		Installments: 3,
		CardToken:    "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, "8", got.Get("cred_type"))
	assert.Equal(t, "2", got.Get("npay"))
	assert.Equal(t, "333.34", got.Get("fpay"))
	assert.Equal(t, "333.33", got.Get("spay"))
}

func TestTranzila_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Response=004")
	}))
	defer srv.Close()

	res, err := newTestTranzila(srv.URL).ProcessPayment(context.Background(), ChargeRequest{
		Reference: "PAY-X",
		Amount:    money.New(100, "ILS"),
		CardToken: "tok",
	})
	require.NoError(t, err)
	assert.Equal(t, ChargeDeclined, res.Status)
	assert.Contains(t, res.Message, "004")
}

func TestTranzila_NoTokenReturnsHostedPage(t *testing.T) {
	g := newTestTranzila("http://unused")
	res, err := g.ProcessPayment(context.Background(), ChargeRequest{
		Reference: "PAY-HOSTED",
		Amount:    money.New(5000, "ILS"),
		NotifyURL: "https://kesher.example/api/webhooks/payments/tranzila",
	})
	require.NoError(t, err)
	assert.Equal(t, ChargePending, res.Status)
	assert.True(t, strings.HasPrefix(res.RedirectURL, "https://direct.tranzila.com/kesher/iframenew.php?"))
	assert.Contains(t, res.RedirectURL, "myref=PAY-HOSTED")
	assert.Contains(t, res.RedirectURL, "notify_url_address=")
}

func TestTranzila_Refund(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		_, _ = io.WriteString(w, "Response=000&index=900")
	}))
	defer srv.Close()

	res, err := newTestTranzila(srv.URL).RefundPayment(context.Background(), RefundRequest{
		Reference:     "PAY-R",
		TransactionID: "778899",
		Amount:        money.New(2000, "ILS"),
	})
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, "900", res.RefundID)
	assert.Equal(t, "C778899", got.Get("tranmode"))
	assert.Equal(t, "20.00", got.Get("sum"))
}

func signedNotify(g *TranzilaGateway, fields string, ref string, amount money.Money) []byte {
	return []byte(fields + "&ksig=" + hex.EncodeToString(g.signature(ref, amount)))
}

func TestTranzila_Webhook(t *testing.T) {
	g := newTestTranzila("http://unused")

	body := signedNotify(g, "Response=000&index=55&sum=99.90&currency=1&myref=PAY-W", "PAY-W", money.New(9990, "ILS"))
	require.NoError(t, g.VerifyWebhook(http.Header{}, body))

	event, err := g.ParseWebhook(http.Header{}, body)
	require.NoError(t, err)
	assert.Equal(t, EventPaid, event.Status)
	assert.Equal(t, "PAY-W", event.Reference)
	assert.Equal(t, "55", event.TransactionID)
	assert.Equal(t, "55:000", event.EventID)
	assert.Equal(t, int64(9990), event.Amount.Amount())

	bad := []byte("Response=000&index=55&sum=99.90&myref=PAY-W&ksig=00ff")
	assert.ErrorIs(t, g.VerifyWebhook(http.Header{}, bad), ErrInvalidSignature)
}

func TestTranzila_HostedPageDoesNotLeakNotifyToken(t *testing.T) {
	g := newTestTranzila("http://unused")
	res, err := g.ProcessPayment(context.Background(), ChargeRequest{
		Reference: "PAY-LEAK",
		Amount:    money.New(5000, "ILS"),
	})
	require.NoError(t, err)
	assert.NotContains(t, res.RedirectURL, "notify-secret")

	u, err := url.Parse(res.RedirectURL)
	require.NoError(t, err)
	sig := u.Query().Get("ksig")
	require.NotEmpty(t, sig)

	// The payer can read ksig from the page URL but cannot reuse it for another amount.
	cheaper := []byte("Response=000&index=1&sum=1.00&currency=1&myref=PAY-LEAK&ksig=" + sig)
	assert.ErrorIs(t, g.VerifyWebhook(http.Header{}, cheaper), ErrInvalidSignature)

	other := []byte("Response=000&index=1&sum=50.00&currency=1&myref=PAY-OTHER&ksig=" + sig)
	assert.ErrorIs(t, g.VerifyWebhook(http.Header{}, other), ErrInvalidSignature)

	same := []byte("Response=000&index=1&sum=50.00&currency=1&myref=PAY-LEAK&ksig=" + sig)
	assert.NoError(t, g.VerifyWebhook(http.Header{}, same))
}

func TestTranzila_ConfirmWebhook(t *testing.T) {
	reply := "Response=000&index=55&myref=PAY-C&sum=99.90&currency=1"
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got, _ = url.ParseQuery(string(body))
		_, _ = io.WriteString(w, reply)
	}))
	defer srv.Close()

	g := newTestTranzila("http://unused")
	g.cfg.QueryEndpoint = srv.URL
	ctx := context.Background()
	event := &WebhookEvent{
		Reference:     "PAY-C",
		TransactionID: "55",
		Status:        EventPaid,
		Amount:        money.New(9990, "ILS"),
	}

	require.NoError(t, g.ConfirmWebhook(ctx, event))
	assert.Equal(t, "55", got.Get("index"))
	assert.Equal(t, "kesher", got.Get("supplier"))

	reply = "Response=004&index=55&myref=PAY-C&sum=99.90&currency=1"
	assert.ErrorIs(t, g.ConfirmWebhook(ctx, event), ErrNotConfirmed, "forged approval")

	reply = "Response=000&index=55&myref=PAY-OTHER&sum=99.90&currency=1"
	assert.ErrorIs(t, g.ConfirmWebhook(ctx, event), ErrNotConfirmed, "index of another payment")

	reply = "Response=000&index=55&myref=PAY-C&sum=1.00&currency=1"
	assert.ErrorIs(t, g.ConfirmWebhook(ctx, event), ErrNotConfirmed, "smaller amount")

	noIndex := *event
	noIndex.TransactionID = ""
	assert.ErrorIs(t, g.ConfirmWebhook(ctx, &noIndex), ErrNotConfirmed)

	failed := *event
	failed.Status = EventFailed
	assert.NoError(t, g.ConfirmWebhook(ctx, &failed))
}

func TestTranzila_WebhookWithoutIndexGetsStableEventID(t *testing.T) {
	g := newTestTranzila("http://unused")
	body := signedNotify(g, "Response=033&sum=10&myref=PAY-F", "PAY-F", money.New(1000, "ILS"))
	require.NoError(t, g.VerifyWebhook(http.Header{}, body))

	first, err := g.ParseWebhook(http.Header{}, body)
	require.NoError(t, err)
	second, err := g.ParseWebhook(http.Header{}, body)
	require.NoError(t, err)

	assert.Equal(t, EventFailed, first.Status)
	assert.Equal(t, first.EventID, second.EventID)
	assert.NotEmpty(t, first.EventID)
}
