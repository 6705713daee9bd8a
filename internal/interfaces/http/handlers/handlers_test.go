package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/auth"
	"github.com/kesher-io/kesher/internal/application/catalog"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	appcrm "github.com/kesher-io/kesher/internal/application/crm"
	crmdto "github.com/kesher-io/kesher/internal/application/crm/dto"
	"github.com/kesher-io/kesher/internal/application/stats"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/testutil"
	"github.com/kesher-io/kesher/internal/shared/errors"
)

// =====================================================================
// Mocks
// =====================================================================

type mockLoginUC struct {
	result  *auth.LoginResult
	err     error
	lastCmd auth.LoginCommand
}

func (m *mockLoginUC) Execute(ctx context.Context, cmd auth.LoginCommand) (*auth.LoginResult, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

type mockProductService struct {
	result  *catalog.ProductDTO
	err     error
	lastCmd catalog.ProductCommand
	query   catalog.ListProductsQuery
}

func (m *mockProductService) Create(ctx context.Context, cmd catalog.ProductCommand) (*catalog.ProductDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

func (m *mockProductService) Get(ctx context.Context, id uint) (*catalog.ProductDTO, error) {
	return m.result, m.err
}

func (m *mockProductService) List(ctx context.Context, q catalog.ListProductsQuery) (*commondto.ListResult[*catalog.ProductDTO], error) {
	m.query = q
	return &commondto.ListResult[*catalog.ProductDTO]{Items: []*catalog.ProductDTO{}, Page: q.Page, PageSize: q.PageSize}, m.err
}

func (m *mockProductService) Update(ctx context.Context, id uint, cmd catalog.ProductCommand) (*catalog.ProductDTO, error) {
	m.lastCmd = cmd
	return m.result, m.err
}

func (m *mockProductService) Delete(ctx context.Context, id uint) error {
	return m.err
}

type mockStatsService struct {
	err error
}

func (m *mockStatsService) Overview(ctx context.Context) (*stats.Overview, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &stats.Overview{}, nil
}

func (m *mockStatsService) CRM(ctx context.Context) (*stats.CRMStats, error) {
	return &stats.CRMStats{}, m.err
}

func (m *mockStatsService) Funnel(ctx context.Context) (*stats.FunnelStats, error) {
	return &stats.FunnelStats{}, m.err
}

func (m *mockStatsService) Payments(ctx context.Context) (*stats.PaymentStats, error) {
	return &stats.PaymentStats{}, m.err
}

func (m *mockStatsService) Messaging(ctx context.Context) (*stats.MessagingStats, error) {
	return &stats.MessagingStats{}, m.err
}

type mockCapturer struct {
	result  *crmdto.LeadDTO
	err     error
	lastCmd appcrm.CaptureCommand
	called  bool
}

func (m *mockCapturer) Capture(ctx context.Context, cmd appcrm.CaptureCommand) (*crmdto.LeadDTO, error) {
	m.called = true
	m.lastCmd = cmd
	return m.result, m.err
}

type mockPinger struct {
	err error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	return m.err
}

// =====================================================================
// Auth
// =====================================================================

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		uc := &mockLoginUC{result: &auth.LoginResult{
			AccessToken: "token",
			TokenType:   "Bearer",
			ExpiresIn:   3600,
			ExpiresAt:   time.Now().Add(time.Hour),
		}}
		h := NewAuthHandler(uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "admin@kesher.local",
			"password": "secret",
		})
		h.Login(c)

		assert.Equal(t, http.StatusOK, w.Code)
		var got auth.LoginResult
		_, err := testutil.DecodeData(w, &got)
		require.NoError(t, err)
		assert.Equal(t, "token", got.AccessToken)
		assert.Equal(t, "admin@kesher.local", uc.lastCmd.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc := &mockLoginUC{err: errors.NewUnauthorizedError("invalid email or password")}
		h := NewAuthHandler(uc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{
			"email":    "admin@kesher.local",
			"password": "nope",
		})
		h.Login(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		h := NewAuthHandler(&mockLoginUC{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/api/auth/login", map[string]string{"email": "admin@kesher.local"})
		h.Login(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&mockLoginUC{}, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/api/admin/me", nil)
	testutil.SetAdminContext(c, "admin@kesher.local")
	h.Me(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@kesher.local")
}

// =====================================================================
// Products
// =====================================================================

func TestProductHandler_Create(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := &mockProductService{result: &catalog.ProductDTO{ID: 1, Slug: "go-bootcamp"}}
		h := NewProductHandler(svc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/products", map[string]any{
			"name":  "Go Bootcamp",
			"type":  "course",
			"price": "4900",
		})
		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "4900", svc.lastCmd.Price)
	})

	t.Run("unknown type", func(t *testing.T) {
		h := NewProductHandler(&mockProductService{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/products", map[string]any{
			"name":  "Go Bootcamp",
			"type":  "ebook",
			"price": "4900",
		})
		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp, err := testutil.DecodeData(w, nil)
		require.NoError(t, err)
		assert.Contains(t, resp.Error.Details, "type must be one of")
	})

	t.Run("duplicate slug", func(t *testing.T) {
		svc := &mockProductService{err: errors.NewConflictError("product slug already exists")}
		h := NewProductHandler(svc, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodPost, "/products", map[string]any{
			"name":  "Go Bootcamp",
			"type":  "course",
			"price": "4900",
		})
		h.Create(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestProductHandler_ListActiveFilter(t *testing.T) {
	svc := &mockProductService{}
	h := NewProductHandler(svc, testutil.NewMockLogger())
	c, w := testutil.NewTestContext(http.MethodGet, "/products", nil)
	testutil.SetQueryParams(c, map[string]string{"active": "true", "type": "workshop"})
	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.query.ActiveOnly)
	assert.Equal(t, "workshop", svc.query.Type)
}

// =====================================================================
// Stats
// =====================================================================

func TestStatsHandler(t *testing.T) {
	h := NewStatsHandler(&mockStatsService{}, testutil.NewMockLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/stats", nil)
	h.Overview(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testutil.NewTestContext(http.MethodGet, "/stats/funnel", nil)
	h.Funnel(c)
	assert.Equal(t, http.StatusOK, w.Code)

	failing := NewStatsHandler(&mockStatsService{err: assert.AnError}, testutil.NewMockLogger())
	c, w = testutil.NewTestContext(http.MethodGet, "/stats", nil)
	failing.Overview(c)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// =====================================================================
// Health
// =====================================================================

func TestHealthHandler_Check(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(&mockPinger{}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
		h.Check(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"up"`)
	})

	t.Run("database down", func(t *testing.T) {
		h := NewHealthHandler(&mockPinger{err: assert.AnError}, testutil.NewMockLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
		h.Check(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"down"`)
	})
}

// =====================================================================
// Public lead form
// =====================================================================

func TestPublicHandler_CaptureLead(t *testing.T) {
	t.Run("captured with website source", func(t *testing.T) {
		svc := &mockCapturer{result: &crmdto.LeadDTO{ID: 11, ContactID: 3}}
		h := NewPublicHandler(svc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/public/leads", map[string]any{
			"first_name": "Noa",
			"phone":      "054-1234567",
			"message":    "Interested in the evening course",
		})
		h.CaptureLead(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "website", svc.lastCmd.Source)
		assert.Equal(t, "054-1234567", svc.lastCmd.Phone)
	})

	t.Run("needs email or phone", func(t *testing.T) {
		svc := &mockCapturer{}
		h := NewPublicHandler(svc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/public/leads", map[string]any{"first_name": "Noa"})
		h.CaptureLead(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, svc.called)
	})

	t.Run("does not echo lead details", func(t *testing.T) {
		svc := &mockCapturer{result: &crmdto.LeadDTO{ID: 11, ContactID: 3, Notes: "internal"}}
		h := NewPublicHandler(svc, testutil.NewMockLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/public/leads", map[string]any{
			"first_name": "Noa",
			"email":      "noa@example.com",
		})
		h.CaptureLead(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "internal")
	})
}
