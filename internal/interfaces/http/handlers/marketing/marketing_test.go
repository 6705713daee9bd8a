package marketing

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/catalog"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/interfaces/http/handlers/testutil"
	"github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/services/markdown"
)

type fakeCatalog struct {
	products []*catalog.ProductDTO
	err      error
}

func (f *fakeCatalog) ListActive(ctx context.Context) ([]*catalog.ProductDTO, error) {
	return f.products, f.err
}

func (f *fakeCatalog) GetActiveBySlug(ctx context.Context, slug string) (*catalog.ProductDTO, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, errors.NewNotFoundError("product not found")
}

func ils(agorot int64) commondto.Money {
	return commondto.Money{Amount: agorot, Currency: "ILS"}
}

func newTestPageHandler(t *testing.T, cat *fakeCatalog) *PageHandler {
	t.Helper()
	h, err := NewPageHandler(cat, markdown.NewRenderer(), Site{
		Name:         "Kesher Academy",
		Tagline:      "Practical courses for developers",
		BaseURL:      "https://kesher.example/",
		ContactEmail: "hello@kesher.example",
	}, testutil.NewMockLogger())
	require.NoError(t, err)
	return h
}

func sampleProducts() []*catalog.ProductDTO {
	return []*catalog.ProductDTO{
		{ID: 1, Name: "Go Bootcamp", Slug: "go-bootcamp", Type: "course", Price: ils(490000),
			Description: "Twelve weeks of **Go**.\n\n## Syllabus\n\n- Week 1: basics\n\n<script>alert(1)</script>"},
		{ID: 2, Name: "SQL Workshop", Slug: "sql-workshop", Type: "workshop", Price: ils(45050), Description: "One day of SQL."},
		{ID: 3, Name: "Mentoring", Slug: "mentoring", Type: "consultation", Price: ils(60000), Description: "Weekly calls."},
		{ID: 4, Name: "Community", Slug: "community", Type: "membership", Price: ils(9900), Description: "Monthly membership."},
	}
}

func TestFormatPrice(t *testing.T) {
	whole := FormatPrice(ils(120000))
	assert.True(t, strings.HasPrefix(whole, "₪"), whole)
	assert.Contains(t, whole, "1,200")
	assert.NotContains(t, whole, ".")

	fractional := FormatPrice(ils(120050))
	assert.Contains(t, fractional, "1,200.50")

	other := FormatPrice(commondto.Money{Amount: 1000, Currency: "JPY"})
	assert.True(t, strings.HasPrefix(other, "JPY "), other)
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "Twelve weeks of Go.", summarize("Twelve weeks of **Go**.\n\nMore text"))
	assert.Equal(t, "Intro", summarize("# Intro\n\nbody"))

	long := strings.Repeat("א", 200)
	got := summarize(long)
	assert.Equal(t, summaryLength+1, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestPageHandler_Home(t *testing.T) {
	h := newTestPageHandler(t, &fakeCatalog{products: sampleProducts()})
	c, w := testutil.NewTestContext(http.MethodGet, "/", nil)
	h.Home(c)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Kesher Academy")
	assert.Contains(t, body, `href="/courses/go-bootcamp"`)
	assert.Contains(t, body, `href="/courses/mentoring"`)
	assert.NotContains(t, body, "/courses/community", "only the first three products are featured")
	assert.Contains(t, body, `data-endpoint="/api/public/leads"`)
}

func TestPageHandler_Courses(t *testing.T) {
	t.Run("lists all active", func(t *testing.T) {
		h := newTestPageHandler(t, &fakeCatalog{products: sampleProducts()})
		c, w := testutil.NewTestContext(http.MethodGet, "/courses", nil)
		h.Courses(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "/courses/community")
		assert.Contains(t, w.Body.String(), "card-workshop")
	})

	t.Run("empty catalog", func(t *testing.T) {
		h := newTestPageHandler(t, &fakeCatalog{})
		c, w := testutil.NewTestContext(http.MethodGet, "/courses", nil)
		h.Courses(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "opening soon")
	})

	t.Run("catalog failure", func(t *testing.T) {
		h := newTestPageHandler(t, &fakeCatalog{err: assert.AnError})
		c, w := testutil.NewTestContext(http.MethodGet, "/courses", nil)
		h.Courses(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestPageHandler_Course(t *testing.T) {
	t.Run("renders sanitised markdown", func(t *testing.T) {
		h := newTestPageHandler(t, &fakeCatalog{products: sampleProducts()})
		c, w := testutil.NewTestContext(http.MethodGet, "/courses/go-bootcamp", nil)
		testutil.SetURLParam(c, "slug", "go-bootcamp")
		h.Course(c)

		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<h2 id="syllabus">Syllabus</h2>`)
		assert.Contains(t, body, "<strong>Go</strong>")
		assert.NotContains(t, body, "<script>alert(1)</script>")
		assert.Contains(t, body, "4,900")
		assert.Contains(t, body, `name="product_id" value="1"`)
		assert.Contains(t, body, `href="https://kesher.example/courses/go-bootcamp"`)
	})

	t.Run("unknown slug", func(t *testing.T) {
		h := newTestPageHandler(t, &fakeCatalog{products: sampleProducts()})
		c, w := testutil.NewTestContext(http.MethodGet, "/courses/nope", nil)
		testutil.SetURLParam(c, "slug", "nope")
		h.Course(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "Page not found")
	})
}

func TestPageHandler_About(t *testing.T) {
	h := newTestPageHandler(t, &fakeCatalog{})
	c, w := testutil.NewTestContext(http.MethodGet, "/about", nil)
	h.About(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "About Kesher Academy")
	assert.Contains(t, w.Body.String(), "mailto:hello@kesher.example")
}
