// Package marketing renders the public website from embedded templates.
package marketing

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/kesher-io/kesher/internal/application/catalog"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	featuredCount = 3
	summaryLength = 160
)

var pageNames = []string{"home", "about", "courses", "course", "notfound"}

type productCatalog interface {
	ListActive(ctx context.Context) ([]*catalog.ProductDTO, error)
	GetActiveBySlug(ctx context.Context, slug string) (*catalog.ProductDTO, error)
}

// HTMLRenderer turns markdown course descriptions into safe HTML.
type HTMLRenderer interface {
	Render(source string) (template.HTML, error)
}

// Site holds the values shared by every page.
type Site struct {
	Name         string
	Tagline      string
	BaseURL      string
	ContactEmail string
}

type productView struct {
	ID          uint
	Name        string
	Slug        string
	Type        string
	Price       string
	Summary     string
	Description template.HTML
}

type pageData struct {
	Site     Site
	Path     string
	Year     int
	Products []productView
	Product  *productView
}

type PageHandler struct {
	products productCatalog
	markdown HTMLRenderer
	site     Site
	pages    map[string]*template.Template
	logger   logger.Interface
}

func NewPageHandler(products productCatalog, markdown HTMLRenderer, site Site, logger logger.Interface) (*PageHandler, error) {
	site.BaseURL = strings.TrimRight(site.BaseURL, "/")
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/base.html", "templates/leadform.html", "templates/"+name+".html")
		if err != nil {
			return nil, err
		}
		pages[name] = t
	}
	return &PageHandler{
		products: products,
		markdown: markdown,
		site:     site,
		pages:    pages,
		logger:   logger,
	}, nil
}

// Home handles GET /
func (h *PageHandler) Home(c *gin.Context) {
	products, err := h.activeProducts(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	if len(products) > featuredCount {
		products = products[:featuredCount]
	}
	h.render(c, http.StatusOK, "home", h.data(c, products, nil))
}

// About handles GET /about
func (h *PageHandler) About(c *gin.Context) {
	h.render(c, http.StatusOK, "about", h.data(c, nil, nil))
}

// Courses handles GET /courses
func (h *PageHandler) Courses(c *gin.Context) {
	products, err := h.activeProducts(c.Request.Context())
	if err != nil {
		h.serverError(c, err)
		return
	}
	h.render(c, http.StatusOK, "courses", h.data(c, products, nil))
}

// Course handles GET /courses/:slug
func (h *PageHandler) Course(c *gin.Context) {
	p, err := h.products.GetActiveBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if apperrors.IsNotFoundError(err) {
			h.NotFound(c)
			return
		}
		h.serverError(c, err)
		return
	}

	view := toProductView(p)
	description, err := h.markdown.Render(p.Description)
	if err != nil {
		h.serverError(c, err)
		return
	}
	view.Description = description
	h.render(c, http.StatusOK, "course", h.data(c, nil, &view))
}

// NotFound renders the 404 page.
func (h *PageHandler) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "notfound", h.data(c, nil, nil))
}

func (h *PageHandler) activeProducts(ctx context.Context) ([]productView, error) {
	products, err := h.products.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	return views, nil
}

func (h *PageHandler) data(c *gin.Context, products []productView, product *productView) pageData {
	return pageData{
		Site:     h.site,
		Path:     c.Request.URL.Path,
		Year:     time.Now().Year(),
		Products: products,
		Product:  product,
	}
}

func (h *PageHandler) render(c *gin.Context, status int, page string, data pageData) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Errorw("failed to render page", "page", page, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PageHandler) serverError(c *gin.Context, err error) {
	h.logger.Errorw("failed to load page data", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

func toProductView(p *catalog.ProductDTO) productView {
	return productView{
		ID:      p.ID,
		Name:    p.Name,
		Slug:    p.Slug,
		Type:    p.Type,
		Price:   FormatPrice(p.Price),
		Summary: summarize(p.Description),
	}
}

// summarize returns the first paragraph of a markdown description as plain text.
func summarize(description string) string {
	para := strings.TrimSpace(description)
	if i := strings.Index(para, "\n\n"); i >= 0 {
		para = para[:i]
	}
	para = strings.TrimLeft(para, "# ")
	para = strings.NewReplacer("**", "", "__", "", "`", "", "\n", " ").Replace(para)
	if utf8.RuneCountInString(para) <= summaryLength {
		return para
	}
	runes := []rune(para)
	return strings.TrimSpace(string(runes[:summaryLength])) + "…"
}
