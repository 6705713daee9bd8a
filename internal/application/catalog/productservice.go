// Package catalog manages the products sold on the site.
package catalog

import (
	"context"
	"time"

	"github.com/kesher-io/kesher/internal/application/common"
	commondto "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/product"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
	"github.com/kesher-io/kesher/internal/shared/utils"
)

type ProductDTO struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Type        string          `json:"type"`
	Price       commondto.Money `json:"price"`
	Active      bool            `json:"active"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToProductDTO(p *product.Product) *ProductDTO {
	return &ProductDTO{
		ID:          p.ID(),
		Name:        p.Name(),
		Slug:        p.Slug(),
		Description: p.Description(),
		Type:        string(p.Type()),
		Price:       commondto.FromMoney(p.Price()),
		Active:      p.IsActive(),
		SortOrder:   p.SortOrder(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

type ProductCommand struct {
	Name        string
	Slug        string
	Description string
	Type        string
	Price       string
	Currency    string
	SortOrder   int
	Active      *bool
}

type ListProductsQuery struct {
	Type       string
	ActiveOnly bool
	Page       int
	PageSize   int
}

type ProductService struct {
	repo     product.Repository
	currency string
	logger   logger.Interface
}

func NewProductService(repo product.Repository, currency string, logger logger.Interface) *ProductService {
	return &ProductService{repo: repo, currency: currency, logger: logger}
}

func (s *ProductService) details(cmd ProductCommand) (product.Details, error) {
	currency := cmd.Currency
	if currency == "" {
		currency = s.currency
	}
	price, err := common.ParseAmount(cmd.Price, currency, "price")
	if err != nil {
		return product.Details{}, err
	}
	return product.Details{
		Name:        cmd.Name,
		Slug:        cmd.Slug,
		Description: cmd.Description,
		Type:        product.Type(cmd.Type),
		Price:       price,
		SortOrder:   cmd.SortOrder,
	}, nil
}

func (s *ProductService) Create(ctx context.Context, cmd ProductCommand) (*ProductDTO, error) {
	d, err := s.details(cmd)
	if err != nil {
		return nil, err
	}
	p, err := product.NewProduct(d)
	if err != nil {
		return nil, common.ValidationError(err)
	}
	if cmd.Active != nil {
		p.SetActive(*cmd.Active)
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Infow("product created", "product_id", p.ID(), "slug", p.Slug())
	return ToProductDTO(p), nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToProductDTO(p), nil
}

// GetActiveBySlug hides inactive products from the public site.
func (s *ProductService) GetActiveBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive() {
		return nil, apperrors.NewNotFoundError("product not found")
	}
	return ToProductDTO(p), nil
}

func (s *ProductService) List(ctx context.Context, q ListProductsQuery) (*commondto.ListResult[*ProductDTO], error) {
	p := utils.NormalizePagination(q.Page, q.PageSize)
	t := product.Type(q.Type)
	if q.Type != "" && !t.IsValid() {
		return nil, apperrors.NewValidationError("invalid product type", q.Type)
	}
	products, total, err := s.repo.List(ctx, product.Filter{Type: t, ActiveOnly: q.ActiveOnly, Page: p.Page, PageSize: p.PageSize})
	if err != nil {
		return nil, err
	}
	items := make([]*ProductDTO, 0, len(products))
	for _, pr := range products {
		items = append(items, ToProductDTO(pr))
	}
	return &commondto.ListResult[*ProductDTO]{Items: items, Total: total, Page: p.Page, PageSize: p.PageSize}, nil
}

// ListActive returns every active product for the marketing pages.
func (s *ProductService) ListActive(ctx context.Context) ([]*ProductDTO, error) {
	products, _, err := s.repo.List(ctx, product.Filter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}
	items := make([]*ProductDTO, 0, len(products))
	for _, pr := range products {
		items = append(items, ToProductDTO(pr))
	}
	return items, nil
}

func (s *ProductService) Update(ctx context.Context, id uint, cmd ProductCommand) (*ProductDTO, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cmd.Currency == "" {
		cmd.Currency = p.Price().Currency()
	}
	d, err := s.details(cmd)
	if err != nil {
		return nil, err
	}
	if err := p.Update(d); err != nil {
		return nil, common.ValidationError(err)
	}
	if cmd.Active != nil {
		p.SetActive(*cmd.Active)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return ToProductDTO(p), nil
}

func (s *ProductService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
