package product

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/shared/biztime"
)

type Type string

const (
	TypeCourse       Type = "course"
	TypeWorkshop     Type = "workshop"
	TypeMembership   Type = "membership"
	TypeConsultation Type = "consultation"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeCourse, TypeWorkshop, TypeMembership, TypeConsultation:
		return true
	}
	return false
}

type Product struct {
	id          uint
	name        string
	slug        string
	description string
	productType Type
	price       money.Money
	active      bool
	sortOrder   int
	createdAt   time.Time
	updatedAt   time.Time
}

type Details struct {
	Name        string
	Slug        string
	Description string
	Type        Type
	Price       money.Money
	SortOrder   int
}

// NewProduct creates an active product. The slug is derived from the name when empty.
func NewProduct(d Details) (*Product, error) {
	p := &Product{active: true}
	if err := p.apply(d); err != nil {
		return nil, err
	}
	now := biztime.NowUTC()
	p.createdAt = now
	p.updatedAt = now
	return p, nil
}

func (p *Product) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return fmt.Errorf("product name is required")
	}
	if len(name) > 200 {
		return fmt.Errorf("product name cannot exceed 200 characters")
	}
	if !d.Type.IsValid() {
		return fmt.Errorf("invalid product type: %s", d.Type)
	}
	if d.Price.IsNegative() {
		return fmt.Errorf("price cannot be negative")
	}

	slug := Slugify(d.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if slug == "" {
		return fmt.Errorf("slug is required")
	}

	p.name = name
	p.slug = slug
	p.description = strings.TrimSpace(d.Description)
	p.productType = d.Type
	p.price = d.Price
	p.sortOrder = d.SortOrder
	return nil
}

func (p *Product) Update(d Details) error {
	if err := p.apply(d); err != nil {
		return err
	}
	p.updatedAt = biztime.NowUTC()
	return nil
}

func (p *Product) SetActive(active bool) {
	if p.active == active {
		return
	}
	p.active = active
	p.updatedAt = biztime.NowUTC()
}

// Slugify lower-cases s and joins runs of letters and digits with single hyphens.
// Non-Latin letters are kept so Hebrew titles still produce a slug.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func (p *Product) ID() uint             { return p.id }
func (p *Product) Name() string         { return p.name }
func (p *Product) Slug() string         { return p.slug }
func (p *Product) Description() string  { return p.description }
func (p *Product) Type() Type           { return p.productType }
func (p *Product) Price() money.Money   { return p.price }
func (p *Product) IsActive() bool       { return p.active }
func (p *Product) SortOrder() int       { return p.sortOrder }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

func (p *Product) SetID(id uint) { p.id = id }

type ProductParams struct {
	ID        uint
	Details   Details
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func ReconstructProduct(p ProductParams) *Product {
	return &Product{
		id:          p.ID,
		name:        p.Details.Name,
		slug:        p.Details.Slug,
		description: p.Details.Description,
		productType: p.Details.Type,
		price:       p.Details.Price,
		active:      p.Active,
		sortOrder:   p.Details.SortOrder,
		createdAt:   p.CreatedAt,
		updatedAt:   p.UpdatedAt,
	}
}
