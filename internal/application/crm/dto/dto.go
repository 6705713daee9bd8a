package dto

import (
	"time"

	common "github.com/kesher-io/kesher/internal/application/common/dto"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/lead"
)

type ContactDTO struct {
	ID        uint      `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Source    string    `json:"source,omitempty"`
	Status    string    `json:"status"`
	Tags      []string  `json:"tags"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToContactDTO(c *contact.Contact) *ContactDTO {
	if c == nil {
		return nil
	}
	tags := c.Tags()
	if tags == nil {
		tags = []string{}
	}
	return &ContactDTO{
		ID:        c.ID(),
		FirstName: c.FirstName(),
		LastName:  c.LastName(),
		FullName:  c.FullName(),
		Email:     c.Email(),
		Phone:     c.Phone(),
		Source:    c.Source(),
		Status:    c.Status().String(),
		Tags:      tags,
		Notes:     c.Notes(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
}

func ToContactDTOs(contacts []*contact.Contact) []*ContactDTO {
	out := make([]*ContactDTO, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, ToContactDTO(c))
	}
	return out
}

type LeadDTO struct {
	ID             uint         `json:"id"`
	ContactID      uint         `json:"contact_id"`
	Stage          string       `json:"stage"`
	Source         string       `json:"source,omitempty"`
	ProductID      *uint        `json:"product_id,omitempty"`
	EstimatedValue common.Money `json:"estimated_value"`
	Notes          string       `json:"notes,omitempty"`
	LostReason     string       `json:"lost_reason,omitempty"`
	ClosedAt       *time.Time   `json:"closed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func ToLeadDTO(l *lead.Lead) *LeadDTO {
	if l == nil {
		return nil
	}
	return &LeadDTO{
		ID:             l.ID(),
		ContactID:      l.ContactID(),
		Stage:          l.Stage().String(),
		Source:         l.Source(),
		ProductID:      l.ProductID(),
		EstimatedValue: common.FromMoney(l.EstimatedValue()),
		Notes:          l.Notes(),
		LostReason:     l.LostReason(),
		ClosedAt:       l.ClosedAt(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}

func ToLeadDTOs(leads []*lead.Lead) []*LeadDTO {
	out := make([]*LeadDTO, 0, len(leads))
	for _, l := range leads {
		out = append(out, ToLeadDTO(l))
	}
	return out
}

type DealDTO struct {
	ID                uint         `json:"id"`
	ContactID         uint         `json:"contact_id"`
	LeadID            *uint        `json:"lead_id,omitempty"`
	ProductID         *uint        `json:"product_id,omitempty"`
	Title             string       `json:"title"`
	Amount            common.Money `json:"amount"`
	Discount          common.Money `json:"discount"`
	FinalAmount       common.Money `json:"final_amount"`
	Status            string       `json:"status"`
	ExpectedCloseDate *time.Time   `json:"expected_close_date,omitempty"`
	ClosedAt          *time.Time   `json:"closed_at,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

func ToDealDTO(d *deal.Deal) *DealDTO {
	if d == nil {
		return nil
	}
	return &DealDTO{
		ID:                d.ID(),
		ContactID:         d.ContactID(),
		LeadID:            d.LeadID(),
		ProductID:         d.ProductID(),
		Title:             d.Title(),
		Amount:            common.FromMoney(d.Amount()),
		Discount:          common.FromMoney(d.Discount()),
		FinalAmount:       common.FromMoney(d.FinalAmount()),
		Status:            d.Status().String(),
		ExpectedCloseDate: d.ExpectedCloseDate(),
		ClosedAt:          d.ClosedAt(),
		Notes:             d.Notes(),
		CreatedAt:         d.CreatedAt(),
		UpdatedAt:         d.UpdatedAt(),
	}
}

func ToDealDTOs(deals []*deal.Deal) []*DealDTO {
	out := make([]*DealDTO, 0, len(deals))
	for _, d := range deals {
		out = append(out, ToDealDTO(d))
	}
	return out
}
