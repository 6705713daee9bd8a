package mappers

import (
	"fmt"

	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/lead"
	"github.com/kesher-io/kesher/internal/domain/product"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func LeadToModel(l *lead.Lead) *models.LeadModel {
	return &models.LeadModel{
		ID:             l.ID(),
		ContactID:      l.ContactID(),
		Stage:          l.Stage().String(),
		Source:         l.Source(),
		ProductID:      l.ProductID(),
		EstimatedValue: l.EstimatedValue().Amount(),
		Currency:       l.EstimatedValue().Currency(),
		Notes:          l.Notes(),
		LostReason:     l.LostReason(),
		ClosedAt:       l.ClosedAt(),
		CreatedAt:      l.CreatedAt(),
		UpdatedAt:      l.UpdatedAt(),
	}
}

func LeadToDomain(model *models.LeadModel) (*lead.Lead, error) {
	stage := lead.Stage(model.Stage)
	if !stage.IsValid() {
		return nil, fmt.Errorf("invalid lead stage: %s", model.Stage)
	}
	return lead.ReconstructLead(lead.LeadParams{
		ID:             model.ID,
		ContactID:      model.ContactID,
		Stage:          stage,
		Source:         model.Source,
		ProductID:      model.ProductID,
		EstimatedValue: money.New(model.EstimatedValue, model.Currency),
		Notes:          model.Notes,
		LostReason:     model.LostReason,
		ClosedAt:       model.ClosedAt,
		CreatedAt:      model.CreatedAt,
		UpdatedAt:      model.UpdatedAt,
	}), nil
}

func DealToModel(d *deal.Deal) *models.DealModel {
	return &models.DealModel{
		ID:                d.ID(),
		ContactID:         d.ContactID(),
		LeadID:            d.LeadID(),
		ProductID:         d.ProductID(),
		Title:             d.Title(),
		Amount:            d.Amount().Amount(),
		Discount:          d.Discount().Amount(),
		Currency:          d.Amount().Currency(),
		Status:            d.Status().String(),
		ExpectedCloseDate: d.ExpectedCloseDate(),
		ClosedAt:          d.ClosedAt(),
		Notes:             d.Notes(),
		CreatedAt:         d.CreatedAt(),
		UpdatedAt:         d.UpdatedAt(),
	}
}

func DealToDomain(model *models.DealModel) (*deal.Deal, error) {
	status := deal.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid deal status: %s", model.Status)
	}
	return deal.ReconstructDeal(deal.DealParams{
		ID:                model.ID,
		ContactID:         model.ContactID,
		LeadID:            model.LeadID,
		ProductID:         model.ProductID,
		Title:             model.Title,
		Amount:            money.New(model.Amount, model.Currency),
		Discount:          money.New(model.Discount, model.Currency),
		Status:            status,
		ExpectedCloseDate: model.ExpectedCloseDate,
		ClosedAt:          model.ClosedAt,
		Notes:             model.Notes,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}), nil
}

func ProductToModel(p *product.Product) *models.ProductModel {
	return &models.ProductModel{
		ID:          p.ID(),
		Name:        p.Name(),
		Slug:        p.Slug(),
		Description: p.Description(),
		Type:        string(p.Type()),
		Price:       p.Price().Amount(),
		Currency:    p.Price().Currency(),
		Active:      p.IsActive(),
		SortOrder:   p.SortOrder(),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}
}

func ProductToDomain(model *models.ProductModel) (*product.Product, error) {
	t := product.Type(model.Type)
	if !t.IsValid() {
		return nil, fmt.Errorf("invalid product type: %s", model.Type)
	}
	return product.ReconstructProduct(product.ProductParams{
		ID: model.ID,
		Details: product.Details{
			Name:        model.Name,
			Slug:        model.Slug,
			Description: model.Description,
			Type:        t,
			Price:       money.New(model.Price, model.Currency),
			SortOrder:   model.SortOrder,
		},
		Active:    model.Active,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}), nil
}
