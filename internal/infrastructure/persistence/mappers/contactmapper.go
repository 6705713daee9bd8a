package mappers

import (
	"encoding/json"
	"fmt"

	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
)

func ContactToModel(c *contact.Contact) *models.ContactModel {
	model := &models.ContactModel{
		ID:        c.ID(),
		FirstName: c.FirstName(),
		LastName:  c.LastName(),
		Email:     stringPtr(c.Email()),
		Phone:     stringPtr(c.Phone()),
		Source:    c.Source(),
		Status:    c.Status().String(),
		Notes:     c.Notes(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}
	if len(c.Tags()) > 0 {
		model.Tags = toJSON(c.Tags())
	}
	return model
}

func ContactToDomain(model *models.ContactModel) (*contact.Contact, error) {
	status := contact.Status(model.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid contact status: %s", model.Status)
	}

	var tags []string
	if len(model.Tags) > 0 {
		if err := json.Unmarshal(model.Tags, &tags); err != nil {
			return nil, fmt.Errorf("failed to decode contact tags: %w", err)
		}
	}

	return contact.ReconstructContact(contact.ContactParams{
		ID:        model.ID,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     derefString(model.Email),
		Phone:     derefString(model.Phone),
		Source:    model.Source,
		Status:    status,
		Tags:      tags,
		Notes:     model.Notes,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}), nil
}

func ContactsToDomain(list []models.ContactModel) ([]*contact.Contact, error) {
	result := make([]*contact.Contact, 0, len(list))
	for i := range list {
		c, err := ContactToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}
