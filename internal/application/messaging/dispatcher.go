package messaging

import (
	"context"
	"html/template"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// HTMLRenderer turns a markdown template body into safe HTML.
type HTMLRenderer interface {
	Render(source string) (template.HTML, error)
}

// Dispatcher renders stored templates for a contact and emails them.
type Dispatcher struct {
	templates messaging.TemplateRepository
	contacts  contact.Repository
	mailer    common.Mailer
	html      HTMLRenderer
	logger    logger.Interface
}

func NewDispatcher(
	templates messaging.TemplateRepository,
	contacts contact.Repository,
	mailer common.Mailer,
	html HTMLRenderer,
	logger logger.Interface,
) *Dispatcher {
	return &Dispatcher{
		templates: templates,
		contacts:  contacts,
		mailer:    mailer,
		html:      html,
		logger:    logger,
	}
}

// SendTemplate emails templateName to the contact. The contact's name and email
// are available to the template next to vars; vars win on conflicts.
func (d *Dispatcher) SendTemplate(ctx context.Context, templateName string, contactID uint, vars map[string]string) error {
	tmpl, err := d.templates.GetByName(ctx, templateName)
	if err != nil {
		return err
	}
	if tmpl == nil {
		return apperrors.NewNotFoundError("message template not found", templateName)
	}
	if tmpl.Channel() != messaging.ChannelEmail {
		return apperrors.NewValidationError("template is not an email template", templateName)
	}

	c, err := d.contacts.GetByID(ctx, contactID)
	if err != nil {
		return err
	}
	if c.Email() == "" {
		return common.ErrNoRecipient
	}

	subject, body, err := tmpl.Render(mergeVars(contactVars(c), vars))
	if err != nil {
		return apperrors.NewValidationError("failed to render template", err.Error())
	}
	htmlBody, err := d.html.Render(body)
	if err != nil {
		return err
	}

	err = d.mailer.Send(ctx, common.Email{
		To:       c.Email(),
		ToName:   c.FullName(),
		Subject:  subject,
		TextBody: body,
		HTMLBody: string(htmlBody),
	})
	if err != nil {
		d.logger.Warnw("failed to send templated email",
			"template", templateName,
			"contact_id", contactID,
			"error", err,
		)
		return err
	}
	d.logger.Debugw("templated email sent", "template", templateName, "contact_id", contactID)
	return nil
}

func contactVars(c *contact.Contact) map[string]string {
	return map[string]string{
		"FirstName": c.FirstName(),
		"LastName":  c.LastName(),
		"FullName":  c.FullName(),
		"Email":     c.Email(),
		"Phone":     c.Phone(),
	}
}

func mergeVars(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
