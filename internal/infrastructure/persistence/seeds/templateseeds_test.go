package seeds

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/messaging"
)

func TestDefaultTemplates(t *testing.T) {
	templates, err := DefaultTemplates()
	require.NoError(t, err)

	names := make(map[string]*messaging.MessageTemplate, len(templates))
	for _, tmpl := range templates {
		names[tmpl.Name()] = tmpl
	}

	for _, kind := range []billing.ReminderKind{
		billing.ReminderInstallmentDue,
		billing.ReminderRecurringFailed,
		billing.ReminderPaymentPending,
	} {
		assert.Contains(t, names, kind.TemplateName())
	}
	require.Contains(t, names, "invoice_issued")

	subject, body, err := names["invoice_issued"].Render(map[string]string{
		"FirstName":     "Lior",
		"InvoiceNumber": "INV-2026-00007",
		"Total":         "₪118.00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Invoice INV-2026-00007", subject)
	assert.Contains(t, body, "Hi Lior,")
	assert.Contains(t, body, "₪118.00")
}

func TestParseTemplates_Invalid(t *testing.T) {
	_, err := parseTemplates([]byte("templates:\n  - name: Bad Name\n    channel: email\n    subject: x\n    body: y\n"))
	assert.Error(t, err)

	_, err = parseTemplates([]byte("templates: ["))
	assert.Error(t, err)
}

func TestSeedMessageTemplates(t *testing.T) {
	ctx := context.Background()
	repo := testutil.NewMockTemplateRepository()

	custom, err := messaging.NewMessageTemplate("invoice_issued", messaging.ChannelEmail, "My invoice", "custom body")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, custom))

	defaults, err := DefaultTemplates()
	require.NoError(t, err)

	created, err := SeedMessageTemplates(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, len(defaults)-1, created)

	kept, err := repo.GetByName(ctx, "invoice_issued")
	require.NoError(t, err)
	assert.Equal(t, "My invoice", kept.Subject())

	again, err := SeedMessageTemplates(ctx, repo)
	require.NoError(t, err)
	assert.Zero(t, again)
}
