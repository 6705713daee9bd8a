package messaging

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/common"
	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
	"github.com/kesher-io/kesher/internal/shared/services/markdown"
)

type fixture struct {
	templates   *testutil.MockTemplateRepository
	sequences   *testutil.MockSequenceRepository
	enrollments *testutil.MockEnrollmentRepository
	social      *testutil.MockSocialMessageRepository
	contacts    *testutil.MockContactRepository
	mailer      *testutil.MockMailer

	templateSvc *TemplateService
	sequenceSvc *SequenceService
	socialSvc   *SocialService
	dispatcher  *Dispatcher
	process     *ProcessSequencesUseCase
}

func newFixture() *fixture {
	log := testutil.NewMockLogger()
	html := markdown.NewRenderer()
	f := &fixture{
		templates:   testutil.NewMockTemplateRepository(),
		sequences:   testutil.NewMockSequenceRepository(),
		enrollments: testutil.NewMockEnrollmentRepository(),
		social:      testutil.NewMockSocialMessageRepository(),
		contacts:    testutil.NewMockContactRepository(),
		mailer:      testutil.NewMockMailer(),
	}
	f.templateSvc = NewTemplateService(f.templates, html, log)
	f.sequenceSvc = NewSequenceService(f.sequences, f.enrollments, f.templates, f.contacts, log)
	f.socialSvc = NewSocialService(f.social, f.contacts, log)
	f.dispatcher = NewDispatcher(f.templates, f.contacts, f.mailer, html, log)
	f.process = NewProcessSequencesUseCase(f.sequences, f.enrollments, f.dispatcher, log)
	return f
}

func (f *fixture) contact(t *testing.T, first, email, phone string) uint {
	t.Helper()
	c, err := contact.NewContact(first, "Mizrahi", email, phone, "website")
	require.NoError(t, err)
	require.NoError(t, f.contacts.Create(context.Background(), c))
	return c.ID()
}

func (f *fixture) template(t *testing.T, name, body string) {
	t.Helper()
	_, err := f.templateSvc.Create(context.Background(), TemplateCommand{
		Name:    name,
		Channel: "email",
		Subject: "Hi {{.FirstName}}",
		Body:    body,
	})
	require.NoError(t, err)
}

func TestTemplateService_CRUDAndPreview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.templateSvc.Create(ctx, TemplateCommand{
		Name:    "welcome",
		Channel: "email",
		Subject: "Welcome {{.FirstName}}",
		Body:    "**Shalom** {{.FirstName}}, class starts {{.StartDate}}.",
	})
	require.NoError(t, err)

	_, err = f.templateSvc.Create(ctx, TemplateCommand{Name: "welcome", Channel: "email", Subject: "x", Body: "y"})
	assert.True(t, apperrors.IsConflictError(err))

	_, err = f.templateSvc.Create(ctx, TemplateCommand{Name: "Bad Name", Channel: "email", Subject: "x", Body: "y"})
	assert.True(t, apperrors.IsValidationError(err))

	preview, err := f.templateSvc.Preview(ctx, created.ID, map[string]string{"FirstName": "Lior"})
	require.NoError(t, err)
	assert.Equal(t, "Welcome Lior", preview.Subject)
	assert.Equal(t, "**Shalom** Lior, class starts .", preview.Body)
	assert.Contains(t, preview.HTMLBody, "<strong>Shalom</strong>")

	sms, err := f.templateSvc.Create(ctx, TemplateCommand{Name: "sms-reminder", Channel: "sms", Body: "Pay {{.Amount}}"})
	require.NoError(t, err)
	list, err := f.templateSvc.List(ctx, "sms")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sms.ID, list[0].ID)

	_, err = f.templateSvc.List(ctx, "fax")
	assert.True(t, apperrors.IsValidationError(err))

	require.NoError(t, f.templateSvc.Delete(ctx, sms.ID))
	_, err = f.templateSvc.Get(ctx, sms.ID)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDispatcher_SendTemplate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.template(t, "reminder_installment_due", "Installment of {{.Amount}} is due {{.DueDate}}")
	id := f.contact(t, "Tamar", "tamar@example.com", "")

	err := f.dispatcher.SendTemplate(ctx, "reminder_installment_due", id, map[string]string{
		"Amount":  "300.00 ILS",
		"DueDate": "01/05/2026",
	})
	require.NoError(t, err)
	require.Equal(t, 1, f.mailer.Count())

	msg := f.mailer.Sent[0]
	assert.Equal(t, "tamar@example.com", msg.To)
	assert.Equal(t, "Hi Tamar", msg.Subject)
	assert.Equal(t, "Installment of 300.00 ILS is due 01/05/2026", msg.TextBody)
	assert.Contains(t, msg.HTMLBody, "<p>")

	err = f.dispatcher.SendTemplate(ctx, "missing", id, nil)
	assert.True(t, apperrors.IsNotFoundError(err))

	phoneOnly := f.contact(t, "Omer", "", "0521112222")
	err = f.dispatcher.SendTemplate(ctx, "reminder_installment_due", phoneOnly, nil)
	assert.ErrorIs(t, err, common.ErrNoRecipient)
}

func TestSequences_FireAndProcess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.template(t, "course-intro", "Welcome aboard")
	f.template(t, "course-tips", "Three tips")
	id := f.contact(t, "Noga", "noga@example.com", "")

	seq, err := f.sequenceSvc.Create(ctx, SequenceCommand{
		Name:    "New lead nurture",
		Trigger: "lead_created",
		Steps: []messaging.SequenceStep{
			{DelayHours: 0, TemplateName: "course-intro"},
			{DelayHours: 0, TemplateName: "course-tips"},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.sequenceSvc.Fire(ctx, messaging.TriggerLeadCreated, id))
	require.NoError(t, f.sequenceSvc.Fire(ctx, messaging.TriggerLeadCreated, id))
	require.NoError(t, f.sequenceSvc.Fire(ctx, messaging.TriggerPaymentCompleted, id))

	enrollments, err := f.sequenceSvc.ListEnrollments(ctx, ListEnrollmentsQuery{SequenceID: seq.ID})
	require.NoError(t, err)
	require.Len(t, enrollments.Items, 1, "firing twice keeps one active enrollment")

	res, err := f.process.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	res, err = f.process.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)

	require.Equal(t, 2, f.mailer.Count())
	assert.Equal(t, "Three tips", f.mailer.Sent[1].TextBody)

	e, err := f.enrollments.GetByID(ctx, enrollments.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, messaging.EnrollmentCompleted, e.Status())
}

func TestSequences_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.sequenceSvc.Create(ctx, SequenceCommand{
		Name:    "Broken",
		Trigger: "manual",
		Steps:   []messaging.SequenceStep{{TemplateName: "does-not-exist"}},
	})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.sequenceSvc.Create(ctx, SequenceCommand{Name: "Empty", Trigger: "manual"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.sequenceSvc.Create(ctx, SequenceCommand{
		Name:    "Odd trigger",
		Trigger: "birthday",
		Steps:   []messaging.SequenceStep{{TemplateName: "x"}},
	})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestSequences_UnenrollAndDeadContacts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.template(t, "intro", "Hello")
	withEmail := f.contact(t, "Avi", "avi@example.com", "")
	noEmail := f.contact(t, "Dor", "", "0549998888")

	seq, err := f.sequenceSvc.Create(ctx, SequenceCommand{
		Name:    "Manual",
		Trigger: "manual",
		Steps:   []messaging.SequenceStep{{DelayHours: 0, TemplateName: "intro"}},
	})
	require.NoError(t, err)

	first, err := f.sequenceSvc.Enroll(ctx, seq.ID, withEmail)
	require.NoError(t, err)
	_, err = f.sequenceSvc.Enroll(ctx, seq.ID, noEmail)
	require.NoError(t, err)

	out, err := f.sequenceSvc.Unenroll(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "cancelled", out.Status)

	res, err := f.process.Execute(ctx)
	require.NoError(t, err)
	assert.Zero(t, res.Sent)
	assert.Equal(t, 1, res.Cancelled, "contacts without email leave the sequence")

	_, err = f.sequenceSvc.Enroll(ctx, seq.ID, 999)
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = f.sequenceSvc.SetActive(ctx, seq.ID, false)
	require.NoError(t, err)
	_, err = f.sequenceSvc.Enroll(ctx, seq.ID, withEmail)
	assert.True(t, apperrors.IsConflictError(err))
}

func TestProcessSequences_TransientFailureRetries(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.template(t, "intro", "Hello")
	id := f.contact(t, "Gal", "gal@example.com", "")
	seq, err := f.sequenceSvc.Create(ctx, SequenceCommand{
		Name:    "Manual",
		Trigger: "manual",
		Steps:   []messaging.SequenceStep{{TemplateName: "intro"}},
	})
	require.NoError(t, err)
	_, err = f.sequenceSvc.Enroll(ctx, seq.ID, id)
	require.NoError(t, err)

	f.mailer.Err = errors.New("451 try later")
	res, err := f.process.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)

	f.mailer.Err = nil
	res, err = f.process.Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
}

func TestSocialService(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	known := f.contact(t, "Rina", "rina@example.com", "+972541234567")

	wa, err := f.socialSvc.CreateInbound(ctx, InboundCommand{
		Platform:     "whatsapp",
		ExternalID:   "wamid.1",
		SenderHandle: "+972 54-123-4567",
		Content:      "Is there a Friday class?",
		ReceivedAt:   time.Date(2026, 4, 3, 8, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, wa.ContactID)
	assert.Equal(t, known, *wa.ContactID)
	assert.Equal(t, "unread", wa.Status)

	ig, err := f.socialSvc.CreateInbound(ctx, InboundCommand{Platform: "instagram", SenderHandle: "@clay.lover", Content: "Price?"})
	require.NoError(t, err)
	assert.Nil(t, ig.ContactID)

	_, err = f.socialSvc.CreateInbound(ctx, InboundCommand{Platform: "tiktok", SenderHandle: "x", Content: "y"})
	assert.True(t, apperrors.IsValidationError(err))

	reply, err := f.socialSvc.Reply(ctx, ig.ID, "From 120 ILS per lesson")
	require.NoError(t, err)
	assert.Equal(t, "outbound", reply.Direction)
	assert.Equal(t, ig.ID, *reply.ReplyToID)

	original, err := f.socialSvc.Get(ctx, ig.ID)
	require.NoError(t, err)
	assert.Equal(t, "replied", original.Status)

	linked, err := f.socialSvc.LinkContact(ctx, ig.ID, known)
	require.NoError(t, err)
	assert.Equal(t, known, *linked.ContactID)

	archived, err := f.socialSvc.ChangeStatus(ctx, wa.ID, "archived")
	require.NoError(t, err)
	assert.Equal(t, "archived", archived.Status)

	_, err = f.socialSvc.ChangeStatus(ctx, wa.ID, "deleted")
	assert.True(t, apperrors.IsValidationError(err))

	unread, err := f.socialSvc.List(ctx, ListSocialQuery{Status: "unread"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), unread.Total)

	inbound, err := f.socialSvc.List(ctx, ListSocialQuery{Direction: "inbound"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inbound.Total)
}
