package crm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/application/testutil"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

type crmFixture struct {
	contactRepo *testutil.MockContactRepository
	leadRepo    *testutil.MockLeadRepository
	trigger     *testutil.MockSequenceTrigger
	contacts    *ContactService
	leads       *LeadService
	deals       *DealService
}

func newCRMFixture() *crmFixture {
	log := testutil.NewMockLogger()
	f := &crmFixture{
		contactRepo: testutil.NewMockContactRepository(),
		leadRepo:    testutil.NewMockLeadRepository(),
		trigger:     &testutil.MockSequenceTrigger{},
	}
	f.contacts = NewContactService(f.contactRepo, log)
	f.leads = NewLeadService(f.leadRepo, f.contacts, f.trigger, "ILS", log)
	f.deals = NewDealService(testutil.NewMockDealRepository(), f.contactRepo, "ILS", log)
	return f
}

func TestContactService_CreateAndConflict(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()

	c, err := f.contacts.Create(ctx, ContactCommand{
		FirstName: "Noa",
		LastName:  "Levi",
		Email:     "Noa@Example.com",
		Phone:     "054-123-4567",
		Tags:      []string{"vip", "VIP", " "},
	})
	require.NoError(t, err)
	assert.Equal(t, "noa@example.com", c.Email)
	assert.Equal(t, "0541234567", c.Phone)
	assert.Equal(t, []string{"vip"}, c.Tags)
	assert.Equal(t, "lead", c.Status)

	_, err = f.contacts.Create(ctx, ContactCommand{FirstName: "Other", Email: "noa@example.com"})
	assert.True(t, apperrors.IsConflictError(err))

	_, err = f.contacts.Create(ctx, ContactCommand{FirstName: "Nobody"})
	assert.True(t, apperrors.IsValidationError(err))
}

func TestContactService_Upsert(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()

	_, outcome, err := f.contacts.Upsert(ctx, ContactCommand{FirstName: "Dan", Phone: "0501112222"}, false)
	require.NoError(t, err)
	assert.Equal(t, UpsertCreated, outcome)

	c, outcome, err := f.contacts.Upsert(ctx, ContactCommand{FirstName: "Dan", LastName: "Cohen", Phone: "050-111-2222", Tags: []string{"import"}}, false)
	require.NoError(t, err)
	assert.Equal(t, UpsertUpdated, outcome)
	assert.Equal(t, "Cohen", c.LastName())
	assert.Equal(t, []string{"import"}, c.Tags())

	_, outcome, err = f.contacts.Upsert(ctx, ContactCommand{FirstName: "Dry", Email: "dry@example.com"}, true)
	require.NoError(t, err)
	assert.Equal(t, UpsertCreated, outcome)
	found, err := f.contactRepo.GetByEmail(ctx, "dry@example.com")
	require.NoError(t, err)
	assert.Nil(t, found, "dry run must not write")
}

func TestLeadService_CreateFiresSequences(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()
	c, err := f.contacts.Create(ctx, ContactCommand{FirstName: "Maya", Email: "maya@example.com"})
	require.NoError(t, err)

	l, err := f.leads.Create(ctx, LeadCommand{ContactID: c.ID, Source: "facebook", EstimatedValue: "1500"})
	require.NoError(t, err)
	assert.Equal(t, "new", l.Stage)
	assert.Equal(t, int64(150000), l.EstimatedValue.Amount)

	require.Len(t, f.trigger.Calls, 1)
	assert.Equal(t, messaging.TriggerLeadCreated, f.trigger.Calls[0].Trigger)
	assert.Equal(t, c.ID, f.trigger.Calls[0].ContactID)

	_, err = f.leads.Create(ctx, LeadCommand{ContactID: 999})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestLeadService_WinMarksCustomer(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()
	c, err := f.contacts.Create(ctx, ContactCommand{FirstName: "Avi", Email: "avi@example.com"})
	require.NoError(t, err)
	l, err := f.leads.Create(ctx, LeadCommand{ContactID: c.ID})
	require.NoError(t, err)

	_, err = f.leads.MoveStage(ctx, l.ID, "qualified", "")
	require.NoError(t, err)
	won, err := f.leads.MoveStage(ctx, l.ID, "won", "")
	require.NoError(t, err)
	assert.Equal(t, "won", won.Stage)

	got, err := f.contacts.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "customer", got.Status)

	_, err = f.leads.MoveStage(ctx, l.ID, "new", "")
	assert.True(t, apperrors.IsValidationError(err))
}

func TestLeadService_LostNeedsReason(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()
	c, _ := f.contacts.Create(ctx, ContactCommand{FirstName: "Tal", Phone: "0520000000"})
	l, err := f.leads.Create(ctx, LeadCommand{ContactID: c.ID})
	require.NoError(t, err)

	_, err = f.leads.MoveStage(ctx, l.ID, "lost", "")
	assert.True(t, apperrors.IsValidationError(err))

	lost, err := f.leads.MoveStage(ctx, l.ID, "lost", "too expensive")
	require.NoError(t, err)
	assert.Equal(t, "too expensive", lost.LostReason)
}

func TestLeadService_CaptureReusesContact(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()
	existing, err := f.contacts.Create(ctx, ContactCommand{FirstName: "Rina", Email: "rina@example.com"})
	require.NoError(t, err)

	l, err := f.leads.Capture(ctx, CaptureCommand{FirstName: "Rina", Email: "RINA@example.com", Message: "interested"})
	require.NoError(t, err)
	assert.Equal(t, existing.ID, l.ContactID)
	assert.Equal(t, "website", l.Source)

	l2, err := f.leads.Capture(ctx, CaptureCommand{FirstName: "New", Phone: "0549998888"})
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, l2.ContactID)
	assert.Len(t, f.trigger.Calls, 2)
}

func TestDealService(t *testing.T) {
	f := newCRMFixture()
	ctx := context.Background()
	c, _ := f.contacts.Create(ctx, ContactCommand{FirstName: "Gil", Email: "gil@example.com"})

	d, err := f.deals.Create(ctx, DealCommand{ContactID: c.ID, Title: "Course bundle", Amount: "3000", Discount: "500"})
	require.NoError(t, err)
	assert.Equal(t, int64(250000), d.FinalAmount.Amount)
	assert.Equal(t, "open", d.Status)

	_, err = f.deals.Create(ctx, DealCommand{ContactID: c.ID, Title: "Bad", Amount: "100", Discount: "200"})
	assert.True(t, apperrors.IsValidationError(err))

	_, err = f.deals.Create(ctx, DealCommand{ContactID: c.ID, Title: "Bad", Amount: "abc"})
	assert.True(t, apperrors.IsValidationError(err))

	closed, err := f.deals.ChangeStatus(ctx, d.ID, "lost")
	require.NoError(t, err)
	assert.NotNil(t, closed.ClosedAt)

	_, err = f.deals.Update(ctx, d.ID, DealCommand{Title: "Edit", Amount: "100"})
	assert.True(t, apperrors.IsValidationError(err), "closed deals are read-only")
}
