package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kesher-io/kesher/internal/domain/shared/money"
)

func newPlan(t *testing.T, total int64, count int) *PaymentPlan {
	t.Helper()
	plan, err := NewPaymentPlan(NewPaymentPlanParams{
		ContactID:        4,
		Description:      "Full-stack course",
		Total:            money.New(total, "ILS"),
		InstallmentCount: count,
		Frequency:        FrequencyMonthly,
		StartDate:        bizDate(t, 2025, time.January, 31),
	})
	require.NoError(t, err)
	return plan
}

func TestNewPaymentPlan_Installments(t *testing.T) {
	plan := newPlan(t, 1000000, 3)
	insts := plan.Installments()
	require.Len(t, insts, 3)

	assert.Equal(t, int64(333334), insts[0].Amount.Amount())
	assert.Equal(t, int64(333333), insts[1].Amount.Amount())
	assert.Equal(t, int64(333333), insts[2].Amount.Amount())

	assert.Equal(t, "2025-01-31", dayOf(insts[0].DueDate))
	assert.Equal(t, "2025-02-28", dayOf(insts[1].DueDate))
	assert.Equal(t, "2025-03-31", dayOf(insts[2].DueDate))
	for i, inst := range insts {
		assert.Equal(t, i+1, inst.Number)
		assert.Equal(t, InstallmentStatusPending, inst.Status)
	}
}

func TestNewPaymentPlan_Validation(t *testing.T) {
	base := NewPaymentPlanParams{
		ContactID:        1,
		Total:            money.New(10000, "ILS"),
		InstallmentCount: 3,
		Frequency:        FrequencyMonthly,
		StartDate:        time.Now(),
	}
	tests := []struct {
		name   string
		mutate func(p *NewPaymentPlanParams)
	}{
		{"one installment", func(p *NewPaymentPlanParams) { p.InstallmentCount = 1 }},
		{"too many installments", func(p *NewPaymentPlanParams) { p.InstallmentCount = 37 }},
		{"yearly frequency", func(p *NewPaymentPlanParams) { p.Frequency = FrequencyYearly }},
		{"zero total", func(p *NewPaymentPlanParams) { p.Total = money.Zero("ILS") }},
		{"no start date", func(p *NewPaymentPlanParams) { p.StartDate = time.Time{} }},
		{"total smaller than count", func(p *NewPaymentPlanParams) { p.Total = money.New(2, "ILS") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := NewPaymentPlan(p)
			assert.Error(t, err)
		})
	}
}

func TestPaymentPlan_MarkInstallmentPaid(t *testing.T) {
	plan := newPlan(t, 30000, 2)
	plan.SetID(9)
	for i, inst := range plan.Installments() {
		inst.ID = uint(100 + i)
		assert.Equal(t, uint(9), inst.PlanID)
	}

	require.NoError(t, plan.MarkInstallmentPaid(100, 500, time.Now()))
	assert.Equal(t, PlanStatusActive, plan.Status())
	assert.Equal(t, int64(15000), plan.PaidTotal().Amount())

	next, ok := plan.NextPendingInstallment()
	require.True(t, ok)
	assert.Equal(t, uint(101), next.ID)

	require.NoError(t, plan.MarkInstallmentPaid(100, 500, time.Now()), "already paid is a no-op")
	require.NoError(t, plan.MarkInstallmentPaid(101, 501, time.Now()))
	assert.Equal(t, PlanStatusCompleted, plan.Status())

	assert.Error(t, plan.MarkInstallmentPaid(999, 1, time.Now()))
}

func TestPaymentPlan_Cancel(t *testing.T) {
	plan := newPlan(t, 30000, 3)
	for i, inst := range plan.Installments() {
		inst.ID = uint(i + 1)
	}
	require.NoError(t, plan.MarkInstallmentPaid(1, 10, time.Now()))
	require.NoError(t, plan.Cancel())

	statuses := []InstallmentStatus{}
	for _, inst := range plan.Installments() {
		statuses = append(statuses, inst.Status)
	}
	assert.Equal(t, []InstallmentStatus{InstallmentStatusPaid, InstallmentStatusCancelled, InstallmentStatusCancelled}, statuses)
	assert.Error(t, plan.MarkInstallmentPaid(2, 11, time.Now()))
}
