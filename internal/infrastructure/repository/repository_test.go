package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/domain/billing"
	"github.com/kesher-io/kesher/internal/domain/contact"
	"github.com/kesher-io/kesher/internal/domain/deal"
	"github.com/kesher-io/kesher/internal/domain/invoice"
	"github.com/kesher-io/kesher/internal/domain/messaging"
	"github.com/kesher-io/kesher/internal/domain/payment"
	vo "github.com/kesher-io/kesher/internal/domain/payment/valueobjects"
	"github.com/kesher-io/kesher/internal/domain/shared/money"
	"github.com/kesher-io/kesher/internal/infrastructure/migration"
	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	apperrors "github.com/kesher-io/kesher/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(migration.AutoMigrateModels()...))
	return db
}

func createTestContact(t *testing.T, db *gorm.DB, email string) *contact.Contact {
	c, err := contact.NewContact("Dana", "Levi", email, "", "website")
	require.NoError(t, err)
	require.NoError(t, NewContactRepository(db).Create(context.Background(), c))
	return c
}

func createTestPayment(t *testing.T, db *gorm.DB, contactID uint, dealID *uint, amount int64) *payment.Payment {
	p, err := payment.NewPayment(payment.NewPaymentParams{
		ContactID:   contactID,
		DealID:      dealID,
		Description: "Pottery course",
		Amount:      money.New(amount, "ILS"),
		Method:      vo.PaymentMethodCreditCard,
		Gateway:     "tranzila",
	})
	require.NoError(t, err)
	require.NoError(t, NewPaymentRepository(db).Create(context.Background(), p))
	return p
}

func TestContactRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	t.Run("create and find by email", func(t *testing.T) {
		c := createTestContact(t, db, "dana@example.com")
		assert.NotZero(t, c.ID())

		found, err := repo.GetByEmail(ctx, "  DANA@example.com ")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, c.ID(), found.ID())
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		dup, err := contact.NewContact("Other", "Person", "dana@example.com", "", "import")
		require.NoError(t, err)

		err = repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, apperrors.IsConflictError(err))
	})

	t.Run("contacts without email do not collide", func(t *testing.T) {
		a, err := contact.NewContact("Noa", "", "", "0541111111", "whatsapp")
		require.NoError(t, err)
		b, err := contact.NewContact("Yael", "", "", "0542222222", "whatsapp")
		require.NoError(t, err)

		require.NoError(t, repo.Create(ctx, a))
		require.NoError(t, repo.Create(ctx, b))
	})

	t.Run("deleted contact frees its email", func(t *testing.T) {
		old := createTestContact(t, db, "former@example.com")
		require.NoError(t, repo.Delete(ctx, old.ID()))

		_, err := repo.GetByID(ctx, old.ID())
		assert.True(t, apperrors.IsNotFoundError(err))
		assert.True(t, apperrors.IsNotFoundError(repo.Delete(ctx, old.ID())), "second delete finds nothing")

		again, err := contact.NewContact("Former", "Student", "former@example.com", "", "website")
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, again))
		assert.NotEqual(t, old.ID(), again.ID())

		found, err := repo.GetByEmail(ctx, "former@example.com")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, again.ID(), found.ID())

		var archived models.ContactModel
		require.NoError(t, db.Unscoped().First(&archived, old.ID()).Error)
		assert.True(t, archived.DeletedAt.Valid)
		assert.Nil(t, archived.Email)
	})

	t.Run("missing contact", func(t *testing.T) {
		_, err := repo.GetByID(ctx, 9999)
		assert.True(t, apperrors.IsNotFoundError(err))

		found, err := repo.GetByEmail(ctx, "nobody@example.com")
		assert.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestPaymentRepository_OptimisticLocking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	c := createTestContact(t, db, "buyer@example.com")
	p := createTestPayment(t, db, c.ID(), nil, 45000)

	stale, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)

	changed, err := p.Complete("TX-100", time.Now().UTC())
	require.NoError(t, err)
	require.True(t, changed)
	require.NoError(t, repo.Update(ctx, p))

	require.NoError(t, stale.Fail("card declined"))
	err = repo.Update(ctx, stale)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	stored, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, vo.PaymentStatusCompleted, stored.Status())
	assert.Equal(t, "TX-100", stored.TransactionID())

	byTx, err := repo.GetByTransactionID(ctx, "tranzila", "TX-100")
	require.NoError(t, err)
	require.NotNil(t, byTx)
	assert.Equal(t, p.Reference(), byTx.Reference())

	byRef, err := repo.GetByReference(ctx, p.Reference())
	require.NoError(t, err)
	assert.Equal(t, p.ID(), byRef.ID())
}

func TestPaymentRepository_ConflictingRefundsFromSameVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	c := createTestContact(t, db, "refunds@example.com")
	p := createTestPayment(t, db, c.ID(), nil, 100000)
	_, err := p.Complete("TX-REF", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, p))

	first, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)

	// second bumps the version twice, first only once; both start from the same row.
	require.NoError(t, second.Refund(money.New(30000, "ILS")))
	second.SetMetadata("refund_note", "partial")
	require.NoError(t, repo.Update(ctx, second))

	require.NoError(t, first.Refund(money.New(40000, "ILS")))
	err = repo.Update(ctx, first)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err))

	stored, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(30000), stored.RefundedAmount().Amount())
	assert.Equal(t, vo.PaymentStatusPartiallyRefunded, stored.Status())

	// A reloaded copy applies on top of the stored refund.
	require.NoError(t, stored.Refund(money.New(40000, "ILS")))
	require.NoError(t, repo.Update(ctx, stored))
	require.NoError(t, stored.Refund(money.New(10000, "ILS")))
	require.NoError(t, repo.Update(ctx, stored))

	final, err := repo.GetByID(ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, int64(80000), final.RefundedAmount().Amount())
}

func TestPaymentRepository_SumSettledByDeal(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPaymentRepository(db)
	ctx := context.Background()

	c := createTestContact(t, db, "deal@example.com")
	d, err := deal.NewDeal(deal.NewDealParams{
		ContactID: c.ID(),
		Title:     "Annual membership",
		Amount:    money.New(120000, "ILS"),
		Discount:  money.Zero("ILS"),
	})
	require.NoError(t, err)
	require.NoError(t, NewDealRepository(db).Create(ctx, d))
	dealID := d.ID()

	paid := createTestPayment(t, db, c.ID(), &dealID, 60000)
	_, err = paid.Complete("TX-1", time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, paid.Refund(money.New(10000, "ILS")))
	require.NoError(t, repo.Update(ctx, paid))

	createTestPayment(t, db, c.ID(), &dealID, 60000) // still pending

	total, err := repo.SumSettledByDeal(ctx, dealID, "ILS")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), total.Amount())
}

func TestWebhookEventRepository_Record(t *testing.T) {
	db := setupTestDB(t)
	repo := NewWebhookEventRepository(db)
	ctx := context.Background()

	event := &payment.WebhookEvent{
		Gateway:    "paypal",
		EventID:    "WH-1",
		EventType:  "PAYMENT.CAPTURE.COMPLETED",
		Reference:  "PAY-ABC",
		Payload:    []byte(`{"id":"WH-1"}`),
		ReceivedAt: time.Now().UTC(),
	}

	first, err := repo.Record(ctx, event)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.Record(ctx, event)
	require.NoError(t, err)
	assert.False(t, again)
}

func TestInvoiceRepository_NextSequence(t *testing.T) {
	db := setupTestDB(t)
	repo := NewInvoiceRepository(db)
	ctx := context.Background()

	seq, err := repo.NextSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	for i, paymentID := range []uint{10, 11} {
		inv, err := invoice.NewInvoice(invoice.NewInvoiceParams{
			Number:     invoice.FormatNumber(2026, i+1),
			PaymentID:  paymentID,
			ContactID:  1,
			Total:      money.New(11800, "ILS"),
			VATPercent: decimal.NewFromInt(18),
			IssuedAt:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, inv))
	}

	seq, err = repo.NextSequence(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, seq)

	seq, err = repo.NextSequence(ctx, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	found, err := repo.GetByPaymentID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-00002", found.Number())
}

func TestScheduledWorkQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c := createTestContact(t, db, "due@example.com")

	t.Run("reminders due", func(t *testing.T) {
		repo := NewReminderRepository(db)
		for _, at := range []time.Time{now.Add(-2 * time.Hour), now.Add(48 * time.Hour)} {
			rem, err := billing.NewReminder(billing.NewReminderParams{
				ContactID: c.ID(),
				Kind:      billing.ReminderPaymentPending,
				Amount:    money.New(5000, "ILS"),
				RemindAt:  at,
			})
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, rem))
		}

		due, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.True(t, due[0].RemindAt().Before(now))
	})

	t.Run("recurring charges due", func(t *testing.T) {
		repo := NewRecurringPaymentRepository(db)
		for _, start := range []time.Time{now.Add(-24 * time.Hour), now.Add(72 * time.Hour)} {
			rp, err := billing.NewRecurringPayment(billing.NewRecurringPaymentParams{
				ContactID:   c.ID(),
				Description: "Monthly studio pass",
				Amount:      money.New(25000, "ILS"),
				Frequency:   billing.FrequencyMonthly,
				StartDate:   start,
				Gateway:     "tranzila",
				CardToken:   "tok_123",
				CardExpiry:  "1228",
			})
			require.NoError(t, err)
			require.NoError(t, repo.Create(ctx, rp))
		}

		due, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		assert.Len(t, due, 1)
	})

	t.Run("only one run claims a recurring charge", func(t *testing.T) {
		repo := NewRecurringPaymentRepository(db)
		first, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		second, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, first, 1)
		require.Len(t, second, 1)

		require.NoError(t, first[0].Claim(now, time.Hour))
		require.NoError(t, repo.Update(ctx, first[0]))

		require.NoError(t, second[0].Claim(now, time.Hour))
		err = repo.Update(ctx, second[0])
		assert.True(t, apperrors.IsConflictError(err), "stale copy must not claim")

		due, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		assert.Empty(t, due, "claimed charge is hidden until the lease ends")

		first[0].RecordSuccess(now)
		require.NoError(t, repo.Update(ctx, first[0]), "claimer saves the outcome")
		stored, err := repo.GetByID(ctx, first[0].ID())
		require.NoError(t, err)
		assert.Equal(t, 1, stored.ChargeCount())
	})

	t.Run("sequence enrollments due", func(t *testing.T) {
		seqRepo := NewEmailSequenceRepository(db)
		seq, err := messaging.NewEmailSequence("welcome", "", messaging.TriggerManual, []messaging.SequenceStep{
			{DelayHours: 0, TemplateName: "welcome_1"},
			{DelayHours: 24, TemplateName: "welcome_2"},
		})
		require.NoError(t, err)
		require.NoError(t, seqRepo.Create(ctx, seq))

		repo := NewEnrollmentRepository(db)
		e, err := messaging.NewEnrollment(seq, c.ID(), now.Add(-time.Hour))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, e))

		active, err := repo.GetActive(ctx, seq.ID(), c.ID())
		require.NoError(t, err)
		require.NotNil(t, active)

		due, err := repo.ListDue(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, e.ID(), due[0].ID())
	})
}

func TestStatsRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewStatsRepository(db, "ils")
	paymentRepo := NewPaymentRepository(db)
	ctx := context.Background()

	c := createTestContact(t, db, "stats@example.com")
	createTestContact(t, db, "stats2@example.com")

	paidAt := time.Now().UTC().Add(-time.Hour)
	for i, amount := range []int64{30000, 20000} {
		p := createTestPayment(t, db, c.ID(), nil, amount)
		_, err := p.Complete("TX-S"+string(rune('A'+i)), paidAt)
		require.NoError(t, err)
		require.NoError(t, paymentRepo.Update(ctx, p))
	}
	refunded := createTestPayment(t, db, c.ID(), nil, 10000)
	_, err := refunded.Complete("TX-R", paidAt)
	require.NoError(t, err)
	require.NoError(t, refunded.Refund(money.New(10000, "ILS")))
	require.NoError(t, paymentRepo.Update(ctx, refunded))
	createTestPayment(t, db, c.ID(), nil, 99999)

	usd, err := payment.NewPayment(payment.NewPaymentParams{
		ContactID: c.ID(),
		Amount:    money.New(50000, "USD"),
		Method:    vo.PaymentMethodCreditCard,
		Gateway:   "tranzila",
	})
	require.NoError(t, err)
	require.NoError(t, paymentRepo.Create(ctx, usd))
	_, err = usd.Complete("TX-USD", paidAt)
	require.NoError(t, err)
	require.NoError(t, usd.Refund(money.New(1000, "USD")))
	require.NoError(t, paymentRepo.Update(ctx, usd))

	byStatus, err := repo.ContactsByStatus(ctx)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, string(contact.StatusLead), byStatus[0].Key)
	assert.Equal(t, int64(2), byStatus[0].Count)

	revenue, err := repo.SumRevenue(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), revenue, "dollar payments stay out of shekel totals")

	since := paidAt.Add(time.Hour)
	recent, err := repo.SumRevenue(ctx, &since)
	require.NoError(t, err)
	assert.Zero(t, recent)

	refundTotal, err := repo.SumRefunded(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), refundTotal)

	pending, err := repo.CountPaymentsByStatus(ctx, vo.PaymentStatusPending.String())
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending)

	gateways, err := repo.RevenueByGateway(ctx)
	require.NoError(t, err)
	require.Len(t, gateways, 1)
	assert.Equal(t, "tranzila", gateways[0].Gateway)
	assert.Equal(t, int64(3), gateways[0].Count)

	amounts, err := repo.PaidAmountsSince(ctx, paidAt.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, amounts, 3)
}
