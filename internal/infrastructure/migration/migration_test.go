package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/shared/logger"
)

func TestGormAutoMigrateStrategy_CreatesAllTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	s := NewGormAutoMigrateStrategy(logger.NewNopLogger())
	require.NoError(t, s.Migrate(db))

	for _, table := range []string{
		"contacts", "products", "leads", "deals", "payments", "webhook_events", "invoices",
		"payment_plans", "plan_installments", "recurring_payments", "reminders",
		"message_templates", "email_sequences", "sequence_enrollments", "social_messages",
	} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestGooseStrategy_LatestVersion(t *testing.T) {
	s := NewGooseStrategy(logger.NewNopLogger())
	v, err := s.LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

func TestForDriver(t *testing.T) {
	assert.Equal(t, "gorm_auto_migrate", ForDriver("sqlite", logger.NewNopLogger()).GetName())
	assert.Equal(t, "goose", ForDriver("mysql", logger.NewNopLogger()).GetName())
}
