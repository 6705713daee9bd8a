package migration

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kesher-io/kesher/internal/infrastructure/persistence/models"
	"github.com/kesher-io/kesher/internal/shared/logger"
)

// AutoMigrateModels lists every table Kesher owns.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.ContactModel{},
		&models.ProductModel{},
		&models.LeadModel{},
		&models.DealModel{},
		&models.PaymentModel{},
		&models.WebhookEventModel{},
		&models.InvoiceModel{},
		&models.PaymentPlanModel{},
		&models.PlanInstallmentModel{},
		&models.RecurringPaymentModel{},
		&models.ReminderModel{},
		&models.MessageTemplateModel{},
		&models.EmailSequenceModel{},
		&models.SequenceEnrollmentModel{},
		&models.SocialMessageModel{},
	}
}

type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return "gorm_auto_migrate"
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	list := AutoMigrateModels()
	if err := db.AutoMigrate(list...); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(list))
	return nil
}

// ForDriver picks goose for MySQL and AutoMigrate for SQLite.
func ForDriver(driver string, log logger.Interface) Strategy {
	if driver == "sqlite" {
		return NewGormAutoMigrateStrategy(log)
	}
	return NewGooseStrategy(log)
}
