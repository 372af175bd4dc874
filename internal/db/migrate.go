package db

import (
	"fmt"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table managed by AutoMigrate, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.PasswordReset{},
		&model.Business{},
		&model.Customer{},
		&model.Item{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.Subscription{},
		&model.EmailLog{},
	}
}

// indexes AutoMigrate cannot express. Both Postgres and SQLite accept this syntax.
var partialIndexes = []string{
	// one primary business per owner
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_businesses_single_primary
		ON businesses (user_id) WHERE is_primary = true AND is_active = true`,
	// gate lookups read the newest row per user
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_user_created
		ON subscriptions (user_id, created_at DESC)`,
}

// Migrate runs AutoMigrate and creates the extra indexes.
func Migrate(db *gorm.DB) error {
	logger.Info("Running database migrations...")

	models := Models()
	if err := db.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			logger.Error("Failed to create index", err)
			return fmt.Errorf("create index: %w", err)
		}
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}
