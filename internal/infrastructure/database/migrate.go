package database

import (
	"fmt"
	"log"

	"github.com/miracle7662/RestaurantNew-sub004/internal/domain/entity"
	"gorm.io/gorm"
)

// indexes gorm tags cannot express. Status values are enum.BillStatus
// Open (0) and Billed (1).
var rawIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_bills_active_table ON bills (table_id) WHERE status IN (0, 1) AND table_id IS NOT NULL AND deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_bills_outlet_settled ON bills (outlet_id, status, settled_at)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_model_has_roles ON model_has_roles (model_id, role_id)`,
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		// Access control
		&entity.User{},
		&entity.Role{},
		&entity.Permission{},

		// Location and organization
		&entity.Country{},
		&entity.State{},
		&entity.City{},
		&entity.Brand{},
		&entity.Hotel{},
		&entity.TaxGroup{},
		&entity.Outlet{},
		&entity.Department{},
		&entity.DiningTable{},

		// Menu and kitchen
		&entity.KitchenMainGroup{},
		&entity.KitchenCategory{},
		&entity.KitchenSubCategory{},
		&entity.Unit{},
		&entity.MenuItem{},

		// Reference data
		&entity.Warehouse{},
		&entity.Designation{},
		&entity.UserType{},
		&entity.Customer{},
		&entity.PaymentMode{},
		&entity.PrinterSetting{},

		// Billing workflow
		&entity.Bill{},
		&entity.KOT{},
		&entity.BillDetail{},
		&entity.ReverseKOT{},
		&entity.Settlement{},
		&entity.SettlementLog{},
		&entity.Handover{},
		&entity.HandoverPayment{},
		&entity.HandoverDenomination{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	for _, ddl := range rawIndexes {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}
