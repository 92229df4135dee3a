package database

import (
	"fmt"

	"slowctl/config"
	"slowctl/models"

	"gorm.io/gorm"
)

// Setup creates or updates the schema for all registry tables plus the
// measurement table selected by the configuration. In development mode this
// builds the playground table alongside the registry so test measurements
// stay out of the production log.
func Setup(db *gorm.DB, cfg *config.Config) error {
	if err := db.AutoMigrate(models.GetAllModels()...); err != nil {
		return fmt.Errorf("failed to migrate registry tables: %w", err)
	}

	// The production records table is covered by GetAllModels; a diverging
	// configured table (e.g. playground) needs its own pass.
	recordsTable := cfg.RecordsTable()
	if recordsTable != (models.Record{}).TableName() {
		if err := db.Table(recordsTable).AutoMigrate(&models.Record{}); err != nil {
			return fmt.Errorf("failed to migrate records table %q: %w", recordsTable, err)
		}
	}

	return nil
}
