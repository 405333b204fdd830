package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// ReservationOverlapConstraint guards against two live reservations of the
// same studio sharing any instant.
const ReservationOverlapConstraint = "reservations_no_studio_overlap"

const reservationsTable = "reservations"

var reservationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '` + ReservationOverlapConstraint + `') THEN
		ALTER TABLE ` + reservationsTable + ` ADD CONSTRAINT ` + ReservationOverlapConstraint + `
			EXCLUDE USING gist (studio_id WITH =, tstzrange(start_at, end_at, '[)') WITH &&)
			WHERE (studio_id IS NOT NULL AND status IN ('PENDING', 'CONFIRMED'));
	END IF;
END $$`,
}

// Migrate creates or updates the tables for models and, on PostgreSQL,
// installs the constraints gorm tags cannot express.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}

	if !IsPostgres(db) {
		return nil
	}

	stmts := constraintStatements(db)
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("postgres migration: %w", err)
		}
	}
	log.Printf("migrations applied: models=%d constraint_statements=%d", len(models), len(stmts))
	return nil
}

// constraintStatements lists the raw statements whose tables exist.
func constraintStatements(db *gorm.DB) []string {
	if !db.Migrator().HasTable(reservationsTable) {
		return nil
	}
	return reservationStatements
}
