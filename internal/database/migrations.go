package database

import (
	"fmt"
	"investadvisor/server/internal/models"
)

func (d *Database) RunMigrations() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS locality_medians (
			locality TEXT NOT NULL,
			locality_median_ppsqft REAL
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create locality_medians table: %v", err)
	}

	// Duplicates are allowed, so the index is not unique
	_, err = d.db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_locality_medians_locality
		ON locality_medians(locality);
	`)
	if err != nil {
		return err
	}

	return nil
}

// ReplaceLocalityMedians swaps the contents of the locality_medians table
// for rows in a single transaction
func (d *Database) ReplaceLocalityMedians(rows []models.LocalityMedian) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM locality_medians`); err != nil {
		return fmt.Errorf("failed to clear locality medians: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO locality_medians (locality, locality_median_ppsqft)
		VALUES (?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row.Locality, row.MedianPricePerSqFt); err != nil {
			return fmt.Errorf("failed to insert locality %q: %w", row.Locality, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
