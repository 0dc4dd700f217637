package database

import (
	"database/sql"
	"fmt"
	"investadvisor/server/internal/models"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Database reads reference data from a SQLite file
type Database struct {
	db *sql.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// sql.Open is lazy, make sure the file is really usable
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open %s: %w", dbPath, err)
	}

	return &Database{db: db}, nil
}

// GetLocalityMedians returns every row of the locality_medians table.
// Rows with a NULL or blank locality name or a NULL median are skipped.
func (d *Database) GetLocalityMedians() ([]models.LocalityMedian, error) {
	rows, err := d.db.Query(`
		SELECT locality, locality_median_ppsqft
		FROM locality_medians
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locality medians: %w", err)
	}
	defer rows.Close()

	var medians []models.LocalityMedian
	for rows.Next() {
		var locality sql.NullString
		var median sql.NullFloat64
		if err := rows.Scan(&locality, &median); err != nil {
			return nil, fmt.Errorf("failed to scan locality median: %w", err)
		}
		if !locality.Valid || strings.TrimSpace(locality.String) == "" || !median.Valid {
			continue
		}
		medians = append(medians, models.LocalityMedian{
			Locality:           locality.String,
			MedianPricePerSqFt: median.Float64,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locality medians: %w", err)
	}

	return medians, nil
}

func (d *Database) GetDB() *sql.DB {
	return d.db
}

func (d *Database) Close() error {
	return d.db.Close()
}
