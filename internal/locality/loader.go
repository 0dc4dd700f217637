package locality

import (
	"encoding/csv"
	"errors"
	"fmt"
	"investadvisor/server/internal/database"
	"investadvisor/server/internal/models"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	LocalityColumn = "Locality"
	MedianColumn   = "locality_median_ppsqft"

	sqlitePrefix = "sqlite:"
)

var ErrMissingColumn = errors.New("missing required column")

// missingMarkers are the cell values pandas reads as NaN by default
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// isMissing reports whether a cell counts as a missing value
func isMissing(cell string) bool {
	_, ok := missingMarkers[strings.TrimSpace(cell)]
	return ok
}

// Load reads the reference table from source. A "sqlite:" prefix selects the
// locality_medians table of a SQLite file, anything else is read as CSV.
func Load(source string) (*Reference, error) {
	var rows []models.LocalityMedian
	var err error

	if strings.HasPrefix(source, sqlitePrefix) {
		rows, err = loadSQLite(strings.TrimPrefix(source, sqlitePrefix))
	} else {
		rows, err = loadCSVFile(source)
	}
	if err != nil {
		return nil, err
	}

	ref, err := New(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	return ref, nil
}

func loadCSVFile(path string) ([]models.LocalityMedian, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	f, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open locality file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV parses a locality table with a header row. Column order is free and
// extra columns are ignored. Rows with a missing locality name or median
// (empty, or a marker such as NA or null) are skipped.
func ReadCSV(r io.Reader) ([]models.LocalityMedian, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	localityIdx, medianIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case LocalityColumn:
			localityIdx = i
		case MedianColumn:
			medianIdx = i
		}
	}
	if localityIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, LocalityColumn)
	}
	if medianIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, MedianColumn)
	}

	var rows []models.LocalityMedian
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) <= localityIdx || len(record) <= medianIdx {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d",
				line, max(localityIdx, medianIdx)+1, len(record))
		}

		if isMissing(record[localityIdx]) || isMissing(record[medianIdx]) {
			continue
		}
		raw := strings.TrimSpace(record[medianIdx])
		median, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, MedianColumn, raw, err)
		}
		if math.IsNaN(median) {
			continue
		}

		rows = append(rows, models.LocalityMedian{
			Locality:           record[localityIdx],
			MedianPricePerSqFt: median,
		})
	}

	return rows, nil
}

func loadSQLite(path string) ([]models.LocalityMedian, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open locality database: %w", err)
	}

	db, err := database.NewDatabase(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return db.GetLocalityMedians()
}

// Import replaces the locality_medians table of the SQLite file at dbPath
// with the rows of the CSV file at csvPath. It returns the number of rows
// written.
func Import(csvPath, dbPath string) (int, error) {
	rows, err := loadCSVFile(csvPath)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("failed to import %s: %w", csvPath, ErrEmptyTable)
	}

	db, err := database.NewDatabase(dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		return 0, err
	}
	if err := db.ReplaceLocalityMedians(rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}
