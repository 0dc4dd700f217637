package locality

import (
	"investadvisor/server/internal/database"
	"investadvisor/server/internal/models"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    []models.LocalityMedian
		expectError error
	}{
		{
			name:  "Basic table",
			input: "Locality,locality_median_ppsqft\nPowai,0.02\nBandra,0.04\n",
			expected: []models.LocalityMedian{
				{Locality: "Powai", MedianPricePerSqFt: 0.02},
				{Locality: "Bandra", MedianPricePerSqFt: 0.04},
			},
		},
		{
			name:  "Columns in any order with extras",
			input: "City,locality_median_ppsqft,Locality\nMumbai,0.02,Powai\n",
			expected: []models.LocalityMedian{
				{Locality: "Powai", MedianPricePerSqFt: 0.02},
			},
		},
		{
			name:  "Byte order mark and missing values",
			input: "\ufeffLocality,locality_median_ppsqft\nPowai,\nBandra,NaN\nDwarka,0.01\n",
			expected: []models.LocalityMedian{
				{Locality: "Dwarka", MedianPricePerSqFt: 0.01},
			},
		},
		{
			name:  "Quoted names keep commas",
			input: "Locality,locality_median_ppsqft\n\"Sector 5, Salt Lake\",0.0059\n",
			expected: []models.LocalityMedian{
				{Locality: "Sector 5, Salt Lake", MedianPricePerSqFt: 0.0059},
			},
		},
		{
			name:  "Missing locality names are skipped",
			input: "Locality,locality_median_ppsqft\n,0.9\n  ,0.8\nNA,0.7\nPowai,0.02\n",
			expected: []models.LocalityMedian{
				{Locality: "Powai", MedianPricePerSqFt: 0.02},
			},
		},
		{
			name:  "Missing value markers in the median column",
			input: "Locality,locality_median_ppsqft\nPowai,NA\nBandra,N/A\nJuhu,null\nAndheri,#N/A\nWorli,None\nDwarka,0.01\n",
			expected: []models.LocalityMedian{
				{Locality: "Dwarka", MedianPricePerSqFt: 0.01},
			},
		},
		{
			name:        "Missing median column",
			input:       "Locality,price\nPowai,0.02\n",
			expectError: ErrMissingColumn,
		},
		{
			name:        "Missing locality column",
			input:       "Name,locality_median_ppsqft\nPowai,0.02\n",
			expectError: ErrMissingColumn,
		},
		{
			name:        "Empty input",
			input:       "",
			expectError: ErrEmptyTable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadCSV(strings.NewReader(tt.input))

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, rows)
		})
	}
}

func TestReadCSVRejectsMalformedValues(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Locality,locality_median_ppsqft\nPowai,cheap\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")

	_, err = ReadCSV(strings.NewReader("Locality,locality_median_ppsqft\nPowai\n"))
	assert.Error(t, err)
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locality_medians.csv")
	content := "Locality,locality_median_ppsqft\nPowai,0.02\nBandra,0.04\nBandra,0.06\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ref, err := Load(path)
	require.NoError(t, err)

	median, ok := ref.Median("Bandra")
	assert.True(t, ok)
	assert.InDelta(t, 0.05, median, 1e-12)
	assert.Equal(t, 3, ref.Len())
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err, "missing file")

	headerOnly := filepath.Join(dir, "header_only.csv")
	require.NoError(t, os.WriteFile(headerOnly, []byte("Locality,locality_median_ppsqft\n"), 0644))
	_, err = Load(headerOnly)
	assert.ErrorIs(t, err, ErrEmptyTable)

	_, err = Load("sqlite:" + filepath.Join(dir, "missing.db"))
	assert.Error(t, err, "missing database")
}

func TestLoadSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reference.db")

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.ReplaceLocalityMedians([]models.LocalityMedian{
		{Locality: "Powai", MedianPricePerSqFt: 0.02},
		{Locality: "Powai", MedianPricePerSqFt: 0.03},
		{Locality: "Powai", MedianPricePerSqFt: 0.10},
		{Locality: "Dwarka", MedianPricePerSqFt: 0.01},
	}))
	_, err = db.GetDB().Exec(`INSERT INTO locality_medians (locality, locality_median_ppsqft) VALUES ('', 0.9)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	ref, err := Load("sqlite:" + path)
	require.NoError(t, err)

	median, ok := ref.Median("Powai")
	assert.True(t, ok)
	assert.Equal(t, 0.03, median)

	median, ok = ref.Median("Unknown")
	assert.False(t, ok)
	assert.InDelta(t, 0.025, median, 1e-12)

	// the blank-named row is not a locality and not part of the global median
	median, ok = ref.Median("")
	assert.False(t, ok)
	assert.InDelta(t, 0.025, median, 1e-12)
}

func TestLoadCSVBlankLocalityFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locality_medians.csv")
	content := "Locality,locality_median_ppsqft\n,0.9\nPowai,0.02\nBandra,0.04\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	ref, err := Load(path)
	require.NoError(t, err)

	median, ok := ref.Median("")
	assert.False(t, ok)
	assert.InDelta(t, 0.03, median, 1e-12)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "locality_medians.csv")
	dbPath := filepath.Join(dir, "reference.db")
	content := "Locality,locality_median_ppsqft\nPowai,0.02\nBandra,NA\nDwarka,0.01\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(content), 0644))

	count, err := Import(csvPath, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// importing twice replaces the table instead of duplicating it
	count, err = Import(csvPath, dbPath)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	ref, err := Load("sqlite:" + dbPath)
	require.NoError(t, err)
	assert.Equal(t, 2, ref.Len())
	assert.Equal(t, []string{"Dwarka", "Powai"}, ref.Localities())

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("Locality,locality_median_ppsqft\n"), 0644))
	_, err = Import(empty, dbPath)
	assert.ErrorIs(t, err, ErrEmptyTable)
}
