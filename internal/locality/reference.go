package locality

import (
	"errors"
	"investadvisor/server/internal/models"
	"sort"
)

var ErrEmptyTable = errors.New("locality reference table is empty")

// Reference maps locality names to their median price per sqft.
// It is built once and never mutated, so concurrent readers need no locking.
type Reference struct {
	byLocality   map[string]float64
	globalMedian float64
	rows         int
}

// New builds a reference from rows. Duplicate localities are aggregated
// by taking the median of their values.
func New(rows []models.LocalityMedian) (*Reference, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	grouped := make(map[string][]float64)
	all := make([]float64, 0, len(rows))
	for _, row := range rows {
		grouped[row.Locality] = append(grouped[row.Locality], row.MedianPricePerSqFt)
		all = append(all, row.MedianPricePerSqFt)
	}

	byLocality := make(map[string]float64, len(grouped))
	for name, values := range grouped {
		byLocality[name] = Median(values)
	}

	return &Reference{
		byLocality:   byLocality,
		globalMedian: Median(all),
		rows:         len(rows),
	}, nil
}

// Median returns the median for an exact, case-sensitive locality match.
// When nothing matches it returns the median over the whole table and false.
func (r *Reference) Median(locality string) (float64, bool) {
	if v, ok := r.byLocality[locality]; ok {
		return v, true
	}
	return r.globalMedian, false
}

// GlobalMedian is the median of every value in the table
func (r *Reference) GlobalMedian() float64 {
	return r.globalMedian
}

// Localities returns the distinct locality names, sorted
func (r *Reference) Localities() []string {
	names := make([]string, 0, len(r.byLocality))
	for name := range r.byLocality {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of rows the reference was built from
func (r *Reference) Len() int {
	return r.rows
}

// Median of values; the mean of the two middle values for an even count.
// The input slice is not modified.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
