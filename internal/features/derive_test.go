package features

import (
	"investadvisor/server/internal/locality"
	"investadvisor/server/internal/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const referenceYear = 2025

func testReference(t *testing.T) *locality.Reference {
	t.Helper()
	ref, err := locality.New([]models.LocalityMedian{
		{Locality: "Powai", MedianPricePerSqFt: 0.02},
		{Locality: "Bandra", MedianPricePerSqFt: 0.04},
		{Locality: "Bandra", MedianPricePerSqFt: 0.06},
		{Locality: "Bandra", MedianPricePerSqFt: 0.05},
		{Locality: "Dwarka", MedianPricePerSqFt: 0.01},
	})
	require.NoError(t, err)
	return ref
}

func baseInput() models.PropertyInput {
	return models.PropertyInput{
		Price:              50,
		Size:               1000,
		BHK:                2,
		YearBuilt:          2015,
		Amenities:          "Gym,Pool",
		OwnerType:          "Builder",
		PropertyType:       "Apartment",
		FurnishedStatus:    "Semi",
		AvailabilityStatus: "Under Construction",
		City:               "Mumbai",
		Locality:           "",
	}
}

func TestDeriveClampsSize(t *testing.T) {
	tests := []struct {
		name string
		size float64
	}{
		{name: "Zero size", size: 0},
		{name: "Negative size", size: -250},
		{name: "Fractional size below one", size: 0.5},
		{name: "Exactly one", size: 1},
	}

	ref := testReference(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Size = tt.size

			result := Derive(in, ref, referenceYear)

			assert.Equal(t, 50.0, result.PricePerSqFt)
			assert.Equal(t, tt.size, result.Vector.SizeInSqFt, "raw size is passed through")
		})
	}
}

func TestDeriveLocalityMedian(t *testing.T) {
	tests := []struct {
		name          string
		locality      string
		expected      float64
		expectMatched bool
	}{
		{name: "Single entry", locality: "Powai", expected: 0.02, expectMatched: true},
		{name: "Duplicate entries use their median", locality: "Bandra", expected: 0.05, expectMatched: true},
		{name: "Unknown locality uses global median", locality: "Juhu", expected: 0.04, expectMatched: false},
		{name: "Match is case sensitive", locality: "powai", expected: 0.04, expectMatched: false},
		{name: "Empty locality", locality: "", expected: 0.04, expectMatched: false},
	}

	ref := testReference(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Locality = tt.locality

			result := Derive(in, ref, referenceYear)

			assert.Equal(t, tt.expected, result.LocalityMedian)
			assert.Equal(t, tt.expectMatched, result.LocalityMatched)
			assert.Equal(t, result.PricePerSqFt-tt.expected, result.PriceVsMedian)
			assert.Equal(t, result.PriceVsMedian, result.Vector.PriceVsMedianLocality)
		})
	}
}

func TestCountAmenities(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{input: "Gym,Pool", expected: 2},
		{input: "", expected: 0},
		{input: "Gym,,Pool", expected: 2},
		{input: " Gym , Pool ", expected: 2},
		{input: " , ,", expected: 0},
		{input: "Gym", expected: 1},
		{input: "Gym,Pool,Clubhouse,Garden,Security", expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountAmenities(tt.input))
		})
	}
}

func TestDerivePropertyAge(t *testing.T) {
	ref := testReference(t)
	in := baseInput()

	assert.Equal(t, 10, Derive(in, ref, 2025).Vector.AgeOfProperty)
	assert.Equal(t, 15, Derive(in, ref, 2030).Vector.AgeOfProperty, "reference year is injected")

	in.YearBuilt = 2030
	assert.Equal(t, -5, Derive(in, ref, 2025).Vector.AgeOfProperty, "future years are not clamped")
}

func TestDeriveEndToEndVector(t *testing.T) {
	ref := testReference(t)

	result := Derive(baseInput(), ref, referenceYear)

	// runtime subtraction, a constant expression would round differently
	pricePerSqFt, globalMedian := 0.05, 0.04
	assert.Equal(t, models.FeatureVector{
		PriceInLakhs:          50,
		SizeInSqFt:            1000,
		PricePerSqFt:          0.05,
		AgeOfProperty:         10,
		BHK:                   2,
		AmenitiesCount:        2,
		PriceVsMedianLocality: pricePerSqFt - globalMedian,
		OwnerType:             "Builder",
		PropertyType:          "Apartment",
		FurnishedStatus:       "Semi",
		AvailabilityStatus:    "Under Construction",
		City:                  "Mumbai",
	}, result.Vector)
	assert.Equal(t, 0.05, result.PricePerSqFt)
	assert.Equal(t, 0.04, result.LocalityMedian)
}

func TestDeriveIsDeterministic(t *testing.T) {
	ref := testReference(t)
	in := baseInput()
	in.Locality = "Bandra"

	first := Derive(in, ref, referenceYear)
	second := Derive(in, ref, referenceYear)

	assert.Equal(t, first, second)
}
