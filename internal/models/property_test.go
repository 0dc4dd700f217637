package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() PropertyInput {
	return PropertyInput{
		Price:              50,
		Size:               1000,
		BHK:                2,
		YearBuilt:          2015,
		OwnerType:          "Individual",
		PropertyType:       "Villa",
		FurnishedStatus:    "Fully",
		AvailabilityStatus: "Under Construction",
		City:               "Pune",
		Locality:           "Baner",
	}
}

func TestValidateLabels(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*PropertyInput)
		expectError string
	}{
		{name: "Valid", mutate: func(p *PropertyInput) {}},
		{name: "Unknown is a valid label", mutate: func(p *PropertyInput) { p.OwnerType = "Unknown" }},
		{name: "Bad owner type", mutate: func(p *PropertyInput) { p.OwnerType = "Landlord" }, expectError: "owner_type"},
		{name: "Bad property type", mutate: func(p *PropertyInput) { p.PropertyType = "Castle" }, expectError: "property_type"},
		{name: "Labels are case sensitive", mutate: func(p *PropertyInput) { p.FurnishedStatus = "semi" }, expectError: "furnished_status"},
		{name: "Bad availability", mutate: func(p *PropertyInput) { p.AvailabilityStatus = "" }, expectError: "availability_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)

			err := input.ValidateLabels()
			if tt.expectError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestFeatureVectorRow(t *testing.T) {
	vector := FeatureVector{
		PriceInLakhs:          50,
		SizeInSqFt:            1000,
		PricePerSqFt:          0.05,
		AgeOfProperty:         10,
		BHK:                   2,
		AmenitiesCount:        3,
		PriceVsMedianLocality: 0.01,
		OwnerType:             "Builder",
		PropertyType:          "Apartment",
		FurnishedStatus:       "Semi",
		AvailabilityStatus:    "Available",
		City:                  "Mumbai",
	}

	row := vector.Row()
	assert.Len(t, row, 12)
	assert.Equal(t, 10.0, row["Age_of_Property"])
	assert.Equal(t, 3.0, row["Amenities_Count"])
	assert.Equal(t, "Semi", row["Furnished_Status"])

	// Row and the JSON encoding agree on the column names
	data, err := json.Marshal(vector)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	for name := range row {
		assert.Contains(t, decoded, name)
	}
}

func TestVerdictText(t *testing.T) {
	assert.Equal(t, "good", Good.String())
	assert.Equal(t, "not_good", NotGood.String())

	data, err := json.Marshal(map[string]Verdict{"verdict": Good})
	require.NoError(t, err)
	assert.JSONEq(t, `{"verdict":"good"}`, string(data))
}

func TestNewPredictionRecord(t *testing.T) {
	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	assessment := &Assessment{
		Features:        FeatureVector{AmenitiesCount: 4},
		PricePerSqFt:    0.05,
		LocalityMedian:  0.03,
		LocalityMatched: true,
		Verdict:         Good,
		FuturePrice:     72.5,
	}

	record := NewPredictionRecord(validInput(), assessment, at)

	assert.Equal(t, "Pune", record.City)
	assert.Equal(t, "Baner", record.Locality)
	assert.Equal(t, 4, record.AmenitiesCount)
	assert.True(t, record.IsGood)
	assert.True(t, record.LocalityMatched)
	assert.Equal(t, 72.5, record.FuturePrice)
	assert.Equal(t, at, record.CreatedAt)
	assert.Zero(t, record.ID)
}
