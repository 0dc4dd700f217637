package features

import (
	"investadvisor/server/internal/locality"
	"investadvisor/server/internal/models"
	"math"
	"strings"
)

// Result is the derived feature row plus the diagnostics shown to the user
type Result struct {
	Vector          models.FeatureVector
	PricePerSqFt    float64
	LocalityMedian  float64
	PriceVsMedian   float64
	LocalityMatched bool
}

// Derive builds the model row for one property. It is pure: the same input,
// reference table and reference year always give the same result.
func Derive(in models.PropertyInput, ref *locality.Reference, referenceYear int) Result {
	effectiveSize := math.Max(in.Size, 1)
	pricePerSqFt := in.Price / effectiveSize

	localityMedian, matched := ref.Median(in.Locality)
	priceVsMedian := pricePerSqFt - localityMedian

	return Result{
		Vector: models.FeatureVector{
			PriceInLakhs:          in.Price,
			SizeInSqFt:            in.Size,
			PricePerSqFt:          pricePerSqFt,
			AgeOfProperty:         referenceYear - in.YearBuilt,
			BHK:                   in.BHK,
			AmenitiesCount:        CountAmenities(in.Amenities),
			PriceVsMedianLocality: priceVsMedian,
			OwnerType:             in.OwnerType,
			PropertyType:          in.PropertyType,
			FurnishedStatus:       in.FurnishedStatus,
			AvailabilityStatus:    in.AvailabilityStatus,
			City:                  in.City,
		},
		PricePerSqFt:    pricePerSqFt,
		LocalityMedian:  localityMedian,
		PriceVsMedian:   priceVsMedian,
		LocalityMatched: matched,
	}
}

// CountAmenities counts the non-blank entries of a comma separated list
func CountAmenities(raw string) int {
	count := 0
	for _, token := range strings.Split(raw, ",") {
		if strings.TrimSpace(token) != "" {
			count++
		}
	}
	return count
}
