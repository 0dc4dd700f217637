package models

import "fmt"

// PropertyInput is the raw set of attributes submitted for one assessment
type PropertyInput struct {
	Price              float64 `json:"price" form:"price" binding:"gte=0"`
	Size               float64 `json:"size" form:"size"`
	BHK                int     `json:"bhk" form:"bhk" binding:"gte=1"`
	YearBuilt          int     `json:"year_built" form:"year_built" binding:"gte=1900,lte=2100"`
	Amenities          string  `json:"amenities" form:"amenities"`
	OwnerType          string  `json:"owner_type" form:"owner_type"`
	PropertyType       string  `json:"property_type" form:"property_type"`
	FurnishedStatus    string  `json:"furnished_status" form:"furnished_status"`
	AvailabilityStatus string  `json:"availability_status" form:"availability_status"`
	City               string  `json:"city" form:"city"`
	Locality           string  `json:"locality" form:"locality"`
}

var (
	OwnerTypes           = []string{"Builder", "Individual", "Agent", "Unknown"}
	PropertyTypes        = []string{"Apartment", "Villa", "House", "Unknown"}
	FurnishedStatuses    = []string{"Unfurnished", "Semi", "Fully", "Unknown"}
	AvailabilityStatuses = []string{"Available", "Under Construction", "Sold", "Unknown"}
)

// ValidateLabels checks the categorical fields against their closed label sets
func (p PropertyInput) ValidateLabels() error {
	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"owner_type", p.OwnerType, OwnerTypes},
		{"property_type", p.PropertyType, PropertyTypes},
		{"furnished_status", p.FurnishedStatus, FurnishedStatuses},
		{"availability_status", p.AvailabilityStatus, AvailabilityStatuses},
	}

	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("invalid %s %q: must be one of %v", c.field, c.value, c.allowed)
		}
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// LocalityMedian is one row of the locality reference table
type LocalityMedian struct {
	Locality           string  `json:"locality"`
	MedianPricePerSqFt float64 `json:"median_price_per_sqft"`
}

// FeatureVector is the row handed to both models. The JSON names are the
// column names the estimators were trained on and must not change.
type FeatureVector struct {
	PriceInLakhs          float64 `json:"Price_in_Lakhs"`
	SizeInSqFt            float64 `json:"Size_in_SqFt"`
	PricePerSqFt          float64 `json:"Price_per_SqFt"`
	AgeOfProperty         int     `json:"Age_of_Property"`
	BHK                   int     `json:"BHK"`
	AmenitiesCount        int     `json:"Amenities_Count"`
	PriceVsMedianLocality float64 `json:"Price_vs_Median_locality"`
	OwnerType             string  `json:"Owner_Type"`
	PropertyType          string  `json:"Property_Type"`
	FurnishedStatus       string  `json:"Furnished_Status"`
	AvailabilityStatus    string  `json:"Availability_Status"`
	City                  string  `json:"City"`
}

// Row returns the vector keyed by feature name. Numeric features are float64,
// categorical features are their raw label strings.
func (f FeatureVector) Row() map[string]interface{} {
	return map[string]interface{}{
		"Price_in_Lakhs":           f.PriceInLakhs,
		"Size_in_SqFt":             f.SizeInSqFt,
		"Price_per_SqFt":           f.PricePerSqFt,
		"Age_of_Property":          float64(f.AgeOfProperty),
		"BHK":                      float64(f.BHK),
		"Amenities_Count":          float64(f.AmenitiesCount),
		"Price_vs_Median_locality": f.PriceVsMedianLocality,
		"Owner_Type":               f.OwnerType,
		"Property_Type":            f.PropertyType,
		"Furnished_Status":         f.FurnishedStatus,
		"Availability_Status":      f.AvailabilityStatus,
		"City":                     f.City,
	}
}
