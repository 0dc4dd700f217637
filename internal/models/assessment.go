package models

import "time"

// Verdict is the classifier outcome
type Verdict int

const (
	NotGood Verdict = iota
	Good
)

func (v Verdict) String() string {
	if v == Good {
		return "good"
	}
	return "not_good"
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Bar is one bar of the price-per-sqft comparison
type Bar struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"` // width relative to the larger bar, 0-100
	Color   string  `json:"color"`
}

// Assessment is everything produced for one submitted property
type Assessment struct {
	Features        FeatureVector `json:"features"`
	PricePerSqFt    float64       `json:"price_per_sqft"`
	LocalityMedian  float64       `json:"locality_median"`
	PriceVsMedian   float64       `json:"price_vs_median"`
	LocalityMatched bool          `json:"locality_matched"`
	Verdict         Verdict       `json:"verdict"`
	FuturePrice     float64       `json:"future_price"`
	Comparison      []Bar         `json:"comparison"`
}

// IsGood reports whether the classifier flagged a good investment
func (a *Assessment) IsGood() bool {
	return a.Verdict == Good
}

// PredictionRecord is the persisted trace of one assessment
type PredictionRecord struct {
	ID                 int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	City               string    `json:"city"`
	Locality           string    `json:"locality" gorm:"index"`
	Price              float64   `json:"price"`
	Size               float64   `json:"size"`
	BHK                int       `json:"bhk"`
	YearBuilt          int       `json:"year_built"`
	AmenitiesCount     int       `json:"amenities_count"`
	OwnerType          string    `json:"owner_type"`
	PropertyType       string    `json:"property_type"`
	FurnishedStatus    string    `json:"furnished_status"`
	AvailabilityStatus string    `json:"availability_status"`
	PricePerSqFt       float64   `json:"price_per_sqft"`
	LocalityMedian     float64   `json:"locality_median"`
	LocalityMatched    bool      `json:"locality_matched"`
	IsGood             bool      `json:"is_good"`
	FuturePrice        float64   `json:"future_price"`
	CreatedAt          time.Time `json:"created_at" gorm:"index"`
}

// NewPredictionRecord flattens an input and its assessment into a record
func NewPredictionRecord(in PropertyInput, a *Assessment, at time.Time) *PredictionRecord {
	return &PredictionRecord{
		City:               in.City,
		Locality:           in.Locality,
		Price:              in.Price,
		Size:               in.Size,
		BHK:                in.BHK,
		YearBuilt:          in.YearBuilt,
		AmenitiesCount:     a.Features.AmenitiesCount,
		OwnerType:          in.OwnerType,
		PropertyType:       in.PropertyType,
		FurnishedStatus:    in.FurnishedStatus,
		AvailabilityStatus: in.AvailabilityStatus,
		PricePerSqFt:       a.PricePerSqFt,
		LocalityMedian:     a.LocalityMedian,
		LocalityMatched:    a.LocalityMatched,
		IsGood:             a.IsGood(),
		FuturePrice:        a.FuturePrice,
		CreatedAt:          at,
	}
}
