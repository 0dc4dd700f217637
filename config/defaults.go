package config

import "investadvisor/server/internal/models"

// FormDefaults are the values the property form starts with
var FormDefaults = models.PropertyInput{
	Price:              50,
	Size:               1000,
	BHK:                2,
	YearBuilt:          2015,
	Amenities:          "Gym,Pool",
	OwnerType:          models.OwnerTypes[0],
	PropertyType:       models.PropertyTypes[0],
	FurnishedStatus:    models.FurnishedStatuses[0],
	AvailabilityStatus: models.AvailabilityStatuses[0],
	City:               "Mumbai",
	Locality:           "",
}
