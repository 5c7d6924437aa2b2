package domain

import "time"

// Animal is a shelter outcome record. Field names mirror the upstream shelter
// dataset, which is why they are snake_case in both bson and JSON.
type Animal struct {
	BaseEntity            `bson:",inline"`
	AnimalID              string    `bson:"animal_id,omitempty" json:"animal_id,omitempty"`
	AnimalType            string    `bson:"animal_type,omitempty" json:"animal_type,omitempty"`
	Name                  string    `bson:"name,omitempty" json:"name,omitempty"`
	Breed                 string    `bson:"breed,omitempty" json:"breed,omitempty"`
	Color                 string    `bson:"color,omitempty" json:"color,omitempty"`
	AgeUponOutcome        string    `bson:"age_upon_outcome,omitempty" json:"age_upon_outcome,omitempty"`
	DateOfBirth           time.Time `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	DateTime              time.Time `bson:"datetime,omitempty" json:"datetime,omitempty"`
	MonthYear             string    `bson:"monthyear,omitempty" json:"monthyear,omitempty"`
	OutcomeType           string    `bson:"outcome_type,omitempty" json:"outcome_type,omitempty"`
	OutcomeSubtype        string    `bson:"outcome_subtype,omitempty" json:"outcome_subtype,omitempty"`
	SexUponOutcome        string    `bson:"sex_upon_outcome,omitempty" json:"sex_upon_outcome,omitempty"`
	LocationLat           float64   `bson:"location_lat,omitempty" json:"location_lat,omitempty"`
	LocationLong          float64   `bson:"location_long,omitempty" json:"location_long,omitempty"`
	AgeUponOutcomeInWeeks float64   `bson:"age_upon_outcome_in_weeks,omitempty" json:"age_upon_outcome_in_weeks,omitempty"`
}

// PublicFields is the reduced projection served on unauthenticated routes.
var PublicAnimalFields = []string{
	"name",
	"animal_type",
	"breed",
	"color",
	"age_upon_outcome",
	"sex_upon_outcome",
	"outcome_type",
}

// AnimalStats is the public stats summary aggregated over the collection.
type AnimalStats struct {
	AnimalTypes  []BucketCount `bson:"animalTypes" json:"animalTypes"`
	OutcomeTypes []BucketCount `bson:"outcomeTypes" json:"outcomeTypes"`
	TopBreeds    []BucketCount `bson:"topBreeds" json:"topBreeds"`
}

type BucketCount struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}
