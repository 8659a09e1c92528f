package model

import (
	"time"
)

type Category string

const (
	CategoryTractor    Category = "tractor"
	CategoryHarvester  Category = "harvester"
	CategoryPlow       Category = "plow"
	CategorySeeder     Category = "seeder"
	CategorySprayer    Category = "sprayer"
	CategoryIrrigation Category = "irrigation"
	CategoryOther      Category = "other"
)

type Specifications struct {
	Manufacturer string `json:"manufacturer,omitempty" bson:"manufacturer,omitempty"`
	Model        string `json:"model,omitempty" bson:"model,omitempty"`
	Year         int    `json:"year,omitempty" bson:"year,omitempty"`
	PowerOutput  string `json:"power_output,omitempty" bson:"power_output,omitempty"`
	Dimensions   string `json:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Weight       string `json:"weight,omitempty" bson:"weight,omitempty"`
	FuelType     string `json:"fuel_type,omitempty" bson:"fuel_type,omitempty"`
}

type Review struct {
	ID         string    `json:"id" bson:"id"`
	ReviewerID string    `json:"reviewer_id" bson:"reviewer_id"`
	Rating     int       `json:"rating" bson:"rating"`
	Comment    string    `json:"comment,omitempty" bson:"comment,omitempty"`
	Reply      string    `json:"reply,omitempty" bson:"reply,omitempty"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

type Equipment struct {
	ID             string         `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID        string         `json:"owner_id" bson:"owner_id"`
	Name           string         `json:"name" bson:"name"`
	Description    string         `json:"description" bson:"description"`
	Category       Category       `json:"category" bson:"category"`
	Images         []string       `json:"images" bson:"images"`
	DailyRate      float64        `json:"daily_rate" bson:"daily_rate"`
	WeeklyRate     float64        `json:"weekly_rate" bson:"weekly_rate"`
	MonthlyRate    float64        `json:"monthly_rate" bson:"monthly_rate"`
	Availability   bool           `json:"availability" bson:"availability"`
	Specifications Specifications `json:"specifications" bson:"specifications"`
	Location       string         `json:"location" bson:"location"`
	Features       []string       `json:"features" bson:"features"`
	Rating         float64        `json:"rating" bson:"rating"`
	Reviews        []Review       `json:"reviews" bson:"reviews"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// EquipmentSummary is the populated slice of an equipment document carried
// on booking reads.
type EquipmentSummary struct {
	ID       string   `json:"id" bson:"id"`
	Name     string   `json:"name" bson:"name"`
	Category Category `json:"category" bson:"category"`
	Images   []string `json:"images" bson:"images"`
	Location string   `json:"location,omitempty" bson:"location,omitempty"`
}

type EquipmentCreate struct {
	Name           string         `json:"name" validate:"required,min=2,max=150"`
	Description    string         `json:"description" validate:"required,min=2,max=2000"`
	Category       Category       `json:"category" validate:"required,oneof=tractor harvester plow seeder sprayer irrigation other"`
	Images         []string       `json:"images" validate:"omitempty,dive,max=500"`
	DailyRate      *float64       `json:"daily_rate" validate:"required,gte=0"`
	WeeklyRate     *float64       `json:"weekly_rate" validate:"required,gte=0"`
	MonthlyRate    *float64       `json:"monthly_rate" validate:"required,gte=0"`
	Specifications Specifications `json:"specifications"`
	Location       string         `json:"location" validate:"required,min=2,max=200"`
	Features       []string       `json:"features" validate:"omitempty,dive,max=100"`
}

// EquipmentUpdate carries a partial mutation; nil fields are left unchanged.
type EquipmentUpdate struct {
	Name           *string         `json:"name,omitempty" validate:"omitempty,min=2,max=150"`
	Description    *string         `json:"description,omitempty" validate:"omitempty,min=2,max=2000"`
	Category       *Category       `json:"category,omitempty" validate:"omitempty,oneof=tractor harvester plow seeder sprayer irrigation other"`
	Images         *[]string       `json:"images,omitempty" validate:"omitempty,dive,max=500"`
	DailyRate      *float64        `json:"daily_rate,omitempty" validate:"omitempty,gte=0"`
	WeeklyRate     *float64        `json:"weekly_rate,omitempty" validate:"omitempty,gte=0"`
	MonthlyRate    *float64        `json:"monthly_rate,omitempty" validate:"omitempty,gte=0"`
	Availability   *bool           `json:"availability,omitempty"`
	Specifications *Specifications `json:"specifications,omitempty"`
	Location       *string         `json:"location,omitempty" validate:"omitempty,min=2,max=200"`
	Features       *[]string       `json:"features,omitempty" validate:"omitempty,dive,max=100"`
}

type ReviewCreate struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

type ReviewReply struct {
	Reply string `json:"reply" validate:"required,min=1,max=1000"`
}

// EquipmentFilter narrows catalog searches. Zero values mean "no filter".
type EquipmentFilter struct {
	Category     Category
	Location     string
	Availability *bool
	MinDailyRate *float64
	MaxDailyRate *float64
	Search       string
	SortBy       string
}

const (
	SortNewest    = "newest"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortRating    = "rating"
)
