package model

import (
	"time"
)

// AnalyticsRecord keeps per-equipment running totals of rental activity.
// Updated incrementally on each completion, never recomputed from scratch.
type AnalyticsRecord struct {
	ID                string     `json:"id,omitempty" bson:"_id,omitempty"`
	EquipmentID       string     `json:"equipment_id" bson:"equipment_id"`
	RentalCount       int64      `json:"rental_count" bson:"rental_count"`
	TotalRevenue      float64    `json:"total_revenue" bson:"total_revenue"`
	TotalDurationDays float64    `json:"total_duration_days" bson:"total_duration_days"`
	AvgDurationDays   float64    `json:"average_duration_days" bson:"average_duration_days"`
	LastRented        *time.Time `json:"last_rented,omitempty" bson:"last_rented,omitempty"`
	LastUpdatedBy     string     `json:"last_updated_by,omitempty" bson:"last_updated_by,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

// AnalyticsRow is the read-side shape: the record joined with the equipment
// name so dashboards do not need a second lookup.
type AnalyticsRow struct {
	EquipmentID       string     `json:"equipment_id" bson:"equipment_id"`
	EquipmentName     string     `json:"equipment_name" bson:"equipment_name"`
	RentalCount       int64      `json:"rental_count" bson:"rental_count"`
	TotalRevenue      float64    `json:"total_revenue" bson:"total_revenue"`
	TotalDurationDays float64    `json:"total_duration_days" bson:"total_duration_days"`
	AvgDurationDays   float64    `json:"average_duration_days" bson:"average_duration_days"`
	LastRented        *time.Time `json:"last_rented,omitempty" bson:"last_rented,omitempty"`
	LastUpdatedBy     string     `json:"last_updated_by,omitempty" bson:"last_updated_by,omitempty"`
}
