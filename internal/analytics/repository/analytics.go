package repository

import (
	"context"
	"fmt"
	"time"

	"agrirent/pkg/config"
	"agrirent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName          = "Analytics"
	EquipmentCollectionName = "Equipment"
)

type AnalyticsRepository interface {
	IncrementCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error
	EnsureZeroRecords(ctx context.Context) (int64, error)
	GetAllRows(ctx context.Context) ([]*model.AnalyticsRow, error)
}

type mongoAnalyticsRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoAnalyticsRepository(cfg *config.Config) AnalyticsRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAnalyticsRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAnalyticsRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

// completionPipeline accumulates one completed rental into the per-equipment
// record. The average is derived in a second stage so it always reflects the
// freshly updated totals.
func completionPipeline(revenue float64, durationDays int, actorID string, now time.Time) []bson.M {
	return []bson.M{
		{"$set": bson.M{
			"rental_count":        bson.M{"$add": []any{bson.M{"$ifNull": []any{"$rental_count", 0}}, 1}},
			"total_revenue":       bson.M{"$add": []any{bson.M{"$ifNull": []any{"$total_revenue", 0}}, revenue}},
			"total_duration_days": bson.M{"$add": []any{bson.M{"$ifNull": []any{"$total_duration_days", 0}}, durationDays}},
			"last_rented":         now,
			"last_updated_by":     actorID,
			"created_at":          bson.M{"$ifNull": []any{"$created_at", now}},
			"updated_at":          now,
		}},
		{"$set": bson.M{
			"average_duration_days": bson.M{"$divide": []any{"$total_duration_days", "$rental_count"}},
		}},
	}
}

// zeroRecordUpdate seeds a zeroed record without touching existing ones, so
// repeated initialization runs are no-ops.
func zeroRecordUpdate(equipmentID string, now time.Time) bson.M {
	return bson.M{
		"$setOnInsert": bson.M{
			"equipment_id":          equipmentID,
			"rental_count":          0,
			"total_revenue":         0.0,
			"total_duration_days":   0.0,
			"average_duration_days": 0.0,
			"created_at":            now,
			"updated_at":            now,
		},
	}
}

// IncrementCompletion upserts the per-equipment record in one atomic
// pipeline update so the running totals and the derived average never drift.
func (r *mongoAnalyticsRepository) IncrementCompletion(ctx context.Context, equipmentID string, revenue float64, durationDays int, actorID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	pipeline := completionPipeline(revenue, durationDays, actorID, now)

	opts := options.Update().SetUpsert(true)
	_, err := r.collection.UpdateOne(ctx, bson.M{"equipment_id": equipmentID}, pipeline, opts)
	if err != nil {
		return fmt.Errorf("failed to increment analytics: %w", err)
	}

	return nil
}

// EnsureZeroRecords upserts a zeroed record for every equipment lacking one.
// Existing records are left untouched, so repeated runs are no-ops.
func (r *mongoAnalyticsRepository) EnsureZeroRecords(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	cursor, err := r.db.Collection(EquipmentCollectionName).Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, fmt.Errorf("failed to list equipment for analytics init: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &ids); err != nil {
		return 0, fmt.Errorf("failed to decode equipment ids: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Millisecond)
	var created int64
	for _, doc := range ids {
		equipmentID := doc.ID.Hex()
		update := zeroRecordUpdate(equipmentID, now)

		result, err := r.collection.UpdateOne(ctx, bson.M{"equipment_id": equipmentID}, update, options.Update().SetUpsert(true))
		if err != nil {
			return created, fmt.Errorf("failed to ensure analytics record for %s: %w", equipmentID, err)
		}
		if result.UpsertedCount > 0 {
			created += result.UpsertedCount
		}
	}

	return created, nil
}

// GetAllRows starts from the equipment collection so never-rented equipment
// shows up zeroed even before any analytics record exists.
func (r *mongoAnalyticsRepository) GetAllRows(ctx context.Context) ([]*model.AnalyticsRow, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$lookup": bson.M{
			"from": CollectionName,
			"let":  bson.M{"eid": bson.M{"$toString": "$_id"}},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []any{"$equipment_id", "$$eid"}}}},
			},
			"as": "analytics",
		}},
		{"$addFields": bson.M{"record": bson.M{"$first": "$analytics"}}},
		{"$project": bson.M{
			"_id":                   0,
			"equipment_id":          bson.M{"$toString": "$_id"},
			"equipment_name":        "$name",
			"rental_count":          bson.M{"$ifNull": []any{"$record.rental_count", 0}},
			"total_revenue":         bson.M{"$ifNull": []any{"$record.total_revenue", 0}},
			"total_duration_days":   bson.M{"$ifNull": []any{"$record.total_duration_days", 0}},
			"average_duration_days": bson.M{"$ifNull": []any{"$record.average_duration_days", 0}},
			"last_rented":           "$record.last_rented",
			"last_updated_by":       "$record.last_updated_by",
		}},
		{"$sort": bson.M{"rental_count": -1, "equipment_name": 1}},
	}

	cursor, err := r.db.Collection(EquipmentCollectionName).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate analytics rows: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []*model.AnalyticsRow
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode analytics rows: %w", err)
	}

	return rows, nil
}
