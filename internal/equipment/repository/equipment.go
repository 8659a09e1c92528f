package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	equipmenterrors "agrirent/internal/equipment/errors"
	"agrirent/pkg/config"
	"agrirent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Equipment"
)

type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	FindByID(ctx context.Context, id string) (*model.Equipment, error)
	Find(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, error)
	Count(ctx context.Context, filter model.EquipmentFilter) (int64, error)
	FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Equipment, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)
	Update(ctx context.Context, id string, equipment *model.Equipment) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	AddReview(ctx context.Context, id string, review model.Review, newRating float64) error
	SetReviewReply(ctx context.Context, id string, reviewID string, reply string) error
}

type mongoEquipmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEquipmentRepository(cfg *config.Config) EquipmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping a SessionContext would break its semantics.
func (r *mongoEquipmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoEquipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	equipment.CreatedAt = now
	equipment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, equipment)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		equipment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEquipmentRepository) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	var equipment model.Equipment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&equipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, equipmenterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}

	return &equipment, nil
}

func (r *mongoEquipmentRepository) Find(ctx context.Context, filter model.EquipmentFilter, limit int, offset int64) ([]*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(buildSort(filter.SortBy)).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var equipment []*model.Equipment
	if err = cursor.All(ctx, &equipment); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}

	return equipment, nil
}

func (r *mongoEquipmentRepository) Count(ctx context.Context, filter model.EquipmentFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}
	return count, nil
}

func (r *mongoEquipmentRepository) FindByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var equipment []*model.Equipment
	if err = cursor.All(ctx, &equipment); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}

	return equipment, nil
}

func (r *mongoEquipmentRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"owner_id": ownerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count equipment by owner: %w", err)
	}
	return count, nil
}

func (r *mongoEquipmentRepository) Update(ctx context.Context, id string, equipment *model.Equipment) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"name":           equipment.Name,
			"description":    equipment.Description,
			"category":       equipment.Category,
			"images":         equipment.Images,
			"daily_rate":     equipment.DailyRate,
			"weekly_rate":    equipment.WeeklyRate,
			"monthly_rate":   equipment.MonthlyRate,
			"availability":   equipment.Availability,
			"specifications": equipment.Specifications,
			"location":       equipment.Location,
			"features":       equipment.Features,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, equipmenterrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoEquipmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	if result.DeletedCount == 0 {
		return equipmenterrors.ErrNotFound
	}

	return nil
}

// AddReview pushes the review and sets the recomputed aggregate rating in
// one write.
func (r *mongoEquipmentRepository) AddReview(ctx context.Context, id string, review model.Review, newRating float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$push": bson.M{"reviews": review},
		"$set": bson.M{
			"rating":     newRating,
			"updated_at": time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to add review: %w", err)
	}

	if result.MatchedCount == 0 {
		return equipmenterrors.ErrNotFound
	}

	return nil
}

func (r *mongoEquipmentRepository) SetReviewReply(ctx context.Context, id string, reviewID string, reply string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", equipmenterrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID, "reviews.id": reviewID}
	update := bson.M{
		"$set": bson.M{
			"reviews.$.reply": reply,
			"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to set review reply: %w", err)
	}

	if result.MatchedCount == 0 {
		return equipmenterrors.ErrReviewNotFound
	}

	return nil
}

func buildFilter(f model.EquipmentFilter) bson.M {
	filter := bson.M{}

	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Location != "" {
		filter["location"] = bson.M{"$regex": f.Location, "$options": "i"}
	}
	if f.Availability != nil {
		filter["availability"] = *f.Availability
	}
	if f.MinDailyRate != nil || f.MaxDailyRate != nil {
		rate := bson.M{}
		if f.MinDailyRate != nil {
			rate["$gte"] = *f.MinDailyRate
		}
		if f.MaxDailyRate != nil {
			rate["$lte"] = *f.MaxDailyRate
		}
		filter["daily_rate"] = rate
	}
	if f.Search != "" {
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": f.Search, "$options": "i"}},
			{"description": bson.M{"$regex": f.Search, "$options": "i"}},
		}
	}

	return filter
}

func buildSort(sortBy string) bson.D {
	switch sortBy {
	case model.SortPriceAsc:
		return bson.D{{Key: "daily_rate", Value: 1}}
	case model.SortPriceDesc:
		return bson.D{{Key: "daily_rate", Value: -1}}
	case model.SortRating:
		return bson.D{{Key: "rating", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}
