package repository

import (
	"context"
	"fmt"
	"time"

	bookingserrors "agrirent/internal/bookings/errors"
	"agrirent/pkg/config"
	mongotx "agrirent/pkg/db/mongo"
	"agrirent/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName          = "Bookings"
	EquipmentCollectionName = "Equipment"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindActiveOverlapping(ctx context.Context, equipmentID string, start, end time.Time) ([]*model.Booking, error)
	FindByRenter(ctx context.Context, renterID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CountByRenter(ctx context.Context, renterID string, status model.BookingStatus) (int64, error)
	FindByOwner(ctx context.Context, ownerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error)
	CountByOwner(ctx context.Context, ownerID string, status model.BookingStatus) (int64, error)
	Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	UsageSummary(ctx context.Context) (*model.BookingUsageSummary, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping a SessionContext would break its semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	pipeline := append([]bson.M{{"$match": bson.M{"_id": objectID}}}, equipmentLookupStages()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode booking: %w", err)
	}

	if len(bookings) == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return bookings[0], nil
}

// FindActiveOverlapping returns bookings on the equipment whose inclusive
// date range touches [start, end] and whose status still blocks the dates.
func (r *mongoBookingRepository) FindActiveOverlapping(ctx context.Context, equipmentID string, start, end time.Time) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"equipment_id": equipmentID,
		"status": bson.M{"$in": []model.BookingStatus{
			model.BookingPending,
			model.BookingApproved,
			model.BookingInProgress,
		}},
		"start_date": bson.M{"$lte": end},
		"end_date":   bson.M{"$gte": start},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) FindByRenter(ctx context.Context, renterID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByParty(ctx, "renter_id", renterID, status, limit, offset)
}

func (r *mongoBookingRepository) CountByRenter(ctx context.Context, renterID string, status model.BookingStatus) (int64, error) {
	return r.countByParty(ctx, "renter_id", renterID, status)
}

func (r *mongoBookingRepository) FindByOwner(ctx context.Context, ownerID string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	return r.findByParty(ctx, "owner_id", ownerID, status, limit, offset)
}

func (r *mongoBookingRepository) CountByOwner(ctx context.Context, ownerID string, status model.BookingStatus) (int64, error) {
	return r.countByParty(ctx, "owner_id", ownerID, status)
}

func (r *mongoBookingRepository) findByParty(ctx context.Context, field, id string, status model.BookingStatus, limit int, offset int64) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$match": partyFilter(field, id, status)},
		{"$sort": bson.M{"created_at": -1}},
		{"$skip": offset},
		{"$limit": int64(limit)},
	}
	pipeline = append(pipeline, equipmentLookupStages()...)

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) countByParty(ctx context.Context, field, id string, status model.BookingStatus) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, partyFilter(field, id, status))
	if err != nil {
		return 0, fmt.Errorf("failed to count bookings: %w", err)
	}
	return count, nil
}

func partyFilter(field, id string, status model.BookingStatus) bson.M {
	filter := bson.M{field: id}
	if status != "" {
		filter["status"] = status
	}
	return filter
}

// equipmentLookupStages joins the equipment summary onto each booking. The
// stored equipment_id is a hex string, so the lookup converts it back.
func equipmentLookupStages() []bson.M {
	return []bson.M{
		{"$lookup": bson.M{
			"from": EquipmentCollectionName,
			"let":  bson.M{"eid": "$equipment_id"},
			"pipeline": []bson.M{
				{"$match": bson.M{"$expr": bson.M{"$eq": []any{"$_id", bson.M{"$toObjectId": "$$eid"}}}}},
				{"$project": bson.M{
					"_id":      0,
					"id":       bson.M{"$toString": "$_id"},
					"name":     1,
					"category": 1,
					"images":   1,
					"location": 1,
				}},
			},
			"as": "equipment_docs",
		}},
		{"$addFields": bson.M{"equipment": bson.M{"$first": "$equipment_docs"}}},
		{"$project": bson.M{"equipment_docs": 0}},
	}
}

func (r *mongoBookingRepository) Update(ctx context.Context, id string, booking *model.Booking) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"status":         booking.Status,
			"payment_status": booking.PaymentStatus,
			"payment_id":     booking.PaymentID,
			"pickup_details": booking.PickupDetails,
			"return_details": booking.ReturnDetails,
			"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, bookingserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoBookingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if result.DeletedCount == 0 {
		return bookingserrors.ErrNotFound
	}

	return nil
}

// UsageSummary aggregates completed bookings: fleet-wide totals plus the
// most-rented equipment.
func (r *mongoBookingRepository) UsageSummary(ctx context.Context) (*model.BookingUsageSummary, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	pipeline := []bson.M{
		{"$match": bson.M{"status": model.BookingCompleted}},
		{"$facet": bson.M{
			"totals": []bson.M{
				{"$group": bson.M{
					"_id":           nil,
					"total_rentals": bson.M{"$sum": 1},
					"total_revenue": bson.M{"$sum": "$total_amount"},
				}},
			},
			"top": []bson.M{
				{"$group": bson.M{
					"_id":   "$equipment_id",
					"count": bson.M{"$sum": 1},
				}},
				{"$sort": bson.M{"count": -1}},
				{"$limit": 1},
				{"$lookup": bson.M{
					"from": EquipmentCollectionName,
					"let":  bson.M{"eid": "$_id"},
					"pipeline": []bson.M{
						{"$match": bson.M{"$expr": bson.M{"$eq": []any{"$_id", bson.M{"$toObjectId": "$$eid"}}}}},
						{"$project": bson.M{"_id": 0, "name": 1}},
					},
					"as": "equipment",
				}},
			},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage summary: %w", err)
	}
	defer cursor.Close(ctx)

	var results []struct {
		Totals []struct {
			TotalRentals int64   `bson:"total_rentals"`
			TotalRevenue float64 `bson:"total_revenue"`
		} `bson:"totals"`
		Top []struct {
			EquipmentID string `bson:"_id"`
			Count       int64  `bson:"count"`
			Equipment   []struct {
				Name string `bson:"name"`
			} `bson:"equipment"`
		} `bson:"top"`
	}
	if err = cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode usage summary: %w", err)
	}

	summary := &model.BookingUsageSummary{}
	if len(results) == 0 {
		return summary, nil
	}

	if len(results[0].Totals) > 0 {
		summary.TotalRentals = results[0].Totals[0].TotalRentals
		summary.TotalRevenue = results[0].Totals[0].TotalRevenue
	}
	if len(results[0].Top) > 0 {
		top := results[0].Top[0]
		summary.TopEquipmentID = top.EquipmentID
		summary.TopRentCount = top.Count
		if len(top.Equipment) > 0 {
			summary.TopEquipment = top.Equipment[0].Name
		}
	}

	return summary, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
