package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func bookingQuery(f BookingFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.DestinationID != nil {
		filter["destinationId"] = *f.DestinationID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.PackageName != "" {
		filter["packageName"] = containsFold(f.PackageName)
	}
	if f.IsPrimary != nil {
		filter["isPrimary"] = *f.IsPrimary
	}
	if f.Currency != "" {
		filter["currency"] = f.Currency
	}
	if f.TravelFrom != nil || f.TravelTo != nil {
		window := bson.M{}
		if f.TravelFrom != nil {
			window["$gte"] = *f.TravelFrom
		}
		if f.TravelTo != nil {
			window["$lte"] = *f.TravelTo
		}
		filter["travelDate"] = window
	}
	if f.CreatedFrom != nil {
		filter["createdAt"] = bson.M{"$gte": *f.CreatedFrom}
	}
	if f.Search != "" {
		re := containsFold(f.Search)
		filter["$or"] = bson.A{
			bson.M{"bookingId": re},
			bson.M{"packageName": re},
			bson.M{"description": re},
		}
	}
	return filter
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, b *Booking) error {
	b.BeforeCreate(time.Now())
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return err
	}
	return insertDoc(ctx, col, b)
}

func (mdb *MongodbRepo) FindBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Booking](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindBookingByCode(ctx context.Context, bookingID string) (*Booking, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Booking](ctx, col, bson.M{"bookingId": bookingID})
}

func (mdb *MongodbRepo) SaveBooking(ctx context.Context, b *Booking) error {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return err
	}
	b.UpdatedAt = time.Now()
	return replaceByID(ctx, col, b.ID, b)
}

func (mdb *MongodbRepo) UpsertCompanionBooking(ctx context.Context, b *Booking) (*Booking, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	filter := bson.M{
		"userId":      b.UserID,
		"packageName": b.PackageName,
		"isPrimary":   false,
	}
	update := bson.M{
		"$set": bson.M{
			"destinationId":    b.DestinationID,
			"primaryBookingId": b.PrimaryBookingID,
			"travelDate":       b.TravelDate,
			"returnDate":       b.ReturnDate,
			"bookingDate":      b.BookingDate,
			"totalAmount":      b.TotalAmount,
			"bookingAmount":    b.BookingAmount,
			"currency":         b.Currency,
			"description":      b.Description,
			"status":           b.Status,
			"documents":        b.Documents,
			"itineraries":      b.Itineraries,
			"isActive":         b.IsActive,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			"bookingId":  b.BookingID,
			"companions": bson.A{},
			"createdAt":  now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Booking
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return nil, fmt.Errorf("error upserting companion booking: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) AddBookingCompanion(ctx context.Context, bookingID, companionID primitive.ObjectID) error {
	return mdb.updateCompanionSet(ctx, bookingID, bson.M{"$addToSet": bson.M{"companions": companionID}})
}

func (mdb *MongodbRepo) RemoveBookingCompanion(ctx context.Context, bookingID, companionID primitive.ObjectID) error {
	return mdb.updateCompanionSet(ctx, bookingID, bson.M{"$pull": bson.M{"companions": companionID}})
}

func (mdb *MongodbRepo) updateCompanionSet(ctx context.Context, bookingID primitive.ObjectID, op bson.M) error {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return err
	}
	op["$set"] = bson.M{"updatedAt": time.Now()}
	res, err := col.UpdateOne(ctx, bson.M{"_id": bookingID}, op)
	if err != nil {
		return fmt.Errorf("error updating booking companions: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting booking: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, filter BookingFilter, opts ListOptions) ([]*Booking, int64, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Booking](ctx, col, bookingQuery(filter), opts)
}

func (mdb *MongodbRepo) CountBookings(ctx context.Context, filter BookingFilter) (int64, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, bookingQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("error counting bookings: %w", err)
	}
	return n, nil
}

func (mdb *MongodbRepo) SumBookings(ctx context.Context, filter BookingFilter) ([]CurrencyTotals, error) {
	col, err := mdb.GetCollection(BookingsColName)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bookingQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":           "$currency",
			"count":         bson.M{"$sum": 1},
			"totalAmount":   bson.M{"$sum": "$totalAmount"},
			"bookingAmount": bson.M{"$sum": "$bookingAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating booking totals: %w", err)
	}
	defer cursor.Close(ctx)

	var totals []CurrencyTotals
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("error decoding booking totals: %w", err)
	}
	return totals, nil
}
