package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (mdb *MongodbRepo) UpsertCompanion(ctx context.Context, c *Companion) (*Companion, error) {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	email := NormalizeEmail(c.Email)
	filter := bson.M{"email": email, "bookingId": c.BookingID}

	set := bson.M{
		"firstName":     c.FirstName,
		"lastName":      c.LastName,
		"phoneNumber":   c.PhoneNumber,
		"relationship":  c.Relationship,
		"userId":        c.UserID,
		"bookingStatus": c.BookingStatus,
		"updatedAt":     now,
	}
	if !c.AccountID.IsZero() {
		set["accountId"] = c.AccountID
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"_id":          primitive.NewObjectID(),
			"isRegistered": c.IsRegistered,
			"password":     c.Password,
			"tempPassword": c.TempPassword,
			"attachState":  AttachPending,
			"createdAt":    now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Companion
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, fmt.Errorf("error upserting companion: %w", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) FindCompanionByID(ctx context.Context, id primitive.ObjectID) (*Companion, error) {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Companion](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindCompanion(ctx context.Context, bookingID primitive.ObjectID, email string) (*Companion, error) {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Companion](ctx, col, bson.M{"bookingId": bookingID, "email": NormalizeEmail(email)})
}

func (mdb *MongodbRepo) FindCompanionsByEmail(ctx context.Context, email string) ([]*Companion, error) {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return nil, err
	}
	items, _, err := findPage[Companion](ctx, col, bson.M{"email": NormalizeEmail(email)}, ListOptions{})
	return items, err
}

func (mdb *MongodbRepo) ListCompanionsByBooking(ctx context.Context, bookingID primitive.ObjectID) ([]*Companion, error) {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return nil, err
	}
	items, _, err := findPage[Companion](ctx, col, bson.M{"bookingId": bookingID}, ListOptions{Ascending: true})
	return items, err
}

func (mdb *MongodbRepo) SaveCompanion(ctx context.Context, c *Companion) error {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return err
	}
	c.Email = NormalizeEmail(c.Email)
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, col, c.ID, c)
}

func (mdb *MongodbRepo) SetCompanionCredentials(ctx context.Context, email string, creds CompanionCredentials) error {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return err
	}
	_, err = col.UpdateMany(ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{"$set": bson.M{
			"password":     creds.Password,
			"tempPassword": creds.TempPassword,
			"isRegistered": creds.IsRegistered,
			"updatedAt":    time.Now(),
		}},
	)
	if err != nil {
		return fmt.Errorf("error updating companion credentials: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) SetCompanionsStatus(ctx context.Context, bookingID primitive.ObjectID, status BookingStatus) error {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return err
	}
	_, err = col.UpdateMany(ctx,
		bson.M{"bookingId": bookingID},
		bson.M{"$set": bson.M{"bookingStatus": status, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("error updating companion status: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) DeleteCompanion(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(CompanionsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("error deleting companion: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
