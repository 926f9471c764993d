package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func destinationQuery(f DestinationFilter) bson.M {
	filter := bson.M{}
	if !f.IncludeInactive {
		filter["isActive"] = true
	}
	if f.Search != "" {
		re := containsFold(f.Search)
		filter["$or"] = bson.A{bson.M{"city": re}, bson.M{"country": re}}
	}
	return filter
}

func (mdb *MongodbRepo) CreateDestination(ctx context.Context, d *Destination) error {
	d.BeforeCreate(time.Now())
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return err
	}
	return insertDoc(ctx, col, d)
}

func (mdb *MongodbRepo) FindDestinationByID(ctx context.Context, id primitive.ObjectID) (*Destination, error) {
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Destination](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindDestinationByPlace(ctx context.Context, city, country string) (*Destination, error) {
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Destination](ctx, col, bson.M{
		"city":    strings.ToLower(strings.TrimSpace(city)),
		"country": strings.ToLower(strings.TrimSpace(country)),
	})
}

func (mdb *MongodbRepo) SaveDestination(ctx context.Context, d *Destination) error {
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return err
	}
	d.Normalize()
	d.UpdatedAt = time.Now()
	return replaceByID(ctx, col, d.ID, d)
}

func (mdb *MongodbRepo) ListDestinations(ctx context.Context, filter DestinationFilter, opts ListOptions) ([]*Destination, int64, error) {
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Destination](ctx, col, destinationQuery(filter), opts)
}

func (mdb *MongodbRepo) SetDestinationsActive(ctx context.Context, ids []primitive.ObjectID, active bool) (int64, error) {
	col, err := mdb.GetCollection(DestinationsColName)
	if err != nil {
		return 0, err
	}
	res, err := col.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, fmt.Errorf("error updating destinations: %w", err)
	}
	return res.ModifiedCount, nil
}
