package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func reviewQuery(f ReviewFilter) bson.M {
	filter := bson.M{}
	if f.UserID != nil {
		filter["userId"] = *f.UserID
	}
	if f.IsApproved != nil {
		filter["isApproved"] = *f.IsApproved
	}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	if f.Rating > 0 {
		filter["rating"] = f.Rating
	}
	if f.Search != "" {
		re := containsFold(f.Search)
		filter["$or"] = bson.A{bson.M{"fullName": re}, bson.M{"review": re}}
	}
	return filter
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, r *Review) error {
	r.BeforeCreate(time.Now())
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return insertDoc(ctx, col, r)
}

func (mdb *MongodbRepo) FindReviewByID(ctx context.Context, id primitive.ObjectID) (*Review, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Review](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) SaveReview(ctx context.Context, r *Review) error {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return err
	}
	r.Sanitize()
	r.UpdatedAt = time.Now()
	return replaceByID(ctx, col, r.ID, r)
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (mdb *MongodbRepo) ListReviews(ctx context.Context, filter ReviewFilter, opts ListOptions) ([]*Review, int64, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Review](ctx, col, reviewQuery(filter), opts)
}

func (mdb *MongodbRepo) RatingCounts(ctx context.Context, filter ReviewFilter) (map[int]int64, error) {
	col, err := mdb.GetCollection(ReviewsColName)
	if err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: reviewQuery(filter)}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating ratings: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Rating int   `bson:"_id"`
		Count  int64 `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("error decoding ratings: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Rating] = row.Count
	}
	return counts, nil
}
