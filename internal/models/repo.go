package models

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

func init() {
	// Report json field names in validation errors.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("duplicate key")
)

const (
	AccountsColName     = "accounts"
	DestinationsColName = "destinations"
	BookingsColName     = "userbookings"
	CompanionsColName   = "companions"
	ReviewsColName      = "reviews"
	WaitlistColName     = "waitlists"
	NewsletterColName   = "newsletters"
	ContactsColName     = "contacts"
)

// ListOptions controls paging and ordering of list queries. A zero Limit
// returns every match. SortField defaults to createdAt descending.
type ListOptions struct {
	Skip      int64
	Limit     int64
	SortField string
	Ascending bool
}

func (o ListOptions) findOptions() *options.FindOptions {
	field := o.SortField
	if field == "" {
		field = "createdAt"
	}
	dir := -1
	if o.Ascending {
		dir = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}})
	if o.Skip > 0 {
		opts.SetSkip(o.Skip)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	return opts
}

type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("mongodb client is not initialized")
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// EnsureIndexes creates the unique and lookup indexes every collection relies on.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		AccountsColName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
			{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("role_idx")},
		},
		DestinationsColName: {
			{
				Keys:    bson.D{{Key: "city", Value: 1}, {Key: "country", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("city_country_unique"),
			},
		},
		BookingsColName: {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("booking_id_unique")},
			{Keys: bson.D{{Key: "packageName", Value: 1}}, Options: options.Index().SetName("package_name_idx")},
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isActive", Value: 1}}, Options: options.Index().SetName("user_active_idx")},
			{Keys: bson.D{{Key: "travelDate", Value: 1}}, Options: options.Index().SetName("travel_date_idx")},
		},
		CompanionsColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}, {Key: "bookingId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_booking_unique"),
			},
		},
		ReviewsColName: {
			{Keys: bson.D{{Key: "userId", Value: 1}}, Options: options.Index().SetName("user_idx")},
			{Keys: bson.D{{Key: "isApproved", Value: 1}, {Key: "isActive", Value: 1}}, Options: options.Index().SetName("approved_active_idx")},
		},
		WaitlistColName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_idx")},
			{Keys: bson.D{{Key: "tripType", Value: 1}}, Options: options.Index().SetName("trip_type_idx")},
		},
		NewsletterColName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName("email_unique")},
		},
		ContactsColName: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName("email_idx")},
			{Keys: bson.D{{Key: "travelDate", Value: 1}}, Options: options.Index().SetName("travel_date_idx")},
		},
	}

	for colName, indexes := range specs {
		col, err := mdb.GetCollection(colName)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("error creating %s indexes: %w", colName, err)
		}
	}
	return nil
}

func containsFold(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func insertDoc(ctx context.Context, col *mongo.Collection, doc interface{}) error {
	if _, err := col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("error inserting into %s: %w", col.Name(), err)
	}
	return nil
}

func findOne[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	if err := col.FindOne(ctx, filter, opts...).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error finding in %s: %w", col.Name(), err)
	}
	return &out, nil
}

func replaceByID(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, doc interface{}) error {
	res, err := col.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		return fmt.Errorf("error updating %s: %w", col.Name(), err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func findPage[T any](ctx context.Context, col *mongo.Collection, filter bson.M, opts ListOptions) ([]*T, int64, error) {
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("error counting %s: %w", col.Name(), err)
	}

	cursor, err := col.Find(ctx, filter, opts.findOptions())
	if err != nil {
		return nil, 0, fmt.Errorf("error finding %s: %w", col.Name(), err)
	}
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, 0, fmt.Errorf("error decoding %s: %w", col.Name(), err)
		}
		items = append(items, &item)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("cursor error: %w", err)
	}
	return items, total, nil
}
