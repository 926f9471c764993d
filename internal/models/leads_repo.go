package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func leadQuery(f LeadFilter, searchFields ...string) bson.M {
	filter := bson.M{"isActive": true}
	if f.IsActive != nil {
		filter["isActive"] = *f.IsActive
	}
	if f.TripType != "" {
		filter["tripType"] = containsFold(f.TripType)
	}
	if f.DreamDestination != "" {
		filter["dreamDestination"] = containsFold(f.DreamDestination)
	}
	if f.Search != "" && len(searchFields) > 0 {
		re := containsFold(f.Search)
		or := bson.A{}
		for _, field := range searchFields {
			or = append(or, bson.M{field: re})
		}
		filter["$or"] = or
	}
	return filter
}

func (mdb *MongodbRepo) CreateWaitlist(ctx context.Context, w *Waitlist) error {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return err
	}
	now := time.Now()
	if w.ID.IsZero() {
		w.ID = primitive.NewObjectID()
	}
	w.Sanitize()
	w.IsActive = true
	w.CreatedAt, w.UpdatedAt = now, now
	return insertDoc(ctx, col, w)
}

func (mdb *MongodbRepo) FindWaitlistByID(ctx context.Context, id primitive.ObjectID) (*Waitlist, error) {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return nil, err
	}
	return findOne[Waitlist](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindActiveWaitlistByEmail(ctx context.Context, email string) (*Waitlist, error) {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return nil, err
	}
	return findOne[Waitlist](ctx, col, bson.M{"email": NormalizeEmail(email), "isActive": true})
}

func (mdb *MongodbRepo) SaveWaitlist(ctx context.Context, w *Waitlist) error {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return err
	}
	w.Sanitize()
	w.UpdatedAt = time.Now()
	return replaceByID(ctx, col, w.ID, w)
}

func (mdb *MongodbRepo) ListWaitlist(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Waitlist, int64, error) {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Waitlist](ctx, col, leadQuery(filter, "name", "email", "tripType"), opts)
}

func (mdb *MongodbRepo) CountWaitlistByTripType(ctx context.Context) ([]GroupCount, error) {
	col, err := mdb.GetCollection(WaitlistColName)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"isActive": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$tripType", "count": bson.M{"$sum": 1}}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("error aggregating waitlist: %w", err)
	}
	defer cursor.Close(ctx)

	groups := make([]GroupCount, 0)
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("error decoding waitlist groups: %w", err)
	}
	return groups, nil
}

func (mdb *MongodbRepo) CreateNewsletter(ctx context.Context, n *Newsletter) error {
	col, err := mdb.GetCollection(NewsletterColName)
	if err != nil {
		return err
	}
	now := time.Now()
	if n.ID.IsZero() {
		n.ID = primitive.NewObjectID()
	}
	n.Email = NormalizeEmail(n.Email)
	n.IsActive = true
	n.SubscribedAt = now
	n.CreatedAt, n.UpdatedAt = now, now
	return insertDoc(ctx, col, n)
}

func (mdb *MongodbRepo) FindNewsletterByID(ctx context.Context, id primitive.ObjectID) (*Newsletter, error) {
	col, err := mdb.GetCollection(NewsletterColName)
	if err != nil {
		return nil, err
	}
	return findOne[Newsletter](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindNewsletterByEmail(ctx context.Context, email string) (*Newsletter, error) {
	col, err := mdb.GetCollection(NewsletterColName)
	if err != nil {
		return nil, err
	}
	return findOne[Newsletter](ctx, col, bson.M{"email": NormalizeEmail(email)})
}

func (mdb *MongodbRepo) SaveNewsletter(ctx context.Context, n *Newsletter) error {
	col, err := mdb.GetCollection(NewsletterColName)
	if err != nil {
		return err
	}
	n.UpdatedAt = time.Now()
	return replaceByID(ctx, col, n.ID, n)
}

func (mdb *MongodbRepo) ListNewsletter(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Newsletter, int64, error) {
	col, err := mdb.GetCollection(NewsletterColName)
	if err != nil {
		return nil, 0, err
	}
	if opts.SortField == "" {
		opts.SortField = "subscribedAt"
	}
	return findPage[Newsletter](ctx, col, leadQuery(filter, "email"), opts)
}

func (mdb *MongodbRepo) CreateContact(ctx context.Context, c *Contact) error {
	col, err := mdb.GetCollection(ContactsColName)
	if err != nil {
		return err
	}
	now := time.Now()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.Sanitize()
	c.IsActive = true
	c.CreatedAt, c.UpdatedAt = now, now
	return insertDoc(ctx, col, c)
}

func (mdb *MongodbRepo) FindContactByID(ctx context.Context, id primitive.ObjectID) (*Contact, error) {
	col, err := mdb.GetCollection(ContactsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Contact](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) SaveContact(ctx context.Context, c *Contact) error {
	col, err := mdb.GetCollection(ContactsColName)
	if err != nil {
		return err
	}
	c.Sanitize()
	c.UpdatedAt = time.Now()
	return replaceByID(ctx, col, c.ID, c)
}

func (mdb *MongodbRepo) ListContacts(ctx context.Context, filter LeadFilter, opts ListOptions) ([]*Contact, int64, error) {
	col, err := mdb.GetCollection(ContactsColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Contact](ctx, col, leadQuery(filter, "fullName", "email", "dreamDestination", "story"), opts)
}
