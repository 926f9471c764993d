package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func accountQuery(f AccountFilter) bson.M {
	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.Search != "" {
		re := containsFold(f.Search)
		filter["$or"] = bson.A{
			bson.M{"firstName": re},
			bson.M{"lastName": re},
			bson.M{"email": re},
		}
	}
	return filter
}

func (mdb *MongodbRepo) CreateAccount(ctx context.Context, account *Account) error {
	if err := account.BeforeCreate(time.Now()); err != nil {
		return fmt.Errorf("failed to prepare account for creation: %w", err)
	}
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return err
	}
	return insertDoc(ctx, col, account)
}

func (mdb *MongodbRepo) FindAccountByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Account](ctx, col, bson.M{"_id": id})
}

func (mdb *MongodbRepo) FindAccountByEmail(ctx context.Context, email string) (*Account, error) {
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return nil, err
	}
	return findOne[Account](ctx, col, bson.M{"email": NormalizeEmail(email)})
}

func (mdb *MongodbRepo) SaveAccount(ctx context.Context, account *Account) error {
	if err := account.CheckVariant(); err != nil {
		return err
	}
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return err
	}
	account.UpdatedAt = time.Now()
	return replaceByID(ctx, col, account.ID, account)
}

func (mdb *MongodbRepo) ListAccounts(ctx context.Context, filter AccountFilter, opts ListOptions) ([]*Account, int64, error) {
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return nil, 0, err
	}
	return findPage[Account](ctx, col, accountQuery(filter), opts)
}

func (mdb *MongodbRepo) CountAccounts(ctx context.Context, filter AccountFilter) (int64, error) {
	col, err := mdb.GetCollection(AccountsColName)
	if err != nil {
		return 0, err
	}
	n, err := col.CountDocuments(ctx, accountQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("error counting accounts: %w", err)
	}
	return n, nil
}
