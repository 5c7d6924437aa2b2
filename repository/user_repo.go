package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (r *repo) CreateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}

	now := time.Now().UnixMilli()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.CreatedTime == 0 {
		user.CreatedTime = now
	}
	user.UpdatedTime = now

	res, err := r.db.Collection(userCollection).InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("create user, err: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = oid
	}
	return nil
}

func (r *repo) UpdateUser(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	if user.ID.IsZero() {
		return errors.New("user id is required")
	}

	user.UpdatedTime = time.Now().UnixMilli()
	res, err := r.db.Collection(userCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("update user, err: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteUser(ctx context.Context, id bson.ObjectID) error {
	res, err := r.db.Collection(userCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user, err: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) QueryUsers(ctx context.Context, opt *domain.QueryUserOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}
	if len(opt.Emails) > 0 {
		filter["email"] = bson.M{"$in": opt.Emails}
	}
	if len(opt.Roles) > 0 {
		filter["role"] = bson.M{"$in": opt.Roles}
	}
	if opt.Search != "" {
		// The search term is a substring, not a pattern.
		pattern := bson.M{"$regex": regexp.QuoteMeta(opt.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
		}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "createdTime", Value: -1}})
	if opt.Limit > 0 {
		total, err := r.db.Collection(userCollection).CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("count users, err: %w", err)
		}
		opt.Total = total
		findOpts = findOpts.SetSkip(skipFor(opt.Page, opt.Limit)).SetLimit(opt.Limit)
	}

	cursor, err := r.db.Collection(userCollection).Find(ctx, filter, findOpts)
	if err != nil {
		return fmt.Errorf("find users, err: %w", err)
	}

	var result []*domain.User
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode users, err: %w", err)
	}
	opt.Result = result
	if opt.Limit <= 0 {
		opt.Total = int64(len(result))
	}
	return nil
}
