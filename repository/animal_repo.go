package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (r *repo) CreateAnimal(ctx context.Context, animal *domain.Animal) error {
	if animal == nil {
		return errors.New("nil animal")
	}

	now := time.Now().UnixMilli()
	if animal.ID.IsZero() {
		animal.ID = bson.NewObjectID()
	}
	if animal.CreatedTime == 0 {
		animal.CreatedTime = now
	}
	animal.UpdatedTime = now

	res, err := r.db.Collection(animalCollection).InsertOne(ctx, animal)
	if err != nil {
		return fmt.Errorf("create animal, err: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		animal.ID = oid
	}
	return nil
}

func (r *repo) UpdateAnimal(ctx context.Context, animal *domain.Animal) error {
	if animal == nil {
		return errors.New("nil animal")
	}
	if animal.ID.IsZero() {
		return errors.New("animal id is required")
	}

	animal.UpdatedTime = time.Now().UnixMilli()
	res, err := r.db.Collection(animalCollection).ReplaceOne(ctx, bson.M{"_id": animal.ID}, animal)
	if err != nil {
		return fmt.Errorf("update animal, err: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) DeleteAnimal(ctx context.Context, id bson.ObjectID) error {
	res, err := r.db.Collection(animalCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete animal, err: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) QueryAnimals(ctx context.Context, opt *domain.QueryAnimalOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	for key, value := range opt.Filter {
		filter[key] = value
	}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}

	sort := opt.Sort
	if len(sort) == 0 {
		sort = bson.D{{Key: "datetime", Value: -1}}
	}
	findOpts := options.Find().SetSort(sort)
	if len(opt.Select) > 0 {
		projection := bson.M{}
		for _, field := range opt.Select {
			projection[field] = 1
		}
		findOpts = findOpts.SetProjection(projection)
	}
	if opt.Limit > 0 {
		total, err := r.db.Collection(animalCollection).CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("count animals, err: %w", err)
		}
		opt.Total = total
		findOpts = findOpts.SetSkip(skipFor(opt.Page, opt.Limit)).SetLimit(opt.Limit)
	}

	cursor, err := r.db.Collection(animalCollection).Find(ctx, filter, findOpts)
	if err != nil {
		return fmt.Errorf("find animals, err: %w", err)
	}

	var result []*domain.Animal
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode animals, err: %w", err)
	}
	opt.Result = result
	if opt.Limit <= 0 {
		opt.Total = int64(len(result))
	}
	return nil
}

func (r *repo) AggregateAnimalStats(ctx context.Context) (*domain.AnimalStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"animalTypes": bson.A{
				bson.M{"$group": bson.M{"_id": "$animal_type", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
			},
			"outcomeTypes": bson.A{
				bson.M{"$group": bson.M{"_id": "$outcome_type", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
			},
			"topBreeds": bson.A{
				bson.M{"$group": bson.M{"_id": "$breed", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
				bson.M{"$limit": 10},
			},
		}}},
	}

	cursor, err := r.db.Collection(animalCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate animal stats, err: %w", err)
	}

	var results []domain.AnimalStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode animal stats, err: %w", err)
	}
	if len(results) == 0 {
		return &domain.AnimalStats{}, nil
	}
	return &results[0], nil
}
