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

func (r *repo) CreateAuditLog(ctx context.Context, entry *domain.AuditLog) error {
	if entry == nil {
		return errors.New("nil audit log")
	}
	if entry.ID.IsZero() {
		entry.ID = bson.NewObjectID()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}

	res, err := r.db.Collection(auditLogCollection).InsertOne(ctx, entry)
	if err != nil {
		return fmt.Errorf("create audit log, err: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		entry.ID = oid
	}
	return nil
}

func (r *repo) QueryAuditLogs(ctx context.Context, opt *domain.QueryAuditLogOptions) error {
	if opt == nil {
		return domain.ErrNilQueryInput
	}

	filter := bson.M{}
	if len(opt.IDs) > 0 {
		filter["_id"] = bson.M{"$in": opt.IDs}
	}
	if len(opt.Actions) > 0 {
		filter["action"] = bson.M{"$in": opt.Actions}
	}
	if len(opt.ActorIDs) > 0 {
		filter["actor_id"] = bson.M{"$in": opt.ActorIDs}
	}
	if len(opt.TargetModels) > 0 {
		filter["target_model"] = bson.M{"$in": opt.TargetModels}
	}
	if len(opt.TargetIDs) > 0 {
		filter["target_id"] = bson.M{"$in": opt.TargetIDs}
	}
	if opt.TimestampGTE > 0 || opt.TimestampLTE > 0 {
		timeFilter := bson.M{}
		if opt.TimestampGTE > 0 {
			timeFilter["$gte"] = opt.TimestampGTE
		}
		if opt.TimestampLTE > 0 {
			timeFilter["$lte"] = opt.TimestampLTE
		}
		filter[defaultTimestampField] = timeFilter
	}

	// Entries are always served newest-first.
	findOpts := options.Find().SetSort(bson.D{{Key: defaultTimestampField, Value: -1}})
	if opt.Limit > 0 {
		total, err := r.db.Collection(auditLogCollection).CountDocuments(ctx, filter)
		if err != nil {
			return fmt.Errorf("count audit logs, err: %w", err)
		}
		opt.Total = total
		findOpts = findOpts.SetSkip(skipFor(opt.Page, opt.Limit)).SetLimit(opt.Limit)
	}

	cursor, err := r.db.Collection(auditLogCollection).Find(ctx, filter, findOpts)
	if err != nil {
		return fmt.Errorf("find audit logs, err: %w", err)
	}

	var result []*domain.AuditLog
	if err := cursor.All(ctx, &result); err != nil {
		return fmt.Errorf("decode audit logs, err: %w", err)
	}
	opt.Result = result
	if opt.Limit <= 0 {
		opt.Total = int64(len(result))
	}
	return nil
}

func (r *repo) AggregateAuditStats(ctx context.Context) (*domain.AuditStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$facet", Value: bson.M{
			"actionCounts": bson.A{
				bson.M{"$group": bson.M{"_id": "$action", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
			},
			"dailyActivity": bson.A{
				bson.M{"$group": bson.M{
					"_id": bson.M{"$dateToString": bson.M{
						"format": "%Y-%m-%d",
						"date":   bson.M{"$toDate": "$timestamp"},
					}},
					"count": bson.M{"$sum": 1},
				}},
				bson.M{"$sort": bson.M{"_id": -1}},
				bson.M{"$limit": 30},
			},
			"topActors": bson.A{
				bson.M{"$match": bson.M{"actor_id": bson.M{"$ne": nil}}},
				bson.M{"$group": bson.M{"_id": "$actor_id", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
				bson.M{"$limit": 10},
				bson.M{"$lookup": bson.M{
					"from":         userCollection,
					"localField":   "_id",
					"foreignField": "_id",
					"as":           "actor",
				}},
				bson.M{"$project": bson.M{
					"_id":   1,
					"count": 1,
					"name":  bson.M{"$arrayElemAt": bson.A{"$actor.name", 0}},
					"email": bson.M{"$arrayElemAt": bson.A{"$actor.email", 0}},
				}},
			},
			"accessedModels": bson.A{
				bson.M{"$group": bson.M{"_id": "$target_model", "count": bson.M{"$sum": 1}}},
				bson.M{"$sort": bson.M{"count": -1}},
			},
		}}},
	}

	cursor, err := r.db.Collection(auditLogCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate audit stats, err: %w", err)
	}

	var results []domain.AuditStats
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode audit stats, err: %w", err)
	}
	if len(results) == 0 {
		return &domain.AuditStats{}, nil
	}
	return &results[0], nil
}
