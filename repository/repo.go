package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shelterhq/shelter-api/config"
	"github.com/shelterhq/shelter-api/domain"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/fx"
)

const (
	userCollection     = "users"
	animalCollection   = "animals"
	auditLogCollection = "audit_logs"

	defaultTimestampField = "timestamp"

	connectTimeout = 10 * time.Second
)

type Params struct {
	fx.In
	MongoConfig config.MongoDBConfig
}

func NewRepository(params Params) (domain.Repository, error) {
	cfg := params.MongoConfig
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%s",
		cfg.User, cfg.Password.Value(), cfg.Host, cfg.Port)

	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb, err: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb, err: %w", err)
	}

	return &repo{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

type repo struct {
	client *mongo.Client
	db     *mongo.Database
}

func skipFor(page, limit int64) int64 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}
