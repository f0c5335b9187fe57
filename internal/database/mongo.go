package database

import (
	"Launchpad-Backend/internal/config"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// NewMongoClient подключается к MongoDB и проверяет соединение
func NewMongoClient(ctx context.Context, cfg *config.Mongo, log *zap.Logger) (*mongo.Client, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("mongo connection URI is empty")
	}

	clientOptions := options.Client().ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetConnectTimeout(cfg.ConnectTimeout)

	connectCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Info("successfully connected to MongoDB", zap.String("database", cfg.Database))
	return client, nil
}

// CloseMongo закрывает клиент MongoDB
func CloseMongo(ctx context.Context, client *mongo.Client, log *zap.Logger) error {
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB client: %w", err)
	}
	log.Info("mongo connection closed")
	return nil
}
