// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	circlestore "github.com/dalemusser/circles/internal/app/store/circles"
	invitationstore "github.com/dalemusser/circles/internal/app/store/invitations"
	membershipstore "github.com/dalemusser/circles/internal/app/store/memberships"
	messagestore "github.com/dalemusser/circles/internal/app/store/messages"
	subscriptionstore "github.com/dalemusser/circles/internal/app/store/subscriptions"
	tagstore "github.com/dalemusser/circles/internal/app/store/tags"
	"github.com/dalemusser/circles/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB establishes the MongoDB connection and, when configured,
// the Redis connection for the push-event queue.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase))

	deps := DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}

	if appCfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     appCfg.RedisAddr,
			Password: appCfg.RedisPassword,
			DB:       appCfg.RedisDB,
		})
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			return DBDeps{}, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
		deps.Redis = rdb
	} else {
		logger.Warn("redis_addr not configured; push notifications are disabled")
	}

	return deps, nil
}

// EnsureSchema creates all collection indexes and seeds the static tag
// reference data.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	ensure := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"circles", circlestore.New(db).EnsureIndexes},
		{"memberships", membershipstore.New(db).EnsureIndexes},
		{"messages", messagestore.New(db).EnsureIndexes},
		{"invitations", invitationstore.New(db).EnsureIndexes},
		{"push_subscriptions", subscriptionstore.New(db).EnsureIndexes},
	}
	for _, e := range ensure {
		if err := e.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", e.name, err)
		}
	}

	if err := tagstore.New(db).EnsureSeed(ctx); err != nil {
		return fmt.Errorf("seed tag configs: %w", err)
	}

	logger.Info("schema ensured")
	return nil
}
