// internal/app/system/txn/txn.go
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a MongoDB multi-document transaction
// when the topology supports one (replica set or mongos). On a
// standalone server, where transactions are unavailable, it degrades to
// running fn directly; callers accept the resulting partial-failure
// window there, which matches single-node deployments where the
// competing writer rarely exists.
func WithTransaction(ctx context.Context, client *mongo.Client, log *zap.Logger, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		log.Warn("mongo session unavailable, running without transaction", zap.Error(err))
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && transactionsUnsupported(err) {
		log.Warn("mongo transactions unsupported on this topology, running writes sequentially", zap.Error(err))
		return fn(ctx)
	}
	return err
}

// transactionsUnsupported detects the standalone-server error shape.
func transactionsUnsupported(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		// 20 = IllegalOperation: "Transaction numbers are only allowed on a replica set member or mongos"
		if cmdErr.Code == 20 && strings.Contains(cmdErr.Message, "Transaction numbers") {
			return true
		}
	}
	return strings.Contains(err.Error(), "Transaction numbers are only allowed")
}
