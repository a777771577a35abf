// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	invitationstore "github.com/dalemusser/circles/internal/app/store/invitations"
	"go.uber.org/zap"
)

// InvitationCleanupJob creates a job that deletes invitations long past
// their expiry. Expiry itself is enforced lazily at accept time; this
// sweep only keeps the collection from growing without bound.
func InvitationCleanupJob(invStore *invitationstore.Store, logger *zap.Logger, grace time.Duration) Job {
	return Job{
		Name:     "invitation-cleanup",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			count, err := invStore.CleanupExpired(ctx, grace)
			if err != nil {
				return err
			}
			if count > 0 {
				logger.Info("removed expired invitations",
					zap.Int64("count", count),
					zap.Duration("grace", grace))
			}
			return nil
		},
	}
}
