package cron

import (
	"context"
	"log/slog"
	"time"
)

// TokenPruner drops expired entries from the token revocation list.
type TokenPruner interface {
	PruneRevoked() int
}

type MaintenanceJobs struct {
	tokens   TokenPruner
	interval time.Duration
}

func NewMaintenanceJobs(tokens TokenPruner, interval time.Duration) *MaintenanceJobs {
	return &MaintenanceJobs{tokens: tokens, interval: interval}
}

func (j *MaintenanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("prune_revoked_tokens", j.interval, j.PruneRevokedTokens)
}

func (j *MaintenanceJobs) PruneRevokedTokens(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if removed := j.tokens.PruneRevoked(); removed > 0 {
		slog.Info("Cron: pruned revoked tokens", "count", removed)
	}
	return nil
}
