package scheduler

import (
	"context"
	"log"

	"dramahub/internal/http-api/service"
)

// StaleRefreshJob re-fetches the most popular cached dramas whose
// metadata has outlived the freshness window.
type StaleRefreshJob struct {
	svc service.DramaService
}

func NewStaleRefreshJob(svc service.DramaService) *StaleRefreshJob {
	return &StaleRefreshJob{svc: svc}
}

func (j *StaleRefreshJob) Name() string { return "stale_refresh" }

func (j *StaleRefreshJob) Run(ctx context.Context) error {
	return j.svc.RefreshStale(ctx)
}

// RetentionSweepJob deletes cached dramas nobody has touched for the
// configured retention window.
type RetentionSweepJob struct {
	svc service.DramaService
}

func NewRetentionSweepJob(svc service.DramaService) *RetentionSweepJob {
	return &RetentionSweepJob{svc: svc}
}

func (j *RetentionSweepJob) Name() string { return "retention_sweep" }

func (j *RetentionSweepJob) Run(ctx context.Context) error {
	deleted, err := j.svc.SweepRetention(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		log.Printf("[Scheduler] retention sweep removed %d dramas", deleted)
	}
	return nil
}
