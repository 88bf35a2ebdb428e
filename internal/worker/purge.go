package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultPurgeTimeout bounds a single purge run.
const DefaultPurgeTimeout = 30 * time.Second

var (
	purgedTokens = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresh_tokens_purged_total",
		Help: "Expired refresh-token records deleted by the purge job.",
	})
	purgeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refresh_token_purge_failures_total",
		Help: "Purge runs that failed.",
	})
)

// TokenPurger deletes refresh-token records that expired before a cutoff.
type TokenPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PurgeJob removes expired refresh-token records. Such records are already
// rejected by lookups; the job only reclaims space.
type PurgeJob struct {
	tokens  TokenPurger
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewPurgeJob creates a purge job.
func NewPurgeJob(tokens TokenPurger, logger *slog.Logger) *PurgeJob {
	return &PurgeJob{
		tokens:  tokens,
		logger:  logger,
		timeout: DefaultPurgeTimeout,
		now:     time.Now,
	}
}

// Run implements cron.Job.
func (j *PurgeJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, _ = j.RunOnce(ctx)
}

// RunOnce purges every record expired as of now and returns the count.
func (j *PurgeJob) RunOnce(ctx context.Context) (int64, error) {
	start := j.now()
	n, err := j.tokens.PurgeExpired(ctx, start.UTC())
	if err != nil {
		purgeFailures.Inc()
		j.logger.ErrorContext(ctx, "refresh token purge failed", slog.String("error", err.Error()))
		return 0, err
	}

	purgedTokens.Add(float64(n))
	j.logger.InfoContext(ctx, "purged expired refresh tokens",
		slog.Int64("deleted", n),
		slog.Duration("duration", time.Since(start)),
	)
	return n, nil
}
