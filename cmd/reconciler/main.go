package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sorastudio/internal/adapter/repo"
	"sorastudio/internal/domain"
	"sorastudio/internal/generation"
	"sorastudio/internal/infra"
	"sorastudio/internal/infra/credentials"
	"sorastudio/internal/providers/sora"
	"sorastudio/internal/sqlinline"
)

const claimInterval = 30 * time.Second

type staleJob struct {
	ID             string
	AccountID      string
	ExternalTaskID string
}

type reconciler struct {
	ctx    context.Context
	runner *infra.SQLRunner
	poller *generation.Poller
	logger infra.Logger
	after  time.Duration
}

var errNoStaleJob = errors.New("no stale job available")

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconciler: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)

	apiKey := cfg.SoraAPIKey
	if apiKey == "" || apiKey == infra.PlaceholderAPIKey {
		stored, err := credentials.NewStore(runner).SoraAPIKey(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("reconciler: failed to load sora api key from store")
		} else if stored != "" {
			apiKey = stored
		}
	}
	client := sora.NewClient(sora.Options{
		APIKey:         apiKey,
		BaseURL:        cfg.SoraAPIEndpoint,
		Logger:         &logger,
		RequestTimeout: cfg.ProviderTimeout,
	})
	if !client.HasCredentials() {
		logger.Fatal().Msg("reconciler: sora api key missing, nothing to reconcile against")
	}

	jobs := repo.NewVideoJobRepository(pool)
	usage := repo.NewUsageRepository(runner)
	poller := generation.NewPoller(jobs, client, logger, generation.PollerOptions{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.PollMaxAttempts,
		Usage:       usage,
	})

	r := &reconciler{
		ctx:    ctx,
		runner: runner,
		poller: poller,
		logger: logger,
		after:  cfg.ReconcileAfter,
	}
	if err := r.Run(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("reconciler: stopped with error")
	}
	logger.Info().Msg("reconciler: stopped")
}

func (r *reconciler) Run() error {
	r.logger.Info().Dur("stale_after", r.after).Msg("reconciler: started")
	for {
		select {
		case <-r.ctx.Done():
			return r.ctx.Err()
		default:
		}

		job, err := r.claim()
		if err != nil {
			if !errors.Is(err, errNoStaleJob) {
				r.logger.Error().Err(err).Msg("reconciler: claim failed")
			}
			if sleepErr := sleep(r.ctx, claimInterval); sleepErr != nil {
				return sleepErr
			}
			continue
		}
		r.handle(job)
	}
}

func (r *reconciler) claim() (staleJob, error) {
	row := r.runner.QueryRow(r.ctx, sqlinline.QClaimStaleProcessingJob, int(r.after.Minutes()))
	var j staleJob
	if err := row.Scan(&j.ID, &j.AccountID, &j.ExternalTaskID); err != nil {
		if infra.IsNoRows(err) {
			return staleJob{}, errNoStaleJob
		}
		return staleJob{}, err
	}
	return j, nil
}

// handle runs one bounded poll session for a claimed job. A timeout leaves the
// record processing; the next sweep picks it up again after the threshold.
// A provider-reported failure marks the job failed without touching credits.
func (r *reconciler) handle(j staleJob) {
	r.logger.Info().Str("job_id", j.ID).Str("task_id", j.ExternalTaskID).Msg("reconciler: picked job")
	status, err := r.poller.Poll(r.ctx, j.ID, j.AccountID, j.ExternalTaskID)
	switch {
	case errors.Is(err, domain.ErrPollTimeout):
		r.logger.Warn().Str("job_id", j.ID).Msg("reconciler: poll budget exhausted, leaving job for next sweep")
	case err != nil:
		r.logger.Error().Err(err).Str("job_id", j.ID).Msg("reconciler: poll session failed")
	default:
		r.logger.Info().Str("job_id", j.ID).Str("status", string(status)).Msg("reconciler: job settled")
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
