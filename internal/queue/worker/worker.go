package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/geocoder89/timehub/internal/domain/delivery"
	"github.com/geocoder89/timehub/internal/domain/job"
	"github.com/geocoder89/timehub/internal/jobs"
	"github.com/geocoder89/timehub/internal/notifications"
	"github.com/geocoder89/timehub/internal/observability"
	"golang.org/x/sync/errgroup"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type DeliveryStore interface {
	TryStart(ctx context.Context, jobID, membershipID, recipient string) error
	MarkSent(ctx context.Context, membershipID string, providerMessageID *string) error
	MarkFailed(ctx context.Context, membershipID string, errMsg string) error
}

type Config struct {
	WorkerID     string
	PollInterval time.Duration
	Concurrency  int
	// LockTTL is how long a processing job may stay locked before it is requeued.
	LockTTL time.Duration
	// zero value means DefaultBackoff
	Backoff Backoff
}

type Worker struct {
	cfg        Config
	repo       JobsRepository
	deliveries DeliveryStore
	notifier   notifications.Notifier
	prom       *observability.Prom
	log        *slog.Logger
	backoff    func(attempt int) time.Duration

	readyMu sync.RWMutex
	ready   bool
}

// errPermanent marks failures that retrying cannot fix.
var errPermanent = errors.New("permanent job failure")

func New(cfg Config, repo JobsRepository, deliveries DeliveryStore, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = time.Minute
	}
	if cfg.Backoff == (Backoff{}) {
		cfg.Backoff = DefaultBackoff
	}

	return &Worker{
		cfg:        cfg,
		repo:       repo,
		deliveries: deliveries,
		notifier:   notifier,
		prom:       prom,
		log:        log,
		backoff:    cfg.Backoff.Delay,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight jobs.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("worker started", "worker_id", w.cfg.WorkerID, "concurrency", w.cfg.Concurrency)

	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < w.cfg.Concurrency; i++ {
		g.Go(func() error {
			w.pollLoop(gctx)
			return nil
		})
	}

	g.Go(func() error {
		w.reaperLoop(gctx)
		return nil
	})

	err := g.Wait()
	w.log.Info("worker received shutdown signal")
	return err
}

func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// drain while there is work
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.log.Error("process job", "err", err)
				}
				if !processed || ctx.Err() != nil {
					break
				}
			}
		}
	}
}

func (w *Worker) reaperLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("requeue stale jobs", "err", err)
				continue
			}
			if n > 0 {
				w.log.Warn("requeued stale jobs", "count", n)
			}
		}
	}
}

// ProcessOne claims and runs at most one job. It reports whether a job was claimed.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	log := w.log.With("job_id", j.ID, "job_type", j.Type, "attempt", j.Attempts+1)

	if err := w.execute(ctx, j); err != nil {
		result := w.handleFailure(ctx, j, err)
		w.prom.ObserveJob(j.Type, result, time.Since(start))
		log.Warn("job failed", "result", result, "err", err)
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		return true, err
	}

	w.prom.ObserveJob(j.Type, "done", time.Since(start))
	log.Info("job done", "duration_ms", time.Since(start).Milliseconds())
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	decoded, err := jobs.DecodePayload(j)
	if err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	switch p := decoded.(type) {
	case jobs.SendInviteLinkPayload:
		return w.sendInviteLink(ctx, j, p)
	default:
		return fmt.Errorf("%w: unhandled payload %T", errPermanent, decoded)
	}
}

func (w *Worker) sendInviteLink(ctx context.Context, j job.Job, p jobs.SendInviteLinkPayload) error {
	if err := jobs.ValidatePayload(jobs.JobSendInviteLink, p); err != nil {
		return fmt.Errorf("%w: %v", errPermanent, err)
	}

	err := w.deliveries.TryStart(ctx, j.ID, p.MembershipID, p.Email)
	switch {
	case errors.Is(err, delivery.ErrAlreadySent):
		// a previous attempt already delivered; finishing is idempotent
		return nil
	case err != nil:
		return err
	}

	sendErr := w.notifier.SendInviteLink(ctx, notifications.SendInviteLinkInput{
		MembershipID: p.MembershipID,
		Email:        p.Email,
		ProjectName:  p.ProjectName,
		Link:         p.Link,
	})
	if sendErr != nil {
		if err := w.deliveries.MarkFailed(ctx, p.MembershipID, sendErr.Error()); err != nil {
			w.log.Error("mark delivery failed", "membership_id", p.MembershipID, "err", err)
		}
		return sendErr
	}

	return w.deliveries.MarkSent(ctx, p.MembershipID, nil)
}

// handleFailure reschedules with backoff or parks the job as failed. It
// returns the metric result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, cause error) string {
	msg := cause.Error()

	if errors.Is(cause, errPermanent) || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, msg); err != nil {
			w.log.Error("mark job failed", "job_id", j.ID, "err", err)
		}
		return "failed"
	}

	runAt := time.Now().UTC().Add(w.backoff(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, msg); err != nil {
		w.log.Error("reschedule job", "job_id", j.ID, "err", err)
	}
	return "retry"
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) Ready() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}
