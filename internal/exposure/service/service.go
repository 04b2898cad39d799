// Package service implements the exposure reconciliation engine: the periodic
// pull of diagnosis-key batches, the merge of detection results into the
// status record, and the diagnosed submission cycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"shield/internal/audit"
	"shield/internal/exposure/models"
	"shield/internal/exposure/ports"
	"shield/internal/exposure/status"
	"shield/internal/period"
	"shield/internal/platform/metrics"
	"shield/internal/storage"
	dErrors "shield/pkg/domain-errors"
)

// Config carries the engine's timing parameters.
type Config struct {
	// HoursPerPeriod is the batch publication granularity.
	HoursPerPeriod int
	// MaxLookbackPeriods caps how far a backfill reaches.
	MaxLookbackPeriods int
	// CycleDuration is the length of the diagnosed submission cycle.
	CycleDuration time.Duration
	// ExposureDuration is how long an exposed status is retained when no
	// fresher exposure is found.
	ExposureDuration time.Duration
	// SubmissionInterval is how often a diagnosed device re-arms
	// needsSubmission after a completed upload.
	SubmissionInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.HoursPerPeriod <= 0 {
		c.HoursPerPeriod = 24
	}
	if c.MaxLookbackPeriods <= 0 {
		c.MaxLookbackPeriods = 14
	}
	if c.CycleDuration <= 0 {
		c.CycleDuration = 14 * 24 * time.Hour
	}
	if c.ExposureDuration <= 0 {
		c.ExposureDuration = 14 * 24 * time.Hour
	}
	if c.SubmissionInterval <= 0 {
		c.SubmissionInterval = 24 * time.Hour
	}
	return c
}

// Service drives the exposure status state machine. All public entry points
// are safe for concurrent use; overlapping Reconcile calls coalesce into a
// single run whose result every caller shares.
type Service struct {
	backend  ports.Backend
	detector ports.Detector
	status   *status.Store
	secure   storage.SecureKV
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    ports.AuditPublisher
	now      func() time.Time
	group    singleflight.Group
}

// Option configures optional collaborators.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAudit(publisher ports.AuditPublisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// WithClock overrides the engine's time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(backend ports.Backend, detector ports.Detector, statusStore *status.Store, secure storage.SecureKV, cfg Config, opts ...Option) (*Service, error) {
	if backend == nil {
		return nil, errors.New("service: nil backend")
	}
	if detector == nil {
		return nil, errors.New("service: nil detector")
	}
	if statusStore == nil {
		return nil, errors.New("service: nil status store")
	}
	if secure == nil {
		return nil, errors.New("service: nil secure storage")
	}

	s := &Service{
		backend:  backend,
		detector: detector,
		status:   statusStore,
		secure:   secure,
		cfg:      cfg.withDefaults(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Status returns the current exposure status snapshot.
func (s *Service) Status() models.ExposureStatus {
	return s.status.Get()
}

// Start restores the persisted status and refreshes derived fields that may
// have gone stale while the agent was down. Concurrent Start calls coalesce.
func (s *Service) Start(ctx context.Context) error {
	_, err, _ := s.group.Do("start", func() (any, error) {
		s.status.Load(ctx)

		st := s.status.Get()
		if st.Type == models.StatusDiagnosed {
			needs := s.submissionDue(st)
			if needs != st.NeedsSubmission {
				s.status.Append(ctx, models.Patch{NeedsSubmission: &needs})
				st = s.status.Get()
			}
		}

		s.logger.InfoContext(ctx, "exposure status restored",
			"status", st.Type,
			"needs_submission", st.NeedsSubmission,
		)
		return nil, nil
	})
	return err
}

// Reconcile runs one full reconciliation pass: fetch the exposure
// configuration, download every outstanding key batch, run detection, and
// fold the result into the status record. The run is atomic with respect to
// the checkpoint: any fetch or detection failure aborts the run without
// mutating the status, so the next run retries the same plan.
//
// Overlapping calls coalesce into one underlying run.
func (s *Service) Reconcile(ctx context.Context) error {
	_, err, _ := s.group.Do("reconcile", func() (any, error) {
		started := s.now()
		err := s.reconcile(ctx)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		if s.metrics != nil {
			s.metrics.ObserveReconcile(outcome, s.now().Sub(started))
		}
		return nil, err
	})
	return err
}

func (s *Service) reconcile(ctx context.Context) error {
	now := s.now()
	current := period.Since(now, s.cfg.HoursPerPeriod)
	prev := s.status.Get()

	cfg, err := s.backend.GetExposureConfiguration(ctx)
	if err != nil {
		return s.failRun(ctx, fmt.Errorf("fetch exposure configuration: %w", err))
	}

	var lastChecked *period.Period
	if prev.LastChecked != nil {
		lastChecked = &prev.LastChecked.Period
	}
	plan := period.Plan(lastChecked, current, s.cfg.MaxLookbackPeriods)

	batches, err := s.fetchBatches(ctx, plan)
	if err != nil {
		return s.failRun(ctx, err)
	}

	summary, err := s.detectBest(ctx, cfg, batches)
	if err != nil {
		return s.failRun(ctx, err)
	}

	next := s.advance(prev, summary, now)
	next.LastChecked = &models.LastChecked{
		Period:    current - 1,
		Timestamp: now.UnixMilli(),
	}
	s.apply(ctx, prev, next)

	s.logger.InfoContext(ctx, "reconciliation complete",
		"status", next.Type,
		"periods_fetched", len(plan),
		"checkpoint", int64(current-1),
	)
	return nil
}

// fetchBatches downloads the planned periods in parallel, preserving plan
// order in the result. Any single failure cancels the rest and fails the run.
func (s *Service) fetchBatches(ctx context.Context, plan []period.Period) ([]*ports.KeyBatch, error) {
	batches := make([]*ports.KeyBatch, len(plan))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range plan {
		i, p := i, p
		g.Go(func() error {
			batch, err := s.backend.RetrieveDiagnosisKeys(gctx, p)
			if err != nil {
				return fmt.Errorf("retrieve diagnosis keys for period %d: %w", p, err)
			}
			batches[i] = batch
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.KeyBatchFetches.Add(float64(len(plan)))
	}
	return batches, nil
}

// detectBest runs every downloaded batch through the matcher and keeps the
// most recent exposure found. Periods the backend published nothing for are
// skipped. A nil result means no batch matched.
func (s *Service) detectBest(ctx context.Context, cfg ports.ExposureConfiguration, batches []*ports.KeyBatch) (*models.ExposureSummary, error) {
	var best *models.ExposureSummary
	for _, batch := range batches {
		if batch == nil {
			continue
		}
		summary, err := s.detector.DetectExposure(ctx, cfg, batch)
		if err != nil {
			return nil, fmt.Errorf("detect exposure for period %d: %w", batch.Period, err)
		}
		if summary == nil || summary.MatchedKeyCount == 0 {
			continue
		}
		if best == nil || summary.LastExposureTimestamp > best.LastExposureTimestamp {
			best = summary
		}
	}
	return best, nil
}

// advance applies the per-variant reconciliation rules and returns the next
// status, without the checkpoint bookkeeping.
func (s *Service) advance(prev models.ExposureStatus, summary *models.ExposureSummary, now time.Time) models.ExposureStatus {
	switch prev.Type {
	case models.StatusDiagnosed:
		if now.UnixMilli() >= prev.CycleEndsAt {
			return prev.ToMonitoring()
		}
		next := prev
		next.NeedsSubmission = s.submissionDue(prev)
		return next

	case models.StatusExposed:
		if prev.Summary == nil {
			// Malformed record; treat as monitoring.
			if summary != nil {
				return prev.ToExposed(*summary)
			}
			return prev.ToMonitoring()
		}
		if summary != nil && summary.LastExposureTimestamp > prev.Summary.LastExposureTimestamp {
			return prev.ToExposed(*summary)
		}
		if summary == nil && s.exposureExpired(prev, now) {
			return prev.ToMonitoring()
		}
		return prev

	default:
		if summary != nil {
			return prev.ToExposed(*summary)
		}
		return prev
	}
}

// submissionDue reports whether a diagnosed device owes an upload: it has
// never completed one, or the re-arm interval has elapsed since the last.
func (s *Service) submissionDue(st models.ExposureStatus) bool {
	if st.SubmissionLastCompletedAt == nil {
		return true
	}
	elapsed := s.now().UnixMilli() - *st.SubmissionLastCompletedAt
	return elapsed >= s.cfg.SubmissionInterval.Milliseconds()
}

// exposureExpired reports whether an exposed status has aged out. A zero
// exposure timestamp is non-comparable and never expires.
func (s *Service) exposureExpired(st models.ExposureStatus, now time.Time) bool {
	if st.Summary == nil || st.Summary.LastExposureTimestamp == 0 {
		return false
	}
	return now.UnixMilli()-st.Summary.LastExposureTimestamp >= s.cfg.ExposureDuration.Milliseconds()
}

// apply commits the next status, counting the transition and emitting a
// trail event when the variant changed. The status gauge follows the store's
// subscription, not this path.
func (s *Service) apply(ctx context.Context, prev, next models.ExposureStatus) {
	s.status.Set(ctx, next)

	if next.Type == prev.Type {
		return
	}
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(prev.Type), string(next.Type)).Inc()
	}
	s.emit(ctx, audit.Event{
		Action: audit.ActionStatusChanged,
		From:   prev.Type,
		To:     next.Type,
	})
}

func (s *Service) failRun(ctx context.Context, err error) error {
	s.logger.ErrorContext(ctx, "reconciliation failed", "error", err.Error())
	s.emit(ctx, audit.Event{
		Action: audit.ActionReconcileFailed,
		Detail: err.Error(),
	})
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "reconciliation failed")
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit event dropped", "action", string(event.Action), "error", err.Error())
	}
}
