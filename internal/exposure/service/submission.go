package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"shield/internal/audit"
	"shield/internal/exposure/models"
	"shield/internal/exposure/ports"
	"shield/internal/storage"
	dErrors "shield/pkg/domain-errors"
)

// secureStorageKey is the fixed secure-storage slot for submission
// credentials.
const secureStorageKey = "submissionAuthKeys"

var (
	// ErrNotDiagnosed is returned when a key upload is attempted outside a
	// submission cycle.
	ErrNotDiagnosed = errors.New("device is not in a submission cycle")
	// ErrMissingKeyMaterial is returned when a diagnosed device has lost its
	// claimed credentials.
	ErrMissingKeyMaterial = errors.New("submission credentials not found")
)

// StartKeysSubmission exchanges a one-time code for submission credentials,
// stores them securely, and enters the diagnosed cycle. The status changes
// only after the credentials are safely persisted.
func (s *Service) StartKeysSubmission(ctx context.Context, oneTimeCode string) error {
	if oneTimeCode == "" {
		return dErrors.New(dErrors.CodeBadRequest, "one-time code is required")
	}

	auth, err := s.backend.ClaimOneTimeCode(ctx, oneTimeCode)
	if err != nil {
		if errors.Is(err, ports.ErrClaimRejected) {
			return dErrors.Wrap(err, dErrors.CodeUnauthorized, "one-time code rejected")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "claim one-time code")
	}

	raw, err := json.Marshal(auth)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encode submission credentials")
	}
	if err := s.secure.Set(ctx, secureStorageKey, string(raw)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "store submission credentials")
	}

	now := s.now()
	prev := s.status.Get()
	next := prev.ToDiagnosed(now.UnixMilli(), now.Add(s.cfg.CycleDuration).UnixMilli())
	s.apply(ctx, prev, next)
	s.emit(ctx, audit.Event{
		Action: audit.ActionCycleStarted,
		To:     models.StatusDiagnosed,
	})

	s.logger.InfoContext(ctx, "submission cycle started",
		"cycle_ends_at", next.CycleEndsAt,
	)
	return nil
}

// FetchAndSubmitKeys uploads the device's own key history under the claimed
// credentials and records the completed submission.
func (s *Service) FetchAndSubmitKeys(ctx context.Context) error {
	st := s.status.Get()
	if st.Type != models.StatusDiagnosed {
		return dErrors.Wrap(ErrNotDiagnosed, dErrors.CodeInvalidState, "submit keys")
	}

	raw, err := s.secure.Get(ctx, secureStorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return dErrors.Wrap(ErrMissingKeyMaterial, dErrors.CodeInvalidState, "submit keys")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "load submission credentials")
	}
	var auth models.SubmissionAuthKeys
	if err := json.Unmarshal([]byte(raw), &auth); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "decode submission credentials")
	}

	keys, err := s.detector.TemporaryExposureKeyHistory(ctx)
	if err != nil {
		return s.failSubmission(ctx, fmt.Errorf("fetch key history: %w", err))
	}

	if err := s.backend.ReportDiagnosisKeys(ctx, auth, keys); err != nil {
		return s.failSubmission(ctx, fmt.Errorf("report diagnosis keys: %w", err))
	}

	completedAt := s.now().UnixMilli()
	needs := false
	s.status.Append(ctx, models.Patch{
		NeedsSubmission:           &needs,
		SubmissionLastCompletedAt: &completedAt,
	})

	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("success").Inc()
	}
	s.emit(ctx, audit.Event{
		Action: audit.ActionKeysSubmitted,
		Detail: fmt.Sprintf("%d keys", len(keys)),
	})

	s.logger.InfoContext(ctx, "diagnosis keys submitted", "key_count", len(keys))
	return nil
}

func (s *Service) failSubmission(ctx context.Context, err error) error {
	if s.metrics != nil {
		s.metrics.Submissions.WithLabelValues("error").Inc()
	}
	s.logger.ErrorContext(ctx, "key submission failed", "error", err.Error())
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "key submission failed")
}
