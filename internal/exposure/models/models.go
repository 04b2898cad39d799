// Package models defines the exposure status record, the tagged union at the
// heart of the reconciliation engine, together with its transition and merge
// rules. The record is what gets serialized to the persistence adapter, so
// field names are part of the stored format.
package models

import (
	"encoding/json"

	"shield/internal/period"
)

// StatusType tags the active variant of an ExposureStatus.
type StatusType string

const (
	StatusMonitoring StatusType = "monitoring"
	StatusExposed    StatusType = "exposed"
	StatusDiagnosed  StatusType = "diagnosed"
)

// LastChecked records the most recent successful reconciliation. It is
// bookkeeping, not domain state: every transition preserves it.
type LastChecked struct {
	Period    period.Period `json:"period"`
	Timestamp int64         `json:"timestamp"`
}

// ExposureSummary is the aggregate result of matching local proximity history
// against a diagnosis-key batch. A zero LastExposureTimestamp means the
// matching capability could not date the exposure; such summaries are
// non-comparable and never justify leaving the exposed state.
type ExposureSummary struct {
	MatchedKeyCount       int     `json:"matchedKeyCount"`
	MaximumRiskScore      float64 `json:"maximumRiskScore"`
	LastExposureTimestamp int64   `json:"lastExposureTimestamp"`
	DaysSinceLastExposure int     `json:"daysSinceLastExposure"`
}

// ExposureStatus is the persisted state machine record. Exactly one variant
// is active at a time; variant-specific fields are cleared on transition so a
// stored record never mixes variants.
type ExposureStatus struct {
	Type        StatusType   `json:"type"`
	LastChecked *LastChecked `json:"lastChecked,omitempty"`

	// Exposed only.
	Summary *ExposureSummary `json:"summary,omitempty"`

	// Diagnosed only. Timestamps are epoch milliseconds.
	CycleStartsAt             int64  `json:"cycleStartsAt,omitempty"`
	CycleEndsAt               int64  `json:"cycleEndsAt,omitempty"`
	NeedsSubmission           bool   `json:"needsSubmission,omitempty"`
	SubmissionLastCompletedAt *int64 `json:"submissionLastCompletedAt,omitempty"`
}

// SubmissionAuthKeys is the ephemeral credential material returned by a
// one-time-code claim. It lives only in secure storage, never inside
// ExposureStatus.
type SubmissionAuthKeys struct {
	ServerPublicKey  string `json:"serverPublicKey"`
	ClientPrivateKey string `json:"clientPrivateKey"`
	ClientPublicKey  string `json:"clientPublicKey"`
}

// Monitoring returns the default idle status.
func Monitoring() ExposureStatus {
	return ExposureStatus{Type: StatusMonitoring}
}

// ToMonitoring resets to the monitoring variant. LastChecked survives; all
// variant-specific fields are dropped.
func (s ExposureStatus) ToMonitoring() ExposureStatus {
	return ExposureStatus{Type: StatusMonitoring, LastChecked: s.LastChecked}
}

// ToExposed transitions to the exposed variant carrying the given summary.
func (s ExposureStatus) ToExposed(summary ExposureSummary) ExposureStatus {
	return ExposureStatus{
		Type:        StatusExposed,
		LastChecked: s.LastChecked,
		Summary:     &summary,
	}
}

// ToDiagnosed enters the submission cycle. The new record needs a submission
// immediately and has never completed one.
func (s ExposureStatus) ToDiagnosed(cycleStartsAt, cycleEndsAt int64) ExposureStatus {
	return ExposureStatus{
		Type:            StatusDiagnosed,
		LastChecked:     s.LastChecked,
		CycleStartsAt:   cycleStartsAt,
		CycleEndsAt:     cycleEndsAt,
		NeedsSubmission: true,
	}
}

// Patch is a shallow partial update applied through the status store's
// Append. It deliberately cannot change the variant tag: variant and fields
// always transition together through the constructors above.
type Patch struct {
	LastChecked               *LastChecked
	Summary                   *ExposureSummary
	NeedsSubmission           *bool
	SubmissionLastCompletedAt *int64
}

// Merge applies a patch: set fields overwrite, absent fields are preserved.
func (s ExposureStatus) Merge(p Patch) ExposureStatus {
	if p.LastChecked != nil {
		lc := *p.LastChecked
		s.LastChecked = &lc
	}
	if p.Summary != nil {
		sum := *p.Summary
		s.Summary = &sum
	}
	if p.NeedsSubmission != nil {
		s.NeedsSubmission = *p.NeedsSubmission
	}
	if p.SubmissionLastCompletedAt != nil {
		v := *p.SubmissionLastCompletedAt
		s.SubmissionLastCompletedAt = &v
	}
	return s
}

// Encode serializes the record for the persistence adapter.
func (s ExposureStatus) Encode() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Decode deserializes a stored record. Missing, corrupt, or unrecognized
// records degrade to the monitoring default rather than failing: an old or
// partial record is "no prior state", not an error.
func Decode(raw string) ExposureStatus {
	var s ExposureStatus
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return Monitoring()
	}
	switch s.Type {
	case StatusMonitoring, StatusExposed, StatusDiagnosed:
		return s
	default:
		// Unknown variant from a newer or older build; keep the checkpoint.
		return ExposureStatus{Type: StatusMonitoring, LastChecked: s.LastChecked}
	}
}
