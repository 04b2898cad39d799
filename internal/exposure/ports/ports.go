// Package ports defines the capability contracts the exposure engine
// consumes. The backend and the on-device matcher are opaque collaborators:
// this package fixes their request/response shapes and nothing else.
package ports

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"

	"shield/internal/audit"
	"shield/internal/exposure/models"
	"shield/internal/period"
)

// ErrClaimRejected is returned by ClaimOneTimeCode when the backend refuses
// the code. It is part of the Backend contract so callers can distinguish a
// bad code from an unreachable backend.
var ErrClaimRejected = errors.New("one-time code rejected")

// KeyBatch is the diagnosis-key export published for one period. Files are
// opaque archives handed to the matching capability unchanged.
type KeyBatch struct {
	Period period.Period
	Files  [][]byte
}

// ExposureConfiguration is the backend-published matching parameter blob.
// The engine never interprets it; it flows through to the detector.
type ExposureConfiguration = json.RawMessage

// TemporaryExposureKey is one entry of the device's own key history.
type TemporaryExposureKey struct {
	KeyData               []byte `json:"keyData"`
	RollingStartNumber    int64  `json:"rollingStartNumber"`
	RollingPeriod         int    `json:"rollingPeriod"`
	TransmissionRiskLevel int    `json:"transmissionRiskLevel"`
}

// Backend is the diagnosis server. All methods fail with an error wrapped as
// unavailable on network or server trouble.
type Backend interface {
	// RetrieveDiagnosisKeys returns the batch for a period, or nil when the
	// backend has published nothing for it.
	RetrieveDiagnosisKeys(ctx context.Context, p period.Period) (*KeyBatch, error)

	// GetExposureConfiguration fetches the current matching parameters.
	GetExposureConfiguration(ctx context.Context) (ExposureConfiguration, error)

	// ClaimOneTimeCode exchanges a code for submission credentials. Returns
	// an error matching ErrClaimRejected when the backend refuses the code.
	ClaimOneTimeCode(ctx context.Context, code string) (*models.SubmissionAuthKeys, error)

	// ReportDiagnosisKeys uploads the device's key history under the claimed
	// credentials.
	ReportDiagnosisKeys(ctx context.Context, auth models.SubmissionAuthKeys, keys []TemporaryExposureKey) error
}

// Detector is the on-device exposure matching capability.
type Detector interface {
	// DetectExposure runs a batch through the matcher. A nil summary (or one
	// with no matched keys) means no exposure was found in the batch.
	DetectExposure(ctx context.Context, cfg ExposureConfiguration, batch *KeyBatch) (*models.ExposureSummary, error)

	// TemporaryExposureKeyHistory returns the device's own keys for upload.
	TemporaryExposureKeyHistory(ctx context.Context) ([]TemporaryExposureKey, error)
}

// AuditPublisher emits trail events for state transitions and submissions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
