// Package detector provides exposure matching implementations. The real
// matcher is platform-specific; this package ships the pieces that do not
// depend on one.
package detector

import (
	"context"

	"shield/internal/exposure/models"
	"shield/internal/exposure/ports"
)

// Noop satisfies the matching contract without a platform matcher: it never
// finds an exposure and reports an empty key history. Useful for development
// builds and hosts where no matching framework is linked.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) DetectExposure(_ context.Context, _ ports.ExposureConfiguration, _ *ports.KeyBatch) (*models.ExposureSummary, error) {
	return nil, nil
}

func (Noop) TemporaryExposureKeyHistory(_ context.Context) ([]ports.TemporaryExposureKey, error) {
	return []ports.TemporaryExposureKey{}, nil
}
