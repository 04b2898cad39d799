package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Storage adapters and capability
// clients return these (optionally wrapped) so services can translate them
// into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record absent from a key-value store
// - ErrExpired: record or cycle past its end instant
// - ErrInvalidState: operation invoked against the wrong status variant
// - ErrUnavailable: backend or capability temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
