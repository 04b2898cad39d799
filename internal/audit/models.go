// Package audit records the exposure state machine's externally meaningful
// actions: status transitions, submission cycle milestones, reconciliation
// failures. Events are emitted from domain logic and drained by a background
// worker so the engine never blocks on the trail.
package audit

import (
	"time"

	"shield/internal/exposure/models"
)

// Action names an audited occurrence.
type Action string

const (
	ActionStatusChanged   Action = "status_changed"
	ActionCycleStarted    Action = "submission_cycle_started"
	ActionKeysSubmitted   Action = "keys_submitted"
	ActionReconcileFailed Action = "reconcile_failed"
)

// Event is one entry in the trail. Keep it transport-agnostic so stores and
// sinks can fan out.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	From      models.StatusType `json:"from,omitempty"`
	To        models.StatusType `json:"to,omitempty"`
	Detail    string            `json:"detail,omitempty"`
}
