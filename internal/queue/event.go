// Package queue defines message payloads exchanged over the message broker.
package queue

import "github.com/avetisyanh/portal-sync/internal/model"

// SyncCompletedEvent is published after a webhook invocation has finished
// persisting a portal export.  It carries enough for downstream consumers
// to log, alert on persistence failures, or trigger reporting without
// querying the primary database.
type SyncCompletedEvent struct {
    FacilityID  string                         `json:"facility_id"`
    Resource    string                         `json:"resource"`
    Results     map[string]model.UpsertOutcome `json:"results"`
    CompletedAt string                         `json:"completed_at"`
}
