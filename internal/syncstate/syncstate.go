// Package syncstate keeps last-sync bookkeeping in Redis so operators can
// see when each resource kind was last ingested and with what outcome.
// The store is best-effort: when Redis is unavailable the client is nil
// and every operation silently no-ops, mirroring how the rest of the
// application treats Redis as optional infrastructure.
package syncstate

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avetisyanh/portal-sync/internal/model"
)

// Snapshot is the stored record of one completed sync for a resource kind.
type Snapshot struct {
	Resource    string                         `json:"resource"`
	CompletedAt time.Time                      `json:"completed_at"`
	Results     map[string]model.UpsertOutcome `json:"results"`
}

// Store wraps the Redis client.  A nil *Store or a Store with a nil client
// is valid and disables bookkeeping.
type Store struct {
	rdb *redis.Client
}

// New returns a Store over the given client.  rdb may be nil.
func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Enabled reports whether bookkeeping is active.
func (s *Store) Enabled() bool { return s != nil && s.rdb != nil }

func key(resource string) string { return "sync:last:" + resource }

// Record stores the outcome of a completed sync under the resource's key.
// Entries do not expire; each sync overwrites the previous one.
func (s *Store) Record(ctx context.Context, resource string, results map[string]model.UpsertOutcome) error {
	if !s.Enabled() {
		return nil
	}
	snap := Snapshot{
		Resource:    resource,
		CompletedAt: time.Now().UTC(),
		Results:     results,
	}
	body, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key(resource), body, 0).Err()
}

// Last returns the most recent snapshot for the resource, or nil when none
// has been recorded or bookkeeping is disabled.
func (s *Store) Last(ctx context.Context, resource string) (*Snapshot, error) {
	if !s.Enabled() {
		return nil, nil
	}
	body, err := s.rdb.Get(ctx, key(resource)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
