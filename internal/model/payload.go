package model

// SignupsPayload is the structured shape of the facility-signups export.
// Data may be nil when the portal answered with an error payload or a
// non-JSON body; callers must check for its presence before persisting.
type SignupsPayload struct {
	Data    []Signup            `json:"data"`
	Courses map[string][]Course `json:"courses"`
}

// ElearningPayload is the structured shape of the e-learning-codes export.
type ElearningPayload struct {
	Data []ElearningCode `json:"data"`
}

// UpsertOutcome reports the result of one bulk upsert, one per record kind.
// Persistence failures are data, not errors: the webhook response embeds a
// map of these next to the overall success status.
type UpsertOutcome struct {
	Success bool   `json:"success"`
	Count   int    `json:"count"`
	Error   string `json:"error,omitempty"`
}

// Outcome folds an (count, error) pair from a repository call into an
// UpsertOutcome.
func Outcome(count int, err error) UpsertOutcome {
	if err != nil {
		return UpsertOutcome{Error: err.Error()}
	}
	return UpsertOutcome{Success: true, Count: count}
}
