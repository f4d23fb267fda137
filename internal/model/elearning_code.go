package model

// ElearningCode mirrors one issued learning-code assignment, stored in the
// 'elearning_codes' table keyed by RecordID.  MemberID and CourseID
// reference other tables by identifier but the references are not checked
// during bulk load (see the repository for the constraint handling).
// Records occasionally arrive without a RecordID; the repository falls back
// to IssuedAt for the key so the row still has a stable identity.
type ElearningCode struct {
	RecordID   string `json:"record_id"`
	Code       string `json:"code"`
	MemberID   string `json:"member_id"`
	CourseID   string `json:"course_id"`
	IssuedAt   string `json:"issued_at"`
	RedeemedAt string `json:"redeemed_at"`
	ExpiresAt  string `json:"expires_at"`
	Status     string `json:"status"`
}
