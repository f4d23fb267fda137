package model

// Course mirrors one training course offered by an agency, stored in the
// 'courses' table keyed by CourseID.  The signups payload groups courses
// under their agency name; that outer key is informational only and the
// agency is carried on the record itself, with no referential integrity
// enforced at ingestion time.
type Course struct {
	CourseID    string  `json:"course_id"`
	Agency      string  `json:"agency"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Hours       float64 `json:"hours"`
	PriceCents  int64   `json:"price_cents"`
	Status      string  `json:"status"`
}
