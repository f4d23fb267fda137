package repository

import (
	"context"
	"database/sql"

	"github.com/avetisyanh/portal-sync/internal/model"
)

// CourseRepo persists agency courses into the 'courses' table, keyed by
// course_id.  The caller flattens the agency-grouped payload before handing
// records here; the agency is just another column on the record.
type CourseRepo struct {
	db *sql.DB
}

// NewCourseRepo returns a new CourseRepo bound to the given database.
func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

const courseUpsert = `INSERT INTO courses
	(course_id, agency, title, description, hours, price_cents, status)
	VALUES (?,?,?,?,?,?,?)
	ON DUPLICATE KEY UPDATE
	 agency=VALUES(agency), title=VALUES(title),
	 description=VALUES(description), hours=VALUES(hours),
	 price_cents=VALUES(price_cents), status=VALUES(status)`

// UpsertBatch writes every course inside one all-or-nothing transaction.
// created_at survives re-ingestion (absent from the update list).
func (r *CourseRepo) UpsertBatch(ctx context.Context, recs []model.Course) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, c := range recs {
		if c.Status == "" {
			c.Status = "active"
		}
		if _, err := tx.ExecContext(ctx, courseUpsert,
			c.CourseID, c.Agency, c.Title, c.Description, c.Hours,
			c.PriceCents, c.Status,
		); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}
