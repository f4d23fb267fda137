package repository

import (
	"context"
	"database/sql"

	"github.com/avetisyanh/portal-sync/internal/model"
)

// ElearningCodeRepo persists learning-code assignments into the
// 'elearning_codes' table, keyed by record_id.  Codes reference members and
// courses by identifier, but those rows arrive through a separate webhook
// trigger that can fire in either order, so foreign-key checking is
// suspended for the duration of the load.
type ElearningCodeRepo struct {
	db *sql.DB
}

// NewElearningCodeRepo returns a new ElearningCodeRepo bound to the given
// database.
func NewElearningCodeRepo(db *sql.DB) *ElearningCodeRepo {
	return &ElearningCodeRepo{db: db}
}

const elearningUpsert = `INSERT INTO elearning_codes
	(record_id, code, member_id, course_id, issued_at, redeemed_at,
	 expires_at, status)
	VALUES (?,?,?,?,?,?,?,?)
	ON DUPLICATE KEY UPDATE
	 code=VALUES(code), member_id=VALUES(member_id),
	 course_id=VALUES(course_id), issued_at=VALUES(issued_at),
	 redeemed_at=VALUES(redeemed_at), expires_at=VALUES(expires_at),
	 status=VALUES(status)`

// UpsertBatch writes every code inside one all-or-nothing transaction.
// FOREIGN_KEY_CHECKS is session-scoped in MySQL and a *sql.Tx pins one
// pooled connection, so disabling it here affects only this transaction.
// It must be re-enabled on every exit path, or the connection returns to
// the pool with checking off.
func (r *ElearningCodeRepo) UpsertBatch(ctx context.Context, recs []model.ElearningCode) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=0"); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	for _, e := range recs {
		e = normalizeCode(e)
		if _, err := tx.ExecContext(ctx, elearningUpsert,
			e.RecordID, e.Code, e.MemberID, e.CourseID, e.IssuedAt,
			e.RedeemedAt, e.ExpiresAt, e.Status,
		); err != nil {
			_, _ = tx.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1")
			_ = tx.Rollback()
			return 0, err
		}
	}
	if _, err := tx.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS=1"); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}

// normalizeCode applies the ingestion defaults: a missing record id falls
// back to the sibling issued-at timestamp so the row keeps a stable key,
// and status falls back to the "active" sentinel.
func normalizeCode(e model.ElearningCode) model.ElearningCode {
	if e.RecordID == "" {
		e.RecordID = e.IssuedAt
	}
	if e.Status == "" {
		e.Status = "active"
	}
	return e
}
