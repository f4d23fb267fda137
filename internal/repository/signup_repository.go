package repository

import (
	"context"
	"database/sql"

	"github.com/avetisyanh/portal-sync/internal/model"
)

// SignupRepo persists portal members into the 'signups' table.  Ingestion
// is bulk-only: the portal export is the source of truth and rows are never
// deleted here, only inserted or overwritten.
type SignupRepo struct {
	db *sql.DB
}

// NewSignupRepo returns a new SignupRepo bound to the given database.
func NewSignupRepo(db *sql.DB) *SignupRepo { return &SignupRepo{db: db} }

const signupUpsert = `INSERT INTO signups
	(member_id, first_name, middle_name, last_name, email, phone, mobile_phone,
	 address1, address2, city, state, postal_code, country, gender, birth_date,
	 membership_type, agreement_number, signup_date, expiration_date, status,
	 home_club, sales_rep, referral_source, emergency_name, emergency_phone,
	 height_cm, weight_kg, body_fat_pct, reward_points, reward_tier,
	 preferences, metadata)
	VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	ON DUPLICATE KEY UPDATE
	 first_name=VALUES(first_name), middle_name=VALUES(middle_name),
	 last_name=VALUES(last_name), email=VALUES(email), phone=VALUES(phone),
	 mobile_phone=VALUES(mobile_phone), address1=VALUES(address1),
	 address2=VALUES(address2), city=VALUES(city), state=VALUES(state),
	 postal_code=VALUES(postal_code), country=VALUES(country),
	 gender=VALUES(gender), birth_date=VALUES(birth_date),
	 membership_type=VALUES(membership_type),
	 agreement_number=VALUES(agreement_number),
	 signup_date=VALUES(signup_date), expiration_date=VALUES(expiration_date),
	 status=VALUES(status), home_club=VALUES(home_club),
	 sales_rep=VALUES(sales_rep), referral_source=VALUES(referral_source),
	 emergency_name=VALUES(emergency_name),
	 emergency_phone=VALUES(emergency_phone), height_cm=VALUES(height_cm),
	 weight_kg=VALUES(weight_kg), body_fat_pct=VALUES(body_fat_pct),
	 reward_points=VALUES(reward_points), reward_tier=VALUES(reward_tier),
	 preferences=VALUES(preferences), metadata=VALUES(metadata)`

// UpsertBatch writes every record inside one all-or-nothing transaction,
// keyed on member_id.  A failure on any record rolls back the whole batch.
// created_at is set by the database on first insert and deliberately absent
// from the update list so it survives re-ingestion.
func (r *SignupRepo) UpsertBatch(ctx context.Context, recs []model.Signup) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	for _, s := range recs {
		s = normalizeSignup(s)
		if _, err := tx.ExecContext(ctx, signupUpsert,
			s.MemberID, s.FirstName, s.MiddleName, s.LastName, s.Email,
			s.Phone, s.MobilePhone, s.Address1, s.Address2, s.City, s.State,
			s.PostalCode, s.Country, s.Gender, s.BirthDate, s.MembershipType,
			s.AgreementNumber, s.SignupDate, s.ExpirationDate, s.Status,
			s.HomeClub, s.SalesRep, s.ReferralSource, s.EmergencyName,
			s.EmergencyPhone, s.HeightCm, s.WeightKg, s.BodyFatPct,
			s.RewardPoints, s.RewardTier, string(s.Preferences),
			string(s.Metadata),
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

// normalizeSignup applies the ingestion defaults the stored data shape
// expects: status falls back to the "active" sentinel and blob fields to an
// empty JSON object.  Absent numeric fields already decode to 0 and are
// stored as such.
func normalizeSignup(s model.Signup) model.Signup {
	if s.Status == "" {
		s.Status = "active"
	}
	if len(s.Preferences) == 0 {
		s.Preferences = []byte("{}")
	}
	if len(s.Metadata) == 0 {
		s.Metadata = []byte("{}")
	}
	return s
}
