package model

import "encoding/json"

// Signup mirrors one portal member as delivered by the facility-signups
// export and as stored in the 'signups' table.  MemberID is the stable
// external identifier; re-ingesting the same MemberID overwrites every
// mutable column except created_at.  Timestamp-like fields stay strings
// because the portal emits them in several formats and the bridge does not
// interpret them, only stores them.
type Signup struct {
	MemberID        string          `json:"member_id"`
	FirstName       string          `json:"first_name"`
	MiddleName      string          `json:"middle_name"`
	LastName        string          `json:"last_name"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone"`
	MobilePhone     string          `json:"mobile_phone"`
	Address1        string          `json:"address1"`
	Address2        string          `json:"address2"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	PostalCode      string          `json:"postal_code"`
	Country         string          `json:"country"`
	Gender          string          `json:"gender"`
	BirthDate       string          `json:"birth_date"`
	MembershipType  string          `json:"membership_type"`
	AgreementNumber string          `json:"agreement_number"`
	SignupDate      string          `json:"signup_date"`
	ExpirationDate  string          `json:"expiration_date"`
	Status          string          `json:"status"`
	HomeClub        string          `json:"home_club"`
	SalesRep        string          `json:"sales_rep"`
	ReferralSource  string          `json:"referral_source"`
	EmergencyName   string          `json:"emergency_name"`
	EmergencyPhone  string          `json:"emergency_phone"`
	HeightCm        float64         `json:"height_cm"`
	WeightKg        float64         `json:"weight_kg"`
	BodyFatPct      float64         `json:"body_fat_pct"`
	RewardPoints    int64           `json:"reward_points"`
	RewardTier      string          `json:"reward_tier"`
	Preferences     json.RawMessage `json:"preferences"`
	Metadata        json.RawMessage `json:"metadata"`
}
