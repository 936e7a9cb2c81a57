package model

import "time"

// Profile is the application-level record tied one-to-one with an
// authenticated identity. ID equals the identity's user id.
//
// Profiles are created by an external provisioning flow. A session whose
// identity has no profile row is a provisioning inconsistency, which the
// services report as ProfileNotFound rather than as a missing login.
type Profile struct {
	ID           string    `json:"id"           db:"id"`
	Email        string    `json:"email"        db:"email"`
	FirstName    string    `json:"firstName"    db:"first_name"`
	LastName     string    `json:"lastName"     db:"last_name"`
	IsSuperadmin bool      `json:"isSuperadmin" db:"is_superadmin"`
	IsInStudy    bool      `json:"isInStudy"    db:"is_in_study"`
	CreatedAt    time.Time `json:"createdAt"    db:"created_datetime_utc"`
}

// DisplayName returns "First Last" when both parts are present, otherwise
// the email, otherwise "Unknown".
func (p Profile) DisplayName() string {
	if p.FirstName != "" && p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	if p.Email != "" {
		return p.Email
	}
	return "Unknown"
}

// Role is the badge shown for a profile in the admin user list.
func (p Profile) Role() string {
	switch {
	case p.IsSuperadmin:
		return "admin"
	case p.IsInStudy:
		return "study"
	default:
		return "user"
	}
}
