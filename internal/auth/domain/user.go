package domain

import "time"

// User is the identity anchor for runs and items. Exactly one row exists
// per email address; it is created or updated on each successful OAuth
// callback and never deleted by the pipeline.
type User struct {
	ID    string `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`

	// AccessToken is short-lived and refreshed in place.
	// RefreshToken is encrypted at rest (pkg/crypto).
	AccessToken    string     `json:"-"`
	RefreshToken   string     `json:"-" gorm:"not null"`
	TokenExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
