package domain

import (
	"time"

	"github.com/google/uuid"
)

// TokenPurpose scopes a single-use code to the flow it was issued for.
type TokenPurpose string

const (
	TokenPurposeEmailConfirmation TokenPurpose = "email_confirmation"
	TokenPurposePasswordReset     TokenPurpose = "password_reset"
)

// IsValid checks if a purpose is known
func (p TokenPurpose) IsValid() bool {
	switch p {
	case TokenPurposeEmailConfirmation, TokenPurposePasswordReset:
		return true
	}
	return false
}

// UserToken is the stored half of a single-use code. Only the hash of the
// code is kept; the raw value exists in the emailed link alone.
type UserToken struct {
	ID         uuid.UUID    `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     string       `json:"userId" gorm:"type:uuid;index;not null"`
	Purpose    TokenPurpose `json:"purpose" gorm:"type:varchar(32);not null"`
	TokenHash  string       `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt  time.Time    `json:"expiresAt" gorm:"not null"`
	ConsumedAt *time.Time   `json:"consumedAt"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// Usable reports whether the code can still be redeemed at now.
func (t *UserToken) Usable(now time.Time) bool {
	return t.ConsumedAt == nil && now.Before(t.ExpiresAt)
}
