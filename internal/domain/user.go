package domain

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
)

type User struct {
	ID                        string         `json:"id" gorm:"type:uuid;primary_key"`
	Email                     string         `json:"email" gorm:"not null"`
	NormalizedEmail           string         `json:"-" gorm:"uniqueIndex;not null"`
	PasswordHash              string         `json:"-" gorm:"not null"`
	EmailConfirmed            bool           `json:"emailConfirmed" gorm:"not null;default:false"`
	JoinedOn                  time.Time      `json:"joinedOn"`
	TermsAgreedTo             bool           `json:"termsAgreedTo"`
	TermsAgreedOn             time.Time      `json:"termsAgreedOn"`
	PasswordLastChanged       time.Time      `json:"passwordLastChanged"`
	EmailNotificationsEnabled bool           `json:"emailNotificationsEnabled" gorm:"not null;default:true"`
	Roles                     datatypes.JSON `json:"roles" gorm:"type:jsonb"` // ["Reader"]
	CreatedAt                 time.Time      `json:"createdAt"`
	UpdatedAt                 time.Time      `json:"updatedAt"`
}

// NormalizeEmail is the lookup key for an email address. Two addresses that
// differ only by case or surrounding whitespace belong to the same account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RoleNames decodes the roles column. A missing or corrupt column yields no roles.
func (u *User) RoleNames() []string {
	if len(u.Roles) == 0 {
		return nil
	}
	var roles []string
	if err := json.Unmarshal(u.Roles, &roles); err != nil {
		return nil
	}
	return roles
}

// SetRoles stores roles as a set: duplicates are dropped, order is kept.
func (u *User) SetRoles(roles ...string) {
	seen := make(map[string]struct{}, len(roles))
	set := make([]string, 0, len(roles))
	for _, r := range roles {
		if _, ok := seen[r]; ok || r == "" {
			continue
		}
		seen[r] = struct{}{}
		set = append(set, r)
	}
	data, _ := json.Marshal(set)
	u.Roles = data
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.RoleNames() {
		if r == role {
			return true
		}
	}
	return false
}
