package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ReadBook is a book the owning user has read or is reading.
type ReadBook struct {
	ID                int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID            string     `json:"userId" gorm:"type:uuid;index;not null"`
	Name              string     `json:"name" gorm:"not null"`
	ExternalCatalogID string     `json:"externalCatalogId" gorm:"not null"` // Google Books volume id
	StartDate         *time.Time `json:"startDate"`
	EndDate           *time.Time `json:"endDate"`
	CreatedBy         string     `json:"createdBy"`
	CreatedOn         time.Time  `json:"createdOn"`
	UpdatedBy         string     `json:"updatedBy"`
	UpdatedOn         time.Time  `json:"updatedOn"`
}

// Stamp fills the audit fields for a write made by userID.
func (b *ReadBook) Stamp(userID string, now time.Time) {
	if b.CreatedBy == "" {
		b.CreatedBy = userID
		b.CreatedOn = now
	}
	b.UpdatedBy = userID
	b.UpdatedOn = now
}

// Validate checks the fields a client may set.
func (b ReadBook) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Name, validation.Required, validation.Length(1, 500)),
		validation.Field(&b.ExternalCatalogID, validation.Required, validation.Length(1, 100)),
		validation.Field(&b.EndDate, validation.By(b.endNotBeforeStart)),
	)
}

func (b ReadBook) endNotBeforeStart(value interface{}) error {
	if b.StartDate == nil || b.EndDate == nil {
		return nil
	}
	if b.EndDate.Before(*b.StartDate) {
		return ErrEndDateBeforeStart
	}
	return nil
}
