package domain

import "errors"

// ReadBook validation errors
var (
	ErrEndDateBeforeStart = errors.New("end date cannot be before start date")
)
