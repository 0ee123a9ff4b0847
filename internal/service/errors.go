package service

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("email is taken")
	ErrTermsRequired      = errors.New("terms and conditions are required")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("email or password is incorrect")
	ErrPasswordRequired   = errors.New("password is missing")
	ErrCodeRequired       = errors.New("code is missing")
	ErrUserIDRequired     = errors.New("user id is required")
	ErrPasswordsDiffer    = errors.New("passwords do not match")
	// ErrInvalidCode deliberately does not say whether the code was unknown, spent or expired.
	ErrInvalidCode   = errors.New("invalid code")
	ErrEmailDelivery = errors.New("email delivery failed")

	ErrReadBookNotFound = errors.New("read book not found")

	ErrSearchTermRequired = errors.New("search term is required")
	ErrCatalogUnavailable = errors.New("book catalog unavailable")
)
