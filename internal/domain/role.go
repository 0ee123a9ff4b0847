package domain

// Role names carried on users and in session token claims.
const (
	RoleReader = "Reader"
	RoleAdmin  = "Admin"
)

// DefaultRoles are granted on registration.
var DefaultRoles = []string{RoleReader}
