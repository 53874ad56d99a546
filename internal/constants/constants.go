package constants

const (
	ContextKeyUserID   = "userID"
	ContextKeyUserRole = "userRole"
	SessionCookieName  = "sgs_session"
)

const (
	MinPasswordLength = 6
	MinPageSize       = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)

// Seeded on first initialization.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
	DefaultAdminName     = "Administrator"
)
