package domain

import "time"

// UserRole enumerates supported roles.
type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree    UserPlan = "free"
	UserPlanPremium UserPlan = "premium"
)

// User represents an authenticated account within the platform. Accounts are
// created either locally (email + password) or through Google sign-in.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	GoogleSub    string
	Locale       string
	Role         UserRole
	Plan         UserPlan
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user may edit access settings.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
