package model

import "time"

// Role distinguishes marketplace account kinds.
type Role string

const (
	RoleMerchant   Role = "merchant"
	RoleInfluencer Role = "influencer"
	RoleAdmin      Role = "admin"
	// RoleSystem marks internal callers (reconciler, provider webhooks); it is
	// never stored on an account.
	RoleSystem Role = "system"
)

// ValidRole reports whether r can be assigned to an account.
func ValidRole(r Role) bool {
	return r == RoleMerchant || r == RoleInfluencer || r == RoleAdmin
}

// User describes a marketplace account.
type User struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
