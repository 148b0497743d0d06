package auth

import "time"

// User is the account record used for authentication. Role is the legacy
// single-role column kept from before the multi-role system; it only
// feeds the resolved role set as one more signal.
type User struct {
	ID           string
	TenantID     string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}
