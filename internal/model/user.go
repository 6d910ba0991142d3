package model

import "time"

// Role is the closed set of business roles. Admin checks go through
// CanManageUsers rather than string comparison in handlers.
type Role string

const (
	RoleAdmin              Role = "admin"
	RoleAdminFournisseur   Role = "admin_fournisseur"
	RolePharmacieAutorisee Role = "pharmacie_autorisee"
	RolePharmacieStandard  Role = "pharmacie_standard"
	RoleHopital            Role = "hopital"
)

// DefaultRole is assigned when registration omits the role field.
const DefaultRole = RolePharmacieStandard

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleAdminFournisseur, RolePharmacieAutorisee, RolePharmacieStandard, RoleHopital:
		return true
	}
	return false
}

// CanManageUsers gates the admin user-CRUD surface.
func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive:
		return true
	}
	return false
}

type User struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	Role          Role       `json:"role"`
	Status        Status     `json:"status"`
	EmailVerified bool       `json:"emailVerified"`

	FailedLoginAttempts int        `json:"-"`
	LockedUntil         *time.Time `json:"-"`

	PasswordResetToken   string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Locked reports whether the lockout window is still open. The transition
// back to unlocked is lazy: no background job, just this check at request
// time against the stored timestamp.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// LockRemaining returns the minutes left in the lockout window, rounded up so
// the client never sees "0 minutes" while still locked.
func (u *User) LockRemaining(now time.Time) int {
	if !u.Locked(now) {
		return 0
	}
	remaining := u.LockedUntil.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// PublicUser is the projection returned by the API. The password hash never
// leaves the service.
type PublicUser struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	Status        Status `json:"status"`
	EmailVerified bool   `json:"emailVerified"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		Status:        u.Status,
		EmailVerified: u.EmailVerified,
	}
}
