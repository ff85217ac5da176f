package model

import "time"

// Plan is a subscription tier controlling feature and resource limits.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanBasic   Plan = "basic"
	PlanPremium Plan = "premium"
)

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanBasic, PlanPremium:
		return true
	}
	return false
}

// Role controls access to administrative endpoints.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account. Email and phone are both optional but at least
// one must be present; each is globally unique when set.
type User struct {
	ID                string     `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             *string    `db:"email" json:"email,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Plan              Plan       `db:"plan" json:"plan"`
	PlanStart         *time.Time `db:"plan_start" json:"plan_start,omitempty"`
	PlanEnd           *time.Time `db:"plan_end" json:"plan_end,omitempty"`
	Role              Role       `db:"role" json:"role"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	VerificationToken *string    `db:"verification_token" json:"-"`
	ResetToken        *string    `db:"reset_token" json:"-"`
	ResetTokenExpires *time.Time `db:"reset_token_expires" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// PlanExpired reports whether the user holds a paid plan whose window has
// already closed at the given instant.
func (u *User) PlanExpired(now time.Time) bool {
	return u.Plan != PlanFree && u.PlanEnd != nil && u.PlanEnd.Before(now)
}
