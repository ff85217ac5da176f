package dto

import "time"

// SignupDTO is used for incoming registration requests. At least one of
// email or phone must be supplied; the service enforces that.
type SignupDTO struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty" validate:"omitempty,min=7,max=15"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginDTO carries either identity plus the password.
type LoginDTO struct {
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required"`
}

// UserResponseDTO is returned in API responses. Password and reset fields
// never leave the server.
type UserResponseDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Email      *string    `json:"email,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	Plan       string     `json:"plan"`
	PlanEnd    *time.Time `json:"plan_end,omitempty"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AuthResponseDTO is returned on successful login.
type AuthResponseDTO struct {
	Token string          `json:"token"`
	User  UserResponseDTO `json:"user"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty"`
}

type ResetPasswordDTO struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type ChangePasswordDTO struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6"`
}

// MessageResponseDTO is a plain acknowledgement body.
type MessageResponseDTO struct {
	Message string `json:"message"`
}
