package domain

import "strings"

// LoginForm carries the credentials submitted on the login page.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// RegisterForm carries the fields submitted on the registration page.
// ConfirmPassword must equal Password; the check runs locally before any
// network call is made.
type RegisterForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
}

// Normalize lower-cases and trims the email, matching backend behavior so a
// user logging in with " User@Example.com " hits the same account.
func (f *LoginForm) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}

// Normalize lower-cases and trims the email.
func (f *RegisterForm) Normalize() {
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
}
