package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brandhub/pkg/validator"
)

func TestLoginForm_Valid(t *testing.T) {
	f := LoginForm{Email: "user@example.com", Password: "secret"}
	assert.NoError(t, validator.Validate(f))
}

func TestLoginForm_MissingFields(t *testing.T) {
	err := validator.Validate(LoginForm{})
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "email")
	assert.Contains(t, valErr.Fields(), "password")
}

func TestRegisterForm_PasswordMismatch(t *testing.T) {
	f := RegisterForm{
		Email:           "user@example.com",
		Password:        "longenough",
		ConfirmPassword: "different",
	}

	err := validator.Validate(f)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must match the password", valErr.Fields()["confirm_password"])
}

func TestRegisterForm_PasswordTooShort(t *testing.T) {
	f := RegisterForm{
		Email:           "user@example.com",
		Password:        "short",
		ConfirmPassword: "short",
	}

	err := validator.Validate(f)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "password")
}

func TestNormalize_Email(t *testing.T) {
	l := LoginForm{Email: "  User@Example.COM "}
	l.Normalize()
	assert.Equal(t, "user@example.com", l.Email)

	r := RegisterForm{Email: " New@Example.com"}
	r.Normalize()
	assert.Equal(t, "new@example.com", r.Email)
}
