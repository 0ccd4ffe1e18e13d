package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/brandhub/pkg/validator"
)

func validForm() BrandForm {
	return BrandForm{
		BrandName:   "ACME",
		FullName:    "Daniel Andrés",
		Email:       "owner@example.com",
		PhoneNumber: "+573000000",
		OwnerCedula: "10000000",
	}
}

func TestBrandForm_Valid(t *testing.T) {
	f := validForm()
	assert.NoError(t, validator.Validate(f))
}

func TestBrandForm_RequiredFieldsBlock(t *testing.T) {
	for _, field := range []string{"brand_name", "full_name", "email"} {
		t.Run(field, func(t *testing.T) {
			f := validForm()
			switch field {
			case "brand_name":
				f.BrandName = ""
			case "full_name":
				f.FullName = ""
			case "email":
				f.Email = ""
			}

			err := validator.Validate(f)
			var valErr *validator.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Contains(t, valErr.Fields(), field)
		})
	}
}

func TestBrandForm_StrictPatterns(t *testing.T) {
	f := validForm()
	f.PhoneNumber = "123" // too short
	err := validator.Validate(f)
	var valErr *validator.ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "phone_number")

	f = validForm()
	f.OwnerCedula = "abc123" // non-digit
	err = validator.Validate(f)
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields(), "owner_cedula")
}

func TestBrandForm_Normalize(t *testing.T) {
	f := BrandForm{
		BrandName:   "  ACME  ",
		FullName:    " Daniel ",
		Email:       " owner@example.com ",
		PhoneNumber: " 1234567 ",
		OwnerCedula: " 123456 ",
	}
	f.Normalize()

	assert.Equal(t, "ACME", f.BrandName)
	assert.Equal(t, "Daniel", f.FullName)
	assert.Equal(t, "owner@example.com", f.Email)
	assert.Equal(t, "1234567", f.PhoneNumber)
	assert.Equal(t, "123456", f.OwnerCedula)
}

func TestFormFromBrand_PrefillsAllFields(t *testing.T) {
	logo := "https://cdn.example.com/logo.png"
	b := &Brand{
		ID:          "b-1",
		BrandName:   "ACME",
		FullName:    "Daniel Andrés",
		Email:       "owner@example.com",
		PhoneNumber: "1234567",
		OwnerCedula: "123456",
		LogoURL:     &logo,
	}

	f := FormFromBrand(b)
	for _, field := range BrandFields {
		assert.NotEmpty(t, f.Value(field.Name), "field %s should be pre-filled", field.Name)
	}
	assert.Equal(t, b.BrandName, f.BrandName)
	assert.Equal(t, b.OwnerCedula, f.OwnerCedula)
}

func TestBrandForm_ValueUnknownField(t *testing.T) {
	f := validForm()
	assert.Empty(t, f.Value("nope"))
}

func TestBrandFields_OrderAndCoverage(t *testing.T) {
	names := make([]string, len(BrandFields))
	for i, field := range BrandFields {
		names[i] = field.Name
	}
	assert.Equal(t, []string{"brand_name", "full_name", "email", "phone_number", "owner_cedula"}, names)
}

func TestBrand_HasLogo(t *testing.T) {
	assert.False(t, (&Brand{}).HasLogo())

	empty := ""
	assert.False(t, (&Brand{LogoURL: &empty}).HasLogo())

	u := "https://cdn.example.com/logo.png"
	assert.True(t, (&Brand{LogoURL: &u}).HasLogo())
}

func TestIsAllowedLogoType(t *testing.T) {
	assert.True(t, IsAllowedLogoType("image/png"))
	assert.True(t, IsAllowedLogoType("image/jpeg"))
	assert.False(t, IsAllowedLogoType("application/pdf"))
	assert.False(t, IsAllowedLogoType(""))
}
