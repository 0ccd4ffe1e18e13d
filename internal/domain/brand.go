package domain

import "strings"

// Brand represents a trademark record as returned by the backend API.
// JSON tags match the backend wire format; the list order is whatever
// the backend returns and is never re-sorted here.
type Brand struct {
	ID          string  `json:"id"`
	BrandName   string  `json:"brand_name"`
	FullName    string  `json:"full_name"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phone_number"`
	OwnerCedula string  `json:"owner_cedula"`
	LogoURL     *string `json:"logo_url"`
}

// HasLogo reports whether the brand has a stored logo image.
func (b *Brand) HasLogo() bool {
	return b.LogoURL != nil && *b.LogoURL != ""
}

// BrandForm is the transient draft of a brand's editable fields. It is built
// from submitted form values, validated, and discarded after the request; it
// never mutates a Brand directly — only a successful backend round trip
// followed by a full list refresh does.
type BrandForm struct {
	BrandName   string `form:"brand_name" validate:"required,min=2"`
	FullName    string `form:"full_name" validate:"required,min=2"`
	Email       string `form:"email" validate:"required,email"`
	PhoneNumber string `form:"phone_number" validate:"required,phone"`
	OwnerCedula string `form:"owner_cedula" validate:"required,cedula"`
}

// Normalize trims surrounding whitespace from every field, mirroring what the
// backend does before persisting.
func (f *BrandForm) Normalize() {
	f.BrandName = strings.TrimSpace(f.BrandName)
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.PhoneNumber = strings.TrimSpace(f.PhoneNumber)
	f.OwnerCedula = strings.TrimSpace(f.OwnerCedula)
}

// FormFromBrand pre-fills a draft from an existing brand for the edit flow.
func FormFromBrand(b *Brand) BrandForm {
	return BrandForm{
		BrandName:   b.BrandName,
		FullName:    b.FullName,
		Email:       b.Email,
		PhoneNumber: b.PhoneNumber,
		OwnerCedula: b.OwnerCedula,
	}
}

// Value returns the draft value for the named form field. Templates use this
// to render create and edit inputs from the shared field descriptors.
func (f BrandForm) Value(name string) string {
	switch name {
	case "brand_name":
		return f.BrandName
	case "full_name":
		return f.FullName
	case "email":
		return f.Email
	case "phone_number":
		return f.PhoneNumber
	case "owner_cedula":
		return f.OwnerCedula
	default:
		return ""
	}
}

// FormField describes one brand form input. The ordered BrandFields slice is
// the single source of truth consumed by both the create and edit templates,
// so the two flows can never drift apart.
type FormField struct {
	Name        string
	Label       string
	Type        string
	Placeholder string
}

// BrandFields lists the brand form inputs in display order.
var BrandFields = []FormField{
	{Name: "brand_name", Label: "Brand name", Type: "text", Placeholder: "e.g. ACME"},
	{Name: "full_name", Label: "Owner full name", Type: "text", Placeholder: "e.g. Daniel Andrés"},
	{Name: "email", Label: "Email address", Type: "email", Placeholder: "owner@example.com"},
	{Name: "phone_number", Label: "Phone number", Type: "tel", Placeholder: "e.g. +5730000000"},
	{Name: "owner_cedula", Label: "Owner ID number", Type: "text", Placeholder: "e.g. 10000000"},
}

// Logo upload contract. The backend enforces its own limits; these bounds
// reject oversized or non-image files before any bytes leave this service.
const MaxLogoSize int64 = 5 * 1024 * 1024

// AllowedLogoTypes is the set of accepted logo content types.
var AllowedLogoTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

// IsAllowedLogoType checks whether the given content type is accepted for
// logo uploads.
func IsAllowedLogoType(contentType string) bool {
	return AllowedLogoTypes[contentType]
}
