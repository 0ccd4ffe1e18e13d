package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/brandhub/internal/backend"
	"github.com/utafrali/brandhub/internal/domain"
	"github.com/utafrali/brandhub/internal/view"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
	"github.com/utafrali/brandhub/pkg/logger"
	"github.com/utafrali/brandhub/pkg/validator"
)

// multipartMemory bounds how much of a form body is buffered in memory; the
// rest spills to temp files.
const multipartMemory = 4 << 20

var flashMessages = map[string]string{
	"created": "Brand created.",
	"updated": "Brand updated.",
	"deleted": "Brand deleted.",
}

// ListBrands renders the brand list. The list is always fetched fresh from
// the backend; one of three states is shown: the table, the empty state, or
// the backend-failure banner.
func (h *Handler) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.backend.ListBrands(r.Context(), token(r.Context()))
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.endSession(w, r)
			return
		}
		logger.WithContext(r.Context(), h.logger).Error("list brands",
			slog.String("error", err.Error()))
		h.views.Render(w, apperrors.HTTPStatus(err), "brands.html", &view.Data{
			Title:    "Brands",
			LoggedIn: true,
			Error:    userMessage(err),
		})
		return
	}

	h.views.Render(w, http.StatusOK, "brands.html", &view.Data{
		Title:    "Brands",
		LoggedIn: true,
		Brands:   brands,
		Flash:    flashMessages[r.URL.Query().Get("flash")],
	})
}

// NewBrandPage renders the empty create form.
func (h *Handler) NewBrandPage(w http.ResponseWriter, r *http.Request) {
	nonce, err := h.issueNonce(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "brand_form.html", &view.Data{
		Title:    "Register brand",
		LoggedIn: true,
		Mode:     "create",
		Action:   "/brands",
		Fields:   domain.BrandFields,
		Nonce:    nonce,
	})
}

// CreateBrand validates the submitted form and creates the brand through the
// backend. Success redirects to the list; any failure re-renders the form
// with the draft intact.
func (h *Handler) CreateBrand(w http.ResponseWriter, r *http.Request) {
	h.submitBrand(w, r, submitCreate, "")
}

// EditBrandPage fetches the brand and renders the pre-filled edit form.
func (h *Handler) EditBrandPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	brand, err := h.backend.GetBrand(r.Context(), token(r.Context()), id)
	if err != nil {
		h.handleBrandLookupError(w, r, err)
		return
	}

	nonce, err := h.issueNonce(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	form := domain.FormFromBrand(brand)
	h.views.Render(w, http.StatusOK, "brand_form.html", &view.Data{
		Title:    "Edit brand",
		LoggedIn: true,
		Mode:     "edit",
		Action:   "/brands/" + id,
		Fields:   domain.BrandFields,
		Form:     form,
		Brand:    brand,
		Nonce:    nonce,
	})
}

// UpdateBrand validates the submitted form and patches the brand. When no new
// logo is chosen, no file part is sent and the stored image stays.
func (h *Handler) UpdateBrand(w http.ResponseWriter, r *http.Request) {
	h.submitBrand(w, r, submitUpdate, chi.URLParam(r, "id"))
}

// DeleteBrandPage renders the confirmation page.
func (h *Handler) DeleteBrandPage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	brand, err := h.backend.GetBrand(r.Context(), token(r.Context()), id)
	if err != nil {
		h.handleBrandLookupError(w, r, err)
		return
	}

	nonce, err := h.issueNonce(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.views.Render(w, http.StatusOK, "brand_delete.html", &view.Data{
		Title:    "Delete brand",
		LoggedIn: true,
		Brand:    brand,
		Action:   "/brands/" + id + "/delete",
		Nonce:    nonce,
	})
}

// DeleteBrand removes the brand. A brand that is already gone counts as
// success so a stale confirmation page cannot strand the user on an error.
func (h *Handler) DeleteBrand(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !h.consumeNonce(r) {
		http.Redirect(w, r, "/brands", http.StatusSeeOther)
		return
	}

	id := chi.URLParam(r, "id")
	err := h.backend.DeleteBrand(r.Context(), token(r.Context()), id)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.endSession(w, r)
			return
		}
		h.rerenderDeleteConfirm(w, r, id, err)
		return
	}

	http.Redirect(w, r, "/brands?flash=deleted", http.StatusSeeOther)
}

// rerenderDeleteConfirm shows the confirmation page again with an inline
// error and a fresh nonce so the delete can be retried.
func (h *Handler) rerenderDeleteConfirm(w http.ResponseWriter, r *http.Request, id string, cause error) {
	logger.WithContext(r.Context(), h.logger).Error("delete brand",
		slog.String("error", cause.Error()))

	brand, err := h.backend.GetBrand(r.Context(), token(r.Context()), id)
	if err != nil {
		h.handleBrandLookupError(w, r, err)
		return
	}

	nonce, err := h.issueNonce(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.views.Render(w, apperrors.HTTPStatus(cause), "brand_delete.html", &view.Data{
		Title:    "Delete brand",
		LoggedIn: true,
		Brand:    brand,
		Action:   "/brands/" + id + "/delete",
		Nonce:    nonce,
		Error:    userMessage(cause),
	})
}

type submitMode int

const (
	submitCreate submitMode = iota
	submitUpdate
)

// submitBrand is the shared create/update flow: parse multipart, burn the
// nonce, validate, call the backend, redirect on success.
func (h *Handler) submitBrand(w http.ResponseWriter, r *http.Request, mode submitMode, id string) {
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxLogoSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		h.views.Render(w, http.StatusRequestEntityTooLarge, "error.html", &view.Data{
			Title:    "Error",
			LoggedIn: true,
			Error:    "The submitted form is too large. Logos must be 5 MB or smaller.",
		})
		return
	}

	// A consumed nonce means this form was already submitted; the first
	// submission's result is on the list page.
	if !h.consumeNonce(r) {
		http.Redirect(w, r, "/brands", http.StatusSeeOther)
		return
	}

	form := domain.BrandForm{
		BrandName:   r.PostFormValue("brand_name"),
		FullName:    r.PostFormValue("full_name"),
		Email:       r.PostFormValue("email"),
		PhoneNumber: r.PostFormValue("phone_number"),
		OwnerCedula: r.PostFormValue("owner_cedula"),
	}
	form.Normalize()

	errs := map[string]string{}
	if err := validator.Validate(form); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			errs = valErr.Fields()
		} else {
			h.renderError(w, r, err)
			return
		}
	}

	logo, logoErr := extractLogo(r)
	if logoErr != "" {
		errs["logo"] = logoErr
	}
	if logo != nil {
		defer func() { _ = logo.close() }()
	}

	// The stored logo URL rides along as a hidden field so a re-rendered
	// edit form keeps its preview.
	var current *domain.Brand
	if mode == submitUpdate {
		if u := r.PostFormValue("current_logo_url"); u != "" {
			current = &domain.Brand{ID: id, LogoURL: &u}
		}
	}

	if len(errs) > 0 {
		h.rerenderBrandForm(w, r, mode, id, current, form, errs, "")
		return
	}

	var upload *backend.Upload
	if logo != nil {
		upload = &logo.Upload
	}

	tok := token(r.Context())
	var err error
	switch mode {
	case submitCreate:
		_, err = h.backend.CreateBrand(r.Context(), tok, form, upload)
	case submitUpdate:
		_, err = h.backend.UpdateBrand(r.Context(), tok, id, form, upload)
	}
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) {
			h.endSession(w, r)
			return
		}
		logger.WithContext(r.Context(), h.logger).Error("submit brand",
			slog.String("error", err.Error()))
		h.rerenderBrandForm(w, r, mode, id, current, form, nil, userMessage(err))
		return
	}

	flash := "created"
	if mode == submitUpdate {
		flash = "updated"
	}
	http.Redirect(w, r, "/brands?flash="+flash, http.StatusSeeOther)
}

// rerenderBrandForm shows the form again with the user's draft and a fresh
// nonce so the corrected submission can go through.
func (h *Handler) rerenderBrandForm(w http.ResponseWriter, r *http.Request, mode submitMode, id string, brand *domain.Brand, form domain.BrandForm, errs map[string]string, pageErr string) {
	nonce, err := h.issueNonce(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := &view.Data{
		LoggedIn:    true,
		Fields:      domain.BrandFields,
		Form:        form,
		Brand:       brand,
		FieldErrors: errs,
		Error:       pageErr,
		Nonce:       nonce,
	}
	status := http.StatusUnprocessableEntity
	if pageErr != "" {
		status = http.StatusBadGateway
	}

	if mode == submitUpdate {
		data.Title = "Edit brand"
		data.Mode = "edit"
		data.Action = "/brands/" + id
	} else {
		data.Title = "Register brand"
		data.Mode = "create"
		data.Action = "/brands"
	}
	h.views.Render(w, status, "brand_form.html", data)
}

// handleBrandLookupError deals with a failed GetBrand before a form page.
// Missing brands bounce back to the list; an invalid token ends the session.
func (h *Handler) handleBrandLookupError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		h.endSession(w, r)
	case errors.Is(err, apperrors.ErrNotFound):
		http.Redirect(w, r, "/brands", http.StatusSeeOther)
	default:
		h.renderError(w, r, err)
	}
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	logger.WithContext(r.Context(), h.logger).Error("request failed",
		slog.String("error", err.Error()))
	h.views.Render(w, apperrors.HTTPStatus(err), "error.html", &view.Data{
		Title:    "Error",
		LoggedIn: true,
		Error:    userMessage(err),
	})
}
