package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/brandhub/internal/domain"
	"github.com/utafrali/brandhub/internal/view"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
	"github.com/utafrali/brandhub/pkg/logger"
	"github.com/utafrali/brandhub/pkg/validator"
)

// LoginPage renders the login form. A live session skips straight to the
// brand list; ?registered=1 shows the post-signup banner.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/brands", http.StatusSeeOther)
		return
	}

	h.views.Render(w, http.StatusOK, "login.html", &view.Data{
		Title:      "Log in",
		Registered: r.URL.Query().Get("registered") == "1",
	})
}

// Login exchanges credentials for a backend token and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := domain.LoginForm{
		Email:    r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
	}
	form.Normalize()

	if err := validator.Validate(form); err != nil {
		h.views.Render(w, http.StatusUnprocessableEntity, "login.html", &view.Data{
			Title:       "Log in",
			Email:       form.Email,
			FieldErrors: fieldErrors(err),
		})
		return
	}

	tok, err := h.backend.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		// One fixed message for rejected credentials; backend detail is
		// never rendered.
		msg := "Invalid credentials."
		status := http.StatusUnauthorized
		if !errors.Is(err, apperrors.ErrUnauthorized) {
			msg = userMessage(err)
			status = http.StatusServiceUnavailable
		}
		h.views.Render(w, status, "login.html", &view.Data{
			Title: "Log in",
			Email: form.Email,
			Error: msg,
		})
		return
	}

	sid, err := h.sessions.Create(r.Context(), tok)
	if err != nil {
		logger.WithContext(r.Context(), h.logger).Error("create session",
			slog.String("error", err.Error()))
		h.views.Render(w, http.StatusServiceUnavailable, "login.html", &view.Data{
			Title: "Log in",
			Email: form.Email,
			Error: "Could not start a session. Please try again.",
		})
		return
	}

	h.setSessionCookie(w, sid)
	http.Redirect(w, r, "/brands", http.StatusSeeOther)
}

// RegisterPage renders the signup form.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if h.hasSession(r) {
		http.Redirect(w, r, "/brands", http.StatusSeeOther)
		return
	}

	h.views.Render(w, http.StatusOK, "register.html", &view.Data{Title: "Create account"})
}

// Register creates an account and sends the user to the login page. The new
// account is not logged in automatically; the backend issues tokens only
// through the login endpoint.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	form := domain.RegisterForm{
		Email:           r.PostFormValue("email"),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	form.Normalize()

	if err := validator.Validate(form); err != nil {
		h.views.Render(w, http.StatusUnprocessableEntity, "register.html", &view.Data{
			Title:       "Create account",
			Email:       form.Email,
			FieldErrors: fieldErrors(err),
		})
		return
	}

	if err := h.backend.Register(r.Context(), form.Email, form.Password); err != nil {
		msg := "Could not create account."
		if errors.Is(err, apperrors.ErrServiceUnavail) {
			msg = userMessage(err)
		}
		h.views.Render(w, apperrors.HTTPStatus(err), "register.html", &view.Data{
			Title: "Create account",
			Email: form.Email,
			Error: msg,
		})
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookie.Name); err == nil {
		r = r.WithContext(withSession(r.Context(), cookie.Value, ""))
	}
	h.endSession(w, r)
}
