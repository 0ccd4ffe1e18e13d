package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/utafrali/brandhub/internal/session"
	"github.com/utafrali/brandhub/internal/view"
	"github.com/utafrali/brandhub/pkg/logger"
)

// RequireSession resolves the session cookie to an access token and stores
// both in the request context. Requests without a live session are redirected
// to the login page.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(h.cookie.Name)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		tok, err := h.sessions.Get(r.Context(), cookie.Value)
		if errors.Is(err, session.ErrNotFound) {
			h.clearSessionCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if err != nil {
			logger.WithContext(r.Context(), h.logger).Error("session lookup",
				slog.String("error", err.Error()))
			h.views.Render(w, http.StatusServiceUnavailable, "error.html", &view.Data{
				Title: "Error",
				Error: "Sessions are temporarily unavailable. Please try again.",
			})
			return
		}

		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), cookie.Value, tok)))
	})
}

// hasSession reports whether the request carries a live session. Used by the
// auth pages to skip straight to the brand list.
func (h *Handler) hasSession(r *http.Request) bool {
	cookie, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return false
	}
	_, err = h.sessions.Get(r.Context(), cookie.Value)
	return err == nil
}
