// Package http contains the web handlers. Every mutation follows the
// post/redirect/get pattern: a successful write redirects to GET /brands,
// which re-fetches the full list from the backend. The UI never patches
// local state after a write.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/brandhub/internal/backend"
	"github.com/utafrali/brandhub/internal/session"
	"github.com/utafrali/brandhub/internal/view"
	apperrors "github.com/utafrali/brandhub/pkg/errors"
	"github.com/utafrali/brandhub/pkg/logger"
	"github.com/utafrali/brandhub/pkg/validator"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// Handler serves the HTML frontend.
type Handler struct {
	backend  backend.Client
	sessions session.Store
	views    *view.Renderer
	cookie   CookieConfig
	logger   *slog.Logger
}

// NewHandler creates the web handler.
func NewHandler(b backend.Client, s session.Store, v *view.Renderer, cookie CookieConfig, l *slog.Logger) *Handler {
	return &Handler{backend: b, sessions: s, views: v, cookie: cookie, logger: l}
}

type ctxKey int

const (
	sessionIDKey ctxKey = iota
	tokenKey
)

func withSession(ctx context.Context, sessionID, token string) context.Context {
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return context.WithValue(ctx, tokenKey, token)
}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDKey).(string)
	return id
}

func token(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey).(string)
	return t
}

// setSessionCookie installs the session cookie. HttpOnly and SameSite=Lax are
// unconditional; Secure follows deployment config.
func (h *Handler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// endSession destroys the server-side session, clears the cookie, and sends
// the browser back to the login page. Used on logout and whenever the backend
// rejects the stored token.
func (h *Handler) endSession(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r.Context()); sid != "" {
		if err := h.sessions.Destroy(r.Context(), sid); err != nil {
			logger.WithContext(r.Context(), h.logger).Warn("destroy session",
				slog.String("error", err.Error()))
		}
	}
	h.clearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// issueNonce mints and stores a single-use form token for the session.
func (h *Handler) issueNonce(ctx context.Context) (string, error) {
	nonce := uuid.NewString()
	if err := h.sessions.SaveNonce(ctx, sessionID(ctx), nonce); err != nil {
		return "", err
	}
	return nonce, nil
}

// consumeNonce reports whether the submitted nonce was fresh. A stale nonce
// means the form was already submitted once.
func (h *Handler) consumeNonce(r *http.Request) bool {
	nonce := r.PostFormValue("nonce")
	if nonce == "" {
		return false
	}
	ok, err := h.sessions.ConsumeNonce(r.Context(), sessionID(r.Context()), nonce)
	if err != nil {
		logger.WithContext(r.Context(), h.logger).Warn("consume nonce",
			slog.String("error", err.Error()))
		return false
	}
	return ok
}

// fieldErrors extracts per-field messages from a validation failure.
func fieldErrors(err error) map[string]string {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return valErr.Fields()
	}
	return nil
}

// userMessage converts a backend error into fixed text for the page. The
// backend's own detail strings are never rendered.
func userMessage(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return "The brand service is unavailable. Please try again in a moment."
	case errors.Is(err, apperrors.ErrNotFound):
		return "The requested brand no longer exists."
	default:
		return "Something went wrong. Please try again."
	}
}
