package http

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/brandhub/pkg/health"
	"github.com/utafrali/brandhub/pkg/middleware"
)

// RouterConfig carries the router-level settings.
type RouterConfig struct {
	ServiceName         string
	LoginRateRPS        int
	LoginRateBurst      int
	MetricsAllowedCIDRs []string
}

// NewRouter assembles the chi router: operational endpoints first, then the
// public auth pages, then the session-protected brand pages.
func NewRouter(h *Handler, healthHandler *health.Handler, cfg RouterConfig, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.With(cidrAllowlist(cfg.MetricsAllowedCIDRs, logger)).
		Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/brands", http.StatusSeeOther)
	})

	r.Get("/login", h.LoginPage)
	r.With(middleware.RateLimit(cfg.LoginRateRPS, cfg.LoginRateBurst, logger)).
		Post("/login", h.Login)
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/brands", h.ListBrands)
		r.Get("/brands/new", h.NewBrandPage)
		r.Post("/brands", h.CreateBrand)
		r.Get("/brands/{id}/edit", h.EditBrandPage)
		r.Post("/brands/{id}", h.UpdateBrand)
		r.Get("/brands/{id}/delete", h.DeleteBrandPage)
		r.Post("/brands/{id}/delete", h.DeleteBrand)
	})

	return r
}

// cidrAllowlist restricts an endpoint to callers inside the given networks.
// An empty list blocks nobody, which is only sane in development.
func cidrAllowlist(cidrs []string, logger *slog.Logger) func(http.Handler) http.Handler {
	var nets []*net.IPNet
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			logger.Warn("skipping invalid CIDR", slog.String("cidr", c))
			continue
		}
		nets = append(nets, n)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(nets) > 0 {
				host, _, err := net.SplitHostPort(r.RemoteAddr)
				if err != nil {
					host = r.RemoteAddr
				}
				ip := net.ParseIP(host)
				allowed := false
				for _, n := range nets {
					if ip != nil && n.Contains(ip) {
						allowed = true
						break
					}
				}
				if !allowed {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
