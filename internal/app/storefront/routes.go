package storefront

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	// регистрирует swagger-спецификацию для /docs
	_ "github.com/magabrotheeeer/storefront/docs"
	"github.com/magabrotheeeer/storefront/internal/config"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/account"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/auth"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/checkout"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/clients"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/credentials"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/health"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/sysconfig"
	"github.com/magabrotheeeer/storefront/internal/http/handlers/watchlist"
	"github.com/magabrotheeeer/storefront/internal/http/middlewarectx"
	"github.com/magabrotheeeer/storefront/internal/lib/jwt"
)

// Handlers набор HTTP-обработчиков витрины.
type Handlers struct {
	Auth        *auth.Handler
	Account     *account.Handler
	Watchlist   *watchlist.Handler
	Checkout    *checkout.Handler
	Credentials *credentials.Handler
	Clients     *clients.Handler
	SysConfig   *sysconfig.Handler
	Health      *health.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg config.HTTPServer, origins []string,
	tokens middlewarectx.TokenParser, h Handlers) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			MaxAge:         300,
		}),
		middlewarectx.RateLimitMiddleware(logger, cfg.RateLimit, cfg.RateBurst),
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/check", h.Auth.Check)
		r.Post("/auth/register-password", h.Auth.RegisterPassword)
		r.Post("/auth/login", h.Auth.Login)
		r.Post("/auth/admin", h.Auth.Admin)
		r.Get("/system/config", h.SysConfig.Get)
		r.Get("/health", h.Health.ServeHTTP)

		// Кабинет клиента
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.RequireRole(jwt.RoleClient, logger))
			r.Get("/me", h.Account.Me)
			r.Put("/me/name", h.Account.Rename)
			r.Get("/me/credentials", h.Account.Credentials)
			r.Get("/me/credentials/{service}", h.Account.Credential)
			r.Put("/me/games/{game}", h.Account.SaveGame)
			r.Get("/me/doramas", h.Watchlist.List)
			r.Post("/me/doramas", h.Watchlist.Add)
			r.Put("/me/doramas/{id}", h.Watchlist.Update)
			r.Delete("/me/doramas/{id}", h.Watchlist.Remove)
			r.Get("/checkout/quote", h.Checkout.ServeHTTP)
		})

		// Панель администратора
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.RequireRole(jwt.RoleAdmin, logger))

			r.Get("/credentials", h.Credentials.List)
			r.Post("/credentials", h.Credentials.Create)
			r.Get("/credentials/counts", h.Credentials.Counts)
			r.Post("/credentials/bulk", h.Credentials.Bulk)
			r.Put("/credentials/{id}", h.Credentials.Update)
			r.Delete("/credentials/{id}", h.Credentials.Delete)
			r.Get("/credentials/{id}/users", h.Credentials.Users)
			r.Get("/assignments/{service}", h.Credentials.Plan)

			r.Get("/clients", h.Clients.List)
			r.Post("/clients", h.Clients.Save)
			r.Post("/clients/demo", h.Clients.Demo)
			r.Post("/clients/reset-passwords", h.Clients.ResetPasswords)
			r.Delete("/clients/{id}", h.Clients.Delete)
			r.Post("/clients/{id}/override", h.Clients.ToggleOverride)

			r.Get("/reports/stats", h.Clients.Stats)
			r.Get("/reports/expiring", h.Clients.Expiring)

			r.Put("/system/config", h.SysConfig.Save)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
