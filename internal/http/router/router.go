package router

import (
	"encoding/json"
	"net/http"

	"github.com/DR-Danke/Kompass-sub005/internal/auth"
	"github.com/DR-Danke/Kompass-sub005/internal/config"
	"github.com/DR-Danke/Kompass-sub005/internal/database"
	"github.com/DR-Danke/Kompass-sub005/internal/http/handler"
	"github.com/DR-Danke/Kompass-sub005/internal/http/middleware"
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/DR-Danke/Kompass-sub005/docs" // Import generated swagger docs
)

type Router struct {
	cfg              *config.Config
	logger           *zap.Logger
	db               *gorm.DB
	authMiddleware   *auth.Middleware
	rateLimiter      *middleware.RateLimiter
	quotationHandler *handler.QuotationHandler
	shareHandler     *handler.ShareHandler
	clientHandler    *handler.ClientHandler
	productHandler   *handler.ProductHandler
	supplierHandler  *handler.SupplierHandler
	settingsHandler  *handler.SettingsHandler
	activityHandler  *handler.ActivityHandler
	authHandler      *handler.AuthHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	quotationHandler *handler.QuotationHandler,
	shareHandler *handler.ShareHandler,
	clientHandler *handler.ClientHandler,
	productHandler *handler.ProductHandler,
	supplierHandler *handler.SupplierHandler,
	settingsHandler *handler.SettingsHandler,
	activityHandler *handler.ActivityHandler,
	authHandler *handler.AuthHandler,
) *Router {
	return &Router{
		cfg:              cfg,
		logger:           logger,
		db:               db,
		authMiddleware:   authMiddleware,
		rateLimiter:      rateLimiter,
		quotationHandler: quotationHandler,
		shareHandler:     shareHandler,
		clientHandler:    clientHandler,
		productHandler:   productHandler,
		supplierHandler:  supplierHandler,
		settingsHandler:  settingsHandler,
		activityHandler:  activityHandler,
		authHandler:      authHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Public share link resolution. No auth: the token in the path is
	// the entire credential. Tighter per-IP rate limit than the rest
	// of the API.
	r.Group(func(r chi.Router) {
		r.Use(rt.rateLimiter.LimitShare)
		r.Get("/public/quotations/{token}", rt.shareHandler.Resolve)
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.With(rt.authMiddleware.RequireRoles("admin")).
				Post("/auth/tokens", rt.authHandler.IssueToken)
			r.With(rt.authMiddleware.RequireRoles("admin")).
				Get("/users", rt.authHandler.ListUsers)

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Get("/", rt.quotationHandler.List)
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/search", rt.quotationHandler.Search)
				r.Post("/calculate", rt.quotationHandler.Calculate)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}", rt.quotationHandler.Update)
				r.Delete("/{id}", rt.quotationHandler.Delete)

				// Pricing preview without persisting
				r.Post("/{id}/calculate", rt.quotationHandler.CalculateQuotation)

				// Lifecycle endpoints
				r.Put("/{id}/status", rt.quotationHandler.UpdateStatus)
				r.Post("/{id}/send", rt.quotationHandler.Send)
				r.Post("/{id}/accept", rt.quotationHandler.Accept)
				r.Post("/{id}/reject", rt.quotationHandler.Reject)
				r.Get("/{id}/history", rt.quotationHandler.History)
				r.Post("/{id}/duplicate", rt.quotationHandler.Duplicate)

				// Line items
				r.Post("/{id}/items", rt.quotationHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.quotationHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.quotationHandler.RemoveItem)

				// National cost lookup and export
				r.Post("/{id}/refresh-national-costs", rt.quotationHandler.RefreshNationalCosts)
				r.Get("/{id}/export", rt.quotationHandler.Export)
				r.Post("/{id}/export", rt.quotationHandler.Archive)

				// Share links
				r.Post("/{id}/share", rt.shareHandler.Issue)
				r.Get("/{id}/share", rt.shareHandler.List)
				r.Delete("/{id}/share/{tokenId}", rt.shareHandler.Revoke)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Products
			r.Route("/products", func(r chi.Router) {
				r.Get("/", rt.productHandler.List)
				r.Post("/", rt.productHandler.Create)
				r.Get("/{id}", rt.productHandler.GetByID)
				r.Put("/{id}", rt.productHandler.Update)
				r.Delete("/{id}", rt.productHandler.Delete)
			})

			// Suppliers
			r.Route("/suppliers", func(r chi.Router) {
				r.Get("/", rt.supplierHandler.List)
				r.Post("/", rt.supplierHandler.Create)
				r.Get("/{id}", rt.supplierHandler.GetByID)
				r.Put("/{id}", rt.supplierHandler.Update)
				r.Delete("/{id}", rt.supplierHandler.Delete)
			})

			// Settings (admin only for writes)
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", rt.settingsHandler.List)
				r.Get("/{key}", rt.settingsHandler.Get)
				r.With(rt.authMiddleware.RequireRoles("admin")).
					Put("/{key}", rt.settingsHandler.Set)
				r.With(rt.authMiddleware.RequireRoles("admin")).
					Delete("/{key}", rt.settingsHandler.Delete)
			})

			// Activity trail
			r.Route("/activities", func(r chi.Router) {
				r.Get("/", rt.activityHandler.GetRecent)
				r.Get("/{targetType}/{targetId}", rt.activityHandler.GetByTarget)
			})
		})
	})

	return r
}
