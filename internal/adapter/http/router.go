package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/arefin/diamondledger/internal/adapter/http/handler"
	"github.com/arefin/diamondledger/internal/adapter/http/middleware"
	"github.com/arefin/diamondledger/internal/infrastructure/auth"
	"github.com/arefin/diamondledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AuthHandler        *handler.AuthHandler
	UserHandler        *handler.UserHandler
	GroupHandler       *handler.GroupHandler
	DepositHandler     *handler.DepositHandler
	SettingsHandler    *handler.SettingsHandler
	StatsHandler       *handler.StatsHandler
	MaintenanceHandler *handler.MaintenanceHandler
	MessageHandler     *handler.MessageHandler
	HealthHandler      *handler.HealthHandler

	JWTManager       *auth.JWTManager
	IdempotencyStore usecase.IdempotencyStore
	RateLimitRPS     float64
	RateLimitBurst   int
	Logger           zerolog.Logger
}

// NewRouter creates the HTTP router: health and metrics endpoints, the
// inbound message bridge, and the JWT-protected admin panel API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		r.Use(limiter.Limit)

		if cfg.IdempotencyStore != nil {
			r.Use(middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore).Wrap)
		}

		// The messaging bridge authenticates at the transport level, not
		// with panel tokens.
		r.Post("/messages", cfg.MessageHandler.Post)

		r.Post("/auth/login", cfg.AuthHandler.Login)

		// Panel routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))

			r.Post("/auth/pin", cfg.AuthHandler.ChangePIN)

			r.Get("/stats", cfg.StatsHandler.Overview)
			r.Get("/analytics", cfg.StatsHandler.Analytics)

			r.Route("/groups", func(r chi.Router) {
				r.Get("/", cfg.GroupHandler.List)
				r.Post("/bulk-rate", cfg.GroupHandler.BulkSetRate)
				r.Get("/{id}", cfg.GroupHandler.Get)
				r.Post("/{id}/rate", cfg.GroupHandler.SetRate)
				r.Post("/{id}/due-limit", cfg.GroupHandler.SetDueLimit)
				r.Post("/{id}/clear", cfg.GroupHandler.Clear)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.List)
				r.Get("/{id}", cfg.UserHandler.Get)
				r.Post("/{id}/balance", cfg.UserHandler.SetBalance)
				r.Post("/{id}/credit", cfg.UserHandler.Credit)
				r.Post("/{id}/due-override", cfg.UserHandler.SetDueOverride)
				r.Post("/{id}/toggle-block", cfg.UserHandler.SetBlocked)
			})

			r.Get("/transactions", cfg.UserHandler.Transactions)
			r.Route("/auto-deductions", func(r chi.Router) {
				r.Get("/", cfg.UserHandler.AutoDeductions)
				r.Get("/last", cfg.UserHandler.LastAutoDeduction)
				r.Post("/", cfg.UserHandler.RecordDeduction)
				r.Delete("/", cfg.UserHandler.ClearDeductions)
			})

			r.Route("/deposits", func(r chi.Router) {
				r.Get("/pending", cfg.DepositHandler.Pending)
				r.Get("/stats", cfg.DepositHandler.Stats)
				r.Post("/{id}/approve", cfg.DepositHandler.Approve)
				r.Post("/{id}/reject", cfg.DepositHandler.Reject)
			})

			r.Get("/orders", cfg.GroupHandler.Orders)

			r.Route("/settings/stock", func(r chi.Router) {
				r.Get("/", cfg.SettingsHandler.Get)
				r.Post("/", cfg.SettingsHandler.SetStock)
				r.Post("/toggle", cfg.SettingsHandler.Toggle)
			})

			r.Post("/data/clean-transactions", cfg.MaintenanceHandler.CleanTransactions)
			r.Post("/data/clear", cfg.MaintenanceHandler.ClearData)
		})
	})

	return r
}
