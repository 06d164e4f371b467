// Package router assembles the HTTP API.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swiftpay/swiftpay/internal/auth"
	"github.com/swiftpay/swiftpay/internal/middleware"
	"github.com/swiftpay/swiftpay/internal/service"
)

// Services bundles the handler layer for route registration.
type Services struct {
	Auth          *service.AuthService
	Users         *service.UserService
	Transfers     *service.TransferService
	Notifications *service.NotificationService
}

// New builds the router: public auth routes, bearer-JWT protected API routes,
// health and metrics.
func New(svcs Services, tokens *auth.JWTManager) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.Metrics)
	r.Use(middleware.Logging)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", svcs.Auth.Register)
			r.Post("/login", svcs.Auth.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokens))

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", svcs.Users.Profile)
				r.Get("/search", svcs.Users.Search)
				r.Get("/balance", svcs.Users.Balance)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Post("/create", svcs.Transfers.Create)
				r.Get("/history", svcs.Transfers.History)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", svcs.Notifications.List)
				r.Post("/{id}/read", svcs.Notifications.MarkRead)
				r.Delete("/", svcs.Notifications.Clear)
			})
		})
	})

	return r
}
