package router

import (
	"log"
	"net/http"

	"github.com/cboy-pos/api/internal/config"
	"github.com/cboy-pos/api/internal/handler"
	mw "github.com/cboy-pos/api/internal/middleware"
	"github.com/cboy-pos/api/internal/pos"
	"github.com/cboy-pos/api/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// New creates a Chi router with all application routes wired up.
// Every route except /health, the login endpoints and /ws requires a
// bearer token; roster management also requires a supervisor.
func New(cfg *config.Config, p handler.POS, menu handler.Menu, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	authHandler := handler.NewAuthHandler(p, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, r)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))

		authHandler.RegisterProtectedRoutes(r)
		handler.NewTableHandler(p).RegisterRoutes(r)
		handler.NewMenuHandler(menu).RegisterRoutes(r)
		handler.NewCartHandler(p, menu).RegisterRoutes(r)
		handler.NewOrderHandler(p).RegisterRoutes(r)
		handler.NewPaymentHandler(p).RegisterRoutes(r)
		handler.NewKitchenHandler(p).RegisterRoutes(r)
		handler.NewNotificationHandler(p).RegisterRoutes(r)
		handler.NewWorkspaceHandler(p).RegisterRoutes(r)
		handler.NewDashboardHandler(p, cfg.Language, cfg.Currency).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireOperation(pos.OpManageStaff))
			handler.NewStaffHandler(p).RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
