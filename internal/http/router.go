package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"padel-score-service/internal/http/handlers"
	"padel-score-service/internal/http/middleware"
	"padel-score-service/internal/live"
	"padel-score-service/internal/metrics"
)

// NewRouter assembles the route table behind CORS, request logging, and panic
// recovery. The admin route and the websocket feed mount only when their
// collaborators are present.
func NewRouter(h *handlers.Handler, admin *handlers.AdminHandler, hub *live.Hub, logger *slog.Logger, recorder *metrics.Recorder, corsOrigins []string) nethttp.Handler {
	router := chi.NewRouter()

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodPost, nethttp.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	router.Use(func(next nethttp.Handler) nethttp.Handler {
		return middleware.LoggingMiddleware(logger, recorder, next)
	})
	router.Use(chimiddleware.Recoverer)

	router.Get("/health", h.Health)
	router.Get("/ready", h.Ready)
	router.Get("/match", h.Match)
	router.Post("/match/score", h.Score)
	router.Post("/match/undo", h.Undo)
	router.Post("/match/new", h.NewMatch)
	router.Get("/matches/recent", h.Recent)
	if admin != nil {
		router.Post("/admin/match/clear", admin.ClearMatch)
	}
	if hub != nil {
		router.Get("/ws", hub.ServeWS)
	}

	router.NotFound(h.NotFound)
	router.MethodNotAllowed(h.MethodNotAllowed)

	return router
}
