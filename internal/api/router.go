package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordbattle/internal/api/handler"
	"github.com/mcoot/wordbattle/internal/api/middleware"
	"github.com/mcoot/wordbattle/internal/services/room"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	RoomController *room.Controller
	Dictionary     handler.DictionaryStatus
	// Gateway serves websocket upgrades on /ws; optional
	Gateway http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.RoomController)
	healthHandler := handler.NewHealthHandler(cfg.Dictionary)

	// Create middleware
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", healthHandler.Get).Methods(http.MethodGet)

	// Room routes; stats must be registered ahead of {code}
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/stats", roomHandler.Stats).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}", roomHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// Websocket sessions log once, when the connection ends
	if cfg.Gateway != nil {
		r.Handle("/ws", loggingMiddleware(cfg.Gateway)).Methods(http.MethodGet)
	}

	return r
}
