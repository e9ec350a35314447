package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// NewRouter wires the generation service routes. A nil metrics handler
// leaves /metrics unrouted.
func NewRouter(gen *GenerateHandler, metrics http.Handler, allowedOrigins []string, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(httpserver.CORS(allowedOrigins))
	router.Use(httpserver.RequestLogger(log))

	router.HandleFunc("/health", httpserver.HealthHandler).Methods("GET")
	if metrics != nil {
		router.Handle("/metrics", metrics).Methods("GET")
	}

	// /generate is kept for the web frontend.
	router.HandleFunc("/generate", gen.Generate).Methods("POST", "OPTIONS")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/generate", gen.Generate).Methods("POST", "OPTIONS")

	return router
}
