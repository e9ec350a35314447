package provider

import (
	"github.com/gorilla/mux"

	"github.com/hairizuanbinnoorazman/ui-testgen/contextclient"
	"github.com/hairizuanbinnoorazman/ui-testgen/internal/httpserver"
	"github.com/hairizuanbinnoorazman/ui-testgen/logger"
)

// NewStoryRouter returns the routes of the story context provider.
func NewStoryRouter(h *StoryHandler, log logger.Logger) *mux.Router {
	router := newRouter(contextclient.RoleStory, log)
	router.HandleFunc("/context", h.Context).Methods("GET")
	return router
}

// NewUIRouter returns the routes of the UI context provider.
func NewUIRouter(h *RepoHandler, log logger.Logger) *mux.Router {
	router := newRouter(contextclient.RoleUI, log)
	router.HandleFunc("/context", h.UIContext).Methods("GET")
	return router
}

// NewAutomationRouter returns the routes of the automation context provider.
func NewAutomationRouter(h *RepoHandler, log logger.Logger) *mux.Router {
	router := newRouter(contextclient.RoleAutomation, log)
	router.HandleFunc("/context", h.AutomationContext).Methods("GET")
	return router
}

func newRouter(role contextclient.Role, log logger.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(httpserver.RequestLogger(log.WithField("provider", string(role))))
	router.HandleFunc("/health", httpserver.HealthHandler).Methods("GET")
	return router
}
