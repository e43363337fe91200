package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/where/internal/adapters/web/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(s *Server) http.Handler {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := r.PathPrefix("/api").Subrouter()
	api.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	api.HandleFunc("/state", s.StateHandler.HandleGetState).Methods(http.MethodGet)
	api.HandleFunc("/filters", s.StateHandler.HandleListFilters).Methods(http.MethodGet)
	api.HandleFunc("/filter", s.StateHandler.HandleSelectFilter).Methods(http.MethodPost)

	api.HandleFunc("/share", s.ActionHandler.HandleGetShare).Methods(http.MethodGet)
	api.HandleFunc("/share", s.ActionHandler.HandleShare).Methods(http.MethodPost)
	api.HandleFunc("/emergency", s.ActionHandler.HandleEmergency).Methods(http.MethodGet)
	api.Handle("/call/{number}", middleware.RateLimitMiddleware(s.callLimiter)(http.HandlerFunc(s.ActionHandler.HandleCall))).
		Methods(http.MethodPost)

	api.HandleFunc("/export/pdf", s.ExportHandler.HandlePDF).Methods(http.MethodGet)
	api.HandleFunc("/export/xlsx", s.ExportHandler.HandleXLSX).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.WSManager.HandleWebSocket)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
