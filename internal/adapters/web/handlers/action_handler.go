package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/services/actions"
)

// ActionHandler exposes the share and emergency-call actions.
type ActionHandler struct {
	Actions *actions.Service
}

// NewActionHandler creates a new ActionHandler
func NewActionHandler(svc *actions.Service) *ActionHandler {
	return &ActionHandler{Actions: svc}
}

// HandleGetShare returns the share text for the current location.
func (h *ActionHandler) HandleGetShare(w http.ResponseWriter, r *http.Request) {
	text, err := h.Actions.ShareText()
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

// HandleShare hands the share text to connected clients.
func (h *ActionHandler) HandleShare(w http.ResponseWriter, r *http.Request) {
	if err := h.Actions.Share(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "shared"})
}

// HandleEmergency lists the emergency numbers, primary first.
func (h *ActionHandler) HandleEmergency(w http.ResponseWriter, r *http.Request) {
	numbers := h.Actions.Numbers()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"primary": numbers[0],
		"numbers": numbers,
	})
}

// HandleCall asks connected clients to dial {number}.
func (h *ActionHandler) HandleCall(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]

	if err := h.Actions.Call(r.Context(), number); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"number": number,
		"uri":    domain.TelURI(number),
	})
}

func (h *ActionHandler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNoCoordinate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrNotEmergencyNumber):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNoClients):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
