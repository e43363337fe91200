package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/lcalzada-xor/where/internal/core/domain"
	"github.com/lcalzada-xor/where/internal/core/ports"
	"github.com/lcalzada-xor/where/internal/core/services/filter"
)

// StateHandler serves the reconciled view state and the category selector.
type StateHandler struct {
	Reconciler ports.Reconciler
	Selector   *filter.Selector
}

// NewStateHandler creates a new StateHandler
func NewStateHandler(reconciler ports.Reconciler, selector *filter.Selector) *StateHandler {
	return &StateHandler{
		Reconciler: reconciler,
		Selector:   selector,
	}
}

// HandleGetState returns the current view state with its display strings.
func (h *StateHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Reconciler.State().View())
}

// HandleListFilters returns the selectable categories.
func (h *StateHandler) HandleListFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Selector.Options())
}

type selectFilterRequest struct {
	Filter string `json:"filter"`
}

// HandleSelectFilter switches category. The fetch runs in the background and its
// outcome arrives as a state update; the response only acknowledges the switch.
func (h *StateHandler) HandleSelectFilter(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req selectFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	key, err := filter.ParseKey(req.Filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx := context.WithoutCancel(r.Context())
	go func() {
		if _, err := h.Selector.Select(ctx, string(key)); err != nil && !errors.Is(err, domain.ErrSearchService) {
			slog.Error("Filter selection failed", "filter", key, "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"filter": string(key),
		"title":  key.Title(),
		"status": "accepted",
	})
}
