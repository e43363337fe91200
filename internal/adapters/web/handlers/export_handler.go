package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/lcalzada-xor/where/internal/core/services/export"
)

// ExportHandler handles data export
type ExportHandler struct {
	Service *export.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(svc *export.Service) *ExportHandler {
	return &ExportHandler{Service: svc}
}

// HandlePDF downloads the location card.
func (h *ExportHandler) HandlePDF(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "pdf", "application/pdf", h.Service.PDF)
}

// HandleXLSX downloads the results sheet.
func (h *ExportHandler) HandleXLSX(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", h.Service.XLSX)
}

func (h *ExportHandler) serve(w http.ResponseWriter, r *http.Request, ext, contentType string, render func(context.Context) ([]byte, error)) {
	data, err := render(r.Context())
	if err != nil {
		slog.Error("Export failed", "format", ext, "error", err)
		http.Error(w, "Failed to generate export", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("where_%s.%s", time.Now().Format("20060102_150405"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
