package api

import (
	"net/http"

	"turnero/internal/export"
	"turnero/internal/model"
)

// handleAdminConfig reads or replaces the whole tenant configuration.
// GET/PUT /api/admin/config. Saves are whole-blob, last-write-wins.
func (s *HTTPServer) handleAdminConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		cfg, err := s.store.GetConfig(r.Context())
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to load configuration")
			return
		}
		writeJSON(w, http.StatusOK, cfg)

	case http.MethodPut:
		var cfg model.FullConfig
		if !decodeBody(w, r, &cfg) {
			return
		}
		if err := s.store.SaveConfig(r.Context(), &cfg); err != nil {
			writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to save configuration")
			return
		}
		s.log.Info().Msg("tenant configuration replaced")
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// AdminOrderSlotRequest is the body for POST /api/admin/order-slot.
type AdminOrderSlotRequest struct {
	OrderID   string `json:"orderId"`
	SlotIndex int    `json:"slotIndex"`
	Status    string `json:"status"` // completed or absent
}

// handleAdminOrderSlot marks an order-embedded service slot as completed or
// absent, freeing its occupancy.
// POST /api/admin/order-slot
func (s *HTTPServer) handleAdminOrderSlot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req AdminOrderSlotRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId is required")
		return
	}

	var status model.OrderSlotStatus
	switch req.Status {
	case "completed":
		status = model.OrderSlotCompleted
	case "absent":
		status = model.OrderSlotAbsent
	default:
		writeError(w, http.StatusBadRequest, "status must be completed or absent")
		return
	}

	order, err := s.booking.MarkOrderSlot(r.Context(), req.OrderID, req.SlotIndex, status)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// handleAdminExport streams the xlsx report of all collections.
// GET /api/admin/export
func (s *HTTPServer) handleAdminExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="turnero-export.xlsx"`)
	if err := export.WriteWorkbook(r.Context(), s.store, w); err != nil {
		s.log.Error().Err(err).Msg("export failed")
	}
}
