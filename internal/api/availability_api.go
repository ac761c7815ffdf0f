package api

import (
	"net/http"

	"turnero/internal/availability"
	"turnero/internal/metrics"
	"turnero/internal/schedule"
)

// ServiceEcho repeats the service the slots were computed for.
type ServiceEcho struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Price           int    `json:"price"`
	DurationMinutes int    `json:"durationMinutes"`
}

// AvailabilityResponse is the body for GET /api/availability.
// A day with no bookable starts still answers 200; Code and Message
// explain an empty slot list.
type AvailabilityResponse struct {
	Date    string              `json:"date"`
	Slots   []availability.Slot `json:"slots"`
	Service *ServiceEcho        `json:"service,omitempty"`
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
}

// LegacySlotsResponse is the body for GET /api/booking/slots.
type LegacySlotsResponse struct {
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
	Code    string   `json:"code,omitempty"`
	Message string   `json:"message,omitempty"`
}

func statusCode(st availability.Status) (code, message string) {
	switch st {
	case availability.StatusClosed:
		return "CLOSED_DAY", "no attention on this day"
	case availability.StatusBlocked:
		return "CLOSED_DAY", "this date is not available"
	case availability.StatusPastDate:
		return "PAST_DATE", "date is in the past"
	}
	return "", ""
}

func metricsStatus(st availability.Status) string {
	switch st {
	case availability.StatusClosed:
		return "closed"
	case availability.StatusBlocked:
		return "blocked"
	case availability.StatusPastDate:
		return "past"
	}
	return "ok"
}

// handleAvailability returns capacity-aware bookable starts for a date.
// GET /api/availability?date=YYYY-MM-DD&serviceId=ID
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := schedule.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	cfg, err := s.store.GetConfig(r.Context())
	if err != nil {
		metrics.IncAvailabilityRequest("error")
		writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to load configuration")
		return
	}

	duration := 60
	var echo *ServiceEcho
	if id := r.URL.Query().Get("serviceId"); id != "" {
		svc, ok := cfg.ServiceByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		duration = svc.ServiceDuration()
		echo = &ServiceEcho{
			ID:              svc.ID,
			Name:            svc.Name,
			Price:           svc.Price,
			DurationMinutes: svc.ServiceDuration(),
		}
	}

	result, err := s.engine.Slots(r.Context(), date, duration, cfg.Booking.Capacity())
	if err != nil {
		metrics.IncAvailabilityRequest("error")
		writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to compute availability")
		return
	}
	metrics.IncAvailabilityRequest(metricsStatus(result.Status))

	code, message := statusCode(result.Status)
	slots := result.Slots
	if slots == nil {
		slots = []availability.Slot{}
	}
	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Date:    date,
		Slots:   slots,
		Service: echo,
		Code:    code,
		Message: message,
	})
}

// handleBookingSlots is the single-bed overlap path kept for the checkout
// widget: plain start times, no per-slot capacity.
// GET /api/booking/slots?date=YYYY-MM-DD&serviceId=ID
func (s *HTTPServer) handleBookingSlots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	date := r.URL.Query().Get("date")
	if _, err := schedule.ParseDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	duration := 60
	if id := r.URL.Query().Get("serviceId"); id != "" {
		cfg, err := s.store.GetConfig(r.Context())
		if err != nil {
			writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to load configuration")
			return
		}
		svc, ok := cfg.ServiceByID(id)
		if !ok {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		duration = svc.ServiceDuration()
	}

	free, status, err := s.engine.FreeSlots(r.Context(), date, duration)
	if err != nil {
		metrics.IncAvailabilityRequest("error")
		writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to compute availability")
		return
	}
	metrics.IncAvailabilityRequest(metricsStatus(status))

	code, message := statusCode(status)
	if free == nil {
		free = []string{}
	}
	writeJSON(w, http.StatusOK, LegacySlotsResponse{
		Date:    date,
		Slots:   free,
		Code:    code,
		Message: message,
	})
}
