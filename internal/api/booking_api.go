package api

import (
	"errors"
	"net/http"

	"turnero/internal/booking"
	"turnero/internal/metrics"
	"turnero/internal/model"
)

// rejectionCode maps business-rule errors to the wire codes clients key on.
func rejectionCode(err error) (status int, code string, ok bool) {
	switch {
	case errors.Is(err, booking.ErrBookingDisabled):
		return http.StatusForbidden, "BOOKING_DISABLED", true
	case errors.Is(err, booking.ErrServiceNotFound):
		return http.StatusNotFound, "SERVICE_NOT_FOUND", true
	case errors.Is(err, booking.ErrPackNotFound):
		return http.StatusNotFound, "PACK_NOT_FOUND", true
	case errors.Is(err, booking.ErrClassNotFound):
		return http.StatusNotFound, "CLASS_NOT_FOUND", true
	case errors.Is(err, booking.ErrReservationNotFound):
		return http.StatusNotFound, "RESERVATION_NOT_FOUND", true
	case errors.Is(err, booking.ErrOrderNotFound):
		return http.StatusNotFound, "ORDER_NOT_FOUND", true
	case errors.Is(err, booking.ErrOrderSlotNotFound):
		return http.StatusNotFound, "ORDER_SLOT_NOT_FOUND", true
	case errors.Is(err, booking.ErrSlotTaken):
		return http.StatusConflict, "SLOT_TAKEN", true
	case errors.Is(err, booking.ErrCapacityExceeded):
		return http.StatusConflict, "CAPACITY_EXCEEDED", true
	case errors.Is(err, booking.ErrPackNotOwned):
		return http.StatusForbidden, "PACK_NOT_OWNED", true
	case errors.Is(err, booking.ErrClassNotOwned):
		return http.StatusForbidden, "CLASS_NOT_OWNED", true
	case errors.Is(err, booking.ErrPackInactive):
		return http.StatusUnprocessableEntity, "PACK_INACTIVE", true
	case errors.Is(err, booking.ErrPackExpired):
		return http.StatusUnprocessableEntity, "PACK_EXPIRED", true
	case errors.Is(err, booking.ErrPackExhausted):
		return http.StatusUnprocessableEntity, "PACK_EXHAUSTED", true
	case errors.Is(err, booking.ErrClassNotCancellable):
		return http.StatusConflict, "CLASS_NOT_CANCELLABLE", true
	case errors.Is(err, booking.ErrCancellationWindowClosed):
		return http.StatusConflict, "CANCELLATION_WINDOW_CLOSED", true
	}
	return 0, "", false
}

// writeBookingError answers a failed booking operation: business rejections
// carry their code, anything else is a store failure.
func (s *HTTPServer) writeBookingError(w http.ResponseWriter, err error) {
	if status, code, ok := rejectionCode(err); ok {
		metrics.IncBookingRejected(code)
		writeErrorCode(w, status, code, err.Error())
		return
	}
	s.log.Error().Err(err).Msg("booking operation failed")
	writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "internal error")
}

// BookRequest is the body for POST /api/book.
type BookRequest struct {
	ServiceID     string `json:"serviceId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
}

// handleBook creates a pending checkout reservation.
// POST /api/book
func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req BookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ServiceID == "" || req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "serviceId, date and time are required")
		return
	}

	res, err := s.booking.CreateReservation(r.Context(), booking.CreateReservationInput{
		ServiceID: req.ServiceID,
		Date:      req.Date,
		Time:      req.Time,
		Customer: model.Customer{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ConfirmRequest is the body for POST /api/book/confirm, the payment
// provider's settlement callback.
type ConfirmRequest struct {
	ReservationID string `json:"reservationId"`
	PaymentID     string `json:"paymentId"`
	Approved      bool   `json:"approved"`
}

// handleBookConfirm settles a pending reservation.
// POST /api/book/confirm
func (s *HTTPServer) handleBookConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req ConfirmRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ReservationID == "" {
		writeError(w, http.StatusBadRequest, "reservationId is required")
		return
	}

	res, err := s.booking.ConfirmReservation(r.Context(), req.ReservationID, req.PaymentID, req.Approved)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ScheduleClassRequest is the body for POST /api/classes/schedule.
type ScheduleClassRequest struct {
	UserPackID    string `json:"userPackId"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
}

// ScheduleClassResponse returns the new class and the updated pack balance.
type ScheduleClassResponse struct {
	Class *model.ScheduledClass `json:"class"`
	Pack  *model.UserPack       `json:"pack"`
}

// handleScheduleClass books a class against a pack.
// POST /api/classes/schedule, identity via X-User-ID.
func (s *HTTPServer) handleScheduleClass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req ScheduleClassRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.UserPackID == "" || req.Date == "" || req.Time == "" {
		writeError(w, http.StatusBadRequest, "userPackId, date and time are required")
		return
	}

	class, pack, err := s.booking.ScheduleClass(r.Context(), booking.ScheduleClassInput{
		UserPackID:    req.UserPackID,
		UserID:        uid,
		Date:          req.Date,
		Time:          req.Time,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ScheduleClassResponse{Class: class, Pack: pack})
}

// CancelClassRequest is the body for POST /api/classes/cancel.
type CancelClassRequest struct {
	ClassID string `json:"classId"`
}

// handleCancelClass cancels a scheduled class and restores its pack balance.
// POST /api/classes/cancel, identity via X-User-ID.
func (s *HTTPServer) handleCancelClass(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req CancelClassRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.ClassID == "" {
		writeError(w, http.StatusBadRequest, "classId is required")
		return
	}

	if err := s.booking.CancelClass(r.Context(), req.ClassID, uid); err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// UserClassesResponse splits the caller's classes.
type UserClassesResponse struct {
	Upcoming []model.ScheduledClass `json:"upcoming"`
	History  []model.ScheduledClass `json:"history"`
}

// handleUserClasses lists the caller's classes.
// GET /api/classes, identity via X-User-ID.
func (s *HTTPServer) handleUserClasses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	upcoming, history, err := s.booking.UserClasses(r.Context(), uid)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	if upcoming == nil {
		upcoming = []model.ScheduledClass{}
	}
	if history == nil {
		history = []model.ScheduledClass{}
	}
	writeJSON(w, http.StatusOK, UserClassesResponse{Upcoming: upcoming, History: history})
}

// handlePackCatalog lists purchasable packs from the tenant catalog.
// GET /api/packs
func (s *HTTPServer) handlePackCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg, err := s.store.GetConfig(r.Context())
	if err != nil {
		writeErrorCode(w, http.StatusInternalServerError, "STORE_FAILURE", "failed to load configuration")
		return
	}

	packs := make([]model.PackConfig, 0, len(cfg.Packs))
	for _, p := range cfg.Packs {
		if !p.Paused {
			packs = append(packs, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"packs": packs})
}

// PurchasePackRequest is the body for POST /api/packs/purchase.
type PurchasePackRequest struct {
	PackID string `json:"packId"`
}

// handlePurchasePack creates an active pack for the caller.
// POST /api/packs/purchase, identity via X-User-ID.
func (s *HTTPServer) handlePurchasePack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}
	var req PurchasePackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PackID == "" {
		writeError(w, http.StatusBadRequest, "packId is required")
		return
	}

	up, err := s.booking.PurchasePack(r.Context(), uid, req.PackID)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, up)
}

// handleUserPacks lists the caller's packs with statuses derived at read time.
// GET /api/user/packs, identity via X-User-ID.
func (s *HTTPServer) handleUserPacks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return
	}

	packs, err := s.booking.UserPacks(r.Context(), uid)
	if err != nil {
		s.writeBookingError(w, err)
		return
	}
	if packs == nil {
		packs = []model.UserPack{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"packs": packs})
}
