// Package api exposes the storefront HTTP surface: availability queries,
// booking, pack management and the admin configuration endpoints.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"turnero/internal/availability"
	"turnero/internal/booking"
	"turnero/internal/store"
)

// Options configures the HTTP server.
type Options struct {
	Address            string
	AdminToken         string
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// HTTPServer serves the public and admin API.
type HTTPServer struct {
	store   *store.Store
	engine  *availability.Engine
	booking *booking.Service
	log     *zerolog.Logger
	opts    Options

	server *http.Server
}

// NewHTTPServer wires the routes and returns a server ready to Start.
func NewHTTPServer(st *store.Store, engine *availability.Engine, svc *booking.Service, log *zerolog.Logger, opts Options) *HTTPServer {
	s := &HTTPServer{
		store:   st,
		engine:  engine,
		booking: svc,
		log:     log,
		opts:    opts,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/booking/slots", s.handleBookingSlots)
	mux.HandleFunc("/api/book", s.handleBook)
	mux.HandleFunc("/api/book/confirm", s.handleBookConfirm)
	mux.HandleFunc("/api/classes/schedule", s.handleScheduleClass)
	mux.HandleFunc("/api/classes/cancel", s.handleCancelClass)
	mux.HandleFunc("/api/classes", s.handleUserClasses)
	mux.HandleFunc("/api/packs", s.handlePackCatalog)
	mux.HandleFunc("/api/packs/purchase", s.handlePurchasePack)
	mux.HandleFunc("/api/user/packs", s.handleUserPacks)
	mux.HandleFunc("/api/admin/config", s.requireAdmin(s.handleAdminConfig))
	mux.HandleFunc("/api/admin/order-slot", s.requireAdmin(s.handleAdminOrderSlot))
	mux.HandleFunc("/api/admin/export", s.requireAdmin(s.handleAdminExport))

	handler := s.rateLimit(mux)
	s.server = &http.Server{
		Addr:         opts.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Handler returns the wired root handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start blocks serving HTTP until Shutdown.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("address", s.server.Addr).Msg("api server listening")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// requireAdmin guards admin routes with the shared token header.
// An empty configured token disables the admin surface entirely.
func (s *HTTPServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.AdminToken == "" || r.Header.Get("X-Admin-Token") != s.opts.AdminToken {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// userID reads the caller identity header used by class and pack routes.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeErrorCode(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]any{"error": msg, "code": code})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
