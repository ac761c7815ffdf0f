// Package booking implements the write side: creating reservations,
// scheduling and cancelling pack classes, and the pack balance bookkeeping.
// Every operation re-validates against live commitments before committing.
package booking

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"turnero/internal/clock"
	"turnero/internal/metrics"
	"turnero/internal/model"
	"turnero/internal/occupancy"
	"turnero/internal/schedule"
	"turnero/internal/store"
	"turnero/internal/timegrid"
)

// DefaultCancellationWindow is how far ahead of class start a cancellation
// must happen to restore the class to its pack.
const DefaultCancellationWindow = 24 * time.Hour

// ClassDurationMinutes is the fixed length of a pack class.
const ClassDurationMinutes = 60

// Service executes booking transactions against the store.
type Service struct {
	store        *store.Store
	agg          *occupancy.Aggregator
	clock        clock.Clock
	log          *zerolog.Logger
	locks        *dateLocks
	cancelWindow time.Duration
}

// New creates a booking service. cancelWindow <= 0 selects the default 24h.
func New(st *store.Store, agg *occupancy.Aggregator, clk clock.Clock, cancelWindow time.Duration, log *zerolog.Logger) *Service {
	if cancelWindow <= 0 {
		cancelWindow = DefaultCancellationWindow
	}
	return &Service{
		store:        st,
		agg:          agg,
		clock:        clk,
		log:          log,
		locks:        newDateLocks(),
		cancelWindow: cancelWindow,
	}
}

// CreateReservationInput is a checkout-time reservation request.
type CreateReservationInput struct {
	ServiceID string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	Customer  model.Customer
}

// CreateReservation validates the requested slot against current reservations
// and persists a new pending reservation; the payment confirmation callback
// settles it later. The single-slot path uses the legacy exact-time conflict
// rule: any non-cancelled reservation at the same start time wins.
func (s *Service) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.Booking.Enabled {
		return nil, ErrBookingDisabled
	}
	svc, ok := cfg.ServiceByID(in.ServiceID)
	if !ok {
		return nil, ErrServiceNotFound
	}
	if _, err := schedule.ParseDate(in.Date); err != nil {
		return nil, err
	}
	if _, err := timegrid.ParseClock(in.Time); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(in.Date)
	defer unlock()

	existing, err := s.store.ReservationsByDate(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	for _, r := range existing {
		if r.Time == in.Time {
			return nil, ErrSlotTaken
		}
	}

	r := &model.Reservation{
		ID:            "res_" + uuid.NewString(),
		ServiceID:     svc.ID,
		ServiceName:   svc.Name,
		ServicePrice:  svc.Price,
		Date:          in.Date,
		Time:          in.Time,
		EndTime:       timegrid.AddMinutes(in.Time, svc.ServiceDuration()),
		CustomerName:  in.Customer.Name,
		CustomerEmail: in.Customer.Email,
		CustomerPhone: in.Customer.Phone,
		Status:        model.ReservationPending,
		CreatedAt:     s.clock.Now(),
	}
	if err := s.store.SaveReservation(ctx, r); err != nil {
		return nil, err
	}

	metrics.IncBookingCreated("reservation")
	s.log.Info().
		Str("reservation_id", r.ID).
		Str("date", r.Date).
		Str("time", r.Time).
		Str("service", svc.ID).
		Msg("reservation created")
	return r, nil
}

// ConfirmReservation settles a pending reservation from the payment callback.
func (s *Service) ConfirmReservation(ctx context.Context, id, paymentID string, approved bool) (*model.Reservation, error) {
	r, err := s.store.GetReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, ErrReservationNotFound
	}

	if approved {
		r.Status = model.ReservationConfirmed
	} else {
		r.Status = model.ReservationCancelled
	}
	r.PaymentID = paymentID
	if err := s.store.SaveReservation(ctx, r); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("reservation_id", r.ID).
		Str("status", string(r.Status)).
		Msg("reservation settled")
	return r, nil
}

// ScheduleClassInput is a pack-funded class booking request.
type ScheduleClassInput struct {
	UserPackID    string
	UserID        string
	Date          string
	Time          string
	CustomerName  string
	CustomerEmail string
}

// ScheduleClass books a class against a pack balance. Pack expiry and
// exhaustion are evaluated lazily here and the corrected status is persisted
// as a side effect of the rejection.
func (s *Service) ScheduleClass(ctx context.Context, in ScheduleClassInput) (*model.ScheduledClass, *model.UserPack, error) {
	pack, err := s.store.GetUserPackByID(ctx, in.UserPackID)
	if err != nil {
		return nil, nil, err
	}
	if pack == nil {
		return nil, nil, ErrPackNotFound
	}
	if pack.UserID != in.UserID {
		return nil, nil, ErrPackNotOwned
	}
	if _, err := schedule.ParseDate(in.Date); err != nil {
		return nil, nil, err
	}
	if _, err := timegrid.ParseClock(in.Time); err != nil {
		return nil, nil, err
	}

	now := s.clock.Now()
	if pack.Status != model.PackActive {
		return nil, nil, ErrPackInactive
	}
	if now.After(pack.ExpiresAt) {
		pack.Status = model.PackExpired
		if err := s.store.SaveUserPack(ctx, pack); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrPackExpired
	}
	if pack.ClassesRemaining <= 0 {
		pack.Status = model.PackExhausted
		if err := s.store.SaveUserPack(ctx, pack); err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrPackExhausted
	}

	unlock := s.locks.lock(in.Date)
	defer unlock()

	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, nil, err
	}
	occ, err := s.agg.OccupancyAt(ctx, in.Date, in.Time)
	if err != nil {
		return nil, nil, err
	}
	if occ >= cfg.Booking.Capacity() {
		return nil, nil, ErrCapacityExceeded
	}

	class := &model.ScheduledClass{
		ID:            "class_" + uuid.NewString(),
		UserID:        in.UserID,
		UserPackID:    pack.ID,
		Date:          in.Date,
		Time:          in.Time,
		EndTime:       timegrid.AddMinutes(in.Time, ClassDurationMinutes),
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		Status:        model.ClassScheduled,
		CreatedAt:     now,
	}
	if err := s.store.SaveScheduledClass(ctx, class); err != nil {
		return nil, nil, err
	}

	pack.ClassesRemaining--
	pack.ClassesUsed++
	if pack.ClassesRemaining <= 0 {
		pack.Status = model.PackExhausted
	}
	if err := s.store.SaveUserPack(ctx, pack); err != nil {
		return nil, nil, err
	}

	metrics.IncBookingCreated("class")
	s.log.Info().
		Str("class_id", class.ID).
		Str("user_pack_id", pack.ID).
		Str("date", class.Date).
		Str("time", class.Time).
		Int("classes_remaining", pack.ClassesRemaining).
		Msg("class scheduled")
	return class, pack, nil
}

// CancelClass cancels a scheduled class at least cancelWindow ahead of its
// start and restores the class to its pack unless the pack already expired.
func (s *Service) CancelClass(ctx context.Context, classID, userID string) error {
	class, err := s.store.GetScheduledClassByID(ctx, classID)
	if err != nil {
		return err
	}
	if class == nil {
		return ErrClassNotFound
	}
	if class.UserID != userID {
		return ErrClassNotOwned
	}
	if class.Status != model.ClassScheduled {
		return ErrClassNotCancellable
	}

	start, err := classStart(class.Date, class.Time)
	if err != nil {
		return err
	}
	if start.Sub(s.clock.Now()) < s.cancelWindow {
		return ErrCancellationWindowClosed
	}

	class.Status = model.ClassCancelled
	if err := s.store.SaveScheduledClass(ctx, class); err != nil {
		return err
	}

	if class.UserPackID != "" {
		pack, err := s.store.GetUserPackByID(ctx, class.UserPackID)
		if err != nil {
			return err
		}
		if pack != nil && pack.Status != model.PackExpired {
			pack.ClassesRemaining++
			pack.ClassesUsed--
			if pack.Status == model.PackExhausted && pack.ClassesRemaining > 0 {
				pack.Status = model.PackActive
			}
			if err := s.store.SaveUserPack(ctx, pack); err != nil {
				return err
			}
		}
	}

	metrics.IncClassCancelled()
	s.log.Info().
		Str("class_id", class.ID).
		Str("user_pack_id", class.UserPackID).
		Msg("class cancelled")
	return nil
}

// PurchasePack creates an active UserPack from the catalog definition.
// Payment handling lives outside this service.
func (s *Service) PurchasePack(ctx context.Context, userID, packID string) (*model.UserPack, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	p, ok := cfg.PackByID(packID)
	if !ok {
		return nil, ErrPackNotFound
	}

	up := model.NewUserPack("upack_"+uuid.NewString(), userID, p, s.clock.Now())
	if err := s.store.SaveUserPack(ctx, up); err != nil {
		return nil, err
	}

	metrics.IncPackPurchased()
	s.log.Info().
		Str("user_pack_id", up.ID).
		Str("pack_id", p.ID).
		Str("user_id", userID).
		Msg("pack purchased")
	return up, nil
}

// MarkOrderSlot sets the status of one order-embedded service slot.
// Completed and absent free the slot's occupancy; no balance is restored.
func (s *Service) MarkOrderSlot(ctx context.Context, orderID string, slotIndex int, status model.OrderSlotStatus) (*model.Order, error) {
	o, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	if slotIndex < 0 || slotIndex >= len(o.SelectedSlots) {
		return nil, ErrOrderSlotNotFound
	}

	o.SelectedSlots[slotIndex].Status = status
	if err := s.store.SaveOrder(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// UserClasses splits a user's classes into upcoming (still scheduled, today
// or later, soonest first) and history (everything else, newest first).
func (s *Service) UserClasses(ctx context.Context, userID string) (upcoming, history []model.ScheduledClass, err error) {
	classes, err := s.store.ScheduledClassesByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	today := s.clock.Now().Format("2006-01-02")
	for _, c := range classes {
		if c.Status == model.ClassScheduled && c.Date >= today {
			upcoming = append(upcoming, c)
		} else {
			history = append(history, c)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		if upcoming[i].Date != upcoming[j].Date {
			return upcoming[i].Date < upcoming[j].Date
		}
		return upcoming[i].Time < upcoming[j].Time
	})
	sort.Slice(history, func(i, j int) bool {
		if history[i].Date != history[j].Date {
			return history[i].Date > history[j].Date
		}
		return history[i].Time > history[j].Time
	})
	return upcoming, history, nil
}

// UserPacks returns a user's packs with statuses derived at read time.
// Corrected statuses are written back as a cache; a failed write-back is
// logged and ignored.
func (s *Service) UserPacks(ctx context.Context, userID string) ([]model.UserPack, error) {
	packs, err := s.store.UserPacksByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	for i := range packs {
		derived := packs[i].DeriveStatus(now)
		if derived == packs[i].Status {
			continue
		}
		packs[i].Status = derived
		if err := s.store.SaveUserPack(ctx, &packs[i]); err != nil {
			s.log.Warn().Err(err).
				Str("user_pack_id", packs[i].ID).
				Msg("failed to persist derived pack status")
		}
	}
	return packs, nil
}

func classStart(date, clockTime string) (time.Time, error) {
	d, err := schedule.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	m, err := timegrid.ParseClock(clockTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), m/60, m%60, 0, 0, time.Local), nil
}
