// Package occupancy merges the three independent commitment sources
// (reservations, pack-scheduled classes, order-embedded slots) into a per-cell
// occupancy count for a date.
package occupancy

import (
	"context"
	"fmt"

	"turnero/internal/model"
	"turnero/internal/timegrid"
)

// Source lists the commitments one backing store holds for a date,
// normalized to {time, endTime, live}.
type Source interface {
	ListByDate(ctx context.Context, date string) ([]model.Commitment, error)
}

// Aggregator combines all commitment sources.
type Aggregator struct {
	sources []Source
}

// New creates an aggregator over the given sources.
func New(sources ...Source) *Aggregator {
	return &Aggregator{sources: sources}
}

// Commitments fetches and merges all commitments for a date, one pass over
// every backing store.
func (a *Aggregator) Commitments(ctx context.Context, date string) ([]model.Commitment, error) {
	var all []model.Commitment
	for _, src := range a.sources {
		list, err := src.ListByDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("list commitments: %w", err)
		}
		all = append(all, list...)
	}
	return all, nil
}

// OccupancyAt counts the live commitments occupying the exact (date, time)
// cell across all sources.
func (a *Aggregator) OccupancyAt(ctx context.Context, date, t string) (int, error) {
	all, err := a.Commitments(ctx, date)
	if err != nil {
		return 0, err
	}
	return CountAt(all, t), nil
}

// CountAt counts the live commitments in a pre-fetched list whose start time
// equals t exactly.
func CountAt(commitments []model.Commitment, t string) int {
	n := 0
	for _, c := range commitments {
		if c.Live && c.Time == t {
			n++
		}
	}
	return n
}

// ReservationLister is the reservation read surface the adapters need.
type ReservationLister interface {
	ReservationsByDate(ctx context.Context, date string) ([]model.Reservation, error)
}

// ClassLister is the scheduled-class read surface.
type ClassLister interface {
	ScheduledClassesByDate(ctx context.Context, date string) ([]model.ScheduledClass, error)
}

// OrderLister is the order read surface.
type OrderLister interface {
	ListOrders(ctx context.Context) ([]model.Order, error)
}

// ReservationSource adapts the reservation store. Only confirmed reservations
// count toward capacity; pending ones exist briefly until the payment callback
// settles them.
type ReservationSource struct {
	store ReservationLister
}

// NewReservationSource wraps a reservation store.
func NewReservationSource(store ReservationLister) *ReservationSource {
	return &ReservationSource{store: store}
}

func (s *ReservationSource) ListByDate(ctx context.Context, date string) ([]model.Commitment, error) {
	reservations, err := s.store.ReservationsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]model.Commitment, 0, len(reservations))
	for _, r := range reservations {
		out = append(out, model.Commitment{
			Time:    r.Time,
			EndTime: r.EndTime,
			Live:    r.Status == model.ReservationConfirmed,
		})
	}
	return out, nil
}

// ActiveRanges returns the [start, end) minute ranges of all non-cancelled
// reservations on a date. This feeds the legacy overlap-based availability
// path, which blocks a candidate on any intersection rather than counting
// exact-time occupancy.
func (s *ReservationSource) ActiveRanges(ctx context.Context, date string) ([][2]int, error) {
	reservations, err := s.store.ReservationsByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	ranges := make([][2]int, 0, len(reservations))
	for _, r := range reservations {
		start := timegrid.MustClock(r.Time)
		end := timegrid.MustClock(r.EndTime)
		if end <= start {
			// Legacy records without an end time block one hour.
			end = start + 60
		}
		ranges = append(ranges, [2]int{start, end})
	}
	return ranges, nil
}

// ClassSource adapts the scheduled-class store. Only scheduled classes are
// live; completed, cancelled and absent ones free their cell.
type ClassSource struct {
	store ClassLister
}

// NewClassSource wraps a class store.
func NewClassSource(store ClassLister) *ClassSource {
	return &ClassSource{store: store}
}

func (s *ClassSource) ListByDate(ctx context.Context, date string) ([]model.Commitment, error) {
	classes, err := s.store.ScheduledClassesByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	out := make([]model.Commitment, 0, len(classes))
	for _, c := range classes {
		out = append(out, model.Commitment{
			Time:    c.Time,
			EndTime: c.EndTime,
			Live:    c.Status == model.ClassScheduled,
		})
	}
	return out, nil
}

// OrderSlotSource adapts order-embedded service slots. A slot is live until
// the admin marks it completed or absent.
type OrderSlotSource struct {
	store OrderLister
}

// NewOrderSlotSource wraps an order store.
func NewOrderSlotSource(store OrderLister) *OrderSlotSource {
	return &OrderSlotSource{store: store}
}

func (s *OrderSlotSource) ListByDate(ctx context.Context, date string) ([]model.Commitment, error) {
	orders, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Commitment
	for _, o := range orders {
		if o.Status == model.OrderCancelled {
			continue
		}
		for _, slot := range o.SelectedSlots {
			if slot.Date != date {
				continue
			}
			out = append(out, model.Commitment{
				Time:    slot.Time,
				EndTime: timegrid.AddMinutes(slot.Time, 60),
				Live:    slot.Occupies(),
			})
		}
	}
	return out, nil
}
