// Package store persists the tenant's documents. Every collection is one
// JSON blob under a single key, read and written whole: the contract is
// atomic read-modify-write per save, last-write-wins, no partial updates.
package store

import (
	"context"
	"fmt"

	"turnero/internal/model"
)

// Document keys. The whole tenant lives under a handful of blobs.
const (
	keyConfig       = "turnero:config"
	keyReservations = "turnero:reservations"
	keyClasses      = "turnero:classes"
	keyOrders       = "turnero:orders"
	keyUserPacks    = "turnero:userpacks"
)

// Backend loads and saves one JSON document per key.
type Backend interface {
	// Load unmarshals the document at key into v. Returns false when the
	// key does not exist.
	Load(ctx context.Context, key string, v any) (bool, error)
	Save(ctx context.Context, key string, v any) error
	Ping(ctx context.Context) error
	Close() error
}

// Store exposes typed collection access over a document backend.
// Per-date filtering happens client-side after a whole-collection fetch;
// at single-tenant scale no secondary index is needed.
type Store struct {
	b Backend
}

// New wraps a backend.
func New(b Backend) *Store {
	return &Store{b: b}
}

// Ping reports backend health.
func (s *Store) Ping(ctx context.Context) error {
	return s.b.Ping(ctx)
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.b.Close()
}

// GetConfig returns the tenant configuration, or the default when none is
// stored yet. The default is not written back.
func (s *Store) GetConfig(ctx context.Context) (*model.FullConfig, error) {
	var cfg model.FullConfig
	ok, err := s.b.Load(ctx, keyConfig, &cfg)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if !ok {
		return model.DefaultConfig(), nil
	}
	return &cfg, nil
}

// SaveConfig replaces the whole tenant configuration.
func (s *Store) SaveConfig(ctx context.Context, cfg *model.FullConfig) error {
	if err := s.b.Save(ctx, keyConfig, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// ListReservations returns all reservations, any status.
func (s *Store) ListReservations(ctx context.Context) ([]model.Reservation, error) {
	var list []model.Reservation
	if _, err := s.b.Load(ctx, keyReservations, &list); err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	return list, nil
}

// ReservationsByDate returns the non-cancelled reservations for a date.
func (s *Store) ReservationsByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Reservation
	for _, r := range all {
		if r.Date == date && r.Status != model.ReservationCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

// GetReservationByID returns a reservation or nil when absent.
func (s *Store) GetReservationByID(ctx context.Context, id string) (*model.Reservation, error) {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SaveReservation upserts a reservation by id.
func (s *Store) SaveReservation(ctx context.Context, r *model.Reservation) error {
	all, err := s.ListReservations(ctx)
	if err != nil {
		return err
	}
	all = upsert(all, *r, func(x model.Reservation) string { return x.ID })
	if err := s.b.Save(ctx, keyReservations, all); err != nil {
		return fmt.Errorf("save reservation: %w", err)
	}
	return nil
}

// ListScheduledClasses returns all scheduled classes, any status.
func (s *Store) ListScheduledClasses(ctx context.Context) ([]model.ScheduledClass, error) {
	var list []model.ScheduledClass
	if _, err := s.b.Load(ctx, keyClasses, &list); err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}
	return list, nil
}

// ScheduledClassesByDate returns all classes on a date, any status.
func (s *Store) ScheduledClassesByDate(ctx context.Context, date string) ([]model.ScheduledClass, error) {
	all, err := s.ListScheduledClasses(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.ScheduledClass
	for _, c := range all {
		if c.Date == date {
			out = append(out, c)
		}
	}
	return out, nil
}

// ScheduledClassesByUser returns all classes booked by a user.
func (s *Store) ScheduledClassesByUser(ctx context.Context, userID string) ([]model.ScheduledClass, error) {
	all, err := s.ListScheduledClasses(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.ScheduledClass
	for _, c := range all {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

// GetScheduledClassByID returns a class or nil when absent.
func (s *Store) GetScheduledClassByID(ctx context.Context, id string) (*model.ScheduledClass, error) {
	all, err := s.ListScheduledClasses(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SaveScheduledClass upserts a class by id.
func (s *Store) SaveScheduledClass(ctx context.Context, c *model.ScheduledClass) error {
	all, err := s.ListScheduledClasses(ctx)
	if err != nil {
		return err
	}
	all = upsert(all, *c, func(x model.ScheduledClass) string { return x.ID })
	if err := s.b.Save(ctx, keyClasses, all); err != nil {
		return fmt.Errorf("save class: %w", err)
	}
	return nil
}

// ListOrders returns all orders.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	var list []model.Order
	if _, err := s.b.Load(ctx, keyOrders, &list); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	return list, nil
}

// GetOrderByID returns an order or nil when absent.
func (s *Store) GetOrderByID(ctx context.Context, id string) (*model.Order, error) {
	all, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SaveOrder upserts an order by id.
func (s *Store) SaveOrder(ctx context.Context, o *model.Order) error {
	all, err := s.ListOrders(ctx)
	if err != nil {
		return err
	}
	all = upsert(all, *o, func(x model.Order) string { return x.ID })
	if err := s.b.Save(ctx, keyOrders, all); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	return nil
}

// ListUserPacks returns all purchased packs.
func (s *Store) ListUserPacks(ctx context.Context) ([]model.UserPack, error) {
	var list []model.UserPack
	if _, err := s.b.Load(ctx, keyUserPacks, &list); err != nil {
		return nil, fmt.Errorf("load user packs: %w", err)
	}
	return list, nil
}

// UserPacksByUser returns the packs owned by a user.
func (s *Store) UserPacksByUser(ctx context.Context, userID string) ([]model.UserPack, error) {
	all, err := s.ListUserPacks(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.UserPack
	for _, p := range all {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetUserPackByID returns a pack or nil when absent.
func (s *Store) GetUserPackByID(ctx context.Context, id string) (*model.UserPack, error) {
	all, err := s.ListUserPacks(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, nil
}

// SaveUserPack upserts a pack by id.
func (s *Store) SaveUserPack(ctx context.Context, p *model.UserPack) error {
	all, err := s.ListUserPacks(ctx)
	if err != nil {
		return err
	}
	all = upsert(all, *p, func(x model.UserPack) string { return x.ID })
	if err := s.b.Save(ctx, keyUserPacks, all); err != nil {
		return fmt.Errorf("save user pack: %w", err)
	}
	return nil
}

func upsert[T any](list []T, item T, id func(T) string) []T {
	target := id(item)
	for i := range list {
		if id(list[i]) == target {
			list[i] = item
			return list
		}
	}
	return append(list, item)
}
