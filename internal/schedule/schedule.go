// Package schedule resolves the open windows for a calendar date from the
// tenant's weekly recurring schedule and date-specific exceptions.
package schedule

import (
	"context"
	"fmt"
	"time"

	"turnero/internal/model"
	"turnero/internal/timegrid"
)

// ConfigSource provides the tenant configuration. Read-heavy, admin-edited,
// last-write-wins on the whole blob.
type ConfigSource interface {
	GetConfig(ctx context.Context) (*model.FullConfig, error)
}

// DayStatus classifies why a date has the windows it has.
type DayStatus int

const (
	// DayOpen means the date has at least one open window.
	DayOpen DayStatus = iota
	// DayClosed means the weekday has no recurring schedule.
	DayClosed
	// DayBlocked means a date exception closes the whole date.
	DayBlocked
)

// Service is the schedule store.
type Service struct {
	cfg ConfigSource
}

// New creates a schedule service over a config source.
func New(cfg ConfigSource) *Service {
	return &Service{cfg: cfg}
}

// ParseDate validates a "YYYY-MM-DD" date string.
func ParseDate(date string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return d, nil
}

// OpenIntervals returns the open windows for a date. A fully blocked or
// unscheduled day returns no windows with the corresponding status.
// Exception slots are subtracted from the weekday's recurring windows;
// blocking outside business hours has no effect.
func (s *Service) OpenIntervals(ctx context.Context, date string) ([]model.TimeSlot, DayStatus, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, DayClosed, err
	}

	cfg, err := s.cfg.GetConfig(ctx)
	if err != nil {
		return nil, DayClosed, err
	}

	recurring, ok := cfg.RecurringFor(int(d.Weekday()))
	if !ok || len(recurring.Slots) == 0 {
		return nil, DayClosed, nil
	}

	exception, ok := cfg.ExceptionFor(date)
	if !ok {
		return recurring.Slots, DayOpen, nil
	}
	if exception.IsBlocked {
		return nil, DayBlocked, nil
	}

	// A partial block can leave the day open with no windows at all; that is
	// still DayOpen, it just yields no bookable starts.
	return timegrid.Subtract(recurring.Slots, exception.Slots), DayOpen, nil
}
