// Package availability computes the bookable start times for a date and
// service duration from the day's open windows, the merged commitments and
// the beds capacity.
package availability

import (
	"context"

	"turnero/internal/clock"
	"turnero/internal/model"
	"turnero/internal/occupancy"
	"turnero/internal/schedule"
	"turnero/internal/timegrid"
)

// DefaultLeadTimeMinutes is the same-day cutoff: start times this close to
// now (or closer) are not offered.
const DefaultLeadTimeMinutes = 60

// Status classifies an availability result.
type Status int

const (
	StatusOK Status = iota
	// StatusClosed means the weekday has no recurring schedule.
	StatusClosed
	// StatusBlocked means a date exception closes the whole date.
	StatusBlocked
	// StatusPastDate means the requested date is before today.
	StatusPastDate
)

// Slot is one bookable start time with its remaining capacity.
type Slot struct {
	Time      string `json:"time"`
	SpotsLeft int    `json:"spotsLeft"`
}

// Result is the outcome of an availability query. Slots are in ascending
// time order; they are empty unless Status is StatusOK.
type Result struct {
	Slots  []Slot
	Status Status
}

// RangeSource lists the active reservation ranges for the legacy
// overlap-based path.
type RangeSource interface {
	ActiveRanges(ctx context.Context, date string) ([][2]int, error)
}

// Engine is the availability engine.
type Engine struct {
	schedule *schedule.Service
	agg      *occupancy.Aggregator
	ranges   RangeSource
	clock    clock.Clock
	leadTime int
}

// New creates an engine. leadTimeMinutes <= 0 selects the default cutoff.
func New(sched *schedule.Service, agg *occupancy.Aggregator, ranges RangeSource, clk clock.Clock, leadTimeMinutes int) *Engine {
	if leadTimeMinutes <= 0 {
		leadTimeMinutes = DefaultLeadTimeMinutes
	}
	return &Engine{
		schedule: sched,
		agg:      agg,
		ranges:   ranges,
		clock:    clk,
		leadTime: leadTimeMinutes,
	}
}

// dayContext resolves the shared preamble of both paths: open windows,
// past-date rejection and the same-day cutoff threshold.
func (e *Engine) dayContext(ctx context.Context, date string) ([]model.TimeSlot, Status, int, error) {
	windows, dayStatus, err := e.schedule.OpenIntervals(ctx, date)
	if err != nil {
		return nil, StatusClosed, 0, err
	}
	switch dayStatus {
	case schedule.DayClosed:
		return nil, StatusClosed, 0, nil
	case schedule.DayBlocked:
		return nil, StatusBlocked, 0, nil
	}

	now := e.clock.Now()
	today := now.Format("2006-01-02")

	// Date-only comparison; ISO date strings order lexically.
	if date < today {
		return nil, StatusPastDate, 0, nil
	}

	// cutoff is the exclusive lower bound for same-day start times.
	// Future dates carry no cutoff.
	cutoff := -1
	if date == today {
		cutoff = now.Hour()*60 + now.Minute() + e.leadTime
	}

	return windows, StatusOK, cutoff, nil
}

// Slots returns the capacity-aware availability for a date: every half-hour
// start time that fits the service duration inside an open window and still
// has spots left. Candidate starts step on the 30-minute grid regardless of
// the service duration, so a 90-minute service still offers starts 30 minutes
// apart while capacity allows.
func (e *Engine) Slots(ctx context.Context, date string, serviceDuration, capacity int) (Result, error) {
	windows, status, cutoff, err := e.dayContext(ctx, date)
	if err != nil || status != StatusOK {
		return Result{Status: status}, err
	}
	if capacity <= 0 {
		capacity = 1
	}

	commitments, err := e.agg.Commitments(ctx, date)
	if err != nil {
		return Result{Status: StatusOK}, err
	}

	var slots []Slot
	for _, w := range windows {
		start := timegrid.MustClock(w.Start)
		end := timegrid.MustClock(w.End)

		for t := start; t+serviceDuration <= end; t += timegrid.CellMinutes {
			if t <= cutoff {
				continue
			}
			remaining := capacity - occupancy.CountAt(commitments, timegrid.FormatClock(t))
			if remaining > 0 {
				slots = append(slots, Slot{Time: timegrid.FormatClock(t), SpotsLeft: remaining})
			}
		}
	}

	return Result{Slots: slots, Status: StatusOK}, nil
}

// FreeSlots is the legacy single-bed path: a candidate is free only when its
// whole [start, start+duration) range avoids every active reservation range.
func (e *Engine) FreeSlots(ctx context.Context, date string, serviceDuration int) ([]string, Status, error) {
	windows, status, cutoff, err := e.dayContext(ctx, date)
	if err != nil || status != StatusOK {
		return nil, status, err
	}

	reserved, err := e.ranges.ActiveRanges(ctx, date)
	if err != nil {
		return nil, StatusOK, err
	}

	var free []string
	for _, w := range windows {
		start := timegrid.MustClock(w.Start)
		end := timegrid.MustClock(w.End)

		for t := start; t+serviceDuration <= end; t += timegrid.CellMinutes {
			if t <= cutoff {
				continue
			}
			taken := false
			for _, r := range reserved {
				if timegrid.Overlaps(t, t+serviceDuration, r[0], r[1]) {
					taken = true
					break
				}
			}
			if !taken {
				free = append(free, timegrid.FormatClock(t))
			}
		}
	}

	return free, StatusOK, nil
}
