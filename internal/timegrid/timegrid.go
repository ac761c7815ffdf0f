// Package timegrid models a day as a fixed grid of 30-minute cells and
// provides interval arithmetic over "HH:MM" wall-clock ranges. All arithmetic
// is integer minutes since midnight; there is no timezone handling.
package timegrid

import (
	"fmt"
	"strconv"
	"strings"

	"turnero/internal/model"
)

const (
	// CellMinutes is the grid step: bookable start times are always on the half-hour.
	CellMinutes = 30
	// CellsPerDay is the number of grid cells in one day.
	CellsPerDay = 24 * 60 / CellMinutes
)

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %s", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	m := hour*60 + minute
	// "24:00" is allowed as an exclusive end-of-day bound.
	if hour < 0 || minute < 0 || minute > 59 || m > 24*60 {
		return 0, fmt.Errorf("time out of range: %s", s)
	}
	return m, nil
}

// MustClock is ParseClock for trusted input; invalid input maps to 0.
func MustClock(s string) int {
	m, err := ParseClock(s)
	if err != nil {
		return 0
	}
	return m
}

// FormatClock converts minutes since midnight to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// AddMinutes shifts a clock string forward, clamped to the end of the day.
func AddMinutes(clock string, minutes int) string {
	m := MustClock(clock) + minutes
	if m > 24*60 {
		m = 24 * 60
	}
	return FormatClock(m)
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// ToCells marks every cell covered by any input slot.
func ToCells(slots []model.TimeSlot) [CellsPerDay]bool {
	var cells [CellsPerDay]bool
	for _, s := range slots {
		start := MustClock(s.Start) / CellMinutes
		end := MustClock(s.End) / CellMinutes
		for i := start; i < end && i < CellsPerDay; i++ {
			cells[i] = true
		}
	}
	return cells
}

// ToSlots run-length-encodes contiguous occupied cells back into slots.
// The scan runs one past the last cell so a run touching midnight closes.
func ToSlots(cells [CellsPerDay]bool) []model.TimeSlot {
	var result []model.TimeSlot
	start := -1
	for i := 0; i <= CellsPerDay; i++ {
		occupied := i < CellsPerDay && cells[i]
		switch {
		case occupied && start < 0:
			start = i
		case !occupied && start >= 0:
			result = append(result, model.TimeSlot{
				Start: FormatClock(start * CellMinutes),
				End:   FormatClock(i * CellMinutes),
			})
			start = -1
		}
	}
	return result
}

// Subtract removes the blocked ranges from the base ranges on the cell grid.
// An empty block set returns base unchanged.
func Subtract(base, blocked []model.TimeSlot) []model.TimeSlot {
	if len(blocked) == 0 {
		return base
	}

	cells := ToCells(base)
	for _, s := range blocked {
		start := MustClock(s.Start) / CellMinutes
		end := MustClock(s.End) / CellMinutes
		for i := start; i < end && i < CellsPerDay; i++ {
			cells[i] = false
		}
	}
	return ToSlots(cells)
}
