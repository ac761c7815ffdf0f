package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnero/internal/clock"
	"turnero/internal/model"
	"turnero/internal/occupancy"
	"turnero/internal/schedule"
)

// 2026-09-01 is a Tuesday.
const tuesday = "2026-09-01"

type staticConfig struct{ cfg *model.FullConfig }

func (s staticConfig) GetConfig(ctx context.Context) (*model.FullConfig, error) {
	return s.cfg, nil
}

type fakeReservations struct{ list []model.Reservation }

func (f fakeReservations) ReservationsByDate(ctx context.Context, date string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range f.list {
		if r.Date == date && r.Status != model.ReservationCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	booking      model.BookingConfig
	reservations []model.Reservation
	classes      []model.ScheduledClass
	now          time.Time
}

type fakeClasses struct{ list []model.ScheduledClass }

func (f fakeClasses) ScheduledClassesByDate(ctx context.Context, date string) ([]model.ScheduledClass, error) {
	var out []model.ScheduledClass
	for _, c := range f.list {
		if c.Date == date {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeOrders struct{ list []model.Order }

func (f fakeOrders) ListOrders(ctx context.Context) ([]model.Order, error) { return f.list, nil }

func newEngine(f fixture) *Engine {
	sched := schedule.New(staticConfig{cfg: &model.FullConfig{Booking: f.booking}})
	resSrc := occupancy.NewReservationSource(fakeReservations{list: f.reservations})
	agg := occupancy.New(
		resSrc,
		occupancy.NewClassSource(fakeClasses{list: f.classes}),
		occupancy.NewOrderSlotSource(fakeOrders{}),
	)
	now := f.now
	if now.IsZero() {
		// Well before the requested dates; cutoff never fires.
		now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.Local)
	}
	return New(sched, agg, resSrc, clock.NewFixed(now), 0)
}

func tuesdayEvening() model.BookingConfig {
	return model.BookingConfig{
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "18:00", End: "19:00"}}},
		},
	}
}

func TestSlotsSingleWindowExactFit(t *testing.T) {
	// Tuesday 18:00-19:00 only, 60-minute service, no commitments.
	e := newEngine(fixture{booking: tuesdayEvening()})

	res, err := e.Slots(context.Background(), tuesday, 60, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, []Slot{{Time: "18:00", SpotsLeft: 1}}, res.Slots)
}

func TestSlotsExceptionShrinksWindowBelowDuration(t *testing.T) {
	booking := tuesdayEvening()
	booking.Exceptions = []model.DateException{{
		Date:  tuesday,
		Slots: []model.TimeSlot{{Start: "18:00", End: "18:30"}},
	}}
	e := newEngine(fixture{booking: booking})

	// Remaining 18:30-19:00 cannot hold a 60-minute service.
	res, err := e.Slots(context.Background(), tuesday, 60, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Empty(t, res.Slots)
}

func TestSlotsCapacityCounting(t *testing.T) {
	booking := model.BookingConfig{
		BedsCapacity: 2,
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "09:00", End: "11:00"}}},
		},
	}
	e := newEngine(fixture{
		booking: booking,
		classes: []model.ScheduledClass{
			{ID: "c1", Date: tuesday, Time: "10:00", Status: model.ClassScheduled},
			{ID: "c2", Date: tuesday, Time: "10:00", Status: model.ClassScheduled},
		},
	})

	res, err := e.Slots(context.Background(), tuesday, 30, 2)
	require.NoError(t, err)
	// 10:00 is full; the other starts keep both spots.
	assert.Equal(t, []Slot{
		{Time: "09:00", SpotsLeft: 2},
		{Time: "09:30", SpotsLeft: 2},
		{Time: "10:30", SpotsLeft: 2},
	}, res.Slots)
}

func TestSlotsPartialCapacityRemaining(t *testing.T) {
	booking := tuesdayEvening()
	e := newEngine(fixture{
		booking: booking,
		classes: []model.ScheduledClass{
			{ID: "c1", Date: tuesday, Time: "18:00", Status: model.ClassScheduled},
		},
	})

	res, err := e.Slots(context.Background(), tuesday, 60, 3)
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Time: "18:00", SpotsLeft: 2}}, res.Slots)
}

func TestSlotsClosedBlockedPast(t *testing.T) {
	t.Run("closed weekday", func(t *testing.T) {
		e := newEngine(fixture{booking: tuesdayEvening()})
		res, err := e.Slots(context.Background(), "2026-09-02", 60, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusClosed, res.Status)
		assert.Empty(t, res.Slots)
	})

	t.Run("blocked date", func(t *testing.T) {
		booking := tuesdayEvening()
		booking.Exceptions = []model.DateException{{Date: tuesday, IsBlocked: true}}
		e := newEngine(fixture{booking: booking})
		res, err := e.Slots(context.Background(), tuesday, 60, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusBlocked, res.Status)
	})

	t.Run("past date", func(t *testing.T) {
		e := newEngine(fixture{
			booking: tuesdayEvening(),
			now:     time.Date(2026, 9, 2, 12, 0, 0, 0, time.Local),
		})
		res, err := e.Slots(context.Background(), tuesday, 60, 1)
		require.NoError(t, err)
		assert.Equal(t, StatusPastDate, res.Status)
	})
}

func TestSameDayCutoffBoundary(t *testing.T) {
	booking := model.BookingConfig{
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "09:00", End: "20:00"}}},
		},
	}
	// Now is 14:00 on the requested Tuesday; cutoff excludes t <= 15:00.
	e := newEngine(fixture{
		booking: booking,
		now:     time.Date(2026, 9, 1, 14, 0, 0, 0, time.Local),
	})

	res, err := e.Slots(context.Background(), tuesday, 60, 1)
	require.NoError(t, err)

	times := make(map[string]bool, len(res.Slots))
	for _, s := range res.Slots {
		times[s.Time] = true
	}
	assert.False(t, times["14:30"])
	assert.False(t, times["15:00"], "boundary start equal to now+lead is excluded")
	assert.True(t, times["15:30"])
}

func TestSameDayCutoffNotAppliedToFutureDates(t *testing.T) {
	e := newEngine(fixture{
		booking: tuesdayEvening(),
		now:     time.Date(2026, 8, 25, 23, 0, 0, 0, time.Local),
	})

	res, err := e.Slots(context.Background(), tuesday, 60, 1)
	require.NoError(t, err)
	assert.Equal(t, []Slot{{Time: "18:00", SpotsLeft: 1}}, res.Slots)
}

func TestSlots30MinuteSteppingForLongServices(t *testing.T) {
	booking := model.BookingConfig{
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "09:00", End: "12:00"}}},
		},
	}
	e := newEngine(fixture{booking: booking})

	// A 90-minute service still gets candidates every 30 minutes.
	res, err := e.Slots(context.Background(), tuesday, 90, 1)
	require.NoError(t, err)
	want := []Slot{
		{Time: "09:00", SpotsLeft: 1},
		{Time: "09:30", SpotsLeft: 1},
		{Time: "10:00", SpotsLeft: 1},
		{Time: "10:30", SpotsLeft: 1},
	}
	assert.Equal(t, want, res.Slots)
}

func TestFreeSlotsLegacyOverlap(t *testing.T) {
	booking := model.BookingConfig{
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "09:00", End: "12:00"}}},
		},
	}
	e := newEngine(fixture{
		booking: booking,
		reservations: []model.Reservation{
			// Pending still blocks on the legacy path.
			{ID: "r1", Date: tuesday, Time: "10:00", EndTime: "11:00", Status: model.ReservationPending},
		},
	})

	free, status, err := e.FreeSlots(context.Background(), tuesday, 60)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)
	// 09:30-10:30 and 10:30-11:30 both intersect the 10:00-11:00 reservation.
	assert.Equal(t, []string{"09:00", "11:00"}, free)
}

func TestFreeSlotsMissingEndTimeBlocksOneHour(t *testing.T) {
	booking := model.BookingConfig{
		Recurring: []model.RecurringSchedule{
			{DayOfWeek: 2, Slots: []model.TimeSlot{{Start: "09:00", End: "12:00"}}},
		},
	}
	e := newEngine(fixture{
		booking: booking,
		reservations: []model.Reservation{
			{ID: "r1", Date: tuesday, Time: "10:00", Status: model.ReservationConfirmed},
		},
	})

	free, _, err := e.FreeSlots(context.Background(), tuesday, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, free)
}
