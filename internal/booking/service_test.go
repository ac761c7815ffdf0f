package booking

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnero/internal/clock"
	"turnero/internal/model"
	"turnero/internal/occupancy"
	"turnero/internal/store"
)

// Fixed "now": Tuesday 2026-09-01 10:00 local.
var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.Local)

func newTestService(t *testing.T, now time.Time) (*Service, *store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	st := store.New(store.NewRedisBackendFromClient(rdb))
	t.Cleanup(func() { st.Close() })

	agg := occupancy.New(
		occupancy.NewReservationSource(st),
		occupancy.NewClassSource(st),
		occupancy.NewOrderSlotSource(st),
	)
	logger := zerolog.New(io.Discard)
	svc := New(st, agg, clock.NewFixed(now), 0, &logger)

	cfg := &model.FullConfig{
		Services: []model.ServiceConfig{
			{ID: "svc1", Name: "Sesión individual", Price: 15000, DurationMinutes: 60},
		},
		Packs: []model.PackConfig{
			{ID: "pack4", Name: "Pack x4", ClassCount: 4, Price: 40000, ValidityDays: 30},
		},
		Booking: model.BookingConfig{
			Enabled:      true,
			BedsCapacity: 2,
			Recurring: []model.RecurringSchedule{
				{DayOfWeek: 4, Slots: []model.TimeSlot{{Start: "18:00", End: "20:00"}}},
			},
		},
	}
	require.NoError(t, st.SaveConfig(context.Background(), cfg))
	return svc, st
}

func activePack(t *testing.T, st *store.Store, id string, remaining int) *model.UserPack {
	t.Helper()
	p := &model.UserPack{
		ID:               id,
		PackID:           "pack4",
		UserID:           "u1",
		ClassesRemaining: remaining,
		ClassesUsed:      4 - remaining,
		ExpiresAt:        testNow.AddDate(0, 0, 30),
		PurchasedAt:      testNow,
		Status:           model.PackActive,
	}
	require.NoError(t, st.SaveUserPack(context.Background(), p))
	return p
}

func TestCreateReservation(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)

	in := CreateReservationInput{
		ServiceID: "svc1",
		Date:      "2026-09-03",
		Time:      "18:00",
		Customer:  model.Customer{Name: "Ana", Email: "ana@example.com", Phone: "11-5555"},
	}

	r, err := svc.CreateReservation(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationPending, r.Status)
	assert.Equal(t, "19:00", r.EndTime)
	assert.Equal(t, 15000, r.ServicePrice)

	t.Run("exact-time conflict", func(t *testing.T) {
		_, err := svc.CreateReservation(ctx, in)
		assert.ErrorIs(t, err, ErrSlotTaken)
	})

	t.Run("pending still blocks the slot", func(t *testing.T) {
		got, err := st.GetReservationByID(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, model.ReservationPending, got.Status)
	})

	t.Run("cancelled frees the slot", func(t *testing.T) {
		_, err := svc.ConfirmReservation(ctx, r.ID, "pay_1", false)
		require.NoError(t, err)

		again, err := svc.CreateReservation(ctx, in)
		require.NoError(t, err)
		assert.NotEqual(t, r.ID, again.ID)
	})
}

func TestCreateReservationValidation(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)

	t.Run("unknown service", func(t *testing.T) {
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ServiceID: "nope", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrServiceNotFound)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := svc.CreateReservation(ctx, CreateReservationInput{
			ServiceID: "svc1", Date: "03/09/2026", Time: "18:00",
		})
		assert.Error(t, err)
	})

	t.Run("booking disabled", func(t *testing.T) {
		cfg, err := st.GetConfig(ctx)
		require.NoError(t, err)
		cfg.Booking.Enabled = false
		require.NoError(t, st.SaveConfig(ctx, cfg))

		_, err = svc.CreateReservation(ctx, CreateReservationInput{
			ServiceID: "svc1", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrBookingDisabled)
	})
}

func TestConfirmReservation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testNow)

	r, err := svc.CreateReservation(ctx, CreateReservationInput{
		ServiceID: "svc1", Date: "2026-09-03", Time: "18:00",
		Customer: model.Customer{Name: "Ana"},
	})
	require.NoError(t, err)

	got, err := svc.ConfirmReservation(ctx, r.ID, "pay_99", true)
	require.NoError(t, err)
	assert.Equal(t, model.ReservationConfirmed, got.Status)
	assert.Equal(t, "pay_99", got.PaymentID)

	_, err = svc.ConfirmReservation(ctx, "res_missing", "", true)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestScheduleClassDrawsDownPack(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)
	activePack(t, st, "up_1", 2)

	class, pack, err := svc.ScheduleClass(ctx, ScheduleClassInput{
		UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
		CustomerName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ClassScheduled, class.Status)
	assert.Equal(t, "19:00", class.EndTime)
	assert.Equal(t, 1, pack.ClassesRemaining)
	assert.Equal(t, 3, pack.ClassesUsed)
	assert.Equal(t, model.PackActive, pack.Status)
}

func TestScheduleClassExhaustsPack(t *testing.T) {
	// Scenario: last class flips the pack to exhausted; cancelling flips back.
	ctx := context.Background()
	svc, st := newTestService(t, testNow)
	activePack(t, st, "up_1", 1)

	class, pack, err := svc.ScheduleClass(ctx, ScheduleClassInput{
		UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, pack.ClassesRemaining)
	assert.Equal(t, model.PackExhausted, pack.Status)

	require.NoError(t, svc.CancelClass(ctx, class.ID, "u1"))

	restored, err := st.GetUserPackByID(ctx, "up_1")
	require.NoError(t, err)
	assert.Equal(t, 1, restored.ClassesRemaining)
	assert.Equal(t, model.PackActive, restored.Status)

	got, err := st.GetScheduledClassByID(ctx, class.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClassCancelled, got.Status)
}

func TestScheduleClassPackGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		svc, _ := newTestService(t, testNow)
		_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_missing", UserID: "u1", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrPackNotFound)
	})

	t.Run("not owned", func(t *testing.T) {
		svc, st := newTestService(t, testNow)
		activePack(t, st, "up_1", 2)
		_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "intruso", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrPackNotOwned)
	})

	t.Run("stored inactive status", func(t *testing.T) {
		svc, st := newTestService(t, testNow)
		p := activePack(t, st, "up_1", 2)
		p.Status = model.PackExhausted
		require.NoError(t, st.SaveUserPack(ctx, p))

		_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrPackInactive)
	})

	t.Run("lazy expiry persists corrected status", func(t *testing.T) {
		svc, st := newTestService(t, testNow)
		p := activePack(t, st, "up_1", 2)
		p.ExpiresAt = testNow.Add(-time.Hour)
		require.NoError(t, st.SaveUserPack(ctx, p))

		_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrPackExpired)

		got, err := st.GetUserPackByID(ctx, "up_1")
		require.NoError(t, err)
		assert.Equal(t, model.PackExpired, got.Status)
	})

	t.Run("lazy exhaustion persists corrected status", func(t *testing.T) {
		svc, st := newTestService(t, testNow)
		p := activePack(t, st, "up_1", 0)
		p.Status = model.PackActive
		require.NoError(t, st.SaveUserPack(ctx, p))

		_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
		})
		assert.ErrorIs(t, err, ErrPackExhausted)

		got, err := st.GetUserPackByID(ctx, "up_1")
		require.NoError(t, err)
		assert.Equal(t, model.PackExhausted, got.Status)
	})
}

func TestScheduleClassCapacity(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)
	activePack(t, st, "up_1", 4)

	// Capacity is 2. Fill the 18:00 cell from two different sources.
	require.NoError(t, st.SaveReservation(ctx, &model.Reservation{
		ID: "res_1", Date: "2026-09-03", Time: "18:00", EndTime: "19:00",
		Status: model.ReservationConfirmed,
	}))
	require.NoError(t, st.SaveOrder(ctx, &model.Order{
		ID: "order_1", Status: model.OrderConfirmed,
		SelectedSlots: []model.OrderSlot{{ServiceID: "svc1", Date: "2026-09-03", Time: "18:00"}},
	}))

	_, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
		UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:00",
	})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	// A different cell on the same date is still bookable, and afterwards the
	// occupancy never exceeds capacity anywhere.
	_, _, err = svc.ScheduleClass(ctx, ScheduleClassInput{
		UserPackID: "up_1", UserID: "u1", Date: "2026-09-03", Time: "18:30",
	})
	require.NoError(t, err)

	agg := occupancy.New(
		occupancy.NewReservationSource(st),
		occupancy.NewClassSource(st),
		occupancy.NewOrderSlotSource(st),
	)
	for _, cell := range []string{"18:00", "18:30", "19:00"} {
		n, err := agg.OccupancyAt(ctx, "2026-09-03", cell)
		require.NoError(t, err)
		assert.LessOrEqual(t, n, 2, cell)
	}
}

func TestCancelClassWindow(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)
	activePack(t, st, "up_1", 2)

	t.Run("within 24h is rejected", func(t *testing.T) {
		class, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "u1", Date: "2026-09-02", Time: "09:00",
		})
		require.NoError(t, err)

		// 2026-09-02 09:00 is 23h after the fixed now.
		err = svc.CancelClass(ctx, class.ID, "u1")
		assert.ErrorIs(t, err, ErrCancellationWindowClosed)

		// Nothing was restored.
		pack, err := st.GetUserPackByID(ctx, "up_1")
		require.NoError(t, err)
		assert.Equal(t, 1, pack.ClassesRemaining)
	})

	t.Run("guards", func(t *testing.T) {
		class, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
			UserPackID: "up_1", UserID: "u1", Date: "2026-09-10", Time: "18:00",
		})
		require.NoError(t, err)

		assert.ErrorIs(t, svc.CancelClass(ctx, "class_missing", "u1"), ErrClassNotFound)
		assert.ErrorIs(t, svc.CancelClass(ctx, class.ID, "intruso"), ErrClassNotOwned)

		require.NoError(t, svc.CancelClass(ctx, class.ID, "u1"))
		assert.ErrorIs(t, svc.CancelClass(ctx, class.ID, "u1"), ErrClassNotCancellable)
	})
}

func TestCancelClassExpiredPackNotRestored(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)
	activePack(t, st, "up_1", 2)

	class, _, err := svc.ScheduleClass(ctx, ScheduleClassInput{
		UserPackID: "up_1", UserID: "u1", Date: "2026-09-10", Time: "18:00",
	})
	require.NoError(t, err)

	pack, err := st.GetUserPackByID(ctx, "up_1")
	require.NoError(t, err)
	pack.Status = model.PackExpired
	require.NoError(t, st.SaveUserPack(ctx, pack))

	require.NoError(t, svc.CancelClass(ctx, class.ID, "u1"))

	got, err := st.GetUserPackByID(ctx, "up_1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ClassesRemaining, "expired pack keeps its balance")
	assert.Equal(t, model.PackExpired, got.Status)
}

func TestPurchasePack(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, testNow)

	up, err := svc.PurchasePack(ctx, "u1", "pack4")
	require.NoError(t, err)
	assert.Equal(t, 4, up.ClassesRemaining)
	assert.Equal(t, model.PackActive, up.Status)
	assert.Equal(t, testNow.AddDate(0, 0, 30), up.ExpiresAt)

	_, err = svc.PurchasePack(ctx, "u1", "nope")
	assert.ErrorIs(t, err, ErrPackNotFound)
}

func TestMarkOrderSlot(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)

	require.NoError(t, st.SaveOrder(ctx, &model.Order{
		ID: "order_1", Status: model.OrderConfirmed,
		SelectedSlots: []model.OrderSlot{{ServiceID: "svc1", Date: "2026-09-03", Time: "18:00"}},
	}))

	o, err := svc.MarkOrderSlot(ctx, "order_1", 0, model.OrderSlotCompleted)
	require.NoError(t, err)
	assert.False(t, o.SelectedSlots[0].Occupies())

	_, err = svc.MarkOrderSlot(ctx, "order_1", 5, model.OrderSlotAbsent)
	assert.ErrorIs(t, err, ErrOrderSlotNotFound)

	_, err = svc.MarkOrderSlot(ctx, "order_missing", 0, model.OrderSlotAbsent)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestUserClassesSplit(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)

	seed := []*model.ScheduledClass{
		{ID: "c1", UserID: "u1", Date: "2026-09-05", Time: "18:00", Status: model.ClassScheduled},
		{ID: "c2", UserID: "u1", Date: "2026-09-03", Time: "18:00", Status: model.ClassScheduled},
		{ID: "c3", UserID: "u1", Date: "2026-08-20", Time: "18:00", Status: model.ClassCompleted},
		{ID: "c4", UserID: "u1", Date: "2026-08-25", Time: "18:00", Status: model.ClassCancelled},
		{ID: "c5", UserID: "u2", Date: "2026-09-03", Time: "18:00", Status: model.ClassScheduled},
	}
	for _, c := range seed {
		require.NoError(t, st.SaveScheduledClass(ctx, c))
	}

	upcoming, history, err := svc.UserClasses(ctx, "u1")
	require.NoError(t, err)

	require.Len(t, upcoming, 2)
	assert.Equal(t, "c2", upcoming[0].ID, "soonest first")
	assert.Equal(t, "c1", upcoming[1].ID)

	require.Len(t, history, 2)
	assert.Equal(t, "c4", history[0].ID, "newest first")
	assert.Equal(t, "c3", history[1].ID)
}

func TestUserPacksDeriveAndPersist(t *testing.T) {
	ctx := context.Background()
	svc, st := newTestService(t, testNow)

	stale := activePack(t, st, "up_old", 2)
	stale.ExpiresAt = testNow.Add(-time.Hour)
	require.NoError(t, st.SaveUserPack(ctx, stale))
	activePack(t, st, "up_new", 2)

	packs, err := svc.UserPacks(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, packs, 2)

	byID := map[string]model.UserPack{}
	for _, p := range packs {
		byID[p.ID] = p
	}
	assert.Equal(t, model.PackExpired, byID["up_old"].Status)
	assert.Equal(t, model.PackActive, byID["up_new"].Status)

	// The corrected status was written back.
	got, err := st.GetUserPackByID(ctx, "up_old")
	require.NoError(t, err)
	assert.Equal(t, model.PackExpired, got.Status)
}
