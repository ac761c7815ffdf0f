package timegrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"turnero/internal/model"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"18:00", 1080, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:30", 0, true},
		{"18", 0, true},
		{"aa:bb", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "09:30", FormatClock(570))
	assert.Equal(t, "23:30", FormatClock(1410))
}

func TestAddMinutes(t *testing.T) {
	assert.Equal(t, "19:00", AddMinutes("18:00", 60))
	assert.Equal(t, "10:30", AddMinutes("09:00", 90))
	assert.Equal(t, "24:00", AddMinutes("23:30", 30))
	assert.Equal(t, "24:00", AddMinutes("23:30", 120))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"disjoint", 0, 60, 60, 120, false},
		{"identical", 60, 120, 60, 120, true},
		{"partial left", 0, 90, 60, 120, true},
		{"partial right", 90, 150, 60, 120, true},
		{"contained", 70, 80, 60, 120, true},
		{"containing", 0, 180, 60, 120, true},
		{"touching boundary", 120, 180, 60, 120, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			// symmetric both directions
			assert.Equal(t, tt.want, Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	// For non-overlapping sorted grid-aligned slots, ToSlots(ToCells(s)) == s.
	tests := [][]model.TimeSlot{
		{{Start: "09:00", End: "12:00"}},
		{{Start: "09:00", End: "12:00"}, {Start: "18:00", End: "19:00"}},
		{{Start: "00:00", End: "00:30"}, {Start: "23:30", End: "24:00"}},
		nil,
	}

	for _, slots := range tests {
		got := ToSlots(ToCells(slots))
		if slots == nil {
			assert.Nil(t, got)
			continue
		}
		assert.Equal(t, slots, got)
	}
}

func TestSubtract(t *testing.T) {
	base := []model.TimeSlot{{Start: "09:00", End: "12:00"}}

	t.Run("empty block is a no-op", func(t *testing.T) {
		assert.Equal(t, base, Subtract(base, nil))
		assert.Equal(t, base, Subtract(base, []model.TimeSlot{}))
	})

	t.Run("middle split", func(t *testing.T) {
		got := Subtract(base, []model.TimeSlot{{Start: "10:00", End: "10:30"}})
		assert.Equal(t, []model.TimeSlot{
			{Start: "09:00", End: "10:00"},
			{Start: "10:30", End: "12:00"},
		}, got)
	})

	t.Run("leading edge", func(t *testing.T) {
		got := Subtract(
			[]model.TimeSlot{{Start: "18:00", End: "19:00"}},
			[]model.TimeSlot{{Start: "18:00", End: "18:30"}},
		)
		assert.Equal(t, []model.TimeSlot{{Start: "18:30", End: "19:00"}}, got)
	})

	t.Run("block outside business hours is a no-op on cells", func(t *testing.T) {
		got := Subtract(base, []model.TimeSlot{{Start: "14:00", End: "15:00"}})
		assert.Equal(t, base, got)
	})

	t.Run("full cover", func(t *testing.T) {
		got := Subtract(base, []model.TimeSlot{{Start: "08:00", End: "13:00"}})
		assert.Empty(t, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		blocked := []model.TimeSlot{{Start: "10:00", End: "11:00"}}
		once := Subtract(base, blocked)
		twice := Subtract(once, blocked)
		assert.Equal(t, once, twice)
	})
}
