package timeslot_test

import (
	"fmt"
	"testing"
	"time"

	"workforce-engine/timeslot"

	"github.com/stretchr/testify/assert"
)

func TestFloorToSlot(t *testing.T) {
	tests := map[string]struct {
		input       time.Time
		slotMinutes int
		expected    time.Time
	}{
		"AlreadyOnBoundary": {
			input:       time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC),
			slotMinutes: 15,
			expected:    time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC),
		},
		"MidSlot": {
			input:       time.Date(2024, 3, 4, 9, 29, 59, 0, time.UTC),
			slotMinutes: 15,
			expected:    time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC),
		},
		"HourlySlots": {
			input:       time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC),
			slotMinutes: 60,
			expected:    time.Date(2024, 3, 4, 23, 0, 0, 0, time.UTC),
		},
		"NonUTCInputIsNormalized": {
			input:       time.Date(2024, 3, 4, 10, 40, 0, 0, time.FixedZone("CET", 3600)),
			slotMinutes: 30,
			expected:    time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.True(t, tc.expected.Equal(timeslot.FloorToSlot(tc.input, tc.slotMinutes)))
		})
	}
}

func TestWeekdayIndex(t *testing.T) {
	monday := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		assert.Equal(t, i, timeslot.WeekdayIndex(monday.AddDate(0, 0, i)))
	}
}

func TestSlotOfDay(t *testing.T) {
	ts := time.Date(2024, 3, 4, 9, 47, 0, 0, time.UTC)
	assert.Equal(t, 39, timeslot.SlotOfDay(ts, 15))
	assert.Equal(t, 9, timeslot.SlotOfDay(ts, 60))
	assert.Equal(t, 96, timeslot.SlotsPerDay(15))
	assert.Equal(t, 24, timeslot.SlotsPerDay(60))
	assert.Equal(t, 16, timeslot.SlotsPerDay(90))
}

func TestISOWeekKey(t *testing.T) {
	tests := map[string]struct {
		date     time.Time
		expected string
	}{
		"MidYear":                 {time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), "2024-W10"},
		"JanFirstInPreviousYear":  {time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), "2020-W53"},
		"DecemberInNextYear":      {time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), "2025-W01"},
		"SundayBelongsToSameWeek": {time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC), "2024-W10"},
		"FirstThursdayIsWeekOne":  {time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		"LateDecemberStillWeek52": {time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC), "2022-W52"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, timeslot.ISOWeekKey(tc.date))
		})
	}
}

func TestISOWeekKey_MatchesStdlib(t *testing.T) {
	d := time.Date(2019, 12, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3*366; i++ {
		day := d.AddDate(0, 0, i)
		year, week := day.ISOWeek()
		assert.Equal(t, fmt.Sprintf("%d-W%02d", year, week), timeslot.ISOWeekKey(day), day.String())
	}
}

func TestOverlaps(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 3, 4, h, 0, 0, 0, time.UTC) }

	assert.True(t, timeslot.Overlaps(at(9), at(11), at(10), at(12)))
	assert.True(t, timeslot.Overlaps(at(9), at(12), at(10), at(11)))
	assert.False(t, timeslot.Overlaps(at(9), at(10), at(10), at(11)), "touching intervals do not overlap")
	assert.False(t, timeslot.Overlaps(at(12), at(13), at(9), at(10)))
}

func TestValidSlotMinutes(t *testing.T) {
	tests := map[string]struct {
		slotMinutes int
		expected    bool
	}{
		"Quarter":       {15, true},
		"Minute":        {1, true},
		"Hour":          {60, true},
		"WholeDay":      {1440, true},
		"FortyFive":     {45, true},
		"Zero":          {0, false},
		"Negative":      {-15, false},
		"Seven":         {7, false},
		"LeavesGap":     {100, false},
		"LongerThanDay": {2880, false},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, timeslot.ValidSlotMinutes(tc.slotMinutes))
		})
	}
}

func TestSlotsPerDay_CoversWholeDay(t *testing.T) {
	for slot := 1; slot <= 1440; slot++ {
		if !timeslot.ValidSlotMinutes(slot) {
			continue
		}
		assert.Equal(t, 1440, timeslot.SlotsPerDay(slot)*slot, "slot %d", slot)
		last := time.Date(2024, 3, 4, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, timeslot.SlotsPerDay(slot)-1, timeslot.SlotOfDay(last, slot), "slot %d", slot)
	}
}
