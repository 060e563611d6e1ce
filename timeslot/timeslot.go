// Package timeslot holds the pure time helpers shared by the forecast and
// validation engines. All slot math happens in UTC.
package timeslot

import (
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// FloorToSlot truncates t (in UTC) down to the nearest slotMinutes boundary.
func FloorToSlot(t time.Time, slotMinutes int) time.Time {
	t = t.UTC()
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	slot := SlotOfDay(t, slotMinutes)
	return midnight.Add(time.Duration(slot*slotMinutes) * time.Minute)
}

// WeekdayIndex returns the weekday of t with Monday=0 ... Sunday=6.
func WeekdayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// MinutesOfDay returns minutes elapsed since midnight in t's location.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// SlotOfDay returns floor(minutesSinceMidnight / slotMinutes) in UTC.
func SlotOfDay(t time.Time, slotMinutes int) int {
	return MinutesOfDay(t.UTC()) / slotMinutes
}

// SlotsPerDay returns 1440 / slotMinutes for a valid slot length.
func SlotsPerDay(slotMinutes int) int {
	return minutesPerDay / slotMinutes
}

// ValidSlotMinutes reports whether slotMinutes partitions a day into whole
// slots, so no minute of the day falls outside the last slot.
func ValidSlotMinutes(slotMinutes int) bool {
	return slotMinutes > 0 && minutesPerDay%slotMinutes == 0
}

// DayKey formats the calendar date of t in its own location.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartOfDay returns local midnight of t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ISOWeekKey returns the ISO-8601 week of t as "YYYY-Www".
//
// The date is moved to the Thursday of its ISO week; that Thursday's year is
// the ISO year and its ordinal day gives the week number.
func ISOWeekKey(t time.Time) string {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	thursday := d.AddDate(0, 0, 3-WeekdayIndex(d))
	week := (thursday.YearDay()-1)/7 + 1
	return fmt.Sprintf("%d-W%02d", thursday.Year(), week)
}

// Overlaps reports whether [start1, end1) and [start2, end2) intersect.
// Touching intervals do not overlap.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
