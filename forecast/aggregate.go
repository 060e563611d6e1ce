package forecast

import (
	"sort"
	"time"

	"workforce-engine/models"
	"workforce-engine/timeslot"
)

// SlotKey identifies a seasonal slot: weekday (Monday=0) and slot of day.
type SlotKey struct {
	Weekday   int
	SlotOfDay int
}

// ArrivalSlotSample is one slot of the lookback window with everything that
// happened in it.
type ArrivalSlotSample struct {
	SlotStart     time.Time
	Weekday       int
	SlotOfDay     int
	Arrivals      int
	HandleMinutes []float64
	Concurrency   []float64
}

// Key returns the seasonal key of the sample.
func (s ArrivalSlotSample) Key() SlotKey {
	return SlotKey{Weekday: s.Weekday, SlotOfDay: s.SlotOfDay}
}

// Entry is the seasonal expectation for one slot.
type Entry struct {
	ExpectedArrivals float64
	AHTMinutes       float64
	Concurrency      float64
}

// Baseline is the seasonal profile built from history.
type Baseline struct {
	Entries map[SlotKey]Entry
	Global  Entry
}

// Lookup returns the entry for key, or the global entry when the key was
// never observed.
func (b Baseline) Lookup(key SlotKey) Entry {
	if e, ok := b.Entries[key]; ok {
		return e
	}
	return b.Global
}

// BuildSamples buckets history into every slot of [windowStart, windowEnd).
// Slots without history are kept with zero arrivals so that quiet weeks
// lower the seasonal mean. Records outside the window, or in the trailing
// partial slot of a day, are ignored. The second return value is the number
// of records that landed in a slot.
func BuildSamples(history []models.HistoryRecord, windowStart, windowEnd time.Time, slotMinutes int) ([]ArrivalSlotSample, int) {
	windowStart = windowStart.UTC()
	windowEnd = windowEnd.UTC()
	if !windowStart.Before(windowEnd) || !timeslot.ValidSlotMinutes(slotMinutes) {
		return nil, 0
	}

	perDay := timeslot.SlotsPerDay(slotMinutes)
	firstDay := time.Date(windowStart.Year(), windowStart.Month(), windowStart.Day(), 0, 0, 0, 0, time.UTC)

	var samples []ArrivalSlotSample
	index := make(map[int64]int)
	for day := firstDay; day.Before(windowEnd); day = day.AddDate(0, 0, 1) {
		for s := 0; s < perDay; s++ {
			start := day.Add(time.Duration(s*slotMinutes) * time.Minute)
			if start.Before(windowStart) || !start.Before(windowEnd) {
				continue
			}
			index[start.Unix()] = len(samples)
			samples = append(samples, ArrivalSlotSample{
				SlotStart: start,
				Weekday:   timeslot.WeekdayIndex(start),
				SlotOfDay: s,
			})
		}
	}

	used := 0
	for _, rec := range history {
		if rec.OccurredAt.Before(windowStart) || !rec.OccurredAt.Before(windowEnd) {
			continue
		}
		i, ok := index[timeslot.FloorToSlot(rec.OccurredAt, slotMinutes).Unix()]
		if !ok {
			continue
		}

		handle := rec.HandleMinutes
		if handle <= 0 {
			handle = DefaultAHTMinutes
		}
		concurrency := rec.Concurrency
		if concurrency <= 0 {
			concurrency = DefaultConcurrency
		}

		samples[i].Arrivals++
		samples[i].HandleMinutes = append(samples[i].HandleMinutes, handle)
		samples[i].Concurrency = append(samples[i].Concurrency, concurrency)
		used++
	}

	return samples, used
}

// BuildBaseline groups samples by (weekday, slot of day). Expected arrivals
// are (1-w)*groupMean + w*globalMean. Handling time and concurrency are the
// median of the per-slot medians, falling back to the global median.
func BuildBaseline(samples []ArrivalSlotSample, smoothingWeight float64) Baseline {
	if smoothingWeight < 0 || smoothingWeight > 1 {
		smoothingWeight = DefaultSmoothingWeight
	}

	type group struct {
		slots       int
		arrivals    int
		handle      []float64
		concurrency []float64
	}

	groups := make(map[SlotKey]*group)
	var allHandle, allConcurrency []float64
	totalArrivals := 0

	for _, s := range samples {
		g, ok := groups[s.Key()]
		if !ok {
			g = &group{}
			groups[s.Key()] = g
		}
		g.slots++
		g.arrivals += s.Arrivals
		totalArrivals += s.Arrivals

		if len(s.HandleMinutes) > 0 {
			g.handle = append(g.handle, median(s.HandleMinutes))
			allHandle = append(allHandle, s.HandleMinutes...)
		}
		if len(s.Concurrency) > 0 {
			g.concurrency = append(g.concurrency, median(s.Concurrency))
			allConcurrency = append(allConcurrency, s.Concurrency...)
		}
	}

	global := Entry{AHTMinutes: DefaultAHTMinutes, Concurrency: DefaultConcurrency}
	if len(samples) > 0 {
		global.ExpectedArrivals = float64(totalArrivals) / float64(len(samples))
	}
	if len(allHandle) > 0 {
		global.AHTMinutes = median(allHandle)
	}
	if len(allConcurrency) > 0 {
		global.Concurrency = median(allConcurrency)
	}

	entries := make(map[SlotKey]Entry, len(groups))
	for key, g := range groups {
		mean := float64(g.arrivals) / float64(g.slots)
		e := Entry{
			ExpectedArrivals: (1-smoothingWeight)*mean + smoothingWeight*global.ExpectedArrivals,
			AHTMinutes:       global.AHTMinutes,
			Concurrency:      global.Concurrency,
		}
		if len(g.handle) > 0 {
			e.AHTMinutes = median(g.handle)
		}
		if len(g.concurrency) > 0 {
			e.Concurrency = median(g.concurrency)
		}
		entries[key] = e
	}

	return Baseline{Entries: entries, Global: global}
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
