package validation

import (
	"fmt"
	"time"

	"workforce-engine/models"
	"workforce-engine/timeslot"
)

// coverageKey identifies one slot of one activity.
type coverageKey struct {
	Date     string
	Slot     int
	Activity string
}

// checkCoverage compares scheduled headcount against forecast demand. Both
// sides are bucketed at Options.SlotMinutes, so forecasts must be generated
// at the same granularity. Forecast rows outside the date range are ignored.
func (r *run) checkCoverage() {
	if len(r.in.Forecasts) == 0 {
		return
	}
	slotMinutes := r.opts.SlotMinutes
	slot := time.Duration(slotMinutes) * time.Minute

	var order []coverageKey
	required := make(map[coverageKey]int)
	slotStarts := make(map[coverageKey]time.Time)
	for _, row := range r.in.Forecasts {
		if row.Date.Before(r.in.DateRange.Start) || !row.Date.Before(r.in.DateRange.End) {
			continue
		}
		start := timeslot.FloorToSlot(row.Date, slotMinutes)
		key := coverageKey{Date: timeslot.DayKey(start), Slot: timeslot.SlotOfDay(start, slotMinutes), Activity: row.Activity}
		if _, seen := required[key]; !seen {
			order = append(order, key)
			slotStarts[key] = start
		}
		required[key] = max(required[key], row.RequiredAgents)
	}

	scheduled := make(map[coverageKey]int)
	for _, s := range r.in.Shifts {
		p, ok := r.positions[s.PositionID]
		if !ok {
			continue
		}
		// A shift counts toward every slot it touches.
		for t := timeslot.FloorToSlot(s.Start, slotMinutes); t.Before(s.End); t = t.Add(slot) {
			key := coverageKey{Date: timeslot.DayKey(t), Slot: timeslot.SlotOfDay(t, slotMinutes), Activity: p.Type}
			scheduled[key]++
		}
	}

	for _, key := range order {
		need, have := required[key], scheduled[key]
		if have >= need {
			continue
		}
		r.add(models.ViolationCoverage,
			fmt.Sprintf("Slot %s %s for %s has %d of %d required agents",
				key.Date, slotStarts[key].Format("15:04"), key.Activity, have, need),
			map[string]any{
				"date":           key.Date,
				"slotIndex":      key.Slot,
				"slotStart":      slotStarts[key],
				"activity":       key.Activity,
				"requiredAgents": need,
				"scheduled":      have,
				"shortfall":      need - have,
			})
	}
}
