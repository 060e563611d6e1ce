// Package forecast turns historical contact volume into a slot-by-slot
// required-headcount curve.
package forecast

import (
	"math"
	"time"

	"workforce-engine/metrics"
	"workforce-engine/models"
	"workforce-engine/staffing"
	"workforce-engine/timeslot"
)

// Staffing runs the full pipeline: bucket the lookback window, build the
// seasonal baseline and convert every future slot into required agents.
// Identical inputs always produce identical rows.
func Staffing(history []models.HistoryRecord, p Params) ([]models.ForecastRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	started := time.Now()

	windowStart, windowEnd := p.LookbackWindow()
	samples, used := BuildSamples(history, windowStart, windowEnd, p.SlotMinutes)
	baseline := BuildBaseline(samples, p.SmoothingWeight)

	rows, err := Generate(baseline, p)
	if err != nil {
		return nil, err
	}

	metrics.ObserveForecast(time.Since(started), string(p.Method), len(rows), used, PeakAgents(rows))
	return rows, nil
}

// Generate walks [StartDay, StartDay+HorizonDays) slot by slot and applies
// the staffing model to the baseline entry of each slot.
func Generate(baseline Baseline, p Params) ([]models.ForecastRow, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	activity := p.Activity
	if activity == "" {
		activity = DefaultActivity
	}

	perDay := timeslot.SlotsPerDay(p.SlotMinutes)
	startDay := p.StartDay()
	rows := make([]models.ForecastRow, 0, p.HorizonDays*perDay)

	for d := 0; d < p.HorizonDays; d++ {
		day := startDay.AddDate(0, 0, d)
		weekday := timeslot.WeekdayIndex(day)

		for s := 0; s < perDay; s++ {
			entry := baseline.Lookup(SlotKey{Weekday: weekday, SlotOfDay: s})

			required, err := staffing.Required(p.Method, staffing.Input{
				Arrivals:         entry.ExpectedArrivals,
				SlotMinutes:      p.SlotMinutes,
				AHTMinutes:       entry.AHTMinutes,
				Concurrency:      entry.Concurrency,
				TargetASASeconds: p.TargetASASeconds,
				ZSafety:          p.ZSafety,
				MaxAgents:        p.MaxAgents,
			})
			if err != nil {
				return nil, err
			}

			rows = append(rows, models.ForecastRow{
				SlotStart:        day.Add(time.Duration(s*p.SlotMinutes) * time.Minute),
				Weekday:          weekday,
				SlotOfDay:        s,
				Activity:         activity,
				ExpectedArrivals: round2(entry.ExpectedArrivals),
				AHTMinutes:       round2(entry.AHTMinutes),
				Concurrency:      round2(entry.Concurrency),
				RequiredAgents:   required,
			})
		}
	}

	return rows, nil
}

// PeakAgents returns the highest required headcount across rows.
func PeakAgents(rows []models.ForecastRow) int {
	peak := 0
	for _, r := range rows {
		if r.RequiredAgents > peak {
			peak = r.RequiredAgents
		}
	}
	return peak
}

// Demand converts forecast rows into coverage input.
func Demand(rows []models.ForecastRow) []models.DemandForecastRow {
	out := make([]models.DemandForecastRow, len(rows))
	for i, r := range rows {
		out[i] = r.Demand()
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
