package store

import (
	"time"

	"workforce-engine/models"
	"workforce-engine/timeslot"
)

// ForecastRecord is one persisted forecast slot.
type ForecastRecord struct {
	ID               uint      `gorm:"primaryKey"`
	Activity         string    `gorm:"index:idx_forecast_activity_date;size:64;not null"`
	ForecastDate     string    `gorm:"index:idx_forecast_activity_date;size:10;not null"`
	SlotStart        time.Time `gorm:"index;not null"`
	Weekday          int
	SlotOfDay        int
	ExpectedArrivals float64
	AHTMinutes       float64
	Concurrency      float64
	RequiredAgents   int
	CreatedAt        time.Time
}

func newForecastRecord(activity string, row models.ForecastRow) ForecastRecord {
	start := row.SlotStart.UTC()
	if row.Activity != "" {
		activity = row.Activity
	}
	return ForecastRecord{
		Activity:         activity,
		ForecastDate:     timeslot.DayKey(start),
		SlotStart:        start,
		Weekday:          row.Weekday,
		SlotOfDay:        row.SlotOfDay,
		ExpectedArrivals: row.ExpectedArrivals,
		AHTMinutes:       row.AHTMinutes,
		Concurrency:      row.Concurrency,
		RequiredAgents:   row.RequiredAgents,
	}
}

func (r ForecastRecord) row() models.ForecastRow {
	return models.ForecastRow{
		SlotStart:        r.SlotStart.UTC(),
		Weekday:          r.Weekday,
		SlotOfDay:        r.SlotOfDay,
		Activity:         r.Activity,
		ExpectedArrivals: r.ExpectedArrivals,
		AHTMinutes:       r.AHTMinutes,
		Concurrency:      r.Concurrency,
		RequiredAgents:   r.RequiredAgents,
	}
}

// InteractionRecord is one historical contact.
type InteractionRecord struct {
	ID            uint      `gorm:"primaryKey"`
	OccurredAt    time.Time `gorm:"index;not null"`
	HandleSeconds float64
	Concurrency   float64
	CreatedAt     time.Time
}

func newInteractionRecord(h models.HistoryRecord) InteractionRecord {
	return InteractionRecord{
		OccurredAt:    h.OccurredAt.UTC(),
		HandleSeconds: h.HandleMinutes * 60,
		Concurrency:   h.Concurrency,
	}
}

func (r InteractionRecord) history() models.HistoryRecord {
	return models.HistoryRecord{
		OccurredAt:    r.OccurredAt.UTC(),
		HandleMinutes: r.HandleSeconds / 60,
		Concurrency:   r.Concurrency,
	}
}
