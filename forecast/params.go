package forecast

import (
	"fmt"
	"strings"
	"time"

	customerrors "workforce-engine/errors"
	"workforce-engine/staffing"
	"workforce-engine/timeslot"
)

// Defaults used when a record or request leaves a value unset.
const (
	DefaultAHTMinutes      = 5.0
	DefaultConcurrency     = 1.0
	DefaultSmoothingWeight = 0.2
	DefaultActivity        = "general"
	DefaultMaxHorizonDays  = 92
	DefaultMaxHistoryDays  = 366
)

// Params fully describes one forecast run.
type Params struct {
	ForecastStart    time.Time
	HistoryDays      int
	HorizonDays      int
	SlotMinutes      int
	Method           staffing.Method
	TargetASASeconds float64
	ZSafety          float64
	// SmoothingWeight pulls each seasonal slot toward the global mean.
	SmoothingWeight float64
	MaxAgents       int
	Activity        string

	// MaxHorizonDays and MaxHistoryDays bound the work one run may ask for.
	// Zero disables the check.
	MaxHorizonDays int
	MaxHistoryDays int
}

// DefaultParams returns the parameters used when nothing else is configured.
func DefaultParams() Params {
	return Params{
		HistoryDays:      56,
		HorizonDays:      7,
		SlotMinutes:      15,
		Method:           staffing.MethodErlang,
		TargetASASeconds: 20,
		ZSafety:          1.0,
		SmoothingWeight:  DefaultSmoothingWeight,
		MaxAgents:        staffing.DefaultMaxAgents,
		Activity:         DefaultActivity,
		MaxHorizonDays:   DefaultMaxHorizonDays,
		MaxHistoryDays:   DefaultMaxHistoryDays,
	}
}

// Validate rejects parameters the engine cannot run with.
func (p Params) Validate() error {
	if p.ForecastStart.IsZero() {
		return fmt.Errorf("%w: forecast start is required", customerrors.ErrInvalidForecastStart)
	}
	if !timeslot.ValidSlotMinutes(p.SlotMinutes) {
		return fmt.Errorf("%w: %d", customerrors.ErrInvalidSlotMinutes, p.SlotMinutes)
	}
	if p.HorizonDays <= 0 {
		return fmt.Errorf("%w: horizon days must be positive, got %d", customerrors.ErrInvalidHorizon, p.HorizonDays)
	}
	if p.MaxHorizonDays > 0 && p.HorizonDays > p.MaxHorizonDays {
		return fmt.Errorf("%w: horizon days %d exceeds limit %d", customerrors.ErrInvalidHorizon, p.HorizonDays, p.MaxHorizonDays)
	}
	if p.HistoryDays < 0 {
		return fmt.Errorf("%w: history days must not be negative, got %d", customerrors.ErrInvalidHorizon, p.HistoryDays)
	}
	if p.MaxHistoryDays > 0 && p.HistoryDays > p.MaxHistoryDays {
		return fmt.Errorf("%w: history days %d exceeds limit %d", customerrors.ErrInvalidHorizon, p.HistoryDays, p.MaxHistoryDays)
	}
	if p.TargetASASeconds < 0 {
		return fmt.Errorf("%w: target ASA must not be negative, got %g", customerrors.ErrInvalidServiceTarget, p.TargetASASeconds)
	}
	if p.ZSafety < 0 {
		return fmt.Errorf("%w: z safety must not be negative, got %g", customerrors.ErrInvalidServiceTarget, p.ZSafety)
	}
	if p.Method != staffing.MethodHalfin && p.Method != staffing.MethodErlang {
		return fmt.Errorf("%w: %q", customerrors.ErrUnknownMethod, p.Method)
	}
	return nil
}

// StartDay is the UTC midnight the forecast calendar begins on.
func (p Params) StartDay() time.Time {
	t := p.ForecastStart.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LookbackWindow returns the half-open history window preceding the forecast.
func (p Params) LookbackWindow() (time.Time, time.Time) {
	end := p.StartDay()
	return end.AddDate(0, 0, -p.HistoryDays), end
}

// Request is the wire shape of a forecast call. Zero fields fall back to the
// defaults passed to Params. TargetASASeconds and ZSafety are pointers because
// zero is a meaningful value for both.
type Request struct {
	HistoryDays      int      `json:"historyDays"`
	ForecastStartISO string   `json:"forecastStartISO"`
	HorizonDays      int      `json:"horizonDays"`
	SlotMinutes      int      `json:"slotMinutes"`
	Method           string   `json:"method"`
	TargetASASeconds *float64 `json:"targetASASeconds,omitempty"`
	ZSafety          *float64 `json:"zSafety,omitempty"`
	Activity         string   `json:"activity,omitempty"`
}

// Params parses and validates the request.
func (r Request) Params(defaults Params) (Params, error) {
	raw := strings.TrimSpace(r.ForecastStartISO)
	if raw == "" {
		return Params{}, fmt.Errorf("%w: forecastStartISO is required", customerrors.ErrInvalidForecastStart)
	}
	start, err := parseISO(raw)
	if err != nil {
		return Params{}, fmt.Errorf("%w: %v", customerrors.ErrInvalidForecastStart, err)
	}

	p := defaults
	p.ForecastStart = start
	if r.HistoryDays > 0 {
		p.HistoryDays = r.HistoryDays
	}
	if r.HorizonDays != 0 {
		p.HorizonDays = r.HorizonDays
	}
	if r.SlotMinutes != 0 {
		p.SlotMinutes = r.SlotMinutes
	}
	if r.Method != "" {
		m, err := staffing.ParseMethod(r.Method)
		if err != nil {
			return Params{}, err
		}
		p.Method = m
	}
	if r.TargetASASeconds != nil {
		p.TargetASASeconds = *r.TargetASASeconds
	}
	if r.ZSafety != nil {
		p.ZSafety = *r.ZSafety
	}
	if r.Activity != "" {
		p.Activity = r.Activity
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func parseISO(s string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
