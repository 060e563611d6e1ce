package cli

import (
	"fmt"
	"io"
	"os"

	"workforce-engine/config"
	"workforce-engine/forecast"
	"workforce-engine/staffing"
	"workforce-engine/validation"
)

// forecastDefaults turns the forecast section of the config into engine
// parameters. ForecastStart stays zero; callers supply it per run.
func forecastDefaults(cfg config.ForecastConfig) (forecast.Params, error) {
	method, err := staffing.ParseMethod(cfg.Method)
	if err != nil {
		return forecast.Params{}, fmt.Errorf("config forecast.method: %w", err)
	}
	return forecast.Params{
		HistoryDays:      cfg.HistoryDays,
		HorizonDays:      cfg.HorizonDays,
		SlotMinutes:      cfg.SlotMinutes,
		Method:           method,
		TargetASASeconds: deref(cfg.TargetASASeconds, forecast.DefaultParams().TargetASASeconds),
		ZSafety:          deref(cfg.ZSafety, forecast.DefaultParams().ZSafety),
		SmoothingWeight:  cfg.SmoothingWeight,
		MaxAgents:        cfg.MaxAgents,
		Activity:         cfg.Activity,
		MaxHorizonDays:   cfg.MaxHorizonDays,
		MaxHistoryDays:   cfg.MaxHistoryDays,
	}, nil
}

func deref(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// validationOptions builds validator options from config. calendarPath
// overrides validation.calendar_file when set.
func (a *app) validationOptions(calendarPath string) (validation.Options, error) {
	vc := a.cfg.Validation
	loc, err := vc.Location()
	if err != nil {
		return validation.Options{}, err
	}

	opts := validation.Options{
		Logger:              a.logger,
		SlotMinutes:         vc.SlotMinutes,
		Location:            loc,
		CalendarConcurrency: vc.CalendarConcurrency,
	}

	if calendarPath == "" {
		calendarPath = vc.CalendarFile
	}
	if calendarPath != "" {
		cal, err := validation.LoadCalendarFile(calendarPath)
		if err != nil {
			return validation.Options{}, err
		}
		opts.Calendar = validation.NewCachedCalendar(cal, vc.CalendarCacheTTL)
	}
	return opts, nil
}

// openInput opens path for reading, with "-" meaning stdin.
func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input: %w", err)
	}
	return f, nil
}
