// Package parser reads interaction history, schedules and forecast rows from
// their file formats.
package parser

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	customerrors "workforce-engine/errors"
	"workforce-engine/metrics"
	"workforce-engine/models"
	"workforce-engine/validation"
)

// ParseHistory reads interaction history as CSV:
//
//	timestamp,handle_seconds,concurrency
//	2024-02-05T09:03:00Z,240,1
//
// Lines starting with '#' are comments and a leading "timestamp" header row is
// skipped. Timestamps are RFC3339; a timestamp without an offset is read as
// UTC. handle_seconds and concurrency may be left empty, which marks the value
// as not recorded.
func ParseHistory(r io.Reader) ([]models.HistoryRecord, error) {
	started := time.Now()
	defer func() { metrics.ParserDurationSeconds.Observe(time.Since(started).Seconds()) }()

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var data []models.HistoryRecord
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues("csv").Inc()
			return nil, fmt.Errorf("error reading CSV: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if len(data) == 0 && strings.EqualFold(strings.TrimSpace(record[0]), "timestamp") {
			continue
		}

		rec, err := parseHistoryRecord(record)
		if err != nil {
			metrics.ParserErrorsTotal.WithLabelValues(errorType(err)).Inc()
			return nil, &customerrors.ParseError{Line: line, Record: record, Err: err}
		}
		data = append(data, rec)
	}

	metrics.ParserRecordsTotal.Add(float64(len(data)))
	return data, nil
}

func parseHistoryRecord(record []string) (models.HistoryRecord, error) {
	if len(record) == 0 || len(record) > 3 {
		return models.HistoryRecord{}, customerrors.ErrInvalidFieldCount
	}
	raw := strings.TrimSpace(record[0])
	if raw == "" {
		return models.HistoryRecord{}, customerrors.ErrEmptyRecord
	}

	var rec models.HistoryRecord
	var err error
	rec.OccurredAt, err = parseTimestamp(raw)
	if err != nil {
		return rec, fmt.Errorf("%w: %v", customerrors.ErrInvalidTimestamp, err)
	}

	if len(record) > 1 {
		seconds, err := parseOptionalFloat(record[1])
		if err != nil {
			return rec, fmt.Errorf("%w: %v", customerrors.ErrInvalidHandleTime, err)
		}
		rec.HandleMinutes = seconds / 60
	}
	if len(record) > 2 {
		rec.Concurrency, err = parseOptionalFloat(record[2])
		if err != nil {
			return rec, fmt.Errorf("%w: %v", customerrors.ErrInvalidConcurrency, err)
		}
	}
	return rec, nil
}

func parseTimestamp(value string) (time.Time, error) {
	layouts := []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseOptionalFloat returns 0 for an empty field and rejects negatives.
func parseOptionalFloat(value string) (float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if f < 0 {
		return 0, fmt.Errorf("must not be negative, got %v", f)
	}
	return f, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, customerrors.ErrInvalidFieldCount):
		return "field_count"
	case errors.Is(err, customerrors.ErrEmptyRecord):
		return "empty_record"
	case errors.Is(err, customerrors.ErrInvalidTimestamp):
		return "timestamp"
	case errors.Is(err, customerrors.ErrInvalidHandleTime):
		return "handle_time"
	case errors.Is(err, customerrors.ErrInvalidConcurrency):
		return "concurrency"
	default:
		return "other"
	}
}

// ParseSchedule decodes a validation request:
//
//	{"shifts": [...], "users": [...], "positions": [...],
//	 "forecasts": [...], "dateRange": {"start": "...", "end": "..."}}
func ParseSchedule(r io.Reader) (validation.Input, error) {
	var in validation.Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("schedule_json").Inc()
		return validation.Input{}, fmt.Errorf("decoding schedule: %w", err)
	}
	return in, nil
}

// ParseForecastRows decodes demand rows. It accepts either a bare array of
// rows or the array of generated forecast rows written by the forecast
// command, which carry slotStart/slotOfDay instead of date/slotIndex.
func ParseForecastRows(r io.Reader) ([]models.DemandForecastRow, error) {
	var raw []struct {
		models.DemandForecastRow
		SlotStart *time.Time `json:"slotStart"`
		SlotOfDay *int       `json:"slotOfDay"`
	}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		metrics.ParserErrorsTotal.WithLabelValues("forecast_json").Inc()
		return nil, fmt.Errorf("decoding forecast rows: %w", err)
	}

	rows := make([]models.DemandForecastRow, 0, len(raw))
	for _, item := range raw {
		row := item.DemandForecastRow
		if item.SlotStart != nil && row.Date.IsZero() {
			row.Date = *item.SlotStart
		}
		if item.SlotOfDay != nil && row.SlotIndex == 0 {
			row.SlotIndex = *item.SlotOfDay
		}
		rows = append(rows, row)
	}
	return rows, nil
}
