package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"workforce-engine/models"
	"workforce-engine/timeslot"
)

// DayData groups the forecast rows of one calendar day.
type DayData struct {
	Date       string               `json:"date"`
	PeakAgents int                  `json:"peakAgents"`
	AgentSlots int                  `json:"agentSlots"`
	Rows       []models.ForecastRow `json:"rows"`
}

// prepareForecastData splits rows into days, keeping row order.
func prepareForecastData(rows []models.ForecastRow) []DayData {
	var days []DayData
	index := make(map[string]int)
	for _, row := range rows {
		key := timeslot.DayKey(row.SlotStart.UTC())
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DayData{Date: key})
		}
		day := &days[i]
		day.Rows = append(day.Rows, row)
		day.AgentSlots += row.RequiredAgents
		day.PeakAgents = max(day.PeakAgents, row.RequiredAgents)
	}
	return days
}

// FormatForecastText returns one header line per day followed by one line
// per slot.
func FormatForecastText(rows []models.ForecastRow) string {
	var sb strings.Builder
	for _, day := range prepareForecastData(rows) {
		weekday := ""
		if len(day.Rows) > 0 {
			weekday = day.Rows[0].SlotStart.UTC().Weekday().String()[:3]
		}
		sb.WriteString(fmt.Sprintf("%s (%s) : peak=%d ; agent-slots=%d\n", day.Date, weekday, day.PeakAgents, day.AgentSlots))
		for _, row := range day.Rows {
			sb.WriteString(formatForecastLine(row))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatForecastLine(row models.ForecastRow) string {
	clock := row.SlotStart.UTC().Format("15:04")
	if row.RequiredAgents == 0 && row.ExpectedArrivals == 0 {
		return fmt.Sprintf("  %s : agents=0 ; none", clock)
	}
	return fmt.Sprintf("  %s : agents=%d ; [%s: arrivals=%.2f, aht=%.2f, concurrency=%.2f]",
		clock, row.RequiredAgents, row.Activity, row.ExpectedArrivals, row.AHTMinutes, row.Concurrency)
}

// FormatForecastJSON returns the rows as an indented JSON array.
func FormatForecastJSON(rows []models.ForecastRow) string {
	if rows == nil {
		rows = []models.ForecastRow{}
	}
	jsonBytes, _ := json.MarshalIndent(rows, "", "  ")
	return string(jsonBytes)
}

// FormatForecastCSV returns one CSV line per slot.
func FormatForecastCSV(rows []models.ForecastRow) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write([]string{
		"Date", "Slot Start", "Slot", "Weekday", "Activity",
		"Expected Arrivals", "AHT Minutes", "Concurrency", "Required Agents",
	})
	for _, row := range rows {
		start := row.SlotStart.UTC()
		writer.Write([]string{
			timeslot.DayKey(start),
			start.Format("15:04"),
			strconv.Itoa(row.SlotOfDay),
			strconv.Itoa(row.Weekday),
			row.Activity,
			strconv.FormatFloat(row.ExpectedArrivals, 'f', 2, 64),
			strconv.FormatFloat(row.AHTMinutes, 'f', 2, 64),
			strconv.FormatFloat(row.Concurrency, 'f', 2, 64),
			strconv.Itoa(row.RequiredAgents),
		})
	}

	writer.Flush()
	return sb.String()
}
