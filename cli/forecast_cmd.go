package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"workforce-engine/forecast"
	"workforce-engine/formatter"
	"workforce-engine/models"
	"workforce-engine/parser"
)

var forecastFormats = map[string]bool{"text": true, "json": true, "csv": true}

func newForecastCmd(a *app) *cobra.Command {
	var (
		input     string
		format    string
		req       forecast.Request
		targetASA float64
		zSafety   float64
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast per-slot staffing from an interaction history CSV",
		Long: `Reads interaction history (timestamp,handle_seconds,concurrency) and prints
the required agents for every slot of the forecast horizon.

Unset flags fall back to the forecast section of the config.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !forecastFormats[format] {
				return fmt.Errorf("format must be one of: text, json, csv (got: %s)", format)
			}
			if !cmd.Flags().Changed("start") {
				return fmt.Errorf("--start is required")
			}

			// An explicit 0 is a valid target, so only Changed decides.
			if cmd.Flags().Changed("target-asa") {
				req.TargetASASeconds = &targetASA
			}
			if cmd.Flags().Changed("z-safety") {
				req.ZSafety = &zSafety
			}

			defaults, err := forecastDefaults(a.cfg.Forecast)
			if err != nil {
				return err
			}
			p, err := req.Params(defaults)
			if err != nil {
				return err
			}

			in, err := openInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			history, err := parser.ParseHistory(in)
			if err != nil {
				return fmt.Errorf("parsing history: %w", err)
			}

			rows, err := forecast.Staffing(history, p)
			if err != nil {
				return err
			}
			a.logger.Info(cmd.Context(), "forecast_generated", "forecast complete",
				slog.String("method", string(p.Method)),
				slog.Int("history_records", len(history)),
				slog.Int("rows", len(rows)),
				slog.Int("peak_agents", forecast.PeakAgents(rows)),
			)

			return writeForecast(cmd.OutOrStdout(), format, rows)
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "History CSV file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json|csv")
	cmd.Flags().StringVar(&req.ForecastStartISO, "start", "", "First forecast day (YYYY-MM-DD or RFC3339)")
	cmd.Flags().IntVar(&req.HistoryDays, "history-days", 0, "Days of history before --start to learn from")
	cmd.Flags().IntVar(&req.HorizonDays, "horizon-days", 0, "Number of days to forecast")
	cmd.Flags().IntVar(&req.SlotMinutes, "slot-minutes", 0, "Slot length in minutes (must divide 1440)")
	cmd.Flags().StringVar(&req.Method, "method", "", "Staffing model: halfin|erlang")
	cmd.Flags().Float64Var(&targetASA, "target-asa", 0, "Target average speed of answer in seconds (erlang)")
	cmd.Flags().Float64Var(&zSafety, "z-safety", 0, "Safety factor for the square-root rule (halfin)")
	cmd.Flags().StringVar(&req.Activity, "activity", "", "Activity label attached to every row")

	return cmd
}

func writeForecast(w io.Writer, format string, rows []models.ForecastRow) error {
	var out string
	switch format {
	case "json":
		out = formatter.FormatForecastJSON(rows) + "\n"
	case "csv":
		out = formatter.FormatForecastCSV(rows)
	default:
		out = formatter.FormatForecastText(rows)
	}
	_, err := io.WriteString(w, out)
	return err
}
