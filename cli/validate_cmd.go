package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"workforce-engine/formatter"
	"workforce-engine/models"
	"workforce-engine/parser"
	"workforce-engine/validation"
)

// ErrViolations is returned by validate --fail-on-violations when the
// schedule is not OK.
var ErrViolations = errors.New("schedule has violations")

var validateFormats = map[string]bool{"text": true, "json": true}

func newValidateCmd(a *app) *cobra.Command {
	var (
		input            string
		format           string
		forecastsPath    string
		calendarPath     string
		failOnViolations bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a schedule JSON document against the business rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validateFormats[format] {
				return fmt.Errorf("format must be one of: text, json (got: %s)", format)
			}

			in, err := readSchedule(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if forecastsPath != "" {
				rows, err := readForecasts(forecastsPath, cmd.InOrStdin())
				if err != nil {
					return err
				}
				in.Forecasts = rows
			}

			opts, err := a.validationOptions(calendarPath)
			if err != nil {
				return err
			}
			res, err := validation.ValidateSchedule(cmd.Context(), in, opts)
			if err != nil {
				return err
			}

			if err := writeValidation(cmd.OutOrStdout(), format, res); err != nil {
				return err
			}
			if failOnViolations && !res.OK {
				return fmt.Errorf("%w: %d", ErrViolations, len(res.Violations))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "Schedule JSON file (- for stdin)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text|json")
	cmd.Flags().StringVar(&forecastsPath, "forecasts", "", "Forecast rows JSON replacing the document's forecasts")
	cmd.Flags().StringVar(&calendarPath, "calendar", "", "Calendar YAML of busy intervals (overrides validation.calendar_file)")
	cmd.Flags().BoolVar(&failOnViolations, "fail-on-violations", false, "Exit non-zero when any violation is found")

	return cmd
}

func readSchedule(path string, stdin io.Reader) (validation.Input, error) {
	r, err := openInput(path, stdin)
	if err != nil {
		return validation.Input{}, err
	}
	defer r.Close()

	in, err := parser.ParseSchedule(r)
	if err != nil {
		return validation.Input{}, fmt.Errorf("parsing schedule: %w", err)
	}
	return in, nil
}

func readForecasts(path string, stdin io.Reader) ([]models.DemandForecastRow, error) {
	r, err := openInput(path, stdin)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	rows, err := parser.ParseForecastRows(r)
	if err != nil {
		return nil, fmt.Errorf("parsing forecasts: %w", err)
	}
	return rows, nil
}

func writeValidation(w io.Writer, format string, res *models.ValidationResult) error {
	var out string
	switch format {
	case "json":
		out = formatter.FormatValidationJSON(res) + "\n"
	default:
		out = formatter.FormatValidationText(res)
	}
	_, err := io.WriteString(w, out)
	return err
}
