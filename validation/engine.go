// Package validation checks a proposed set of shifts against business rules
// and produces violations, quality scores and remediation suggestions.
//
// ValidateSchedule is stateless: every call builds its own lookups and
// violation list, so concurrent calls never share mutable state.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	customerrors "workforce-engine/errors"
	"workforce-engine/logx"
	"workforce-engine/metrics"
	"workforce-engine/models"
	"workforce-engine/timeslot"
)

const (
	// DefaultSlotMinutes is the coverage granularity when none is configured.
	DefaultSlotMinutes = 15
	// DefaultCalendarConcurrency bounds parallel calendar lookups.
	DefaultCalendarConcurrency = 8
	// StressCooldown is the minimum gap after a stress activity before
	// anything other than a break.
	StressCooldown = 15 * time.Minute
)

// Input is everything a validation run looks at.
type Input struct {
	Shifts    []models.Shift             `json:"shifts"`
	Users     []models.User              `json:"users"`
	Positions []models.Position          `json:"positions"`
	Forecasts []models.DemandForecastRow `json:"forecasts"`
	DateRange *models.DateRange          `json:"dateRange"`
}

// Options configures collaborators and granularity. The zero value is usable.
type Options struct {
	// Calendar is consulted for busy intervals; nil skips the lookup.
	Calendar Calendar
	Logger   logx.Logger
	// SlotMinutes must match the granularity the forecast rows were built at.
	SlotMinutes int
	// Location is used for work hours and daily/weekly totals of users
	// without their own TimeZone.
	Location            *time.Location
	CalendarConcurrency int
	Now                 func() time.Time
}

func (o Options) withDefaults() Options {
	if !timeslot.ValidSlotMinutes(o.SlotMinutes) {
		o.SlotMinutes = DefaultSlotMinutes
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.CalendarConcurrency <= 0 {
		o.CalendarConcurrency = DefaultCalendarConcurrency
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// run holds the state of a single validation call.
type run struct {
	ctx       context.Context
	opts      Options
	in        Input
	users     map[string]models.User
	positions map[string]models.Position
	locations map[string]*time.Location
	now       time.Time

	violations []models.Violation
}

// ValidateSchedule runs every rule over in and returns a fresh result.
// Input errors are returned before any rule runs; unknown users or
// positions and calendar failures never produce an error.
func ValidateSchedule(ctx context.Context, in Input, opts Options) (*models.ValidationResult, error) {
	if err := checkInput(in); err != nil {
		metrics.ValidationRunsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	opts = opts.withDefaults()
	started := time.Now()

	r := &run{
		ctx:       ctx,
		opts:      opts,
		in:        in,
		users:     make(map[string]models.User, len(in.Users)),
		positions: make(map[string]models.Position, len(in.Positions)),
		locations: make(map[string]*time.Location),
		now:       opts.Now(),
	}
	for _, u := range in.Users {
		r.users[u.ID] = u
	}
	for _, p := range in.Positions {
		r.positions[p.ID] = p
	}

	r.checkAvailability()
	r.checkSkills()
	r.checkTimeLimits()
	r.checkActivityRules()
	r.checkConflicts()
	r.checkCoverage()

	result := r.result()

	counts := make(map[string]int, len(models.ViolationTypes()))
	for _, t := range models.ViolationTypes() {
		counts[string(t)] = result.CountByType(t)
	}
	metrics.ObserveValidation(time.Since(started), len(in.Shifts), counts)
	opts.Logger.Info(ctx, "schedule_validated", "schedule validation finished",
		slog.Int("shifts", len(in.Shifts)),
		slog.Int("violations", len(result.Violations)),
		slog.Bool("ok", result.OK),
	)

	return result, nil
}

func checkInput(in Input) error {
	if in.DateRange == nil {
		return customerrors.ErrMissingDateRange
	}
	if in.DateRange.Start.IsZero() || in.DateRange.End.IsZero() {
		return fmt.Errorf("%w: start and end are required", customerrors.ErrInvalidDateRange)
	}
	if !in.DateRange.Start.Before(in.DateRange.End) {
		return fmt.Errorf("%w: start must be before end", customerrors.ErrInvalidDateRange)
	}
	for i, s := range in.Shifts {
		if !s.Start.Before(s.End) {
			return fmt.Errorf("%w: shift %d (%s) must start before it ends", customerrors.ErrInvalidShift, i, s.ID)
		}
	}
	return nil
}

func (r *run) add(t models.ViolationType, message string, details map[string]any) {
	r.violations = append(r.violations, models.Violation{
		ID:        uuid.NewString(),
		Type:      t,
		Message:   message,
		Context:   details,
		Timestamp: r.now,
	})
}

// location resolves the zone a user's hours are expressed in.
func (r *run) location(u models.User) *time.Location {
	if u.TimeZone == "" {
		return r.opts.Location
	}
	if loc, ok := r.locations[u.TimeZone]; ok {
		return loc
	}
	loc, err := time.LoadLocation(u.TimeZone)
	if err != nil {
		r.opts.Logger.Warn(r.ctx, "timezone_unknown", "falling back to default location",
			slog.String("user_id", u.ID), slog.String("time_zone", u.TimeZone))
		loc = r.opts.Location
	}
	r.locations[u.TimeZone] = loc
	return loc
}

// shiftsByUser groups shifts by user, users in first-appearance order and
// shifts in input order.
func (r *run) shiftsByUser() ([]string, map[string][]models.Shift) {
	var order []string
	grouped := make(map[string][]models.Shift)
	for _, s := range r.in.Shifts {
		if _, seen := grouped[s.UserID]; !seen {
			order = append(order, s.UserID)
		}
		grouped[s.UserID] = append(grouped[s.UserID], s)
	}
	return order, grouped
}

func (r *run) result() *models.ValidationResult {
	violations := r.violations
	if violations == nil {
		violations = []models.Violation{}
	}
	res := &models.ValidationResult{
		OK:         len(violations) == 0,
		Violations: violations,
	}

	total := len(r.in.Shifts)
	res.Metrics = models.Metrics{
		TotalShifts:       total,
		TotalUsers:        len(r.in.Users),
		TotalPositions:    len(r.in.Positions),
		AvailabilityScore: score(res.CountByType(models.ViolationAvailability), total),
		SkillMatchScore:   score(res.CountByType(models.ViolationSkills), total),
		CoverageScore:     score(res.CountByType(models.ViolationCoverage), max(1, total)),
	}
	res.Suggestions = suggestions(res)
	return res
}

// score is max(0, 100 - count/total*100). With nothing to score it is 100.
func score(count, total int) float64 {
	if total <= 0 {
		return 100
	}
	return math.Max(0, 100-float64(count)/float64(total)*100)
}

var suggestionHints = []struct {
	typ  models.ViolationType
	hint string
}{
	{models.ViolationAvailability, "Reassign these shifts to users who are working and free at those times"},
	{models.ViolationSkills, "Assign users holding the required skills, or train the assigned users"},
	{models.ViolationCoverage, "Add shifts to the understaffed slots or move shifts from overstaffed ones"},
}

func suggestions(res *models.ValidationResult) []models.Suggestion {
	out := []models.Suggestion{}
	for _, h := range suggestionHints {
		if n := res.CountByType(h.typ); n > 0 {
			out = append(out, models.Suggestion{Type: h.typ, Message: h.hint, Count: n})
		}
	}
	return out
}
