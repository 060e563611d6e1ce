package validation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"workforce-engine/metrics"
	"workforce-engine/models"
	"workforce-engine/timeslot"
)

type calendarKey struct {
	userID string
	day    string
}

// checkAvailability flags shifts of unknown users, shifts outside the user's
// working hours and shifts that collide with calendar events.
func (r *run) checkAvailability() {
	busy := r.fetchBusyIntervals()

	for _, s := range r.in.Shifts {
		u, ok := r.users[s.UserID]
		if !ok {
			r.add(models.ViolationAvailability,
				fmt.Sprintf("User %s not found for shift %s", s.UserID, s.ID),
				map[string]any{"shift": s})
			continue
		}

		loc := r.location(u)
		start := s.Start.In(loc)
		end := s.End.In(loc)
		weekday := timeslot.WeekdayIndex(start)

		hours, ok := u.WorkHours[weekday]
		if !ok || !hours.IsWorking {
			r.add(models.ViolationAvailability,
				fmt.Sprintf("User %s does not work on %s", u.ID, start.Weekday()),
				map[string]any{"shift": s, "weekday": start.Weekday().String()})
		} else {
			startMin := timeslot.MinutesOfDay(start)
			// Shifts running past midnight end beyond minute 1440.
			endMin := int(end.Sub(timeslot.StartOfDay(start)).Minutes())
			if startMin < hours.StartMinute || endMin > hours.EndMinute {
				r.add(models.ViolationAvailability,
					fmt.Sprintf("Shift %s (%s-%s) is outside working hours %s-%s of user %s",
						s.ID, clock(startMin), clock(endMin), clock(hours.StartMinute), clock(hours.EndMinute), u.ID),
					map[string]any{"shift": s, "workHours": hours})
			}
		}

		for _, b := range busy[calendarKey{userID: u.ID, day: timeslot.DayKey(start)}] {
			if timeslot.Overlaps(s.Start, s.End, b.Start, b.End) {
				r.add(models.ViolationAvailability,
					fmt.Sprintf("Shift %s overlaps calendar event %q of user %s", s.ID, b.Name, u.ID),
					map[string]any{"shift": s, "event": b.Name, "eventStart": b.Start, "eventEnd": b.End})
			}
		}
	}
}

// fetchBusyIntervals looks up every distinct (user, local day) once, in
// parallel. A failed lookup is logged and treated as an empty calendar.
func (r *run) fetchBusyIntervals() map[calendarKey][]BusyInterval {
	if r.opts.Calendar == nil {
		return nil
	}

	type lookup struct {
		key calendarKey
		day time.Time
	}
	var lookups []lookup
	seen := make(map[calendarKey]bool)
	for _, s := range r.in.Shifts {
		u, ok := r.users[s.UserID]
		if !ok {
			continue
		}
		start := s.Start.In(r.location(u))
		key := calendarKey{userID: u.ID, day: timeslot.DayKey(start)}
		if seen[key] {
			continue
		}
		seen[key] = true
		lookups = append(lookups, lookup{key: key, day: timeslot.StartOfDay(start)})
	}

	// Each task owns one slot of results.
	results := make([][]BusyInterval, len(lookups))
	var g errgroup.Group
	g.SetLimit(r.opts.CalendarConcurrency)
	for i, l := range lookups {
		i, l := i, l
		g.Go(func() error {
			intervals, err := r.lookupCalendar(r.ctx, l.key.userID, l.day)
			if err != nil {
				metrics.CalendarLookupErrorsTotal.Inc()
				r.opts.Logger.Warn(r.ctx, "calendar_lookup_failed", "treating calendar as free",
					slog.String("user_id", l.key.userID),
					slog.String("date", l.key.day),
					slog.String("error", err.Error()),
				)
				return nil
			}
			results[i] = intervals
			return nil
		})
	}
	_ = g.Wait()

	busy := make(map[calendarKey][]BusyInterval, len(lookups))
	for i, l := range lookups {
		busy[l.key] = results[i]
	}
	return busy
}

// lookupCalendar turns collaborator panics into errors so one bad lookup
// cannot take the run down.
func (r *run) lookupCalendar(ctx context.Context, userID string, day time.Time) (intervals []BusyInterval, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("calendar lookup panicked: %v", p)
		}
	}()
	return r.opts.Calendar.BusyIntervals(ctx, userID, day)
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
