package validation

import (
	"fmt"
	"sort"
	"strings"

	"workforce-engine/models"
	"workforce-engine/timeslot"
)

// checkSkills flags shifts whose user lacks a skill the position requires.
// Unknown users or positions are skipped; availability already reports
// missing users.
func (r *run) checkSkills() {
	for _, s := range r.in.Shifts {
		u, okUser := r.users[s.UserID]
		p, okPos := r.positions[s.PositionID]
		if !okUser || !okPos {
			continue
		}

		have := make(map[string]bool, len(u.Skills))
		for _, skill := range u.Skills {
			have[skill] = true
		}
		var missing []string
		for _, skill := range p.RequiredSkills {
			if !have[skill] {
				missing = append(missing, skill)
			}
		}
		if len(missing) > 0 {
			r.add(models.ViolationSkills,
				fmt.Sprintf("User %s is missing skills %s for position %s", u.ID, strings.Join(missing, ", "), p.Name),
				map[string]any{"shift": s, "missingSkills": missing})
		}
	}
}

// checkTimeLimits sums scheduled minutes per user per local day and per ISO
// week and flags totals above the user's limits. A zero limit is unlimited.
func (r *run) checkTimeLimits() {
	order, grouped := r.shiftsByUser()
	for _, userID := range order {
		u, ok := r.users[userID]
		if !ok {
			continue
		}
		loc := r.location(u)

		daily := make(map[string]int)
		weekly := make(map[string]int)
		for _, s := range grouped[userID] {
			minutes := int(s.Duration().Minutes())
			start := s.Start.In(loc)
			daily[timeslot.DayKey(start)] += minutes
			weekly[timeslot.ISOWeekKey(start)] += minutes
		}

		if u.DailyMaxMinutes > 0 {
			for _, day := range sortedKeys(daily) {
				if total := daily[day]; total > u.DailyMaxMinutes {
					r.add(models.ViolationTimeLimits,
						fmt.Sprintf("User %s is scheduled %d minutes on %s, daily limit is %d", u.ID, total, day, u.DailyMaxMinutes),
						map[string]any{"userId": u.ID, "date": day, "totalMinutes": total, "limitMinutes": u.DailyMaxMinutes})
				}
			}
		}
		if u.WeeklyMaxMinutes > 0 {
			for _, week := range sortedKeys(weekly) {
				if total := weekly[week]; total > u.WeeklyMaxMinutes {
					r.add(models.ViolationTimeLimits,
						fmt.Sprintf("User %s is scheduled %d minutes in week %s, weekly limit is %d", u.ID, total, week, u.WeeklyMaxMinutes),
						map[string]any{"userId": u.ID, "week": week, "totalMinutes": total, "limitMinutes": u.WeeklyMaxMinutes})
				}
			}
		}
	}
}

// checkActivityRules enforces position duration bounds and the cooldown
// after stress activities.
func (r *run) checkActivityRules() {
	for _, s := range r.in.Shifts {
		p, ok := r.positions[s.PositionID]
		if !ok {
			continue
		}
		minutes := s.Duration().Minutes()
		if p.MinDurationMinutes > 0 && minutes < float64(p.MinDurationMinutes) {
			r.add(models.ViolationActivityRules,
				fmt.Sprintf("Shift %s lasts %.0f minutes, %s requires at least %d", s.ID, minutes, p.Name, p.MinDurationMinutes),
				map[string]any{"shift": s, "durationMinutes": minutes, "minDurationMinutes": p.MinDurationMinutes})
		}
		if p.MaxDurationMinutes > 0 && minutes > float64(p.MaxDurationMinutes) {
			r.add(models.ViolationActivityRules,
				fmt.Sprintf("Shift %s lasts %.0f minutes, %s allows at most %d", s.ID, minutes, p.Name, p.MaxDurationMinutes),
				map[string]any{"shift": s, "durationMinutes": minutes, "maxDurationMinutes": p.MaxDurationMinutes})
		}
	}

	order, grouped := r.shiftsByUser()
	for _, userID := range order {
		shifts := append([]models.Shift(nil), grouped[userID]...)
		sort.SliceStable(shifts, func(i, j int) bool { return shifts[i].Start.Before(shifts[j].Start) })

		for i := 0; i+1 < len(shifts); i++ {
			prev, next := shifts[i], shifts[i+1]
			prevPos, ok1 := r.positions[prev.PositionID]
			nextPos, ok2 := r.positions[next.PositionID]
			if !ok1 || !ok2 || !prevPos.Stress || isBreak(nextPos) {
				continue
			}
			if gap := next.Start.Sub(prev.End); gap < StressCooldown {
				r.add(models.ViolationActivityRules,
					fmt.Sprintf("User %s needs a %d minute break after %s before shift %s, got %.0f minutes",
						userID, int(StressCooldown.Minutes()), prevPos.Name, next.ID, gap.Minutes()),
					map[string]any{"shift": prev, "nextShift": next, "gapMinutes": gap.Minutes()})
			}
		}
	}
}

// checkConflicts flags every pair of overlapping shifts of the same user.
func (r *run) checkConflicts() {
	order, grouped := r.shiftsByUser()
	for _, userID := range order {
		shifts := grouped[userID]
		for i := 0; i < len(shifts); i++ {
			for j := i + 1; j < len(shifts); j++ {
				a, b := shifts[i], shifts[j]
				if timeslot.Overlaps(a.Start, a.End, b.Start, b.End) {
					r.add(models.ViolationConflicts,
						fmt.Sprintf("Shifts %s and %s of user %s overlap", a.ID, b.ID, userID),
						map[string]any{"shift": a, "otherShift": b})
				}
			}
		}
	}
}

func isBreak(p models.Position) bool {
	return strings.EqualFold(p.Type, "break") || strings.Contains(strings.ToLower(p.Name), "break")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
