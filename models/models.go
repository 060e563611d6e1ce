package models

import "time"

// Shift is a single assignment of a user to a position over [Start, End).
// It is shared across packages and never mutated once validated.
type Shift struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	PositionID string    `json:"positionId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// Duration returns the length of the shift.
func (s Shift) Duration() time.Duration {
	return s.End.Sub(s.Start)
}

// WorkHours is one weekday entry of a user's working-hours table.
// StartMinute and EndMinute are minutes since local midnight.
type WorkHours struct {
	IsWorking   bool `json:"isWorking"`
	StartMinute int  `json:"startMinute"`
	EndMinute   int  `json:"endMinute"`
}

// User holds the scheduling attributes of an agent.
type User struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Skills []string `json:"skills"`
	// WorkHours is keyed by weekday index, Monday=0.
	WorkHours        map[int]WorkHours `json:"workHours"`
	DailyMaxMinutes  int               `json:"dailyMaxMinutes"`
	WeeklyMaxMinutes int               `json:"weeklyMaxMinutes"`
	// TimeZone is an optional IANA name used for availability checks.
	TimeZone string `json:"timeZone,omitempty"`
}

// Position is an activity a shift can be assigned to.
type Position struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	RequiredSkills     []string `json:"requiredSkills"`
	MinDurationMinutes int      `json:"minDurationMinutes"`
	MaxDurationMinutes int      `json:"maxDurationMinutes"`
	Stress             bool     `json:"stress"`
}

// DemandForecastRow is the required headcount for one slot and activity.
type DemandForecastRow struct {
	Date           time.Time `json:"date"`
	SlotIndex      int       `json:"slotIndex"`
	Activity       string    `json:"activity"`
	RequiredAgents int       `json:"requiredAgents"`
}

// DateRange bounds a validation run.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HistoryRecord is one historical interaction used to build a forecast.
// Zero HandleMinutes or Concurrency means the value was not recorded.
type HistoryRecord struct {
	OccurredAt    time.Time
	HandleMinutes float64
	Concurrency   float64
}

// ForecastRow is one slot of a generated staffing forecast.
type ForecastRow struct {
	SlotStart        time.Time `json:"slotStart"`
	Weekday          int       `json:"weekday"`
	SlotOfDay        int       `json:"slotOfDay"`
	Activity         string    `json:"activity"`
	ExpectedArrivals float64   `json:"expectedArrivals"`
	AHTMinutes       float64   `json:"ahtMinutes"`
	Concurrency      float64   `json:"concurrency"`
	RequiredAgents   int       `json:"requiredAgents"`
}

// Demand converts a forecast row into the shape consumed by coverage checks.
func (r ForecastRow) Demand() DemandForecastRow {
	return DemandForecastRow{
		Date:           r.SlotStart,
		SlotIndex:      r.SlotOfDay,
		Activity:       r.Activity,
		RequiredAgents: r.RequiredAgents,
	}
}

// ViolationType classifies the rule a violation came from.
type ViolationType string

const (
	ViolationAvailability  ViolationType = "AVAILABILITY"
	ViolationSkills        ViolationType = "SKILLS"
	ViolationTimeLimits    ViolationType = "TIME_LIMITS"
	ViolationActivityRules ViolationType = "ACTIVITY_RULES"
	ViolationConflicts     ViolationType = "CONFLICTS"
	ViolationCoverage      ViolationType = "COVERAGE"
)

// ViolationTypes lists every violation type in reporting order.
func ViolationTypes() []ViolationType {
	return []ViolationType{
		ViolationAvailability,
		ViolationSkills,
		ViolationTimeLimits,
		ViolationActivityRules,
		ViolationConflicts,
		ViolationCoverage,
	}
}

// Violation is a single broken rule.
type Violation struct {
	ID        string         `json:"id"`
	Type      ViolationType  `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Metrics summarizes the quality of a validated schedule.
// Scores are percentages in [0, 100].
type Metrics struct {
	TotalShifts       int     `json:"totalShifts"`
	TotalUsers        int     `json:"totalUsers"`
	TotalPositions    int     `json:"totalPositions"`
	CoverageScore     float64 `json:"coverageScore"`
	SkillMatchScore   float64 `json:"skillMatchScore"`
	AvailabilityScore float64 `json:"availabilityScore"`
}

// Suggestion is a remediation hint for one violation type.
type Suggestion struct {
	Type    ViolationType `json:"type"`
	Message string        `json:"message"`
	Count   int           `json:"count"`
}

// ValidationResult is the output of a validation run.
type ValidationResult struct {
	OK          bool         `json:"ok"`
	Violations  []Violation  `json:"violations"`
	Metrics     Metrics      `json:"metrics"`
	Suggestions []Suggestion `json:"suggestions"`
}

// CountByType returns the number of violations of the given type.
func (r *ValidationResult) CountByType(t ViolationType) int {
	n := 0
	for _, v := range r.Violations {
		if v.Type == t {
			n++
		}
	}
	return n
}
