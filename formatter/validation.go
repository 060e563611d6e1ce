package formatter

import (
	"encoding/json"
	"fmt"
	"strings"

	"workforce-engine/models"
)

// FormatValidationText renders a validation result for terminals: a summary
// line, the scores, violations grouped by type and the suggestions.
func FormatValidationText(res *models.ValidationResult) string {
	var sb strings.Builder

	if res.OK {
		sb.WriteString("Schedule OK\n")
	} else {
		sb.WriteString(fmt.Sprintf("Schedule has %d violation(s)\n", len(res.Violations)))
	}
	m := res.Metrics
	sb.WriteString(fmt.Sprintf("shifts=%d ; users=%d ; positions=%d\n", m.TotalShifts, m.TotalUsers, m.TotalPositions))
	sb.WriteString(fmt.Sprintf("scores: availability=%.1f, skills=%.1f, coverage=%.1f\n",
		m.AvailabilityScore, m.SkillMatchScore, m.CoverageScore))

	for _, t := range models.ViolationTypes() {
		n := res.CountByType(t)
		if n == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", t, n))
		for _, v := range res.Violations {
			if v.Type == t {
				sb.WriteString(fmt.Sprintf("  • %s\n", v.Message))
			}
		}
	}

	if len(res.Suggestions) > 0 {
		sb.WriteString("Suggestions:\n")
		for _, s := range res.Suggestions {
			sb.WriteString(fmt.Sprintf("  • [%s x%d] %s\n", s.Type, s.Count, s.Message))
		}
	}
	return sb.String()
}

// FormatValidationJSON returns the result as indented JSON.
func FormatValidationJSON(res *models.ValidationResult) string {
	jsonBytes, _ := json.MarshalIndent(res, "", "  ")
	return string(jsonBytes)
}
