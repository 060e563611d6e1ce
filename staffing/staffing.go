// Package staffing converts the workload of a single slot into a required
// headcount. Two interchangeable models are provided: a square-root safety
// staffing rule and an Erlang-C average-speed-of-answer search.
package staffing

import (
	"fmt"
	"math"
	"strings"

	customerrors "workforce-engine/errors"
)

// Method selects the staffing model.
type Method string

const (
	// MethodHalfin is the square-root safety staffing rule.
	MethodHalfin Method = "halfin"
	// MethodErlang searches for the smallest Erlang-C headcount meeting a target ASA.
	MethodErlang Method = "erlang"
)

// DefaultMaxAgents bounds the Erlang-C search.
const DefaultMaxAgents = 200

// ParseMethod resolves a method name, case-insensitively.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodHalfin:
		return MethodHalfin, nil
	case MethodErlang:
		return MethodErlang, nil
	default:
		return "", fmt.Errorf("%w: %q", customerrors.ErrUnknownMethod, s)
	}
}

// Input describes the workload of one slot.
type Input struct {
	// Arrivals is the expected number of contacts in the slot.
	Arrivals    float64
	SlotMinutes int
	AHTMinutes  float64
	// Concurrency is how many contacts one agent works in parallel.
	Concurrency float64

	TargetASASeconds float64
	ZSafety          float64
	MaxAgents        int
}

// Required dispatches to the model selected by m.
func Required(m Method, in Input) (int, error) {
	switch m {
	case MethodHalfin:
		return SquareRootSafety(in), nil
	case MethodErlang:
		return ErlangC(in), nil
	default:
		return 0, fmt.Errorf("%w: %q", customerrors.ErrUnknownMethod, m)
	}
}

// OfferedLoad returns the slot workload in Erlangs, or 0 when the inputs
// cannot produce a finite positive load.
func OfferedLoad(in Input) float64 {
	if in.Arrivals <= 0 || in.SlotMinutes <= 0 || in.AHTMinutes <= 0 || in.Concurrency <= 0 {
		return 0
	}
	return (in.Arrivals / float64(in.SlotMinutes)) * (in.AHTMinutes / in.Concurrency)
}

// SquareRootSafety returns ceil(a + z*sqrt(a)) for offered load a.
func SquareRootSafety(in Input) int {
	offered := OfferedLoad(in)
	if offered <= 0 {
		return 0
	}
	return int(math.Ceil(offered + in.ZSafety*math.Sqrt(offered)))
}

// ErlangC returns the smallest headcount whose average speed of answer is
// within in.TargetASASeconds. The search starts at max(1, ceil(a)), skips
// unstable headcounts and gives up at MaxAgents.
func ErlangC(in Input) int {
	maxAgents := in.MaxAgents
	if maxAgents <= 0 {
		maxAgents = DefaultMaxAgents
	}
	if in.Arrivals <= 0 || in.SlotMinutes <= 0 || in.AHTMinutes <= 0 {
		return 0
	}
	// No service capacity at all.
	if in.Concurrency <= 0 {
		return maxAgents
	}

	lambda := in.Arrivals / float64(in.SlotMinutes)
	mu := in.Concurrency / in.AHTMinutes
	a := lambda / mu

	start := int(math.Max(1, math.Ceil(a)))
	if start > maxAgents {
		return maxAgents
	}

	// Erlang-B is built up incrementally so each n costs O(1).
	b := 1.0
	for k := 1; k < start; k++ {
		b = a * b / (float64(k) + a*b)
	}
	for n := start; n <= maxAgents; n++ {
		b = a * b / (float64(n) + a*b)
		if a/float64(n) >= 1 {
			continue
		}
		pw := erlangCFromB(a, n, b)
		asa := pw / (float64(n)*mu - lambda) * 60
		if asa <= in.TargetASASeconds {
			return n
		}
	}
	return maxAgents
}

// ErlangCWaitProbability returns the probability that an arrival has to wait
// with n agents and offered load a. Unstable systems (a >= n) return 1.
func ErlangCWaitProbability(a float64, n int) float64 {
	if n <= 0 || a >= float64(n) {
		return 1
	}
	if a <= 0 {
		return 0
	}
	b := 1.0
	for k := 1; k <= n; k++ {
		b = a * b / (float64(k) + a*b)
	}
	return erlangCFromB(a, n, b)
}

// AverageSpeedOfAnswer returns the expected wait in seconds for n agents.
// Degenerate inputs return +Inf for unstable systems and 0 for empty ones.
func AverageSpeedOfAnswer(in Input, n int) float64 {
	if in.Arrivals <= 0 || in.SlotMinutes <= 0 || in.AHTMinutes <= 0 {
		return 0
	}
	if in.Concurrency <= 0 || n <= 0 {
		return math.Inf(1)
	}
	lambda := in.Arrivals / float64(in.SlotMinutes)
	mu := in.Concurrency / in.AHTMinutes
	a := lambda / mu
	if a/float64(n) >= 1 {
		return math.Inf(1)
	}
	return ErlangCWaitProbability(a, n) / (float64(n)*mu - lambda) * 60
}

func erlangCFromB(a float64, n int, b float64) float64 {
	rho := a / float64(n)
	return b / (1 - rho*(1-b))
}
