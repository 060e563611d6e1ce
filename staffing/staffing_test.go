package staffing_test

import (
	"errors"
	"math"
	"testing"

	customerrors "workforce-engine/errors"
	"workforce-engine/staffing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquareRootSafety(t *testing.T) {
	tests := map[string]struct {
		input    staffing.Input
		expected int
	}{
		"OfferedLoadOnly": {
			input:    staffing.Input{Arrivals: 100, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, ZSafety: 0},
			expected: 20,
		},
		"WithSafetyMargin": {
			// a = 20, 20 + sqrt(20) = 24.47
			input:    staffing.Input{Arrivals: 100, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, ZSafety: 1},
			expected: 25,
		},
		"ConcurrencyHalvesLoad": {
			// a = 10, 10 + 3.16
			input:    staffing.Input{Arrivals: 100, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 2, ZSafety: 1},
			expected: 14,
		},
		"ZeroArrivals": {
			input:    staffing.Input{Arrivals: 0, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, ZSafety: 1},
			expected: 0,
		},
		"ZeroConcurrencyIsGuarded": {
			input:    staffing.Input{Arrivals: 10, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 0, ZSafety: 1},
			expected: 0,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, staffing.SquareRootSafety(tc.input))
		})
	}
}

func TestErlangCWaitProbability(t *testing.T) {
	// 10 Erlangs, textbook values.
	assert.InDelta(t, 0.6821, staffing.ErlangCWaitProbability(10, 11), 0.0001)
	assert.InDelta(t, 0.4494, staffing.ErlangCWaitProbability(10, 12), 0.0001)
	assert.InDelta(t, 0.2853, staffing.ErlangCWaitProbability(10, 13), 0.0001)

	assert.Equal(t, 1.0, staffing.ErlangCWaitProbability(10, 10), "unstable load always waits")
	assert.Equal(t, 0.0, staffing.ErlangCWaitProbability(0, 3))
}

func TestErlangC(t *testing.T) {
	// 100 contacts per 30 minutes at 3 minutes AHT is 10 Erlangs.
	base := staffing.Input{Arrivals: 100, SlotMinutes: 30, AHTMinutes: 3, Concurrency: 1}

	tests := map[string]struct {
		target   float64
		expected int
	}{
		"Strict":  {target: 10, expected: 14},
		"Twenty":  {target: 20, expected: 13},
		"Minute":  {target: 60, expected: 12},
		"Relaxed": {target: 200, expected: 11},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			in := base
			in.TargetASASeconds = tc.target
			assert.Equal(t, tc.expected, staffing.ErlangC(in))
		})
	}
}

func TestErlangC_Degenerate(t *testing.T) {
	tests := map[string]struct {
		input    staffing.Input
		expected int
	}{
		"ZeroArrivals": {
			input:    staffing.Input{Arrivals: 0, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, TargetASASeconds: 20},
			expected: 0,
		},
		"ZeroServiceRate": {
			input:    staffing.Input{Arrivals: 10, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 0, TargetASASeconds: 20},
			expected: staffing.DefaultMaxAgents,
		},
		"LoadBeyondBound": {
			input:    staffing.Input{Arrivals: 1000, SlotMinutes: 15, AHTMinutes: 10, Concurrency: 1, TargetASASeconds: 20, MaxAgents: 50},
			expected: 50,
		},
		"ZeroTargetNeverMet": {
			input:    staffing.Input{Arrivals: 10, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, TargetASASeconds: 0, MaxAgents: 30},
			expected: 30,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, staffing.ErlangC(tc.input))
		})
	}
}

func TestErlangC_NonIncreasingInTarget(t *testing.T) {
	for _, arrivals := range []float64{5, 40, 120, 400} {
		prev := math.MaxInt
		for target := 0.0; target <= 300; target += 5 {
			got := staffing.ErlangC(staffing.Input{
				Arrivals:         arrivals,
				SlotMinutes:      15,
				AHTMinutes:       4.5,
				Concurrency:      1,
				TargetASASeconds: target,
			})
			assert.LessOrEqual(t, got, prev, "arrivals=%v target=%v", arrivals, target)
			prev = got
		}
	}
}

func TestAverageSpeedOfAnswer(t *testing.T) {
	in := staffing.Input{Arrivals: 100, SlotMinutes: 30, AHTMinutes: 3, Concurrency: 1}
	assert.InDelta(t, 122.78, staffing.AverageSpeedOfAnswer(in, 11), 0.01)
	assert.InDelta(t, 17.12, staffing.AverageSpeedOfAnswer(in, 13), 0.01)
	assert.True(t, math.IsInf(staffing.AverageSpeedOfAnswer(in, 10), 1))
}

func TestRequired(t *testing.T) {
	in := staffing.Input{Arrivals: 100, SlotMinutes: 15, AHTMinutes: 3, Concurrency: 1, ZSafety: 1, TargetASASeconds: 20}

	got, err := staffing.Required(staffing.MethodHalfin, in)
	require.NoError(t, err)
	assert.Equal(t, 25, got)

	got, err = staffing.Required(staffing.MethodErlang, in)
	require.NoError(t, err)
	assert.Greater(t, got, 20)

	_, err = staffing.Required(staffing.Method("magic"), in)
	assert.True(t, errors.Is(err, customerrors.ErrUnknownMethod))
}

func TestParseMethod(t *testing.T) {
	m, err := staffing.ParseMethod(" Erlang ")
	require.NoError(t, err)
	assert.Equal(t, staffing.MethodErlang, m)

	m, err = staffing.ParseMethod("halfin")
	require.NoError(t, err)
	assert.Equal(t, staffing.MethodHalfin, m)

	_, err = staffing.ParseMethod("poisson")
	assert.ErrorIs(t, err, customerrors.ErrUnknownMethod)
}
