package validation_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"workforce-engine/logx"
	"workforce-engine/models"
	"workforce-engine/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCalendar records every lookup and can be told to fail or panic.
type countingCalendar struct {
	mu    sync.Mutex
	calls map[string]int
	next  validation.Calendar
	err   error
	panic bool
}

func (c *countingCalendar) BusyIntervals(ctx context.Context, userID string, day time.Time) ([]validation.BusyInterval, error) {
	c.mu.Lock()
	if c.calls == nil {
		c.calls = make(map[string]int)
	}
	c.calls[userID+"|"+day.Format("2006-01-02")]++
	c.mu.Unlock()

	if c.panic {
		panic("calendar backend exploded")
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.next == nil {
		return nil, nil
	}
	return c.next.BusyIntervals(ctx, userID, day)
}

func (c *countingCalendar) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.calls {
		n += v
	}
	return n
}

func TestStaticCalendar_BusyIntervals(t *testing.T) {
	cal := validation.NewStaticCalendar(map[string][]validation.BusyInterval{
		"u1": {
			{Name: "Late", Start: at(0, 15, 0), End: at(0, 16, 0)},
			{Name: "Dentist", Start: at(0, 10, 0), End: at(0, 11, 0)},
			{Name: "Overnight", Start: at(0, 23, 0), End: at(1, 1, 0)},
			{Name: "Tomorrow", Start: at(1, 9, 0), End: at(1, 10, 0)},
		},
	})

	got, err := cal.BusyIntervals(context.Background(), "u1", monday)
	require.NoError(t, err)
	var names []string
	for _, b := range got {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"Dentist", "Late", "Overnight"}, names)

	got, err = cal.BusyIntervals(context.Background(), "u1", monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = cal.BusyIntervals(context.Background(), "nobody", monday)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadCalendar(t *testing.T) {
	tests := map[string]struct {
		input      string
		expectErr  bool
		expectUser string
		expectLen  int
	}{
		"Valid": {
			input: `
events:
  - userId: u1
    name: Dentist
    start: "2024-03-04T10:00:00Z"
    end: "2024-03-04T11:00:00Z"
  - userId: u1
    name: Training
    start: "2024-03-04T14:00:00+01:00"
    end: "2024-03-04T15:00:00+01:00"
`,
			expectUser: "u1",
			expectLen:  2,
		},
		"Empty": {
			input:      "",
			expectUser: "u1",
			expectLen:  0,
		},
		"BadStart": {
			input: `
events:
  - userId: u1
    start: "yesterday"
    end: "2024-03-04T11:00:00Z"
`,
			expectErr: true,
		},
		"Inverted": {
			input: `
events:
  - userId: u1
    start: "2024-03-04T11:00:00Z"
    end: "2024-03-04T10:00:00Z"
`,
			expectErr: true,
		},
		"NotYAML": {
			input:     "events: [",
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cal, err := validation.LoadCalendar(strings.NewReader(tc.input))
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			got, err := cal.BusyIntervals(context.Background(), tc.expectUser, monday)
			require.NoError(t, err)
			assert.Len(t, got, tc.expectLen)
		})
	}
}

func TestCachedCalendar(t *testing.T) {
	inner := &countingCalendar{next: validation.NewStaticCalendar(map[string][]validation.BusyInterval{
		"u1": {{Name: "Dentist", Start: at(0, 10, 0), End: at(0, 11, 0)}},
	})}
	cal := validation.NewCachedCalendar(inner, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cal.BusyIntervals(context.Background(), "u1", monday)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	assert.Equal(t, 1, inner.total())

	_, err := cal.BusyIntervals(context.Background(), "u1", monday.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 2, inner.total())
}

func TestCachedCalendar_DoesNotCacheFailures(t *testing.T) {
	inner := &countingCalendar{err: errors.New("backend down")}
	cal := validation.NewCachedCalendar(inner, time.Minute)

	_, err := cal.BusyIntervals(context.Background(), "u1", monday)
	assert.Error(t, err)
	_, err = cal.BusyIntervals(context.Background(), "u1", monday)
	assert.Error(t, err)
	assert.Equal(t, 2, inner.total())
}

func TestValidateSchedule_CalendarOverlap(t *testing.T) {
	cal := validation.NewStaticCalendar(map[string][]validation.BusyInterval{
		"u1": {{Name: "Dentist", Start: at(0, 10, 30), End: at(0, 11, 0)}},
	})

	tests := map[string]struct {
		shift    models.Shift
		expected int
	}{
		"Overlapping":   {shift("s1", "u1", "p1", at(0, 10, 0), at(0, 11, 0)), 1},
		"TouchingEvent": {shift("s1", "u1", "p1", at(0, 9, 30), at(0, 10, 30)), 0},
		"AfterEvent":    {shift("s1", "u1", "p1", at(0, 11, 0), at(0, 12, 0)), 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			res := validate(t, validation.Input{
				Shifts:    []models.Shift{tc.shift},
				Users:     []models.User{chatUser()},
				Positions: []models.Position{chatPosition()},
			}, validation.Options{Calendar: cal})
			assert.Equal(t, tc.expected, res.CountByType(models.ViolationAvailability), "%v", res.Violations)
			if tc.expected > 0 {
				assert.Equal(t, "Dentist", res.Violations[0].Context["event"])
			}
		})
	}
}

func TestValidateSchedule_CalendarFailuresAreSwallowed(t *testing.T) {
	tests := map[string]*countingCalendar{
		"Error": {err: errors.New("backend down")},
		"Panic": {panic: true},
	}

	for name, cal := range tests {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			res := validate(t, validation.Input{
				Shifts:    []models.Shift{shift("s1", "u1", "p1", at(0, 9, 0), at(0, 10, 0))},
				Users:     []models.User{chatUser()},
				Positions: []models.Position{chatPosition()},
			}, validation.Options{Calendar: cal, Logger: logx.NewWithWriter(&buf, "test", "info")})

			assert.True(t, res.OK, "%v", res.Violations)
			assert.Equal(t, 1, cal.total())

			// The lookup failure is logged before the run summary.
			var entry map[string]any
			require.NoError(t, json.NewDecoder(&buf).Decode(&entry))
			assert.Equal(t, "calendar_lookup_failed", entry["event"])
			assert.Equal(t, "treating calendar as free", entry["msg"])
			assert.Equal(t, "u1", entry["user_id"])
			assert.Equal(t, "2024-03-04", entry["date"])
			assert.Equal(t, "WARN", entry["level"])
		})
	}
}

func TestValidateSchedule_CalendarLookupsDeduplicated(t *testing.T) {
	cal := &countingCalendar{}
	u2 := chatUser()
	u2.ID = "u2"

	validate(t, validation.Input{
		Shifts: []models.Shift{
			shift("s1", "u1", "p1", at(0, 9, 0), at(0, 10, 0)),
			shift("s2", "u1", "p1", at(0, 11, 0), at(0, 12, 0)),
			shift("s3", "u1", "p1", at(1, 9, 0), at(1, 10, 0)),
			shift("s4", "u2", "p1", at(0, 9, 0), at(0, 10, 0)),
			shift("s5", "ghost", "p1", at(0, 9, 0), at(0, 10, 0)),
		},
		Users:     []models.User{chatUser(), u2},
		Positions: []models.Position{chatPosition()},
	}, validation.Options{Calendar: cal, CalendarConcurrency: 2})

	assert.Equal(t, map[string]int{
		"u1|2024-03-04": 1,
		"u1|2024-03-05": 1,
		"u2|2024-03-04": 1,
	}, cal.calls)
}
