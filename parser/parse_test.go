package parser_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	customerrors "workforce-engine/errors"
	"workforce-engine/models"
	"workforce-engine/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHistory(t *testing.T) {
	ts := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t.UTC()
	}

	tests := map[string]struct {
		input         string
		expectedData  []models.HistoryRecord
		expectedError error
		expectedLine  int
	}{
		"ValidInput_SingleLine": {
			input: `
2024-02-05T09:03:00Z,240,1
`,
			expectedData: []models.HistoryRecord{
				{OccurredAt: ts("2024-02-05T09:03:00Z"), HandleMinutes: 4, Concurrency: 1},
			},
		},
		"ValidInput_HeaderAndComments": {
			input: `
# exported from the contact center
timestamp,handle_seconds,concurrency
2024-02-05T09:03:00Z, 300, 2
# second contact
2024-02-05T09:10:00+01:00, 90, 1.5
`,
			expectedData: []models.HistoryRecord{
				{OccurredAt: ts("2024-02-05T09:03:00Z"), HandleMinutes: 5, Concurrency: 2},
				{OccurredAt: ts("2024-02-05T08:10:00Z"), HandleMinutes: 1.5, Concurrency: 1.5},
			},
		},
		"ValidInput_MissingOptionalFields": {
			input: `
2024-02-05T09:03:00Z
2024-02-05T09:04:00Z,,
2024-02-05 09:05:00,60
`,
			expectedData: []models.HistoryRecord{
				{OccurredAt: ts("2024-02-05T09:03:00Z")},
				{OccurredAt: ts("2024-02-05T09:04:00Z")},
				{OccurredAt: ts("2024-02-05T09:05:00Z"), HandleMinutes: 1},
			},
		},
		"ValidInput_Empty": {
			input:        "# nothing here\n",
			expectedData: nil,
		},
		"Error_InvalidFieldCount": {
			input: `
2024-02-05T09:03:00Z,240,1,extra
`,
			expectedError: customerrors.ErrInvalidFieldCount,
			expectedLine:  2,
		},
		"Error_InvalidTimestamp": {
			input: `
2024-02-05T09:03:00Z,240,1
yesterday,240,1
`,
			expectedError: customerrors.ErrInvalidTimestamp,
			expectedLine:  3,
		},
		"Error_InvalidHandleTime": {
			input: `
2024-02-05T09:03:00Z,abc,1
`,
			expectedError: customerrors.ErrInvalidHandleTime,
			expectedLine:  2,
		},
		"Error_NegativeHandleTime": {
			input: `
2024-02-05T09:03:00Z,-5,1
`,
			expectedError: customerrors.ErrInvalidHandleTime,
			expectedLine:  2,
		},
		"Error_InvalidConcurrency": {
			input: `
2024-02-05T09:03:00Z,240,x
`,
			expectedError: customerrors.ErrInvalidConcurrency,
			expectedLine:  2,
		},
		"Error_EmptyTimestamp": {
			input: `
,240,1
`,
			expectedError: customerrors.ErrEmptyRecord,
			expectedLine:  2,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			data, err := parser.ParseHistory(strings.NewReader(tc.input))

			if tc.expectedError != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.expectedError), "expected %v, got %v", tc.expectedError, err)
				var parseErr *customerrors.ParseError
				require.True(t, errors.As(err, &parseErr))
				assert.Equal(t, tc.expectedLine, parseErr.Line)
				assert.Nil(t, data)
				return
			}

			require.NoError(t, err)
			require.Len(t, data, len(tc.expectedData))
			for i := range tc.expectedData {
				assert.True(t, tc.expectedData[i].OccurredAt.Equal(data[i].OccurredAt), "record %d time", i)
				assert.InDelta(t, tc.expectedData[i].HandleMinutes, data[i].HandleMinutes, 1e-9)
				assert.InDelta(t, tc.expectedData[i].Concurrency, data[i].Concurrency, 1e-9)
			}
		})
	}
}

func TestParseHistory_MalformedCSV(t *testing.T) {
	_, err := parser.ParseHistory(strings.NewReader("2024-02-05T09:03:00Z,\"240\n"))
	assert.Error(t, err)
}

func TestParseSchedule(t *testing.T) {
	input := `{
  "shifts": [{"id": "s1", "userId": "u1", "positionId": "p1",
              "start": "2024-03-04T09:00:00Z", "end": "2024-03-04T10:00:00Z"}],
  "users": [{"id": "u1", "skills": ["chat"], "dailyMaxMinutes": 480, "weeklyMaxMinutes": 2400,
             "workHours": {"0": {"isWorking": true, "startMinute": 540, "endMinute": 1020}}}],
  "positions": [{"id": "p1", "name": "Chat", "type": "chat", "requiredSkills": ["chat"],
                 "minDurationMinutes": 30, "maxDurationMinutes": 480, "stress": false}],
  "forecasts": [{"date": "2024-03-04T09:00:00Z", "slotIndex": 36, "activity": "chat", "requiredAgents": 1}],
  "dateRange": {"start": "2024-03-04T00:00:00Z", "end": "2024-03-11T00:00:00Z"}
}`

	in, err := parser.ParseSchedule(strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, in.Shifts, 1)
	assert.Equal(t, "u1", in.Shifts[0].UserID)
	assert.Equal(t, time.Hour, in.Shifts[0].Duration())
	require.Len(t, in.Users, 1)
	assert.Equal(t, models.WorkHours{IsWorking: true, StartMinute: 540, EndMinute: 1020}, in.Users[0].WorkHours[0])
	require.Len(t, in.Positions, 1)
	assert.Equal(t, "chat", in.Positions[0].Type)
	require.Len(t, in.Forecasts, 1)
	assert.Equal(t, 36, in.Forecasts[0].SlotIndex)
	require.NotNil(t, in.DateRange)
	assert.Equal(t, 7*24*time.Hour, in.DateRange.End.Sub(in.DateRange.Start))
}

func TestParseSchedule_Errors(t *testing.T) {
	tests := map[string]string{
		"NotJSON":      "shifts:",
		"UnknownField": `{"shiftz": []}`,
		"BadTime":      `{"shifts": [{"id": "s1", "start": "monday"}]}`,
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parser.ParseSchedule(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestParseForecastRows(t *testing.T) {
	tests := map[string]struct {
		input    string
		expected []models.DemandForecastRow
	}{
		"DemandRows": {
			input: `[{"date": "2024-03-04T09:00:00Z", "slotIndex": 36, "activity": "chat", "requiredAgents": 3}]`,
			expected: []models.DemandForecastRow{
				{Date: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC), SlotIndex: 36, Activity: "chat", RequiredAgents: 3},
			},
		},
		"GeneratedRows": {
			input: `[{"slotStart": "2024-03-04T09:15:00Z", "weekday": 0, "slotOfDay": 37, "activity": "chat",
			        "expectedArrivals": 8, "ahtMinutes": 4, "concurrency": 1, "requiredAgents": 4}]`,
			expected: []models.DemandForecastRow{
				{Date: time.Date(2024, 3, 4, 9, 15, 0, 0, time.UTC), SlotIndex: 37, Activity: "chat", RequiredAgents: 4},
			},
		},
		"Empty": {
			input:    `[]`,
			expected: []models.DemandForecastRow{},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rows, err := parser.ParseForecastRows(strings.NewReader(tc.input))
			require.NoError(t, err)
			require.Len(t, rows, len(tc.expected))
			for i := range tc.expected {
				assert.True(t, tc.expected[i].Date.Equal(rows[i].Date))
				assert.Equal(t, tc.expected[i].SlotIndex, rows[i].SlotIndex)
				assert.Equal(t, tc.expected[i].Activity, rows[i].Activity)
				assert.Equal(t, tc.expected[i].RequiredAgents, rows[i].RequiredAgents)
			}
		})
	}

	_, err := parser.ParseForecastRows(strings.NewReader(`{"not": "an array"}`))
	assert.Error(t, err)
}
