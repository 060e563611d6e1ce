package validation

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"workforce-engine/timeslot"
)

// BusyInterval is a named block of time a user is unavailable.
type BusyInterval struct {
	Name  string
	Start time.Time
	End   time.Time
}

// Calendar reports the busy intervals of a user on a given day. day is local
// midnight in the location the shift is evaluated in.
type Calendar interface {
	BusyIntervals(ctx context.Context, userID string, day time.Time) ([]BusyInterval, error)
}

// StaticCalendar serves busy intervals from memory.
type StaticCalendar struct {
	byUser map[string][]BusyInterval
}

// NewStaticCalendar indexes events by user.
func NewStaticCalendar(events map[string][]BusyInterval) *StaticCalendar {
	byUser := make(map[string][]BusyInterval, len(events))
	for user, list := range events {
		sorted := append([]BusyInterval(nil), list...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })
		byUser[user] = sorted
	}
	return &StaticCalendar{byUser: byUser}
}

// BusyIntervals returns the events of userID that touch [day, day+24h).
func (c *StaticCalendar) BusyIntervals(_ context.Context, userID string, day time.Time) ([]BusyInterval, error) {
	dayStart := timeslot.StartOfDay(day)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var out []BusyInterval
	for _, b := range c.byUser[userID] {
		if timeslot.Overlaps(b.Start, b.End, dayStart, dayEnd) {
			out = append(out, b)
		}
	}
	return out, nil
}

type calendarFile struct {
	Events []struct {
		UserID string `yaml:"userId"`
		Name   string `yaml:"name"`
		Start  string `yaml:"start"`
		End    string `yaml:"end"`
	} `yaml:"events"`
}

// LoadCalendar reads a YAML (or JSON) calendar export:
//
//	events:
//	  - userId: u1
//	    name: Dentist
//	    start: "2024-03-04T10:00:00Z"
//	    end: "2024-03-04T11:00:00Z"
func LoadCalendar(r io.Reader) (*StaticCalendar, error) {
	var file calendarFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decoding calendar: %w", err)
	}

	events := make(map[string][]BusyInterval)
	for i, e := range file.Events {
		start, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Start))
		if err != nil {
			return nil, fmt.Errorf("calendar event %d: invalid start: %w", i, err)
		}
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(e.End))
		if err != nil {
			return nil, fmt.Errorf("calendar event %d: invalid end: %w", i, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("calendar event %d: start must be before end", i)
		}
		events[e.UserID] = append(events[e.UserID], BusyInterval{Name: e.Name, Start: start, End: end})
	}
	return NewStaticCalendar(events), nil
}

// LoadCalendarFile opens path and parses it with LoadCalendar.
func LoadCalendarFile(path string) (*StaticCalendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadCalendar(f)
}

// CachedCalendar memoizes successful lookups of another Calendar for a TTL.
// Failures are never cached.
type CachedCalendar struct {
	next  Calendar
	store *cache.Cache
	ttl   time.Duration
}

// NewCachedCalendar wraps next with an in-memory TTL cache.
func NewCachedCalendar(next Calendar, ttl time.Duration) *CachedCalendar {
	return &CachedCalendar{
		next:  next,
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// BusyIntervals serves userID's intervals for day from the cache, keyed by
// user, date and location, and falls through to the wrapped Calendar on a miss.
func (c *CachedCalendar) BusyIntervals(ctx context.Context, userID string, day time.Time) ([]BusyInterval, error) {
	key := userID + "|" + timeslot.DayKey(day) + "|" + day.Location().String()
	if cached, found := c.store.Get(key); found {
		return cached.([]BusyInterval), nil
	}

	intervals, err := c.next.BusyIntervals(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	c.store.Set(key, intervals, c.ttl)
	return intervals, nil
}
