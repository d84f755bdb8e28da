package feature

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// RecurrenceType selects how a schedule repeats.
type RecurrenceType string

const (
	// RecurrenceOnce means the schedule is a single continuous window
	// bounded only by the start and end dates.
	RecurrenceOnce RecurrenceType = "once"
	// RecurrenceWeekly restricts the schedule to specific days of the week
	// and optional time-of-day ranges.
	RecurrenceWeekly RecurrenceType = "weekly"
)

// TimeRange is an inclusive time-of-day interval in "HH:MM" notation.
// Ranges do not wrap past midnight.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Recurrence describes a repeating activation window inside a schedule.
type Recurrence struct {
	Type RecurrenceType `json:"type"`
	// DaysOfWeek uses 0=Sunday through 6=Saturday. Empty means every day.
	DaysOfWeek []int `json:"days_of_week,omitempty"`
	// TimeRanges lists inclusive time-of-day windows. Empty means all day.
	TimeRanges []TimeRange `json:"time_ranges,omitempty"`
}

// Schedule bounds a scheduled flag to a date range with an optional
// recurrence window inside that range.
type Schedule struct {
	StartDate  *time.Time  `json:"start_date,omitempty"`
	EndDate    *time.Time  `json:"end_date,omitempty"`
	Recurrence *Recurrence `json:"recurrence,omitempty"`
}

// IsEmpty reports whether the schedule carries no constraints at all.
func (s *Schedule) IsEmpty() bool {
	return s == nil || (s.StartDate == nil && s.EndDate == nil && s.Recurrence == nil)
}

func (s *Schedule) clone() *Schedule {
	if s == nil {
		return nil
	}
	c := Schedule{}
	if s.StartDate != nil {
		t := *s.StartDate
		c.StartDate = &t
	}
	if s.EndDate != nil {
		t := *s.EndDate
		c.EndDate = &t
	}
	if s.Recurrence != nil {
		r := Recurrence{
			Type:       s.Recurrence.Type,
			DaysOfWeek: slices.Clone(s.Recurrence.DaysOfWeek),
			TimeRanges: slices.Clone(s.Recurrence.TimeRanges),
		}
		c.Recurrence = &r
	}
	return &c
}

// Active reports whether the given instant falls inside the recurrence
// window. For RecurrenceOnce the window is always active because the
// surrounding date range has already been checked by the caller.
func (r *Recurrence) Active(at time.Time) bool {
	if r == nil || r.Type == RecurrenceOnce {
		return true
	}

	if len(r.DaysOfWeek) > 0 && !slices.Contains(r.DaysOfWeek, int(at.Weekday())) {
		return false
	}

	if len(r.TimeRanges) == 0 {
		return true
	}

	minute := at.Hour()*60 + at.Minute()
	for _, tr := range r.TimeRanges {
		start, err := parseMinutes(tr.Start)
		if err != nil {
			continue
		}
		end, err := parseMinutes(tr.End)
		if err != nil {
			continue
		}
		// Bounds are inclusive on both ends.
		if minute >= start && minute <= end {
			return true
		}
	}
	return false
}

// parseMinutes converts "HH:MM" into minutes since midnight.
func parseMinutes(v string) (int, error) {
	hh, mm, ok := strings.Cut(v, ":")
	if !ok {
		return 0, fmt.Errorf("malformed time %q: expected HH:MM", v)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("malformed time %q: hour out of range", v)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("malformed time %q: minute out of range", v)
	}
	return h*60 + m, nil
}
