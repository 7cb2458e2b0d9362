package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

type ScheduleRuleDaysOfWeek string

const (
	ScheduleRuleDaysOfWeekMon ScheduleRuleDaysOfWeek = "mon"
	ScheduleRuleDaysOfWeekTue ScheduleRuleDaysOfWeek = "tue"
	ScheduleRuleDaysOfWeekWed ScheduleRuleDaysOfWeek = "wed"
	ScheduleRuleDaysOfWeekThu ScheduleRuleDaysOfWeek = "thu"
	ScheduleRuleDaysOfWeekFri ScheduleRuleDaysOfWeek = "fri"
	ScheduleRuleDaysOfWeekSat ScheduleRuleDaysOfWeek = "sat"
	ScheduleRuleDaysOfWeekSun ScheduleRuleDaysOfWeek = "sun"
)

var ScheduleRuleDaysOfWeekMap = map[ScheduleRuleDaysOfWeek]time.Weekday{
	ScheduleRuleDaysOfWeekMon: time.Monday,
	ScheduleRuleDaysOfWeekTue: time.Tuesday,
	ScheduleRuleDaysOfWeekWed: time.Wednesday,
	ScheduleRuleDaysOfWeekThu: time.Thursday,
	ScheduleRuleDaysOfWeekFri: time.Friday,
	ScheduleRuleDaysOfWeekSat: time.Saturday,
	ScheduleRuleDaysOfWeekSun: time.Sunday,
}

// ParseWeekdays parses a comma separated list such as "sat,sun".
func ParseWeekdays(str string) ([]time.Weekday, error) {
	weekdays := make([]time.Weekday, 0)
	for _, part := range strings.Split(str, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		weekday, ok := ScheduleRuleDaysOfWeekMap[ScheduleRuleDaysOfWeek(part)]
		if !ok {
			return nil, fmt.Errorf("unknown day of week %q", part)
		}
		weekdays = append(weekdays, weekday)
	}
	return weekdays, nil
}

// TimeRange is inclusive on both ends.
type TimeRange struct {
	From json_types.TimeOfDay `json:"from"`
	To   json_types.TimeOfDay `json:"to"`
}

// ParseTimeRange parses "15:00-18:00".
func ParseTimeRange(str string) (TimeRange, error) {
	parts := strings.Split(str, "-")
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("invalid time range %q", str)
	}
	from, err := json_types.ParseTimeOfDay(parts[0])
	if err != nil {
		return TimeRange{}, err
	}
	to, err := json_types.ParseTimeOfDay(parts[1])
	if err != nil {
		return TimeRange{}, err
	}
	if to.Before(from) {
		return TimeRange{}, fmt.Errorf("invalid time range %q: end before start", str)
	}
	return TimeRange{From: from, To: to}, nil
}

func (r TimeRange) Contains(t json_types.TimeOfDay) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// AvailabilityRule blocks ticks on matching days. A nil Blocked range blocks the whole day.
type AvailabilityRule struct {
	Name     string
	Weekdays []time.Weekday
	Dates    []json_types.Date
	Blocked  *TimeRange
}

func (r AvailabilityRule) Matches(date json_types.Date) bool {
	return slices.Contains(r.Weekdays, date.Weekday()) || slices.Contains(r.Dates, date)
}

func (r AvailabilityRule) Blocks(t json_types.TimeOfDay) bool {
	return r.Blocked == nil || r.Blocked.Contains(t)
}

// ScheduleTemplate holds the operating hours and the ordered day rules. The
// first matching rule wins.
type ScheduleTemplate struct {
	DayStart               json_types.TimeOfDay
	DayEnd                 json_types.TimeOfDay
	Tick                   time.Duration
	DefaultDurationMinutes int
	Rules                  []AvailabilityRule
}

// DefaultScheduleTemplate is 08:00-22:00 hourly, weekends closed and
// Wednesday afternoons 15:00-18:00 blocked.
func DefaultScheduleTemplate() ScheduleTemplate {
	return ScheduleTemplate{
		DayStart:               json_types.NewTimeOfDay(8, 0),
		DayEnd:                 json_types.NewTimeOfDay(22, 0),
		Tick:                   time.Hour,
		DefaultDurationMinutes: 50,
		Rules: []AvailabilityRule{
			{
				Name:     "weekend",
				Weekdays: []time.Weekday{time.Saturday, time.Sunday},
			},
			{
				Name:     "midweek",
				Weekdays: []time.Weekday{time.Wednesday},
				Blocked: &TimeRange{
					From: json_types.NewTimeOfDay(15, 0),
					To:   json_types.NewTimeOfDay(18, 0),
				},
			},
		},
	}
}

func (t ScheduleTemplate) Validate() error {
	if t.Tick <= 0 || t.Tick%time.Minute != 0 {
		return fmt.Errorf("tick must be a positive whole number of minutes, got %s", t.Tick)
	}
	if t.DayEnd.Before(t.DayStart) {
		return fmt.Errorf("day end %s is before day start %s", t.DayEnd, t.DayStart)
	}
	if t.DefaultDurationMinutes <= 0 {
		return fmt.Errorf("default duration must be positive, got %d", t.DefaultDurationMinutes)
	}
	return nil
}

// Ticks lists the slot start times of a day in ascending order.
func (t ScheduleTemplate) Ticks() []json_types.TimeOfDay {
	ticks := make([]json_types.TimeOfDay, 0)
	if t.Tick <= 0 {
		return ticks
	}
	for tick := t.DayStart; !tick.After(t.DayEnd); tick = tick.Add(t.Tick) {
		ticks = append(ticks, tick)
	}
	return ticks
}

// RuleFor returns the first rule matching the date.
func (t ScheduleTemplate) RuleFor(date json_types.Date) (AvailabilityRule, bool) {
	for _, rule := range t.Rules {
		if rule.Matches(date) {
			return rule, true
		}
	}
	return AvailabilityRule{}, false
}
