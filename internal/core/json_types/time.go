package json_types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const TimeOfDayLayout = "15:04"

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

// TimeOfDayOf truncates t to the minute.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// ParseTimeOfDay accepts 15:04 and 15:04:05. Seconds are truncated.
func ParseTimeOfDay(str string) (TimeOfDay, error) {
	str = strings.TrimSpace(str)

	parsed, err := time.Parse("15:04:05", str)
	if err != nil {
		parsed, err = time.Parse(TimeOfDayLayout, str)
		if err != nil {
			return TimeOfDay{}, fmt.Errorf("failed to parse time %q: %v", str, err)
		}
	}

	return TimeOfDayOf(parsed), nil
}

func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) Add(d time.Duration) TimeOfDay {
	total := t.Minutes() + int(d/time.Minute)
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.Minutes() < other.Minutes()
}

func (t TimeOfDay) After(other TimeOfDay) bool {
	return t.Minutes() > other.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("failed to parse time: %v", err)
	}

	parsed, err := ParseTimeOfDay(str)
	if err != nil {
		return err
	}

	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
