package utils

import (
	"time"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

// DatesBetween возвращает все даты от from до to включительно. Если to раньше from, список пуст.
func DatesBetween(from, to json_types.Date) []json_types.Date {
	if to.Before(from) {
		return nil
	}

	dates := make([]json_types.Date, 0)
	for current := from; !current.After(to); current = current.AddDays(1) {
		dates = append(dates, current)
	}
	return dates
}

// DaysBetween считает число дней в диапазоне from..to включительно.
func DaysBetween(from, to json_types.Date) int {
	if to.Before(from) {
		return 0
	}
	hours := to.Time(time.UTC).Sub(from.Time(time.UTC)).Hours()
	return int(hours/24) + 1
}
