package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

func TestDatesBetween(t *testing.T) {
	from := json_types.NewDate(2024, time.February, 27)
	to := json_types.NewDate(2024, time.March, 2)

	assert.Equal(t, []json_types.Date{
		json_types.NewDate(2024, time.February, 27),
		json_types.NewDate(2024, time.February, 28),
		json_types.NewDate(2024, time.February, 29),
		json_types.NewDate(2024, time.March, 1),
		json_types.NewDate(2024, time.March, 2),
	}, DatesBetween(from, to))

	assert.Equal(t, []json_types.Date{from}, DatesBetween(from, from))
	assert.Empty(t, DatesBetween(to, from))
}

func TestDaysBetween(t *testing.T) {
	from := json_types.NewDate(2024, time.February, 27)

	assert.Equal(t, 1, DaysBetween(from, from))
	assert.Equal(t, 5, DaysBetween(from, json_types.NewDate(2024, time.March, 2)))
	assert.Equal(t, 366, DaysBetween(json_types.NewDate(2024, time.January, 1), json_types.NewDate(2024, time.December, 31)))
	assert.Equal(t, 0, DaysBetween(from, from.AddDays(-1)))
}
