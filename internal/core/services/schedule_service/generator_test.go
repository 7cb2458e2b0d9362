package schedule_service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

func TestGenerateOneSlotPerTick(t *testing.T) {
	g := NewGenerator(domain.DefaultScheduleTemplate())

	// Две недели подряд покрывают все дни недели
	for date := monday; date.Before(monday.AddDays(14)); date = date.AddDays(1) {
		slots := g.Generate(date)
		require.Len(t, slots, 15, date.String())

		for i, slot := range slots {
			assert.Equal(t, date, slot.Date)
			assert.Equal(t, at(8+i), slot.Time)
			assert.Equal(t, 50, slot.DurationMinutes)
			assert.Nil(t, slot.Patient)
			assert.Nil(t, slot.BackendID)
		}
	}
}

func TestGenerateWeekendIsBlocked(t *testing.T) {
	g := NewGenerator(domain.DefaultScheduleTemplate())

	for _, date := range []json_types.Date{saturday, saturday.AddDays(1)} {
		for _, slot := range g.Generate(date) {
			assert.Equal(t, domain.SlotStateBlocked, slot.State, slot.Key().String())
		}
	}
}

func TestGenerateMidweekBlocksSubRange(t *testing.T) {
	g := NewGenerator(domain.DefaultScheduleTemplate())

	for _, slot := range g.Generate(wednesday) {
		expected := domain.SlotStateAvailable
		if slot.Time.Hour >= 15 && slot.Time.Hour <= 18 {
			expected = domain.SlotStateBlocked
		}
		assert.Equal(t, expected, slot.State, slot.Time.String())
	}
}

func TestGenerateWeekdayIsAvailable(t *testing.T) {
	g := NewGenerator(domain.DefaultScheduleTemplate())

	for _, slot := range g.Generate(monday) {
		assert.Equal(t, domain.SlotStateAvailable, slot.State)
	}
}

func TestGenerateFirstMatchingRuleWins(t *testing.T) {
	template := domain.DefaultScheduleTemplate()
	// Праздник в среду закрывает весь день, а не только 15:00-18:00
	template.Rules = append([]domain.AvailabilityRule{
		{Name: "holiday", Dates: []json_types.Date{wednesday}},
	}, template.Rules...)
	g := NewGenerator(template)

	for _, slot := range g.Generate(wednesday) {
		assert.Equal(t, domain.SlotStateBlocked, slot.State)
	}
	assert.Equal(t, domain.SlotStateBlocked, g.BaseState(wednesday, at(9)))
	assert.Equal(t, domain.SlotStateAvailable, g.BaseState(monday, at(9)))
}

func TestGenerateCustomTemplate(t *testing.T) {
	g := NewGenerator(domain.ScheduleTemplate{
		DayStart:               json_types.NewTimeOfDay(9, 0),
		DayEnd:                 json_types.NewTimeOfDay(11, 0),
		Tick:                   30 * time.Minute,
		DefaultDurationMinutes: 25,
	})

	slots := g.Generate(monday)
	require.Len(t, slots, 5)
	assert.Equal(t, json_types.NewTimeOfDay(9, 30), slots[1].Time)
	assert.Equal(t, json_types.NewTimeOfDay(11, 0), slots[4].Time)
	assert.Equal(t, 25, slots[0].DurationMinutes)
}

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator(domain.DefaultScheduleTemplate())

	assert.Equal(t, g.Generate(wednesday), g.Generate(wednesday))
}
