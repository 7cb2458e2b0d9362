package domain

import "github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"

type DayPeriod string

const (
	DayPeriodMorning   DayPeriod = "morning"
	DayPeriodAfternoon DayPeriod = "afternoon"
	DayPeriodNight     DayPeriod = "night"
)

// PeriodOf classifies a tick: morning before 13:00, afternoon before 20:00, night after.
func PeriodOf(t json_types.TimeOfDay) DayPeriod {
	switch {
	case t.Hour < 13:
		return DayPeriodMorning
	case t.Hour < 20:
		return DayPeriodAfternoon
	}
	return DayPeriodNight
}

type PeriodSchedule struct {
	Morning   []Slot `json:"morning"`
	Afternoon []Slot `json:"afternoon"`
	Night     []Slot `json:"night"`
}

func GroupByPeriod(slots []Slot) PeriodSchedule {
	grouped := PeriodSchedule{
		Morning:   make([]Slot, 0),
		Afternoon: make([]Slot, 0),
		Night:     make([]Slot, 0),
	}
	for _, slot := range slots {
		switch PeriodOf(slot.Time) {
		case DayPeriodMorning:
			grouped.Morning = append(grouped.Morning, slot)
		case DayPeriodAfternoon:
			grouped.Afternoon = append(grouped.Afternoon, slot)
		case DayPeriodNight:
			grouped.Night = append(grouped.Night, slot)
		}
	}
	return grouped
}
