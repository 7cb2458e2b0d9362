package schedule_service

import (
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

// Generator builds the base layer of a day from the schedule template.
type Generator struct {
	template domain.ScheduleTemplate
}

func NewGenerator(template domain.ScheduleTemplate) *Generator {
	return &Generator{template: template}
}

func (g *Generator) Template() domain.ScheduleTemplate {
	return g.template
}

// Generate returns one slot per tick of the day, ordered by time. Ticks are
// AVAILABLE unless the first rule matching the date blocks them.
func (g *Generator) Generate(date json_types.Date) []domain.Slot {
	ticks := g.template.Ticks()
	slots := make([]domain.Slot, 0, len(ticks))

	rule, hasRule := g.template.RuleFor(date)

	for _, tick := range ticks {
		state := domain.SlotStateAvailable
		if hasRule && rule.Blocks(tick) {
			state = domain.SlotStateBlocked
		}

		slots = append(slots, domain.Slot{
			Date:            date,
			Time:            tick,
			State:           state,
			DurationMinutes: g.template.DefaultDurationMinutes,
		})
	}

	return slots
}

// BaseState is the generated state of a single tick.
func (g *Generator) BaseState(date json_types.Date, t json_types.TimeOfDay) domain.SlotState {
	if rule, ok := g.template.RuleFor(date); ok && rule.Blocks(t) {
		return domain.SlotStateBlocked
	}
	return domain.SlotStateAvailable
}
