package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// CacheAppointmentMessage names the dates touched by an external change. A
// moved appointment lists both its old and new date.
type CacheAppointmentMessage struct {
	Date        *json_types.Date    `json:"date,omitempty"`
	Dates       []json_types.Date   `json:"dates,omitempty"`
	Appointment *domain.Appointment `json:"appointment,omitempty"`
}

func (m CacheAppointmentMessage) affectedDates() []json_types.Date {
	seen := make(map[json_types.Date]struct{})
	dates := make([]json_types.Date, 0, len(m.Dates)+2)

	add := func(date json_types.Date) {
		if date.IsZero() {
			return
		}
		if _, ok := seen[date]; ok {
			return
		}
		seen[date] = struct{}{}
		dates = append(dates, date)
	}

	if m.Date != nil {
		add(*m.Date)
	}
	for _, date := range m.Dates {
		add(date)
	}
	if m.Appointment != nil {
		add(m.Appointment.Date)
	}
	return dates
}

func (l *CacheHitListener) processAppointmentMessage(ctx context.Context, key CacheMessageRoutingKey, body []byte) error {
	if key.CacheHitType != CacheHitTypeInvalidate && key.CacheHitType != CacheHitTypeStore {
		return fmt.Errorf("unknown cache hit type: %s", key.CacheHitType)
	}

	var msgJson CacheAppointmentMessage
	if err := json.Unmarshal(body, &msgJson); err != nil {
		return err
	}

	dates := msgJson.affectedDates()
	if len(dates) == 0 {
		return fmt.Errorf("appointment message without date")
	}

	l.logger.Info("appointment.message.received", out.LogFields{
		"source":    key.Source,
		"type":      key.CacheHitType,
		"msgString": string(body),
	})

	// Сохранённое или удалённое во внешнем хранилище одинаково сбрасывает дату,
	// новое расписание соберётся при следующем чтении
	for _, date := range dates {
		if err := l.useCase.InvalidateDate(ctx, date); err != nil {
			return err
		}
		l.logger.Info("appointment.message.invalidated", out.LogFields{
			"date": date.String(),
		})
	}

	return nil
}
