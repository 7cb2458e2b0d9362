package rabbitmq

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

const publishTimeout = 5 * time.Second

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// ScheduleEventPublisher announces resynced schedules on a topic exchange.
// The routing key is suffixed with the operation, e.g. schedule.resynced.assign.
type ScheduleEventPublisher struct {
	channel    publisher
	closer     func() error
	exchange   string
	routingKey string
	logger     out.LoggerPort

	mu sync.Mutex
}

func NewScheduleEventPublisher(cfg *config.Config, logger out.LoggerPort) (*ScheduleEventPublisher, error) {
	logger = logger.WithModule("RabbitMQPublisher")

	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.publisher.disabled", out.LogFields{})
		return nil, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Error("rabbitmq.connect.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		logger.Error("rabbitmq.channel.failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, err
	}

	err = channel.ExchangeDeclare(
		cfg.RabbitMQ.PublishExchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		logger.Error("rabbitmq.exchange.failed", out.LogFields{
			"exchange": cfg.RabbitMQ.PublishExchange,
			"error":    err.Error(),
		})
		return nil, err
	}

	p := newScheduleEventPublisher(channel, cfg.RabbitMQ.PublishExchange, cfg.RabbitMQ.PublishRoutingKey, logger)
	p.closer = func() error {
		if err := channel.Close(); err != nil {
			return err
		}
		return conn.Close()
	}
	return p, nil
}

func newScheduleEventPublisher(channel publisher, exchange, routingKey string, logger out.LoggerPort) *ScheduleEventPublisher {
	return &ScheduleEventPublisher{
		channel:    channel,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
	}
}

type scheduleEventMessage struct {
	domain.ScheduleEvent
	EventID string `json:"eventId"`
}

func (p *ScheduleEventPublisher) PublishScheduleEvent(ctx context.Context, event domain.ScheduleEvent) error {
	eventID := uuid.NewString()
	body, err := json.Marshal(scheduleEventMessage{ScheduleEvent: event, EventID: eventID})
	if err != nil {
		return err
	}

	routingKey := p.routingKey + "." + string(event.Operation)

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    eventID,
		Timestamp:    event.ResyncedAt,
		Type:         string(event.Operation),
		Body:         body,
	})
	if err != nil {
		return err
	}

	p.logger.Debug("rabbitmq.schedule_event.published", out.LogFields{
		"routingKey": routingKey,
		"date":       event.Date.String(),
		"eventId":    eventID,
	})
	return nil
}

func (p *ScheduleEventPublisher) Stop() error {
	if p == nil || p.closer == nil {
		return nil
	}
	return p.closer()
}
