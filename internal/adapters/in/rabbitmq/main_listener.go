package rabbitmq

import (
	"context"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/config"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/in"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/ports/out"
)

// CacheHitListener consumes change notifications from the appointment backend
// and drops the affected dates from the schedule cache.
type CacheHitListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.ScheduleUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type (
	CacheHitType         string
	CacheHitResourceType string
)

type CacheMessageRoutingKey struct {
	Source       string
	Receiver     string
	ResourceType CacheHitResourceType
	CacheHitType CacheHitType
}

const (
	CacheHitResourceTypeAll         CacheHitResourceType = "_all_"
	CacheHitResourceTypeAppointment CacheHitResourceType = "appointment"
)

const (
	CacheHitTypeStore      CacheHitType = "store"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

func NewCacheHitListener(useCase in.ScheduleUseCase, cfg *config.Config, logger out.LoggerPort) (*CacheHitListener, error) {
	logger = logger.WithModule("RabbitMQListener")

	if !cfg.RabbitMQ.Enabled {
		logger.Info("rabbitmq.disabled", out.LogFields{
			"message": "RabbitMQ is disabled, listener will not be started",
		})
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

	return &CacheHitListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *CacheHitListener) Start(ctx context.Context) error {
	err := l.channel.ExchangeDeclare(
		l.cfg.RabbitMQ.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}
	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMQ.BindKey,
		l.cfg.RabbitMQ.Exchange,
		false,
		nil,
	)
	if err != nil {
		return err
	}

	msgs, err := l.channel.Consume(
		queue.Name,
		"",    // consumer
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return err
	}

	go l.consume(ctx, msgs)

	l.logger.Info("rabbitmq.queue.started", out.LogFields{
		"queue":    queue.Name,
		"exchange": l.cfg.RabbitMQ.Exchange,
		"bindKey":  l.cfg.RabbitMQ.BindKey,
	})

	return nil
}

func (l *CacheHitListener) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				l.logger.Warn("rabbitmq.queue.closed", out.LogFields{})
				return
			}
			if err := l.processMessage(ctx, msg.RoutingKey, msg.Body); err != nil {
				l.logger.Error("rabbitmq.message.failed", out.LogFields{
					"routingKey": msg.RoutingKey,
					"error":      err.Error(),
				})
				// Битое сообщение не вернётся в очередь бесконечно
				msg.Nack(false, !msg.Redelivered)
				continue
			}
			msg.Ack(false)
		}
	}
}

func (l *CacheHitListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

func (l *CacheHitListener) processMessage(ctx context.Context, routingKey string, body []byte) error {
	key, err := parseCacheMessageRoutingKey(routingKey)
	if err != nil {
		return err
	}

	switch key.ResourceType {
	case CacheHitResourceTypeAll:
		return l.processAllMessage(ctx, key)
	case CacheHitResourceTypeAppointment:
		return l.processAppointmentMessage(ctx, key, body)
	}

	l.logger.Debug("rabbitmq.message.skipped", out.LogFields{
		"routingKey": routingKey,
	})
	return nil
}

// Пример routingKey:
// backend.slot-scheduler.appointment.store
// backend.slot-scheduler.appointment.invalidate
// backend.slot-scheduler._all_.invalidate
func parseCacheMessageRoutingKey(routingKey string) (CacheMessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")

	if len(parts) < 4 {
		return CacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return CacheMessageRoutingKey{
		Source:       parts[0],
		Receiver:     parts[1],
		ResourceType: CacheHitResourceType(strings.ToLower(parts[2])),
		CacheHitType: CacheHitType(strings.ToLower(parts[len(parts)-1])),
	}, nil
}
