package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/infusioncare/appointment-optimizer/internal/config"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/in"
	"github.com/infusioncare/appointment-optimizer/internal/core/ports/out"
)

type AppointmentListener struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	useCase in.OptimizerUseCase
	cfg     *config.Config
	logger  out.LoggerPort
}

type CacheHitType string

const (
	CacheHitTypeUpdate     CacheHitType = "update"
	CacheHitTypeInvalidate CacheHitType = "invalidate"
)

const (
	resourceAppointment = "appointment"

	// Location sentinel that purges every cached snapshot
	locationAll = "_all_"
)

type cacheMessageRoutingKey struct {
	Source   string
	Receiver string
	Resource string
	HitType  CacheHitType
}

// AppointmentChangeMessage names the location whose schedule changed.
type AppointmentChangeMessage struct {
	Location string `json:"location"`
}

func NewAppointmentListener(useCase in.OptimizerUseCase, cfg *config.Config, logger out.LoggerPort) (*AppointmentListener, error) {
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

	return &AppointmentListener{
		conn:    conn,
		channel: channel,
		useCase: useCase,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

func (l *AppointmentListener) Start(ctx context.Context) error {
	queue, err := l.channel.QueueDeclare(
		l.cfg.RabbitMQ.Queue,
		true,  // durable
		true,  // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return err
	}

	err = l.channel.QueueBind(
		queue.Name,
		l.cfg.RabbitMQ.Bind,
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

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					l.logger.Warn("appointment.queue.closed", out.LogFields{
						"queue": queue.Name,
					})
					return
				}
				if err := l.processMessage(ctx, msg); err != nil {
					msg.Nack(false, true) // requeue message
					continue
				}
				msg.Ack(false)
			}
		}
	}()

	l.logger.Info("appointment.queue.started", out.LogFields{
		"queue":    queue.Name,
		"exchange": l.cfg.RabbitMQ.Exchange,
		"bind":     l.cfg.RabbitMQ.Bind,
	})

	return nil
}

func (l *AppointmentListener) Stop() error {
	if l == nil || l.channel == nil {
		return nil
	}

	if err := l.channel.Close(); err != nil {
		return err
	}
	return l.conn.Close()
}

// Example routing keys:
// emr.appointment-optimizer-svc.appointment.update
// emr.appointment-optimizer-svc.appointment.invalidate
func parseRoutingKey(routingKey string) (cacheMessageRoutingKey, error) {
	parts := strings.Split(routingKey, ".")

	if len(parts) < 4 {
		return cacheMessageRoutingKey{}, fmt.Errorf("invalid routing key: %s", routingKey)
	}

	return cacheMessageRoutingKey{
		Source:   parts[0],
		Receiver: parts[1],
		Resource: parts[2],
		HitType:  CacheHitType(parts[3]),
	}, nil
}

// processMessage evicts the cached snapshots of the location named in
// the message. Malformed messages are logged and dropped rather than
// requeued; only use-case failures come back for another try.
func (l *AppointmentListener) processMessage(ctx context.Context, msg amqp.Delivery) error {
	key, err := parseRoutingKey(msg.RoutingKey)
	if err != nil {
		l.logger.Warn("appointment.message.bad_routing_key", out.LogFields{
			"routingKey": msg.RoutingKey,
		})
		return nil
	}

	if key.Resource != resourceAppointment {
		return nil
	}
	if key.HitType != CacheHitTypeUpdate && key.HitType != CacheHitTypeInvalidate {
		return nil
	}

	var message AppointmentChangeMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		l.logger.Warn("appointment.message.bad_body", out.LogFields{
			"error":     err.Error(),
			"msgString": string(msg.Body),
		})
		return nil
	}
	if message.Location == "" {
		return nil
	}

	l.logger.Info("appointment.message.received", out.LogFields{
		"routingKey": msg.RoutingKey,
		"location":   message.Location,
	})

	if message.Location == locationAll {
		return l.useCase.InvalidateAllSnapshotCache(ctx)
	}
	return l.useCase.InvalidateSnapshotCache(ctx, message.Location)
}
