package events

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// amqpSink публикует события в topic exchange RabbitMQ
type amqpSink struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher подключается к RabbitMQ и объявляет exchange.
// Ключ маршрутизации сообщения совпадает с типом события, например booking.created.
func NewAMQPPublisher(url, exchange string, bufferSize int, logger Logger) (*AsyncPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, exchange, err)
	}

	logger.Info("Connected to RabbitMQ, exchange=%s", exchange)
	return newAsyncPublisher(&amqpSink{conn: conn, ch: ch, exchange: exchange}, bufferSize, logger), nil
}

func (s *amqpSink) send(ctx context.Context, routingKey string, body []byte) error {
	err := s.ch.PublishWithContext(ctx, s.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}
	return nil
}

func (s *amqpSink) close() error {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
