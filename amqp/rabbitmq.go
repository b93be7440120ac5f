package amqp

import (
	"context"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/amirrezaask/cachestore/errors"
	"github.com/amirrezaask/cachestore/retry"
)

type RabbitConnection struct {
	Conn *amqp091.Connection
}

// NewRabbitConnection dials rabbitURI, retrying up to retries times. Use
// `NotifyClose` on Conn to learn about a dropped connection.
func NewRabbitConnection(ctx context.Context, rabbitURI string, retries int, backoff time.Duration) (*RabbitConnection, error) {
	cfg := amqp091.Config{
		Properties: amqp091.NewConnectionProperties(),
	}

	var conn *amqp091.Connection
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		conn, err = amqp091.DialConfig(rabbitURI, cfg)
		if err != nil {
			slog.WarnContext(ctx, "cannot connect to rabbit", "err", err)
		}
		return err
	}, retries, backoff)
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to rabbit")
	}

	return &RabbitConnection{Conn: conn}, nil
}

func (rp *RabbitConnection) Close() error {
	return rp.Conn.Close()
}

// DeclareExchange declares a durable exchange of the given kind (direct, fanout, topic).
func (rp *RabbitConnection) DeclareExchange(name string, kind string) error {
	ch, err := rp.Conn.Channel()
	if err != nil {
		return errors.Wrap(err, "cannot create channel from rabbit mq connection")
	}
	defer ch.Close()

	err = ch.ExchangeDeclare(name, kind, true, false, false, false, amqp091.Table{})
	return errors.Wrap(err, "cannot declare exchange %s", name)
}

func (rp *RabbitConnection) PublishContext(ctx context.Context, exchange string, key string, msg []byte) error {
	ch, err := rp.Conn.Channel()
	if err != nil {
		return errors.Wrap(err, "cannot create channel from rabbit mq connection")
	}
	defer func() {
		err := ch.Close()
		if err != nil {
			slog.ErrorContext(ctx, "cannot close channel from rabbit mq connection", "err", err)
		}
	}()

	err = ch.PublishWithContext(ctx, exchange, key, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        msg,
	})
	return errors.Wrap(err, "cannot publish to %s/%s", exchange, key)
}
