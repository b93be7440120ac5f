package amqp

import (
	"context"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/amirrezaask/cachestore/cache"
	"github.com/amirrezaask/cachestore/env"
	"github.com/amirrezaask/cachestore/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct {
	URI          string        `env:"AMQP_URI,required"`
	Exchange     string        `env:"AMQP_EXCHANGE" envDefault:"cachestore"`
	ExchangeType string        `env:"AMQP_EXCHANGE_TYPE" envDefault:"fanout"`
	RoutingKey   string        `env:"AMQP_ROUTING_KEY" envDefault:"cache.sweep"`
	DialRetries  int           `env:"AMQP_DIAL_RETRIES" envDefault:"3"`
	DialBackoff  time.Duration `env:"AMQP_DIAL_BACKOFF" envDefault:"1s"`
}

func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Load(&c); err != nil {
		return Config{}, errors.Wrap(err, "cannot load amqp config")
	}
	return c, nil
}

type Publisher interface {
	PublishContext(ctx context.Context, exchange string, key string, msg []byte) error
}

// SweepPublisher publishes every sweep report as JSON. It satisfies
// cache.SweepReporter.
type SweepPublisher struct {
	publisher  Publisher
	exchange   string
	routingKey string
}

func NewSweepPublisher(p Publisher, exchange string, routingKey string) *SweepPublisher {
	return &SweepPublisher{publisher: p, exchange: exchange, routingKey: routingKey}
}

// DialSweepPublisher connects to c.URI, declares the exchange and returns a
// publisher bound to it together with the connection so the caller can close it.
func DialSweepPublisher(ctx context.Context, c Config) (*SweepPublisher, *RabbitConnection, error) {
	conn, err := NewRabbitConnection(ctx, c.URI, c.DialRetries, c.DialBackoff)
	if err != nil {
		return nil, nil, err
	}
	if err := conn.DeclareExchange(c.Exchange, c.ExchangeType); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return NewSweepPublisher(conn, c.Exchange, c.RoutingKey), conn, nil
}

func (s *SweepPublisher) ReportSweep(ctx context.Context, r cache.SweepReport) error {
	if r.Swept == nil {
		r.Swept = []string{}
	}
	body, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "cannot encode sweep report")
	}
	return s.publisher.PublishContext(ctx, s.exchange, s.routingKey, body)
}
