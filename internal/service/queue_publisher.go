package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/queue"
)

// AMQPPublisher publishes order events as persistent JSON messages on the
// durable order.events queue. It dials per publish and sits behind a
// BufferedPublisher, so dial latency stays off the request path.
type AMQPPublisher struct {
	URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishOrderEvent sends ev. Errors are returned for the caller to log.
func (p *AMQPPublisher) PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error {
	conn, err := amqp.DialConfig(p.URL, amqp.Config{Dial: amqp.DefaultDial(2 * time.Second)})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		queue.OrderEventsQueue, // name
		true,                   // durable
		false,                  // autoDelete
		false,                  // exclusive
		false,                  // noWait
		nil,                    // args
	); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx,
		"",                     // default exchange
		queue.OrderEventsQueue, // routing key = queue name
		false,                  // mandatory
		false,                  // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// ErrPublishQueueFull is returned when the background buffer has no room.
var ErrPublishQueueFull = errors.New("order event buffer full")

// BufferedPublisher hands events to a background worker so a slow or
// unreachable broker never delays the request that produced them.
type BufferedPublisher struct {
	next    EventPublisher
	events  chan queue.OrderEvent
	timeout time.Duration
	log     logrus.FieldLogger
}

// NewBufferedPublisher buffers up to size events in front of next.
func NewBufferedPublisher(next EventPublisher, size int, log logrus.FieldLogger) *BufferedPublisher {
	if size < 1 {
		size = 1
	}
	return &BufferedPublisher{
		next:    next,
		events:  make(chan queue.OrderEvent, size),
		timeout: 5 * time.Second,
		log:     log,
	}
}

// PublishOrderEvent enqueues ev without blocking.
func (p *BufferedPublisher) PublishOrderEvent(_ context.Context, ev queue.OrderEvent) error {
	select {
	case p.events <- ev:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

// Run delivers buffered events until ctx is done, then flushes what is
// left within one timeout.
func (p *BufferedPublisher) Run(ctx context.Context) error {
	for {
		select {
		case ev := <-p.events:
			p.send(ctx, ev)
		case <-ctx.Done():
			p.flush()
			return nil
		}
	}
}

func (p *BufferedPublisher) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	for {
		select {
		case ev := <-p.events:
			if ctx.Err() != nil {
				p.log.WithField("order_id", ev.OrderID).Warn("order event dropped on shutdown")
				continue
			}
			p.send(ctx, ev)
		default:
			return
		}
	}
}

func (p *BufferedPublisher) send(ctx context.Context, ev queue.OrderEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.next.PublishOrderEvent(ctx, ev); err != nil {
		p.log.WithError(err).WithFields(logrus.Fields{"order_id": ev.OrderID, "action": ev.Action}).Warn("order event not published")
	}
}
