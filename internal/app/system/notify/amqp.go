package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

type amqpConn interface {
	IsClosed() bool
	Close() error
}

// amqpOpener dials the broker and returns a channel with the queue declared.
type amqpOpener func() (amqpConn, amqpChannel, error)

// AMQPPublisher publishes messages as JSON to a durable queue on the default
// exchange. A dropped connection or channel is redialed on the next Send.
type AMQPPublisher struct {
	queue string
	open  amqpOpener

	mu   sync.Mutex // amqp channels are not safe for concurrent publishing
	conn amqpConn
	ch   amqpChannel
	now  func() time.Time
}

// DialAMQP connects to url and declares queue.
func DialAMQP(url, queue string) (*AMQPPublisher, error) {
	return newAMQPPublisher(queue, func() (amqpConn, amqpChannel, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			conn.Close()
			return nil, nil, err
		}
		// durable, not auto-deleted, not exclusive
		if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, nil, err
		}
		return conn, ch, nil
	})
}

func newAMQPPublisher(queue string, open amqpOpener) (*AMQPPublisher, error) {
	p := &AMQPPublisher{queue: queue, open: open, now: time.Now}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect replaces the current connection. Callers hold mu, except during
// construction.
func (p *AMQPPublisher) connect() error {
	p.drop()
	conn, ch, err := p.open()
	if err != nil {
		return err
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *AMQPPublisher) drop() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

func (p *AMQPPublisher) broken() bool {
	return p.ch == nil || p.ch.IsClosed() || p.conn == nil || p.conn.IsClosed()
}

// Send publishes msg as a persistent JSON delivery. A publish that fails
// because the channel closed underneath it is retried once on a fresh
// connection.
func (p *AMQPPublisher) Send(ctx context.Context, msg Message) error {
	msg, err := Prepare(msg, p.now())
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    msg.ID,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.broken() {
		if err := p.connect(); err != nil {
			return fmt.Errorf("amqp reconnect: %w", err)
		}
	}
	err = p.publish(ctx, pub)
	if errors.Is(err, amqp.ErrClosed) {
		if cerr := p.connect(); cerr != nil {
			return errors.Join(err, fmt.Errorf("amqp reconnect: %w", cerr))
		}
		err = p.publish(ctx, pub)
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, pub amqp.Publishing) error {
	return p.ch.PublishWithContext(ctx,
		"",      // default exchange
		p.queue, // routing key == queue name
		false,   // mandatory
		false,   // immediate
		pub,
	)
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil {
		errs = append(errs, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		errs = append(errs, p.conn.Close())
		p.conn = nil
	}
	return errors.Join(errs...)
}
