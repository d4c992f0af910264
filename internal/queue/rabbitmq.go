package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitConfig names the topology the broker declares.
type RabbitConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
	Queue      string
	Prefetch   int
}

// RabbitBroker publishes persistent task messages to a durable topic exchange
// and consumes them from a durable queue with manual acknowledgement.
type RabbitBroker struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	cfg     RabbitConfig

	// amqp channels are not safe for concurrent publishing
	publishMu sync.Mutex
}

// DialRabbit connects and declares the exchange, queue and binding.
func DialRabbit(cfg RabbitConfig) (*RabbitBroker, error) {
	if cfg.Prefetch < 1 {
		cfg.Prefetch = 1
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		cfg.Exchange,
		"topic",
		true, // durable
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", cfg.Exchange, err)
	}

	_, err = ch.QueueDeclare(
		cfg.Queue,
		true, // durable
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare queue %s: %w", cfg.Queue, err)
	}

	if err := ch.QueueBind(cfg.Queue, cfg.RoutingKey, cfg.Exchange, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("bind queue %s: %w", cfg.Queue, err)
	}

	return &RabbitBroker{conn: conn, channel: ch, cfg: cfg}, nil
}

func (b *RabbitBroker) Publish(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	b.publishMu.Lock()
	defer b.publishMu.Unlock()
	return b.channel.PublishWithContext(ctx,
		b.cfg.Exchange,
		b.cfg.RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    msg.TaskID,
			Type:         msg.TaskName,
			Timestamp:    msg.EnqueuedAt,
			Body:         body,
		},
	)
}

// Consume opens a dedicated channel with the configured prefetch. The
// returned channel closes when ctx is done or the connection drops.
func (b *RabbitBroker) Consume(ctx context.Context) (<-chan Delivery, error) {
	ch, err := b.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open consumer channel: %w", err)
	}
	if err := ch.Qos(b.cfg.Prefetch, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}

	msgs, err := ch.Consume(
		b.cfg.Queue,
		"",
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("consume %s: %w", b.cfg.Queue, err)
	}

	out := make(chan Delivery)
	go func() {
		defer close(out)
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				log.Println("rabbitmq consumer shutting down")
				return
			case m, ok := <-msgs:
				if !ok {
					log.Println("rabbitmq delivery channel closed")
					return
				}

				msg, err := decodeMessage(m.Body)
				if err != nil {
					log.Printf("dropping undecodable message %s: %v", m.MessageId, err)
					m.Nack(false, false)
					continue
				}

				delivery := Delivery{
					Message: msg,
					Ack:     func() error { return m.Ack(false) },
					Nack:    func(requeue bool) error { return m.Nack(false, requeue) },
				}
				select {
				case out <- delivery:
				case <-ctx.Done():
					m.Nack(false, true)
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *RabbitBroker) Close() error {
	b.channel.Close()
	return b.conn.Close()
}

func decodeMessage(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, err
	}
	if msg.TaskID == "" || msg.TaskName == "" {
		return Message{}, fmt.Errorf("message is missing task_id or task")
	}
	return msg, nil
}
