// Package mail moves password recovery emails through RabbitMQ so the HTTP
// request that triggered them never waits on SMTP.
package mail

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/quollify/gatekey/internal/auth/service"
)

// QueueName is the durable queue carrying recovery emails.
const QueueName = "auth.recovery-email"

// Publisher enqueues recovery mails. It satisfies service.RecoveryMailer.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher dials the broker and declares the durable queue so messages
// survive broker restarts.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) PublishRecoveryMail(ctx context.Context, mail service.RecoveryMail) error {
	body, err := json.Marshal(mail)
	if err != nil {
		return err
	}

	return p.ch.PublishWithContext(ctx,
		"",        // default exchange
		QueueName, // routing key = queue name
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		})
}

func (p *Publisher) Close() error {
	_ = p.ch.Close()
	return p.conn.Close()
}
