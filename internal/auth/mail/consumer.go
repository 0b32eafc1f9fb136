package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/quollify/gatekey/internal/auth/service"
)

// Sender delivers a single recovery mail. The SMTP implementation lives at
// the edge; tests use a recording fake.
type Sender interface {
	Send(ctx context.Context, mail service.RecoveryMail) error
}

// Consumer drains the recovery-email queue and hands each message to the
// Sender. It reconnects with exponential backoff and rejects poison messages
// without requeueing so a bad payload can't wedge the queue.
type Consumer struct {
	URL    string
	Sender Sender
	Logger *slog.Logger
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Logger.Warn("mail consumer dial failed", "error", err, "retry_in", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := c.consumeLoop(ctx, conn); err != nil {
			_ = conn.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Logger.Warn("mail consume loop ended, reconnecting", "error", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(10, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	if _, err := ch.QueueDeclare(QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(QueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := c.handle(ctx, d.Body); err != nil {
				c.Logger.Error("recovery mail handling failed", "error", err)
				_ = d.Nack(false, false) // do not requeue, avoids tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var mail service.RecoveryMail
	if err := json.Unmarshal(body, &mail); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	return c.Sender.Send(ctx, mail)
}

// LogSender is the default Sender when no SMTP relay is configured. It logs
// the recovery link so local and test environments can complete the flow.
type LogSender struct {
	Logger *slog.Logger
}

func (s *LogSender) Send(_ context.Context, mail service.RecoveryMail) error {
	s.Logger.Info("recovery mail",
		"to", mail.Email,
		"name", mail.Name,
		"link", mail.Link,
	)
	return nil
}
