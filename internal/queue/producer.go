package queue

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	TaskConfirmPayment  = "payment.confirm"
	NotifyVerifyEmail   = "email.verify"
	NotifyPasswordReset = "email.password_reset"
)

type Producer struct {
	client *redis.Client
	stream string
}

func NewProducer(client *redis.Client, stream string) *Producer {
	return &Producer{client: client, stream: stream}
}

func (p *Producer) Enqueue(ctx context.Context, values map[string]any) (string, error) {
	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: values,
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return id, nil
}

// PaymentJobs schedules checkout confirmation polls for the worker.
type PaymentJobs struct {
	producer *Producer
}

func NewPaymentJobs(producer *Producer) *PaymentJobs {
	return &PaymentJobs{producer: producer}
}

func (j *PaymentJobs) EnqueueConfirm(ctx context.Context, checkoutID, userID string) error {
	_, err := j.producer.Enqueue(ctx, map[string]any{
		"type":      TaskConfirmPayment,
		"sessionId": checkoutID,
		"userId":    userID,
	})
	return err
}

// Outbox hands one-time tokens to the external mailer through a stream.
type Outbox struct {
	producer    *Producer
	frontendURL string
}

func NewOutbox(producer *Producer, frontendURL string) *Outbox {
	return &Outbox{producer: producer, frontendURL: frontendURL}
}

func (o *Outbox) SendVerification(ctx context.Context, email, name, token string) error {
	return o.send(ctx, NotifyVerifyEmail, email, name, o.frontendURL+"/verify-email?token="+token)
}

func (o *Outbox) SendPasswordReset(ctx context.Context, email, name, token string) error {
	return o.send(ctx, NotifyPasswordReset, email, name, o.frontendURL+"/reset-password?token="+token)
}

func (o *Outbox) send(ctx context.Context, kind, email, name, link string) error {
	_, err := o.producer.Enqueue(ctx, map[string]any{
		"type":  kind,
		"email": email,
		"name":  name,
		"link":  link,
	})
	return err
}
