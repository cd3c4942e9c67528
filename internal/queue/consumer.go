package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// MessageHandler processes one stream entry. Returning an error leaves the
// entry pending so it is re-claimed after the claim interval.
type MessageHandler interface {
	Handle(ctx context.Context, msg redis.XMessage) error
}

type Consumer struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	claimInterval time.Duration
	maxDeliveries int64
	claimBatch    int64
	logger        zerolog.Logger
	handler       MessageHandler
}

type ConsumerOptions struct {
	Stream        string
	Group         string
	Consumer      string
	ClaimInterval time.Duration
	MaxDeliveries int64
}

func NewConsumer(client *redis.Client, opts ConsumerOptions, logger zerolog.Logger, handler MessageHandler) *Consumer {
	if opts.ClaimInterval <= 0 {
		opts.ClaimInterval = 30 * time.Second
	}
	return &Consumer{
		client:        client,
		stream:        opts.Stream,
		group:         opts.Group,
		consumer:      opts.Consumer,
		claimInterval: opts.ClaimInterval,
		maxDeliveries: opts.MaxDeliveries,
		claimBatch:    100,
		logger:        logger.With().Str("stream", opts.Stream).Str("group", opts.Group).Logger(),
		handler:       handler,
	}
}

func (c *Consumer) Start(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(c.claimInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := c.read(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("stream read error")
				time.Sleep(2 * time.Second)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := c.claimStalled(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("claim stalled failed")
			}
		default:
		}
	}
}

func (c *Consumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.stream, c.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) read(ctx context.Context) error {
	result, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.group,
		Consumer: c.consumer,
		Streams:  []string{c.stream, ">"},
		Count:    10,
		Block:    5 * time.Second,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}

	for _, stream := range result {
		for _, msg := range stream.Messages {
			c.process(ctx, msg)
		}
	}
	return nil
}

func (c *Consumer) process(ctx context.Context, msg redis.XMessage) {
	if err := c.handler.Handle(ctx, msg); err != nil {
		c.logger.Debug().
			Err(err).
			Str("message_id", msg.ID).
			Msg("message left pending")
		return
	}
	c.ack(ctx, msg.ID)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.stream, c.group, id).Err(); err != nil {
		c.logger.Error().Err(err).Str("message_id", id).Msg("ack failed")
	}
}

// claimStalled walks the whole pending list a page at a time. Entries that
// fail again are re-claimed with a fresh idle time, so they do not come back
// in the same pass.
func (c *Consumer) claimStalled(ctx context.Context) error {
	start := "-"
	for ctx.Err() == nil {
		pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: c.stream,
			Group:  c.group,
			Idle:   c.claimInterval,
			Start:  start,
			End:    "+",
			Count:  c.claimBatch,
		}).Result()
		if err != nil {
			return err
		}

		for _, entry := range pending {
			c.claim(ctx, entry)
		}

		if int64(len(pending)) < c.claimBatch {
			return nil
		}
		start, err = nextStreamID(pending[len(pending)-1].ID)
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (c *Consumer) claim(ctx context.Context, entry redis.XPendingExt) {
	if c.maxDeliveries > 0 && entry.RetryCount >= c.maxDeliveries {
		c.logger.Warn().
			Str("message_id", entry.ID).
			Int64("deliveries", entry.RetryCount).
			Msg("giving up on message")
		c.ack(ctx, entry.ID)
		return
	}

	msgs, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   c.stream,
		Group:    c.group,
		Consumer: c.consumer,
		MinIdle:  c.claimInterval,
		Messages: []string{entry.ID},
	}).Result()
	if err != nil {
		c.logger.Error().Err(err).Str("message_id", entry.ID).Msg("claim error")
		return
	}
	for _, msg := range msgs {
		c.process(ctx, msg)
	}
}

// nextStreamID returns the smallest stream id greater than id.
func nextStreamID(id string) (string, error) {
	msPart, seqPart, ok := strings.Cut(id, "-")
	if !ok {
		return "", fmt.Errorf("malformed stream id %q", id)
	}
	ms, err := strconv.ParseUint(msPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}
	seq, err := strconv.ParseUint(seqPart, 10, 64)
	if err != nil {
		return "", fmt.Errorf("malformed stream id %q: %w", id, err)
	}
	if seq == ^uint64(0) {
		return strconv.FormatUint(ms+1, 10) + "-0", nil
	}
	return msPart + "-" + strconv.FormatUint(seq+1, 10), nil
}
