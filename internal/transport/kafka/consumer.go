// Package kafka adapts the bsm.Handler pipeline to a Kafka message bus:
// a ConsumerGroup reads raw BSM bytes, feeds each message to a handler,
// and a SyncProducer republishes the redacted output on SUCCESS. This is
// the external transport collaborator spec.md §1 scopes out of the core
// and describes only by interface; its shape follows the teacher's
// cmd/server.ListenAndServe graceful-shutdown idiom (signal channel,
// context-bound shutdown) adapted from HTTP to a consumer-group session.
package kafka

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/azybler/bsm-filter/internal/bsm"
	"github.com/azybler/bsm-filter/internal/obs"
)

// HandlerFactory produces a fresh *bsm.Handler for each partition-
// consuming goroutine, so every goroutine owns its own parse/output
// buffers while sharing the same read-only quadtree and config (spec.md
// §5: a handler instance is not safe for concurrent use across
// messages, but independently-owned instances may run concurrently).
type HandlerFactory func() *bsm.Handler

// Consumer wraps a sarama ConsumerGroup, feeding each claimed message to
// a per-partition bsm.Handler and republishing SUCCESS verdicts via a
// Producer.
type Consumer struct {
	group    sarama.ConsumerGroup
	topics   []string
	newH     HandlerFactory
	producer *Producer
	log      zerolog.Logger
	counter  *obs.VerdictCounter
}

// NewConsumer creates a ConsumerGroup-backed Consumer. brokers and
// groupID configure the underlying sarama client; topics is the list of
// raw-BSM input topics to subscribe to.
func NewConsumer(brokers []string, groupID string, topics []string, newH HandlerFactory, producer *Producer, log zerolog.Logger, counter *obs.VerdictCounter) (*Consumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest

	group, err := sarama.NewConsumerGroup(brokers, groupID, cfg)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		group:    group,
		topics:   topics,
		newH:     newH,
		producer: producer,
		log:      log,
		counter:  counter,
	}, nil
}

// Run consumes until ctx is canceled or a SIGTERM/SIGINT is received,
// whichever comes first, then closes the consumer group cleanly.
func (c *Consumer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		select {
		case sig := <-stop:
			c.log.Info().Str("signal", sig.String()).Msg("shutting down consumer")
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		for err := range c.group.Errors() {
			c.log.Error().Err(err).Msg("consumer group error")
		}
	}()

	handler := &groupHandler{consumer: c}
	for {
		if err := c.group.Consume(ctx, c.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return c.group.Close()
		}
	}
}

// groupHandler implements sarama.ConsumerGroupHandler, allocating one
// bsm.Handler per partition claim (ConsumeClaim runs on its own
// goroutine per assigned partition).
type groupHandler struct {
	consumer *Consumer
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	handler := h.consumer.newH()

	for msg := range claim.Messages() {
		verdict := handler.Process(msg.Value)
		h.consumer.counter.Observe(verdict)

		switch verdict {
		case bsm.SUCCESS:
			if h.consumer.producer != nil {
				if err := h.consumer.producer.Publish(handler.JSON()); err != nil {
					h.consumer.log.Error().Err(err).Msg("failed to publish redacted bsm")
				}
			}
		case bsm.SPEED, bsm.GEOPOSITION:
			h.consumer.log.Debug().Str("verdict", verdict.String()).Msg("suppressed bsm")
		default:
			h.consumer.log.Debug().
				Str("verdict", verdict.String()).
				Int64("offset", msg.Offset).
				Int32("partition", msg.Partition).
				Msg("dropped unprocessable bsm")
		}

		sess.MarkMessage(msg, "")
	}
	return nil
}
