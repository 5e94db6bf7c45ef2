package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/itechkenya/address-router/internal/config"
	"github.com/itechkenya/address-router/internal/policy"
	"github.com/itechkenya/address-router/internal/router"
)

// Envelope is the message form carried on channel streams. The payload is
// opaque to the router; only the destination address drives the next hop.
type Envelope struct {
	MessageID   string          `json:"message_id"`
	Source      string          `json:"source"`
	Destination string          `json:"destination"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	Hops        int             `json:"hops"`
}

// Worker consumes messages addressed through this node and forwards each
// one a single hop along the hierarchy. Messages that have arrived go to
// the delivered stream; messages that cannot progress go to the dead-letter
// stream.
type Worker struct {
	cfg         *config.Config
	redisClient *redis.Client
	router      *router.Router
	policy      *policy.Policy
	logger      *zap.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	routerInstance *router.Router,
	dispatchPolicy *policy.Policy,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		cfg:         cfg,
		redisClient: redisClient,
		router:      routerInstance,
		policy:      dispatchPolicy,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting address router worker",
		zap.String("consumer_name", w.cfg.ConsumerName),
		zap.String("inbound_stream", w.cfg.InboundStream),
		zap.String("consumer_group", w.cfg.ConsumerGroup),
	)

	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	w.wg.Add(1)
	go w.processMessages()

	w.logger.Info("address router worker started")
	return nil
}

// Stop stops the worker gracefully, waiting for in-flight work.
func (w *Worker) Stop() error {
	w.logger.Info("stopping address router worker")

	w.cancel()
	w.wg.Wait()

	w.logger.Info("address router worker stopped")
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.cfg.InboundStream, w.cfg.ConsumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP error means the group already exists, which is fine
		if err.Error() == "BUSYGROUP Consumer Group name already exists" {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.cfg.ConsumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.cfg.ConsumerGroup),
		zap.String("stream", w.cfg.InboundStream),
	)
	return nil
}

// processMessages reads from the inbound stream until the worker stops.
func (w *Worker) processMessages() {
	defer w.wg.Done()
	w.logger.Info("starting message processing loop")

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("message processing loop stopped")
			return
		default:
			streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
				Group:    w.cfg.ConsumerGroup,
				Consumer: w.cfg.ConsumerName,
				Streams:  []string{w.cfg.InboundStream, ">"},
				Count:    1,
				Block:    w.cfg.BlockTime,
			}).Result()

			if err != nil {
				if errors.Is(err, redis.Nil) {
					// No messages available, continue
					continue
				}
				if errors.Is(err, context.Canceled) {
					continue
				}
				w.logger.Error("failed to read from stream", zap.Error(err))
				time.Sleep(time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					w.handleMessage(message)
				}
			}
		}
	}
}

// handleMessage forwards a single message one hop and acknowledges it.
func (w *Worker) handleMessage(message redis.XMessage) {
	w.logger.Info("processing message", zap.String("stream_id", message.ID))

	envelope, err := parseEnvelope(message.Values)
	if err != nil {
		w.logger.Error("failed to parse message envelope",
			zap.String("stream_id", message.ID),
			zap.Error(err),
		)
		w.deadLetterRaw(message, err)
		w.acknowledge(message.ID)
		return
	}

	w.forward(envelope)
	w.acknowledge(message.ID)
}

// forward applies the dispatch policy and the routing decision to an
// envelope, placing it on the next-hop, delivered, or dead-letter stream.
func (w *Worker) forward(envelope *Envelope) {
	decision := w.policy.Decide(w.ctx, envelope.Destination, w.router.RouterAddress(), w.router.RootAddress())
	if !decision.Allowed {
		w.deadLetter(envelope, decision.Reason)
		return
	}

	channel, err := w.router.DispatchTo(envelope.Destination)
	if err != nil {
		var selfRoute *router.SelfRouteError
		if errors.As(err, &selfRoute) {
			// The message is at its final address.
			w.deliver(envelope)
			return
		}
		// InvalidAddressError and TopLevelRouterError are terminal for
		// the message: it cannot progress from here.
		w.logger.Error("message cannot be routed",
			zap.String("message_id", envelope.MessageID),
			zap.String("destination", envelope.Destination),
			zap.Error(err),
		)
		w.deadLetter(envelope, err.Error())
		return
	}

	envelope.Hops++
	if err := w.publish(w.ctx, channel, envelope); err != nil {
		w.logger.Error("failed to publish to next hop",
			zap.String("message_id", envelope.MessageID),
			zap.String("channel", channel),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("forwarded message",
		zap.String("message_id", envelope.MessageID),
		zap.String("destination", envelope.Destination),
		zap.String("channel", channel),
		zap.Int("hops", envelope.Hops),
	)
}

// deliver places an envelope on the delivered stream for local consumption.
func (w *Worker) deliver(envelope *Envelope) {
	if err := w.publish(w.ctx, w.cfg.DeliveredStream, envelope); err != nil {
		w.logger.Error("failed to publish delivered message",
			zap.String("message_id", envelope.MessageID),
			zap.Error(err),
		)
		return
	}

	w.logger.Info("message delivered",
		zap.String("message_id", envelope.MessageID),
		zap.String("destination", envelope.Destination),
	)
}

// deadLetter records a message that cannot progress, with the reason.
func (w *Worker) deadLetter(envelope *Envelope, reason string) {
	record := map[string]interface{}{
		"message_id":  envelope.MessageID,
		"source":      envelope.Source,
		"destination": envelope.Destination,
		"payload":     envelope.Payload,
		"hops":        envelope.Hops,
		"reason":      reason,
		"timestamp":   time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		w.logger.Error("failed to marshal dead-letter record", zap.Error(err))
		return
	}

	err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.cfg.DeadLetterStream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		w.logger.Error("failed to publish dead-letter record", zap.Error(err))
		return
	}

	w.logger.Warn("message dead-lettered",
		zap.String("message_id", envelope.MessageID),
		zap.String("destination", envelope.Destination),
		zap.String("reason", reason),
	)
}

// deadLetterRaw records a message whose envelope could not be parsed.
func (w *Worker) deadLetterRaw(message redis.XMessage, cause error) {
	record := map[string]interface{}{
		"stream_id": message.ID,
		"values":    message.Values,
		"reason":    cause.Error(),
		"timestamp": time.Now().UTC(),
	}

	data, err := json.Marshal(record)
	if err != nil {
		w.logger.Error("failed to marshal dead-letter record", zap.Error(err))
		return
	}

	err = w.redisClient.XAdd(w.ctx, &redis.XAddArgs{
		Stream: w.cfg.DeadLetterStream,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		w.logger.Error("failed to publish dead-letter record", zap.Error(err))
	}
}

// acknowledge acknowledges a message on the inbound stream.
func (w *Worker) acknowledge(messageID string) {
	err := w.redisClient.XAck(w.ctx, w.cfg.InboundStream, w.cfg.ConsumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("stream_id", messageID),
			zap.Error(err),
		)
	}
}

// publish adds an envelope to the stream named by channel.
func (w *Worker) publish(ctx context.Context, channel string, envelope *Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	err = w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: channel,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to publish to stream: %w", err)
	}

	return nil
}

// parseEnvelope parses an envelope from stream message values.
func parseEnvelope(values map[string]interface{}) (*Envelope, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var envelope Envelope
	if err := json.Unmarshal([]byte(dataStr), &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal envelope: %w", err)
	}

	if envelope.Destination == "" {
		return nil, fmt.Errorf("envelope has no destination address")
	}

	return &envelope, nil
}
