// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package stats

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/metrics"
)

const (
	statsTopic    = "stats.events"
	metadataEvent = "event_type"
	handlerName   = "stats-aggregator"
)

// ErrDispatcherStopped is recorded for events dispatched while no router runs.
var ErrDispatcherStopped = errors.New("stats dispatcher not running")

// Applier applies one event. Aggregator implements it.
type Applier interface {
	Apply(ctx context.Context, ev Event) error
}

// DispatcherConfig tunes the asynchronous pipeline.
type DispatcherConfig struct {
	// Buffer is the per-subscriber channel size.
	Buffer int

	// MaxRetries is how often a failed event is retried before it is dropped.
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// Timeout bounds one application of an event, retries included.
	Timeout time.Duration

	// CloseTimeout is how long in-flight events may run on shutdown.
	CloseTimeout time.Duration
}

// DefaultDispatcherConfig returns production defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		Buffer:          1024,
		MaxRetries:      3,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Timeout:         10 * time.Second,
		CloseTimeout:    10 * time.Second,
	}
}

func (c DispatcherConfig) withDefaults() DispatcherConfig {
	d := DefaultDispatcherConfig()
	if c.Buffer <= 0 {
		c.Buffer = d.Buffer
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	} else if c.MaxRetries == 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = d.InitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = d.MaxInterval
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.CloseTimeout <= 0 {
		c.CloseTimeout = d.CloseTimeout
	}
	return c
}

// Dispatcher publishes stat events to an in-process watermill pub/sub and
// applies them from a router. Dispatch never blocks the caller.
//
// Serve runs one router until ctx is cancelled; it can be called again after
// it returns, which is how the supervisor restarts it.
type Dispatcher struct {
	applier Applier
	cfg     DispatcherConfig
	pubsub  *gochannel.GoChannel
	wmLog   watermill.LoggerAdapter
	logger  zerolog.Logger

	running atomic.Bool
	readyCh atomic.Value // chan struct{} of the current run
}

// NewDispatcher creates a dispatcher that applies events with applier.
func NewDispatcher(applier Applier, cfg DispatcherConfig) (*Dispatcher, error) {
	if applier == nil {
		return nil, errors.New("stats dispatcher requires an applier")
	}
	cfg = cfg.withDefaults()
	wmLog := logging.NewWatermillLogger("stats-dispatcher")

	d := &Dispatcher{
		applier: applier,
		cfg:     cfg,
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            int64(cfg.Buffer),
			BlockPublishUntilSubscriberAck: false,
		}, wmLog),
		wmLog:  wmLog,
		logger: logging.WithComponent("stats-dispatcher"),
	}
	d.readyCh.Store(make(chan struct{}))
	return d, nil
}

// Dispatch publishes ev and returns at once. Events dispatched while the
// router is not running are counted as failed and dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.ID == "" {
		ev.ID = watermill.NewUUID()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now()
	}
	if !d.running.Load() {
		metrics.RecordStatsEvent(string(ev.Type), ErrDispatcherStopped)
		d.logger.Warn().Str("action", string(ev.Type)).Str("event_id", ev.ID).Msg("stats event dropped, dispatcher not running")
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		metrics.RecordStatsEvent(string(ev.Type), err)
		d.logger.Error().Err(err).Str("action", string(ev.Type)).Msg("stats event not encodable")
		return
	}
	msg := message.NewMessage(ev.ID, payload)
	msg.Metadata.Set(metadataEvent, string(ev.Type))

	if err := d.pubsub.Publish(statsTopic, msg); err != nil {
		metrics.RecordStatsEvent(string(ev.Type), err)
		d.logger.Error().Err(err).Str("action", string(ev.Type)).Msg("stats event publish failed")
	}
}

// Ready returns a channel closed once the current router is consuming.
func (d *Dispatcher) Ready() <-chan struct{} {
	return d.readyCh.Load().(chan struct{})
}

// Serve runs the router until ctx is done. It implements suture.Service.
func (d *Dispatcher) Serve(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: d.cfg.CloseTimeout}, d.wmLog)
	if err != nil {
		return fmt.Errorf("create stats router: %w", err)
	}

	// Outermost first: failures are dropped only after recovery and retries.
	router.AddMiddleware(
		d.dropFailed,
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      d.cfg.MaxRetries,
			InitialInterval: d.cfg.InitialInterval,
			MaxInterval:     d.cfg.MaxInterval,
			Multiplier:      2,
			Logger:          d.wmLog,
		}.Middleware,
	)
	router.AddConsumerHandler(handlerName, statsTopic, d.pubsub, d.handle)

	ready := d.readyCh.Load().(chan struct{})
	go func() {
		select {
		case <-router.Running():
			d.running.Store(true)
			close(ready)
		case <-ctx.Done():
		}
	}()

	d.logger.Info().Msg("stats dispatcher starting")
	err = router.Run(ctx)

	d.running.Store(false)
	d.readyCh.Store(make(chan struct{}))
	d.logger.Info().Msg("stats dispatcher stopped")

	if err != nil {
		return fmt.Errorf("stats router: %w", err)
	}
	return ctx.Err()
}

// Close shuts the pub/sub down. Serve must have returned.
func (d *Dispatcher) Close() error {
	return d.pubsub.Close()
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string {
	return "stats-dispatcher"
}

func (d *Dispatcher) handle(msg *message.Message) error {
	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		// Malformed payloads cannot succeed on retry.
		d.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("stats event undecodable")
		return nil
	}

	ctx, cancel := context.WithTimeout(msg.Context(), d.cfg.Timeout)
	defer cancel()
	return d.applier.Apply(ctx, ev)
}

// dropFailed acks every message so gochannel does not redeliver it forever.
func (d *Dispatcher) dropFailed(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		event := msg.Metadata.Get(metadataEvent)
		out, err := h(msg)
		metrics.RecordStatsEvent(event, err)
		if err != nil {
			d.logger.Error().Err(err).
				Str("action", event).
				Str("event_id", msg.UUID).
				Msg("stats event dropped after retries")
			return nil, nil
		}
		return out, nil
	}
}
