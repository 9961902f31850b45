// Eat-What - Random Meal and Drink Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eatwhat

package client

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/eatwhat/internal/logging"
	"github.com/tomtom215/eatwhat/internal/models"
)

// SessionUpdater sends one session action. *Client implements it.
type SessionUpdater interface {
	UpdateSession(ctx context.Context, upd models.SessionUpdate) error
}

// ReporterConfig tunes a Reporter. Zero values use the defaults below.
type ReporterConfig struct {
	Buffer       int
	RatePerSec   float64
	Burst        int
	SendTimeout  time.Duration
	DrainTimeout time.Duration
}

func (c ReporterConfig) withDefaults() ReporterConfig {
	if c.Buffer <= 0 {
		c.Buffer = 64
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 10
	}
	if c.Burst <= 0 {
		c.Burst = 5
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 5 * time.Second
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 3 * time.Second
	}
	return c
}

// Reporter delivers session actions in the background so the decision flow
// never waits on the network. It satisfies session.Reporter.
//
// Updates are sent in order, rate limited, and at most once. A failed send is
// logged and dropped, as is an update that finds the queue full.
type Reporter struct {
	updater SessionUpdater
	cfg     ReporterConfig
	limiter *rate.Limiter
	queue   chan models.SessionUpdate

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	runOnce   sync.Once

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewReporter creates a reporter. Call Run to start delivery.
func NewReporter(updater SessionUpdater, cfg ReporterConfig) *Reporter {
	cfg = cfg.withDefaults()
	return &Reporter{
		updater: updater,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		queue:   make(chan models.SessionUpdate, cfg.Buffer),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Report queues an update without blocking.
func (r *Reporter) Report(upd models.SessionUpdate) {
	select {
	case <-r.stop:
		r.dropped.Add(1)
		return
	default:
	}
	select {
	case r.queue <- upd:
	default:
		r.dropped.Add(1)
		logging.Warn().
			Str("session_id", upd.SessionID).
			Str("action", string(upd.Action)).
			Msg("session report queue full, dropping update")
	}
}

// Run delivers queued updates until ctx is canceled or Close is called, then
// drains what is left within DrainTimeout. Only the first call does anything.
func (r *Reporter) Run(ctx context.Context) {
	r.runOnce.Do(func() {
		defer close(r.done)
		// in-flight sends are bounded by SendTimeout, not by ctx
		sendCtx := context.WithoutCancel(ctx)
		for {
			select {
			case upd := <-r.queue:
				r.deliver(sendCtx, upd)
			case <-ctx.Done():
				r.drain()
				return
			case <-r.stop:
				r.drain()
				return
			}
		}
	})
}

// Close stops Run after draining and waits for it. If Run was never
// started, Close drains the queue itself. It is safe to call more than once.
func (r *Reporter) Close() {
	r.closeOnce.Do(func() { close(r.stop) })

	started := true
	r.runOnce.Do(func() {
		started = false
		r.drain()
		close(r.done)
	})
	if started {
		<-r.done
	}
}

// Sent is the number of updates delivered.
func (r *Reporter) Sent() int64 { return r.sent.Load() }

// Dropped is the number of updates lost to a full queue, a failed send or
// a closed reporter.
func (r *Reporter) Dropped() int64 { return r.dropped.Load() }

func (r *Reporter) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.DrainTimeout)
	defer cancel()
	for {
		select {
		case upd := <-r.queue:
			r.deliver(ctx, upd)
		default:
			return
		}
	}
}

func (r *Reporter) deliver(ctx context.Context, upd models.SessionUpdate) {
	if err := r.limiter.Wait(ctx); err != nil {
		r.dropped.Add(1)
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, r.cfg.SendTimeout)
	defer cancel()

	if err := r.updater.UpdateSession(sendCtx, upd); err != nil {
		r.dropped.Add(1)
		logging.Warn().Err(err).
			Str("session_id", upd.SessionID).
			Str("action", string(upd.Action)).
			Msg("session update not delivered")
		return
	}
	r.sent.Add(1)
}
