package outbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/apexrecon/internal/clock"
	"github.com/MrJamesThe3rd/apexrecon/internal/event"
)

// Handler consumes one notification. Returning an error marks the attempt failed.
type Handler func(ctx context.Context, n event.Notification) error

type Config struct {
	BatchSize    int
	MaxAttempts  int
	Interval     time.Duration
	StuckTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}

	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}

	if c.Interval <= 0 {
		c.Interval = 5 * time.Second
	}

	if c.StuckTimeout <= 0 {
		c.StuckTimeout = 5 * time.Minute
	}

	return c
}

type Dispatcher struct {
	repo  Repository
	clock clock.Clock
	cfg   Config

	mu       sync.RWMutex
	handlers map[event.Type][]Handler
	catchAll []Handler
}

type Result struct {
	Claimed   int
	Published int
	Failed    int
}

func NewDispatcher(repo Repository, clk clock.Clock, cfg Config) *Dispatcher {
	return &Dispatcher{
		repo:     repo,
		clock:    clk,
		cfg:      cfg.withDefaults(),
		handlers: make(map[event.Type][]Handler),
	}
}

// Register adds h for notifications of type t.
func (d *Dispatcher) Register(t event.Type, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[t] = append(d.handlers[t], h)
}

// RegisterAll adds h for every notification type.
func (d *Dispatcher) RegisterAll(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.catchAll = append(d.catchAll, h)
}

// DispatchOnce claims one batch and delivers it.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (Result, error) {
	events, err := d.repo.ClaimPending(ctx, d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		return Result{}, fmt.Errorf("claiming outbox events: %w", err)
	}

	res := Result{Claimed: len(events)}

	for _, ev := range events {
		if err := d.deliver(ctx, ev.Notification); err != nil {
			res.Failed++

			slog.Warn("outbox delivery failed",
				"event_id", ev.ID, "type", ev.Type, "attempt", ev.Attempts+1, "error", err)

			if err := d.repo.MarkFailed(ctx, ev.ID, err.Error(), d.cfg.MaxAttempts); err != nil {
				return res, fmt.Errorf("marking event %s failed: %w", ev.ID, err)
			}

			continue
		}

		if err := d.repo.MarkPublished(ctx, ev.ID, d.clock.Now()); err != nil {
			return res, fmt.Errorf("marking event %s published: %w", ev.ID, err)
		}

		res.Published++
	}

	return res, nil
}

// Run dispatches on every tick until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	if n, err := d.repo.ResetStuck(ctx, d.clock.Now().Add(-d.cfg.StuckTimeout)); err != nil {
		return fmt.Errorf("resetting stuck events: %w", err)
	} else if n > 0 {
		slog.Info("requeued stuck outbox events", "count", n)
	}

	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()

	for {
		res, err := d.DispatchOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("outbox dispatch failed", "error", err)
		} else if res.Claimed > 0 {
			slog.Info("outbox batch dispatched", "published", res.Published, "failed", res.Failed)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n event.Notification) error {
	d.mu.RLock()
	handlers := append(append([]Handler(nil), d.handlers[n.Type]...), d.catchAll...)
	d.mu.RUnlock()

	var errs []error

	for _, h := range handlers {
		if err := h(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
