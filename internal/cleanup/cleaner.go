package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// SessionReaper is the slice of the interview engine the cleaner needs:
// finding idle sessions and retiring them.
type SessionReaper interface {
	ExpiredSessions(idle time.Duration) []string
	Abort(sessionID string)
}

// Cleaner handles periodic cleanup of idle interview sessions
type Cleaner struct {
	reaper      SessionReaper
	interval    time.Duration
	idleTimeout time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(reaper SessionReaper, interval, idleTimeout time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}

	return &Cleaner{
		reaper:      reaper,
		interval:    interval,
		idleTimeout: idleTimeout,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "idle_timeout", c.idleTimeout)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.cleanup()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup finds and aborts idle sessions
func (c *Cleaner) cleanup() {
	slog.Debug("running cleanup cycle")

	expired := c.reaper.ExpiredSessions(c.idleTimeout)
	if len(expired) == 0 {
		slog.Debug("no idle sessions found")
		return
	}

	slog.Info("found idle sessions", "count", len(expired))

	for _, id := range expired {
		slog.Info("aborting idle session", "id", id)
		c.reaper.Abort(id)
	}
}
