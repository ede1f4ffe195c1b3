// ABOUTME: In-process decision counters with an explicit lifecycle
// ABOUTME: Constructed and owned by the entry point, injected where needed

package metrics

import (
	"log/slog"
	"sync"
)

// Collector counts gate decisions by reason plus check-ins. It replaces a
// module-level singleton: main constructs one, hands it to the API server,
// and logs the final summary on shutdown.
type Collector struct {
	mu        sync.Mutex
	decisions map[string]int64
	checkins  int64
	logger    *slog.Logger
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		decisions: make(map[string]int64),
		logger:    slog.Default().With("component", "metrics"),
	}
}

// RecordDecision increments the counter for a reason code.
func (c *Collector) RecordDecision(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decisions[reason]++
}

// RecordCheckin increments the successful check-in counter.
func (c *Collector) RecordCheckin() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkins++
}

// Snapshot returns a copy of the current counters.
func (c *Collector) Snapshot() (decisions map[string]int64, checkins int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	decisions = make(map[string]int64, len(c.decisions))
	for k, v := range c.decisions {
		decisions[k] = v
	}
	return decisions, c.checkins
}

// Stop logs a final summary. Called once by the process entry point during
// shutdown.
func (c *Collector) Stop() {
	decisions, checkins := c.Snapshot()

	var total int64
	for _, v := range decisions {
		total += v
	}
	c.logger.Info("final counters", "decisions", total, "checkins", checkins)
}
