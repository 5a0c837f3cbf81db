// Package source supplies successive temperature readings to the session
// tick loop. Two variants exist: a deterministic local simulation and a
// polling adapter over the cloud feed. Which one drives a session is decided
// once at startup by a single reachability probe.
package source

import (
	"context"
	"time"

	"pantemp/internal/feed"
	"pantemp/internal/logger"
	"pantemp/internal/models"
)

// Source produces one reading per scheduling tick.
type Source interface {
	Name() string

	// TickPeriod is the scheduling interval appropriate for this source.
	// A remote feed must be polled slowly enough to respect its rate limits.
	TickPeriod() time.Duration

	// NextReading returns the next temperature in the session's active unit.
	// ok=false means no reading is available this tick; the session keeps
	// its last known temperature and retries on the next tick.
	NextReading(ctx context.Context, current float64, unit models.Unit) (float64, bool)
}

// Select probes the feed once and returns the polled source when reachable,
// the simulation otherwise.
func Select(ctx context.Context, client *feed.Client, feedName string, simPeriod, pollPeriod time.Duration, log *logger.Logger) Source {
	if client != nil && client.Probe(ctx, feedName) {
		log.Infow("temperature feed reachable, using polled source", "feed", feedName)
		return NewPolledFeed(client, feedName, pollPeriod, log)
	}
	log.Infow("temperature feed unreachable, using simulated source")
	return NewSimulated(simPeriod)
}
