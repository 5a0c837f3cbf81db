package source

import (
	"context"
	"time"

	"pantemp/internal/logger"
	"pantemp/internal/models"
	"pantemp/internal/temperature"
)

// minPollPeriod is the floor for remote polling; the feed provider rejects
// faster request rates.
const minPollPeriod = 2500 * time.Millisecond

// Reader is the slice of the feed client the polled source needs.
type Reader interface {
	Get(ctx context.Context, feedName string) (float64, error)
}

// PolledFeed reads the cloud feed each tick. The feed always reports
// Celsius; readings are converted to the session's active unit before being
// applied. Failures freeze the session on its last known temperature; every
// failure is treated as transient and retried on the next tick.
type PolledFeed struct {
	reader   Reader
	feedName string
	period   time.Duration
	log      *logger.Logger
}

// NewPolledFeed builds the polling source, clamping the period to the
// provider's rate floor.
func NewPolledFeed(reader Reader, feedName string, period time.Duration, log *logger.Logger) *PolledFeed {
	if period < minPollPeriod {
		period = minPollPeriod
	}
	return &PolledFeed{reader: reader, feedName: feedName, period: period, log: log}
}

func (p *PolledFeed) Name() string { return "feed" }

func (p *PolledFeed) TickPeriod() time.Duration { return p.period }

func (p *PolledFeed) NextReading(ctx context.Context, _ float64, unit models.Unit) (float64, bool) {
	celsius, err := p.reader.Get(ctx, p.feedName)
	if err != nil {
		// Never surfaced as a hard error: the session retains its last
		// temperature and retries on schedule.
		if p.log != nil {
			p.log.Debugw("feed read failed, keeping last temperature", "feed", p.feedName, "err", err)
		}
		return 0, false
	}
	return temperature.Convert(celsius, models.Celsius, unit), true
}
