// Package reaper runs the explicit expiry sweep. The read path deactivates an
// expired note lazily on its first late read; notes nobody reads again would
// otherwise sit active in storage forever. The reaper makes that policy
// explicit by periodically invoking the service's reap operation.
package reaper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/notedrop/notes-api/internal/core/ports"
)

const defaultInterval = time.Hour

// Runner periodically deactivates expired notes. It stops when the context
// given to Start is cancelled.
type Runner struct {
	service  ports.NoteService
	interval time.Duration
	log      zerolog.Logger
}

// New creates a Runner. If interval <= 0, defaultInterval is used.
func New(service ports.NoteService, interval time.Duration, log zerolog.Logger) *Runner {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{service: service, interval: interval, log: log}
}

// Start launches the sweep goroutine. The first sweep runs after one full
// interval, not immediately.
func (r *Runner) Start(ctx context.Context) {
	go r.run(ctx)
}

func (r *Runner) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := r.service.ReapExpired(ctx)
			if err != nil {
				r.log.Error().Err(err).Msg("reap sweep failed")
				continue
			}
			r.log.Debug().Int64("count", count).Msg("reap sweep completed")
		}
	}
}
