// Package supervisor seeds the frontier, spawns the fixed worker
// pool, and keeps it alive for the life of the process.
package supervisor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vkarelin/newscrawl/internal/fetchworker"
	"github.com/vkarelin/newscrawl/internal/health"
	"github.com/vkarelin/newscrawl/internal/urlkey"
)

const livenessCheckInterval = time.Second

// seedPriority is the priority given to configured seed URLs: the
// same as ordinary non-article links (1) and below freshly discovered
// articles (0), matching the original implementation.
const seedPriority = 1

// WorkerFactory builds the worker the supervisor runs under id.
type WorkerFactory func(id string) *fetchworker.Worker

// Supervisor owns the worker pool's lifecycle: seed once, run N
// workers, restart any that die, stop cleanly on context cancel.
type Supervisor struct {
	frontier  FrontierStore
	newWorker WorkerFactory
	workers   int
	log       zerolog.Logger
}

// FrontierStore is the subset of *store.Frontier the seed routine
// needs.
type FrontierStore interface {
	Enqueue(ctx context.Context, url, source string, nextFetchAt int64, priority int, now int64) error
}

// New returns a supervisor that will run `workers` concurrent
// fetchworker.Worker instances built by newWorker.
func New(frontier FrontierStore, workers int, newWorker WorkerFactory, log zerolog.Logger) *Supervisor {
	return &Supervisor{frontier: frontier, newWorker: newWorker, workers: workers, log: log}
}

// Seed canonicalizes and enqueues every seed URL with priority 1,
// next_fetch_at=now. Unrecognized publishers are skipped.
func (s *Supervisor) Seed(ctx context.Context, seeds []string) error {
	now := time.Now().Unix()

	for _, raw := range seeds {
		canon, err := urlkey.Canonicalize(raw)
		if err != nil {
			s.log.Warn().Err(err).Str("seed", raw).Msg("skipping unparseable seed")
			continue
		}

		source, ok := urlkey.Publisher(canon)
		if !ok {
			s.log.Warn().Str("seed", canon).Msg("skipping seed with unknown publisher")
			continue
		}

		if err := s.frontier.Enqueue(ctx, canon, source, now, seedPriority, now); err != nil {
			return err
		}
	}

	return nil
}

// Run spawns the worker pool and blocks until ctx is canceled,
// restarting any worker that terminates in the meantime.
func (s *Supervisor) Run(ctx context.Context) error {
	done := make(chan string, s.workers)

	spawn := func(id string) {
		go func() {
			w := s.newWorker(id)

			err := w.Run(ctx)
			if err != nil && ctx.Err() == nil {
				s.log.Error().Err(err).Str("worker_id", id).Msg("worker terminated, will respawn")
			}

			done <- id
		}()
	}

	ids := make([]string, s.workers)
	for i := range ids {
		ids[i] = uuid.NewString()
		spawn(ids[i])
	}

	ticker := time.NewTicker(livenessCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case id := <-done:
			if ctx.Err() != nil {
				continue
			}

			health.WorkersRespawnedTotal.Inc()
			s.log.Info().Str("worker_id", id).Msg("respawning worker")
			spawn(id)
		case <-ticker.C:
			// Liveness is driven by the done channel above; this tick
			// exists to match the once-a-second inspection cadence of
			// the original supervisor loop and gives a hook for future
			// active health checks without changing the select shape.
		}
	}
}
