// Package worker holds the recovery worker: a ticker-driven loop that
// re-enters stuck sagas and applies the give-up policy.
package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Orchestrator is the narrow surface the recovery worker needs.
type Orchestrator interface {
	RecoverStuck(ctx context.Context, stuckThreshold, giveUpThreshold time.Duration) (advanced, givenUp int, err error)
}

type Recovery struct {
	orchestrator    Orchestrator
	interval        time.Duration
	stuckThreshold  time.Duration
	giveUpThreshold time.Duration
}

func NewRecovery(orchestrator Orchestrator, interval, stuckThreshold, giveUpThreshold time.Duration) *Recovery {
	return &Recovery{
		orchestrator:    orchestrator,
		interval:        interval,
		stuckThreshold:  stuckThreshold,
		giveUpThreshold: giveUpThreshold,
	}
}

// Run ticks until ctx is cancelled. Each tick is a self-contained scan; the
// worker makes no assumption about what the previous tick left behind.
func (r *Recovery) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("recovery worker stopped")
			return
		case <-ticker.C:
			advanced, givenUp, err := r.orchestrator.RecoverStuck(ctx, r.stuckThreshold, r.giveUpThreshold)
			if err != nil {
				log.Error().Err(err).Msg("recovery tick failed")
				continue
			}
			if advanced > 0 || givenUp > 0 {
				log.Info().Int("advanced", advanced).Int("given_up", givenUp).Msg("recovery worker tick")
			}
		}
	}
}
