// Package worker holds the hold reaper: a ticker-driven loop that credits
// expired holds back to availability so a crashed saga never pins
// inventory forever.
package worker

import (
	"context"
	"time"

	"github.com/distributed-hotel-saga/inventory-service/internal/service"
	"github.com/rs/zerolog/log"
)

type Reaper struct {
	inventoryService *service.InventoryService
	interval         time.Duration
}

func NewReaper(inventoryService *service.InventoryService, interval time.Duration) *Reaper {
	return &Reaper{inventoryService: inventoryService, interval: interval}
}

// Run ticks until ctx is cancelled. The reaper makes no RPCs; each tick is
// a self-contained scan of expired holds.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("hold reaper stopped")
			return
		case <-ticker.C:
			count, err := r.inventoryService.ExpireHolds(ctx)
			if err != nil {
				log.Error().Err(err).Msg("hold reaper tick failed")
				continue
			}
			if count > 0 {
				log.Info().Int("expired", count).Msg("hold reaper credited expired holds")
			}
		}
	}
}
