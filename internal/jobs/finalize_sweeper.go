package jobs

import (
	"context"
	"log"
	"time"

	"trading-contests/internal/services"
)

// FinalizeSweeper advances contest lifecycles on a timer: upcoming contests
// whose start time passed become active, active contests past their end time
// get finalized. Finalize is idempotent, so an overlap with a manual admin
// trigger settles each contest once.
type FinalizeSweeper struct {
	contestService *services.ContestService
	interval       time.Duration
	stopChan       chan struct{}
}

// NewFinalizeSweeper creates a new finalize sweeper job
func NewFinalizeSweeper(contestService *services.ContestService, interval time.Duration) *FinalizeSweeper {
	return &FinalizeSweeper{
		contestService: contestService,
		interval:       interval,
		stopChan:       make(chan struct{}),
	}
}

// Start begins the lifecycle sweep loop
func (fs *FinalizeSweeper) Start() {
	log.Printf("[FinalizeSweeper] Starting contest lifecycle job (interval: %v)", fs.interval)

	ticker := time.NewTicker(fs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fs.sweep()
		case <-fs.stopChan:
			log.Println("[FinalizeSweeper] Stopping contest lifecycle job")
			return
		}
	}
}

// Stop stops the lifecycle sweep loop
func (fs *FinalizeSweeper) Stop() {
	close(fs.stopChan)
}

func (fs *FinalizeSweeper) sweep() {
	ctx := context.Background()
	now := time.Now()

	activated, err := fs.contestService.ActivateDue(now)
	if err != nil {
		log.Printf("[FinalizeSweeper] Error activating contests: %v", err)
	} else if len(activated) > 0 {
		log.Printf("[FinalizeSweeper] Activated %d contests", len(activated))
	}

	ended, err := fs.contestService.ListEnded(now)
	if err != nil {
		log.Printf("[FinalizeSweeper] Error listing ended contests: %v", err)
		return
	}

	for _, contest := range ended {
		result, err := fs.contestService.Finalize(ctx, contest.ID)
		if err != nil {
			// Price feed gaps resolve themselves; the next tick retries.
			log.Printf("[FinalizeSweeper] Error finalizing contest %d: %v", contest.ID, err)
			continue
		}
		if !result.Replayed {
			log.Printf("[FinalizeSweeper] Finalized contest %d (%d participants ranked)",
				contest.ID, len(result.Standings))
		}
	}
}
