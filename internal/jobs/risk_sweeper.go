package jobs

import (
	"context"
	"log"
	"time"

	"trading-contests/internal/services"
)

// RiskSweeper re-evaluates margin levels and protective stops for every open
// position. Backup for the synchronous per-trade checks; both paths funnel
// into the same idempotent settlement, so overlapping runs are harmless.
type RiskSweeper struct {
	riskService *services.RiskService
	interval    time.Duration
	stopChan    chan struct{}
}

// NewRiskSweeper creates a new risk sweeper job
func NewRiskSweeper(riskService *services.RiskService, interval time.Duration) *RiskSweeper {
	return &RiskSweeper{
		riskService: riskService,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start begins the risk sweep loop
func (rs *RiskSweeper) Start() {
	log.Printf("[RiskSweeper] Starting risk evaluation job (interval: %v)", rs.interval)

	ticker := time.NewTicker(rs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rs.sweep()
		case <-rs.stopChan:
			log.Println("[RiskSweeper] Stopping risk evaluation job")
			return
		}
	}
}

// Stop stops the risk sweep loop
func (rs *RiskSweeper) Stop() {
	close(rs.stopChan)
}

func (rs *RiskSweeper) sweep() {
	ctx := context.Background()

	if err := rs.riskService.CheckProtectiveStops(ctx, 0); err != nil {
		log.Printf("[RiskSweeper] Error checking protective stops: %v", err)
	}
	if err := rs.riskService.EvaluateAll(ctx); err != nil {
		log.Printf("[RiskSweeper] Error evaluating margins: %v", err)
	}
	if err := rs.riskService.CloseOrphanedPositions(ctx); err != nil {
		log.Printf("[RiskSweeper] Error settling orphaned positions: %v", err)
	}
}
