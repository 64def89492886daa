// workers/raise_sync_worker.go
package workers

import (
	"context"
	"log"
	"time"

	"rwa-invest-backend/models"

	"gorm.io/gorm"
)

// RaiseSyncWorker reconciles Deal.CurrentRaised against the settled
// investments table, which is written by the (separate) investment flow.
// The stored value is monotonic: the worker only ever raises it.
type RaiseSyncWorker struct {
	DB       *gorm.DB
	Interval time.Duration
}

func NewRaiseSyncWorker(db *gorm.DB, interval time.Duration) *RaiseSyncWorker {
	if interval <= 0 {
		interval = 1 * time.Minute
	}
	return &RaiseSyncWorker{DB: db, Interval: interval}
}

func (w *RaiseSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting raise reconciliation worker (investments → deals.current_raised)…")

	// Initial pass on boot, then tick.
	w.ReconcileOnce()

	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.ReconcileOnce()
		case <-ctx.Done():
			log.Println("⏹️ Raise reconciliation worker stopped")
			return
		}
	}
}

// ReconcileOnce runs a single reconciliation sweep over non-draft deals.
func (w *RaiseSyncWorker) ReconcileOnce() {
	var deals []models.Deal
	if err := w.DB.Where("status IN ?", []string{models.DealStatusActive, models.DealStatusClosed}).
		Find(&deals).Error; err != nil {
		log.Printf("[RAISE_SYNC] ❌ Failed to load deals: %v", err)
		return
	}

	var updated int
	for _, deal := range deals {
		var settled float64
		if err := w.DB.Model(&models.Investment{}).
			Where("deal_id = ? AND status = ?", deal.ID, "settled").
			Select("COALESCE(SUM(amount), 0)").
			Scan(&settled).Error; err != nil {
			log.Printf("[RAISE_SYNC] ⚠️ Aggregation failed for deal %s: %v", deal.ID, err)
			continue
		}

		if settled <= deal.CurrentRaised {
			continue
		}

		if err := w.DB.Model(&models.Deal{}).
			Where("id = ? AND current_raised < ?", deal.ID, settled).
			Update("current_raised", settled).Error; err != nil {
			log.Printf("[RAISE_SYNC] ⚠️ Failed to update deal %s: %v", deal.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Printf("[RAISE_SYNC] ✅ Updated raised totals on %d deal(s)", updated)
	}
}
