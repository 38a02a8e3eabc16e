// Package jobs hosts the background workers that run beside the HTTP server.
package jobs

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/models"
	"github.com/hochlab/lab-booking/internal/storage"
)

// StartRecordingCleanup purges recordings older than the retention window:
// the S3 object first, the metadata row only after the object is gone, so a
// failed delete is retried on the next tick instead of leaking the payload.
func StartRecordingCleanup(
	db *gorm.DB,
	store *storage.RecordingStorage,
	interval time.Duration,
	retention time.Duration,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			runCleanup(db, store, retention)
		}
	}()
}

func runCleanup(db *gorm.DB, store *storage.RecordingStorage, retention time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-retention)

	var expired []models.Recording
	if err := db.WithContext(ctx).
		Where("ended_at < ?", cutoff).
		Find(&expired).Error; err != nil {
		log.Println("recording cleanup: query failed:", err)
		return
	}

	for _, rec := range expired {
		if err := store.Delete(ctx, rec.Key); err != nil {
			log.Printf("recording cleanup: delete object %s failed: %v", rec.Key, err)
			continue
		}
		if err := db.WithContext(ctx).Delete(&models.Recording{}, rec.ID).Error; err != nil {
			log.Printf("recording cleanup: delete row %d failed: %v", rec.ID, err)
		}
	}

	if len(expired) > 0 {
		log.Printf("recording cleanup: removed %d expired recordings", len(expired))
	}
}
