package utils

import (
	"os"
	"time"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/models"
)

// StartUploadCleaner launches a background goroutine that periodically
// deletes expired image uploads that were never attached to a saved post.
// Best-effort: failures are logged and retried on the next tick.
func StartUploadCleaner(interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	go func() {
		for {
			// Sleep first to avoid racing the database at startup.
			time.Sleep(interval)
			db := config.DB()
			if db == nil {
				continue
			}
			var items []models.UploadedFile
			if err := db.Where("claimed = ? AND expire_at <= ?", false, time.Now()).
				Limit(100).Find(&items).Error; err != nil {
				if Sugar != nil {
					Sugar.Warnf("upload cleaner query failed: %v", err)
				}
				continue
			}
			for _, it := range items {
				if it.FilePath != "" {
					_ = os.Remove(it.FilePath)
				}
				// Remove the row regardless of file deletion outcome.
				if err := db.Delete(&models.UploadedFile{}, it.ID).Error; err != nil && Sugar != nil {
					Sugar.Warnf("upload cleaner delete row failed: %v", err)
				}
			}
		}
	}()
}
